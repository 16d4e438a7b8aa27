package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beejwala/seedledger/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.LedgerHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	{
		api.GET("/ledger", handler.Snapshot)
		api.GET("/stats", handler.Stats)
		api.GET("/search", handler.Search)
		api.GET("/entities", handler.Entities)

		api.POST("/stock", handler.CreateStock)
		api.PUT("/stock/:id", handler.UpdateStock)
		api.DELETE("/stock/:id", handler.DeleteStock)

		api.POST("/sales", handler.CreateSale)
		api.PUT("/sales/:id", handler.UpdateSale)
		api.DELETE("/sales/:id", handler.DeleteSale)
		api.POST("/sales/:id/payments", handler.AddPayment)
		api.POST("/sales/:id/settle", handler.SettlePayment)

		api.GET("/expense-categories", handler.ExpenseCategories)
		api.POST("/expenses", handler.CreateExpense)
		api.PUT("/expenses/:id", handler.UpdateExpense)
		api.DELETE("/expenses/:id", handler.DeleteExpense)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
