package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beejwala/seedledger/internal/domain/models"
	ledgersvc "github.com/beejwala/seedledger/internal/service/ledger"
	"github.com/beejwala/seedledger/internal/service/reporting"
	"github.com/beejwala/seedledger/internal/service/search"
)

// LedgerHandler adapts the ledger and reporting services onto HTTP.
type LedgerHandler struct {
	ledger    *ledgersvc.Service
	reporting *reporting.Service
	logger    *zap.Logger
}

// NewLedgerHandler constructs the HTTP handler adapter.
func NewLedgerHandler(ledger *ledgersvc.Service, reporting *reporting.Service, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{ledger: ledger, reporting: reporting, logger: logger}
}

// Snapshot serves the three collections, the derived statistics and the
// loading flag in one response.
func (h *LedgerHandler) Snapshot(c *gin.Context) {
	snap := h.ledger.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"stock":    snap.Stock,
		"sales":    snap.Sales,
		"expenses": snap.Expenses,
		"stats":    reporting.ComputeStats(snap),
		"loading":  snap.Loading,
	})
}

// Stats serves the derived statistics alone.
func (h *LedgerHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.reporting.Stats())
}

// Search filters one collection by query text, entity and date range.
func (h *LedgerHandler) Search(c *gin.Context) {
	coll, err := models.ParseCollection(c.Query("collection"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	params := search.Params{
		Query:  c.Query("q"),
		Entity: c.Query("entity"),
	}
	if params.From, err = parseDayParam("from", c.Query("from")); err != nil {
		h.writeError(c, err)
		return
	}
	if params.To, err = parseDayParam("to", c.Query("to")); err != nil {
		h.writeError(c, err)
		return
	}

	snap := h.ledger.Snapshot()
	switch coll {
	case models.CollectionSales:
		c.JSON(http.StatusOK, gin.H{"sales": search.Sales(snap.Sales, params)})
	case models.CollectionStock:
		c.JSON(http.StatusOK, gin.H{"stock": search.Stock(snap.Stock, params)})
	case models.CollectionExpenses:
		c.JSON(http.StatusOK, gin.H{"expenses": search.Expenses(snap.Expenses, params)})
	}
}

// Entities serves the unique values backing a collection's filter dropdown.
func (h *LedgerHandler) Entities(c *gin.Context) {
	coll, err := models.ParseCollection(c.Query("collection"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entities": search.Entities(h.ledger.Snapshot(), coll)})
}

// CreateStock records a new stock batch.
func (h *LedgerHandler) CreateStock(c *gin.Context) {
	var form models.StockBatchForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.writeError(c, models.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	batch, err := h.ledger.AddStockBatch(c.Request.Context(), form)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, batch)
}

// UpdateStock applies a partial edit to a stock batch.
func (h *LedgerHandler) UpdateStock(c *gin.Context) {
	var form models.StockBatchPatchForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.writeError(c, models.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	batch, err := h.ledger.UpdateStockBatch(c.Request.Context(), c.Param("id"), form)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

// DeleteStock removes a stock batch.
func (h *LedgerHandler) DeleteStock(c *gin.Context) {
	if err := h.ledger.DeleteStockBatch(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateSale records a sale against a stock batch.
func (h *LedgerHandler) CreateSale(c *gin.Context) {
	var form models.SaleForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.writeError(c, models.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	sale, err := h.ledger.AddSale(c.Request.Context(), form)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// UpdateSale applies a partial edit to a sale.
func (h *LedgerHandler) UpdateSale(c *gin.Context) {
	var form models.SalePatchForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.writeError(c, models.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	sale, err := h.ledger.UpdateSale(c.Request.Context(), c.Param("id"), form)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// DeleteSale removes a sale without restoring its batch's packets.
func (h *LedgerHandler) DeleteSale(c *gin.Context) {
	if err := h.ledger.DeleteSale(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddPayment applies a partial payment to a sale.
func (h *LedgerHandler) AddPayment(c *gin.Context) {
	var form models.PaymentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.writeError(c, models.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	amount, err := form.Parse()
	if err != nil {
		h.writeError(c, err)
		return
	}
	sale, err := h.ledger.AddPayment(c.Request.Context(), c.Param("id"), amount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// SettlePayment clears a sale's remaining dues.
func (h *LedgerHandler) SettlePayment(c *gin.Context) {
	sale, err := h.ledger.SettlePayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// ExpenseCategories serves the fixed category list the expense form offers.
func (h *LedgerHandler) ExpenseCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": models.ExpenseCategories})
}

// CreateExpense records a new expense.
func (h *LedgerHandler) CreateExpense(c *gin.Context) {
	var form models.ExpenseForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.writeError(c, models.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	expense, err := h.ledger.AddExpense(c.Request.Context(), form)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// UpdateExpense applies a partial edit to an expense.
func (h *LedgerHandler) UpdateExpense(c *gin.Context) {
	var form models.ExpensePatchForm
	if err := c.ShouldBindJSON(&form); err != nil {
		h.writeError(c, models.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	expense, err := h.ledger.UpdateExpense(c.Request.Context(), c.Param("id"), form)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

// DeleteExpense removes an expense.
func (h *LedgerHandler) DeleteExpense(c *gin.Context) {
	if err := h.ledger.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LedgerHandler) writeError(c *gin.Context, err error) {
	var (
		validation   models.ValidationError
		notFound     models.NotFoundError
		insufficient models.InsufficientStockError
		persistence  models.PersistenceError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "field": validation.Field})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{
			"error":     insufficient.Error(),
			"available": insufficient.Available,
			"requested": insufficient.Requested,
		})
	case errors.As(err, &persistence):
		h.logger.Error("store operation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "store operation failed"})
	default:
		h.logger.Error("unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDayParam(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return nil, models.ValidationError{Field: name, Reason: "must be a date in " + models.DateLayout + " form"}
	}
	return &d, nil
}
