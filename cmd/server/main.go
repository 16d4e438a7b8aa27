package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/beejwala/seedledger/internal/config"
	"github.com/beejwala/seedledger/internal/repository/mongodb"
	"github.com/beejwala/seedledger/internal/repository/sheets"
	"github.com/beejwala/seedledger/internal/scheduler"
	"github.com/beejwala/seedledger/internal/server/handlers"
	"github.com/beejwala/seedledger/internal/server/router"
	ledgersvc "github.com/beejwala/seedledger/internal/service/ledger"
	reportingsvc "github.com/beejwala/seedledger/internal/service/reporting"
	"github.com/beejwala/seedledger/pkg/clients/notify"
	"github.com/beejwala/seedledger/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := mongodb.New(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	ledgerSvc := ledgersvc.NewService(store, baseLogger.Named("svc.ledger"))
	if err := ledgerSvc.Start(ctx); err != nil {
		baseLogger.Fatal("failed initial ledger load", zap.Error(err))
	}

	var exporter reportingsvc.Exporter
	if cfg.SheetsEnabled() {
		sheetExporter, err := sheets.NewGoogleSheetExporter(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		exporter = sheetExporter
		baseLogger.Info("spreadsheet export enabled")
	}

	reportingSvc := reportingsvc.NewService(ledgerSvc, store, exporter, baseLogger.Named("svc.reporting"))

	var notifier notify.Client
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewClient(cfg.Notify.WebhookURL)
		baseLogger.Info("summary webhook enabled")
	} else {
		baseLogger.Warn("NOTIFY_WEBHOOK_URL missing, daily summaries stay local")
	}

	sched := scheduler.New(cfg.Reporting, reportingSvc, notifier, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	ledgerHandler := handlers.NewLedgerHandler(ledgerSvc, reportingSvc, baseLogger.Named("handlers.ledger"))
	engine := router.New(ledgerHandler, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
