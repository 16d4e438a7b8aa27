package reporting

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/beejwala/seedledger/internal/domain/models"
)

const dateLayout = "2006-01-02"

// SnapshotProvider hands out the current ledger state. The ledger service
// satisfies it.
type SnapshotProvider interface {
	Snapshot() models.LedgerSnapshot
}

// ReportStore persists generated daily summaries.
type ReportStore interface {
	SaveDailySummary(ctx context.Context, summary models.DailySummary) error
}

// Exporter mirrors a summary into an external spreadsheet. Optional.
type Exporter interface {
	AppendDailySummary(ctx context.Context, summary models.DailySummary) error
}

// Service derives dashboard statistics and produces the scheduled daily
// summary.
type Service struct {
	ledger   SnapshotProvider
	reports  ReportStore
	exporter Exporter
	logger   *zap.Logger
}

// NewService wires a reporting service instance. exporter may be nil when no
// spreadsheet export is configured.
func NewService(ledger SnapshotProvider, reports ReportStore, exporter Exporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: ledger, reports: reports, exporter: exporter, logger: logger}
}

// Stats recomputes the derived statistics from the current snapshot.
func (s *Service) Stats() models.Stats {
	return ComputeStats(s.ledger.Snapshot())
}

// ComputeStats is a pure aggregation over a snapshot. Non-finite amounts
// count as zero instead of poisoning a sum.
func ComputeStats(snap models.LedgerSnapshot) models.Stats {
	var stats models.Stats
	for _, sale := range snap.Sales {
		stats.TotalCollection += finite(sale.AmountPaid)
		stats.TotalSalesValue += finite(sale.TotalAmountDue)
	}
	for _, batch := range snap.Stock {
		stats.StockValue += finite(batch.TotalStockValue)
	}
	for _, expense := range snap.Expenses {
		stats.TotalExpenses += finite(expense.Amount)
	}
	stats.TotalBatches = len(snap.Stock)
	stats.ExpenseCount = len(snap.Expenses)
	return stats
}

// GenerateDailySummary computes today's figures, persists them to the report
// store and, when configured, appends them to the export spreadsheet.
func (s *Service) GenerateDailySummary(ctx context.Context, now time.Time) (models.DailySummary, error) {
	snap := s.ledger.Snapshot()
	stats := ComputeStats(snap)

	var soldOut int
	for _, batch := range snap.Stock {
		if batch.PacketsAvailable <= 0 {
			soldOut++
		}
	}

	var outstanding float64
	for _, sale := range snap.Sales {
		if remaining := finite(sale.TotalAmountDue) - finite(sale.AmountPaid); remaining > 0 {
			outstanding += remaining
		}
	}

	summary := models.DailySummary{
		Date:            now,
		Stats:           stats,
		SoldOutBatches:  soldOut,
		OutstandingDues: outstanding,
		CreatedAt:       now,
	}
	summary.Message = renderSummary(summary)

	if err := s.reports.SaveDailySummary(ctx, summary); err != nil {
		return models.DailySummary{}, fmt.Errorf("save daily summary: %w", err)
	}

	if s.exporter != nil {
		if err := s.exporter.AppendDailySummary(ctx, summary); err != nil {
			s.logger.Warn("spreadsheet export failed", zap.Error(err))
		}
	}

	s.logger.Info("daily summary generated",
		zap.Float64("collected", stats.TotalCollection),
		zap.Float64("outstanding", outstanding),
		zap.Int("sold_out_batches", soldOut))
	return summary, nil
}

func renderSummary(s models.DailySummary) string {
	return fmt.Sprintf(
		"Ledger summary %s: collected ₹%.2f of ₹%.2f billed, ₹%.2f outstanding. Stock worth ₹%.2f across %d batches (%d sold out). Expenses ₹%.2f over %d entries.",
		s.Date.Format(dateLayout),
		s.Stats.TotalCollection,
		s.Stats.TotalSalesValue,
		s.OutstandingDues,
		s.Stats.StockValue,
		s.Stats.TotalBatches,
		s.SoldOutBatches,
		s.Stats.TotalExpenses,
		s.Stats.ExpenseCount,
	)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
