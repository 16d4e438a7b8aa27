package reporting

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/beejwala/seedledger/internal/domain/models"
)

type fixedSnapshot struct {
	snap models.LedgerSnapshot
}

func (f fixedSnapshot) Snapshot() models.LedgerSnapshot { return f.snap }

type memReportStore struct {
	saved []models.DailySummary
}

func (m *memReportStore) SaveDailySummary(_ context.Context, s models.DailySummary) error {
	m.saved = append(m.saved, s)
	return nil
}

func TestComputeStats(t *testing.T) {
	snap := models.LedgerSnapshot{
		Sales: []models.Sale{
			{AmountPaid: 100.25, TotalAmountDue: 400},
			{AmountPaid: 0, TotalAmountDue: 55.5},
			{AmountPaid: 19.75, TotalAmountDue: 19.75},
		},
		Stock: []models.StockBatch{
			{TotalStockValue: 1000},
			{TotalStockValue: 250.5},
		},
		Expenses: []models.Expense{
			{Amount: 40},
			{Amount: 0},
			{Amount: 9.99},
		},
	}

	stats := ComputeStats(snap)

	if stats.TotalCollection != 120 {
		t.Errorf("TotalCollection = %v, want 120", stats.TotalCollection)
	}
	if stats.TotalSalesValue != 475.25 {
		t.Errorf("TotalSalesValue = %v, want 475.25", stats.TotalSalesValue)
	}
	if stats.StockValue != 1250.5 {
		t.Errorf("StockValue = %v, want 1250.5", stats.StockValue)
	}
	if stats.TotalExpenses != 49.99 {
		t.Errorf("TotalExpenses = %v, want 49.99", stats.TotalExpenses)
	}
	if stats.TotalBatches != 2 {
		t.Errorf("TotalBatches = %d, want 2", stats.TotalBatches)
	}
	if stats.ExpenseCount != 3 {
		t.Errorf("ExpenseCount = %d, want 3", stats.ExpenseCount)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(models.LedgerSnapshot{})
	if stats != (models.Stats{}) {
		t.Errorf("stats over empty snapshot = %+v, want zeroes", stats)
	}
}

// Non-finite amounts count as zero rather than poisoning the sums.
func TestComputeStatsSkipsNonFinite(t *testing.T) {
	snap := models.LedgerSnapshot{
		Sales: []models.Sale{
			{AmountPaid: math.NaN(), TotalAmountDue: math.Inf(1)},
			{AmountPaid: 10, TotalAmountDue: 20},
		},
	}

	stats := ComputeStats(snap)
	if stats.TotalCollection != 10 {
		t.Errorf("TotalCollection = %v, want 10", stats.TotalCollection)
	}
	if stats.TotalSalesValue != 20 {
		t.Errorf("TotalSalesValue = %v, want 20", stats.TotalSalesValue)
	}
}

func TestGenerateDailySummary(t *testing.T) {
	snap := models.LedgerSnapshot{
		Stock: []models.StockBatch{
			{TotalStockValue: 1000, PacketsAvailable: 0},
			{TotalStockValue: 500, PacketsAvailable: 40},
		},
		Sales: []models.Sale{
			{AmountPaid: 100, TotalAmountDue: 400},
			{AmountPaid: 90, TotalAmountDue: 50}, // overpaid, contributes no dues
		},
		Expenses: []models.Expense{{Amount: 75}},
	}

	store := &memReportStore{}
	svc := NewService(fixedSnapshot{snap}, store, nil, nil)

	now := time.Date(2024, time.July, 1, 20, 0, 0, 0, time.UTC)
	summary, err := svc.GenerateDailySummary(context.Background(), now)
	if err != nil {
		t.Fatalf("GenerateDailySummary() failed: %v", err)
	}

	if summary.SoldOutBatches != 1 {
		t.Errorf("SoldOutBatches = %d, want 1", summary.SoldOutBatches)
	}
	if summary.OutstandingDues != 300 {
		t.Errorf("OutstandingDues = %v, want 300", summary.OutstandingDues)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d summaries, want 1", len(store.saved))
	}
	if !strings.Contains(summary.Message, "2024-07-01") {
		t.Errorf("Message missing date: %q", summary.Message)
	}
	if !strings.Contains(summary.Message, "1 sold out") {
		t.Errorf("Message missing sold-out count: %q", summary.Message)
	}
}
