package ledger

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/beejwala/seedledger/internal/domain/models"
)

// Store is the persistence boundary the ledger runs against. The mongodb
// package implements it; tests use an in-memory fake.
type Store interface {
	LoadStock(ctx context.Context) ([]models.StockBatch, error)
	LoadSales(ctx context.Context) ([]models.Sale, error)
	LoadExpenses(ctx context.Context) ([]models.Expense, error)

	InsertStock(ctx context.Context, batch models.StockBatch) (string, error)
	UpdateStock(ctx context.Context, id string, patch models.StockBatchPatch) error
	DeleteStock(ctx context.Context, id string) error

	// InsertSale persists the sale and decrements its batch's available
	// packets as one transaction; neither write is observable without the
	// other.
	InsertSale(ctx context.Context, sale models.Sale) (string, error)
	UpdateSale(ctx context.Context, id string, patch models.SalePatch) error
	DeleteSale(ctx context.Context, id string) error

	InsertExpense(ctx context.Context, expense models.Expense) (string, error)
	UpdateExpense(ctx context.Context, id string, patch models.ExpensePatch) error
	DeleteExpense(ctx context.Context, id string) error

	// Watch blocks, delivering live changes until ctx ends or the stream
	// breaks.
	Watch(ctx context.Context, apply func(models.ChangeEvent)) error
}

// Service is the ledger core: it owns the live mirror and enforces the
// consistency rules between stock, sales and payments.
type Service struct {
	store  Store
	mirror *mirror
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a ledger service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		mirror: newMirror(),
		logger: logger,
		now:    time.Now,
	}
}

// Start performs the initial load of all three collections and then keeps the
// mirror live from the store's change stream until ctx ends. The snapshot
// reports loading until the initial load lands.
func (s *Service) Start(ctx context.Context) error {
	stock, err := s.store.LoadStock(ctx)
	if err != nil {
		return err
	}
	sales, err := s.store.LoadSales(ctx)
	if err != nil {
		return err
	}
	expenses, err := s.store.LoadExpenses(ctx)
	if err != nil {
		return err
	}
	s.mirror.setInitial(stock, sales, expenses)
	s.logger.Info("initial load complete",
		zap.Int("stock", len(stock)),
		zap.Int("sales", len(sales)),
		zap.Int("expenses", len(expenses)))

	go s.watchLoop(ctx)
	return nil
}

func (s *Service) watchLoop(ctx context.Context) {
	for {
		err := s.store.Watch(ctx, s.mirror.applyEvent)
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("change stream interrupted, resubscribing", zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

// Snapshot returns the current read surface for the UI.
func (s *Service) Snapshot() models.LedgerSnapshot {
	return s.mirror.snapshot()
}

// AddStockBatch validates the form, derives the initial availability and
// stock value, persists the batch and returns it.
func (s *Service) AddStockBatch(ctx context.Context, form models.StockBatchForm) (models.StockBatch, error) {
	input, err := form.Parse()
	if err != nil {
		return models.StockBatch{}, err
	}

	now := s.now()
	arrival := input.ArrivalDate
	if arrival.IsZero() {
		arrival = now.Truncate(24 * time.Hour)
	}

	batch := models.StockBatch{
		SupplierName:        input.SupplierName,
		SeedName:            input.SeedName,
		LotNo:               input.LotNo,
		ArrivalDate:         arrival,
		CostPerPacket:       input.CostPerPacket,
		TotalPacketsInitial: input.TotalPacketsInitial,
		PacketsAvailable:    input.TotalPacketsInitial,
		TotalStockValue:     float64(input.TotalPacketsInitial) * input.CostPerPacket,
		CreatedAt:           now,
	}

	id, err := s.store.InsertStock(ctx, batch)
	if err != nil {
		return models.StockBatch{}, err
	}
	batch.ID = id
	s.mirror.upsertStock(batch)

	s.logger.Info("stock batch added",
		zap.String("id", id),
		zap.String("seed", batch.SeedName),
		zap.Int("packets", batch.TotalPacketsInitial))
	return batch, nil
}

// AddSale records a sale against a stock batch. The sale insert and the
// batch decrement succeed or fail as a whole; a sale that would overdraw the
// batch is rejected before any write.
func (s *Service) AddSale(ctx context.Context, form models.SaleForm) (models.Sale, error) {
	input, err := form.Parse()
	if err != nil {
		return models.Sale{}, err
	}

	batch, ok := s.mirror.stockByID(input.StockBatchID)
	if !ok {
		return models.Sale{}, models.NotFoundError{Collection: models.CollectionStock, ID: input.StockBatchID}
	}
	if input.PacketsSold > batch.PacketsAvailable {
		return models.Sale{}, models.InsufficientStockError{
			BatchID:   batch.ID,
			Requested: input.PacketsSold,
			Available: batch.PacketsAvailable,
		}
	}

	due := float64(input.PacketsSold) * input.PricePerPacket
	if input.TotalAmountDue != nil {
		due = *input.TotalAmountDue
	}

	now := s.now()
	saleDate := input.SaleDate
	if saleDate.IsZero() {
		saleDate = now
	}

	sale := models.Sale{
		CustomerName:   input.CustomerName,
		StockBatchID:   input.StockBatchID,
		PacketsSold:    input.PacketsSold,
		PricePerPacket: input.PricePerPacket,
		TotalAmountDue: due,
		AmountPaid:     input.AmountPaidNow,
		IsFullyPaid:    models.FullyPaid(input.AmountPaidNow, due),
		SaleDate:       saleDate,
		CreatedAt:      now,
	}

	id, err := s.store.InsertSale(ctx, sale)
	if err != nil {
		return models.Sale{}, err
	}
	sale.ID = id
	s.mirror.upsertSale(sale)
	s.mirror.adjustStockAvailability(batch.ID, -input.PacketsSold)

	s.logger.Info("sale recorded",
		zap.String("id", id),
		zap.String("customer", sale.CustomerName),
		zap.Int("packets", sale.PacketsSold),
		zap.Float64("due", sale.TotalAmountDue))
	return sale, nil
}

// AddPayment applies a partial payment to a sale and rederives the paid flag.
func (s *Service) AddPayment(ctx context.Context, saleID string, amount float64) (models.Sale, error) {
	if amount <= 0 {
		return models.Sale{}, models.ValidationError{Field: "amount", Reason: "must be positive"}
	}

	sale, ok := s.mirror.saleByID(saleID)
	if !ok {
		return models.Sale{}, models.NotFoundError{Collection: models.CollectionSales, ID: saleID}
	}

	newPaid := sale.AmountPaid + amount
	fully := models.FullyPaid(newPaid, sale.TotalAmountDue)
	patch := models.SalePatch{AmountPaid: &newPaid, IsFullyPaid: &fully}

	if err := s.store.UpdateSale(ctx, saleID, patch); err != nil {
		return models.Sale{}, err
	}
	sale.AmountPaid = newPaid
	sale.IsFullyPaid = fully
	s.mirror.upsertSale(sale)

	s.logger.Info("payment applied",
		zap.String("sale_id", saleID),
		zap.Float64("amount", amount),
		zap.Bool("fully_paid", fully))
	return sale, nil
}

// SettlePayment clears whatever remains due on a sale through the payment
// path. A sale already fully paid (or overpaid) is left untouched.
func (s *Service) SettlePayment(ctx context.Context, saleID string) (models.Sale, error) {
	sale, ok := s.mirror.saleByID(saleID)
	if !ok {
		return models.Sale{}, models.NotFoundError{Collection: models.CollectionSales, ID: saleID}
	}

	remaining := sale.TotalAmountDue - sale.AmountPaid
	if remaining <= 0 {
		return sale, nil
	}
	return s.AddPayment(ctx, saleID, remaining)
}

// AddExpense validates and persists one expense record.
func (s *Service) AddExpense(ctx context.Context, form models.ExpenseForm) (models.Expense, error) {
	input, err := form.Parse()
	if err != nil {
		return models.Expense{}, err
	}

	now := s.now()
	expenseDate := input.ExpenseDate
	if expenseDate.IsZero() {
		expenseDate = now
	}

	expense := models.Expense{
		Category:    input.Category,
		Amount:      input.Amount,
		Description: input.Description,
		ExpenseDate: expenseDate,
		CreatedAt:   now,
	}

	id, err := s.store.InsertExpense(ctx, expense)
	if err != nil {
		return models.Expense{}, err
	}
	expense.ID = id
	s.mirror.upsertExpense(expense)

	s.logger.Info("expense added",
		zap.String("id", id),
		zap.String("category", expense.Category),
		zap.Float64("amount", expense.Amount))
	return expense, nil
}

// UpdateStockBatch replaces the patched fields on a batch. Availability edits
// are clamped into [0, total_packets_initial].
func (s *Service) UpdateStockBatch(ctx context.Context, id string, form models.StockBatchPatchForm) (models.StockBatch, error) {
	patch, err := form.Parse()
	if err != nil {
		return models.StockBatch{}, err
	}
	if patch.IsEmpty() {
		return models.StockBatch{}, models.ValidationError{Field: "patch", Reason: "no fields to update"}
	}

	batch, ok := s.mirror.stockByID(id)
	if !ok {
		return models.StockBatch{}, models.NotFoundError{Collection: models.CollectionStock, ID: id}
	}

	if patch.PacketsAvailable != nil {
		clamped := clamp(*patch.PacketsAvailable, 0, batch.TotalPacketsInitial)
		patch.PacketsAvailable = &clamped
	}

	if err := s.store.UpdateStock(ctx, id, patch); err != nil {
		return models.StockBatch{}, err
	}

	applyStockPatch(&batch, patch)
	s.mirror.upsertStock(batch)
	return batch, nil
}

// UpdateSale replaces the patched fields on a sale. Whenever either amount is
// touched the paid flag is rederived from the resolved pair, never taken from
// the patch.
func (s *Service) UpdateSale(ctx context.Context, id string, form models.SalePatchForm) (models.Sale, error) {
	patch, err := form.Parse()
	if err != nil {
		return models.Sale{}, err
	}
	if patch.IsEmpty() {
		return models.Sale{}, models.ValidationError{Field: "patch", Reason: "no fields to update"}
	}

	sale, ok := s.mirror.saleByID(id)
	if !ok {
		return models.Sale{}, models.NotFoundError{Collection: models.CollectionSales, ID: id}
	}

	if patch.AmountPaid != nil || patch.TotalAmountDue != nil {
		paid := sale.AmountPaid
		if patch.AmountPaid != nil {
			paid = *patch.AmountPaid
		}
		due := sale.TotalAmountDue
		if patch.TotalAmountDue != nil {
			due = *patch.TotalAmountDue
		}
		fully := models.FullyPaid(paid, due)
		patch.IsFullyPaid = &fully
	}

	if err := s.store.UpdateSale(ctx, id, patch); err != nil {
		return models.Sale{}, err
	}

	applySalePatch(&sale, patch)
	s.mirror.upsertSale(sale)
	return sale, nil
}

// UpdateExpense replaces the patched fields on an expense.
func (s *Service) UpdateExpense(ctx context.Context, id string, form models.ExpensePatchForm) (models.Expense, error) {
	patch, err := form.Parse()
	if err != nil {
		return models.Expense{}, err
	}
	if patch.IsEmpty() {
		return models.Expense{}, models.ValidationError{Field: "patch", Reason: "no fields to update"}
	}

	expense, ok := s.mirror.expenseByID(id)
	if !ok {
		return models.Expense{}, models.NotFoundError{Collection: models.CollectionExpenses, ID: id}
	}

	if err := s.store.UpdateExpense(ctx, id, patch); err != nil {
		return models.Expense{}, err
	}

	applyExpensePatch(&expense, patch)
	s.mirror.upsertExpense(expense)
	return expense, nil
}

// DeleteStockBatch removes a batch. Sales referencing it keep their record
// but the reference dangles from then on.
func (s *Service) DeleteStockBatch(ctx context.Context, id string) error {
	if _, ok := s.mirror.stockByID(id); !ok {
		return models.NotFoundError{Collection: models.CollectionStock, ID: id}
	}
	if err := s.store.DeleteStock(ctx, id); err != nil {
		return err
	}
	s.mirror.remove(models.CollectionStock, id)
	return nil
}

// DeleteSale removes a sale. The batch's available packets are not restored;
// stock only moves when a sale is recorded.
func (s *Service) DeleteSale(ctx context.Context, id string) error {
	if _, ok := s.mirror.saleByID(id); !ok {
		return models.NotFoundError{Collection: models.CollectionSales, ID: id}
	}
	if err := s.store.DeleteSale(ctx, id); err != nil {
		return err
	}
	s.mirror.remove(models.CollectionSales, id)
	return nil
}

// DeleteExpense removes an expense.
func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	if _, ok := s.mirror.expenseByID(id); !ok {
		return models.NotFoundError{Collection: models.CollectionExpenses, ID: id}
	}
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.mirror.remove(models.CollectionExpenses, id)
	return nil
}

func applyStockPatch(batch *models.StockBatch, patch models.StockBatchPatch) {
	if patch.SupplierName != nil {
		batch.SupplierName = *patch.SupplierName
	}
	if patch.SeedName != nil {
		batch.SeedName = *patch.SeedName
	}
	if patch.LotNo != nil {
		batch.LotNo = *patch.LotNo
	}
	if patch.ArrivalDate != nil {
		batch.ArrivalDate = *patch.ArrivalDate
	}
	if patch.CostPerPacket != nil {
		batch.CostPerPacket = *patch.CostPerPacket
	}
	if patch.PacketsAvailable != nil {
		batch.PacketsAvailable = *patch.PacketsAvailable
	}
}

func applySalePatch(sale *models.Sale, patch models.SalePatch) {
	if patch.CustomerName != nil {
		sale.CustomerName = *patch.CustomerName
	}
	if patch.PacketsSold != nil {
		sale.PacketsSold = *patch.PacketsSold
	}
	if patch.PricePerPacket != nil {
		sale.PricePerPacket = *patch.PricePerPacket
	}
	if patch.TotalAmountDue != nil {
		sale.TotalAmountDue = *patch.TotalAmountDue
	}
	if patch.AmountPaid != nil {
		sale.AmountPaid = *patch.AmountPaid
	}
	if patch.SaleDate != nil {
		sale.SaleDate = *patch.SaleDate
	}
	if patch.IsFullyPaid != nil {
		sale.IsFullyPaid = *patch.IsFullyPaid
	}
}

func applyExpensePatch(expense *models.Expense, patch models.ExpensePatch) {
	if patch.Category != nil {
		expense.Category = *patch.Category
	}
	if patch.Amount != nil {
		expense.Amount = *patch.Amount
	}
	if patch.Description != nil {
		expense.Description = *patch.Description
	}
	if patch.ExpenseDate != nil {
		expense.ExpenseDate = *patch.ExpenseDate
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
