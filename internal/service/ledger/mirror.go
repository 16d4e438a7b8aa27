package ledger

import (
	"sort"
	"sync"

	"github.com/beejwala/seedledger/internal/domain/models"
)

// mirror is the live in-memory copy of the three collections. It is the
// single source of truth for reads; writes land here right after the store
// accepts them, and again (idempotently) when the store's change stream
// pushes them back.
type mirror struct {
	mu       sync.RWMutex
	stock    []models.StockBatch
	sales    []models.Sale
	expenses []models.Expense
	loaded   bool
}

func newMirror() *mirror {
	return &mirror{}
}

// setInitial installs the first full load and clears the loading flag.
func (m *mirror) setInitial(stock []models.StockBatch, sales []models.Sale, expenses []models.Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock = append([]models.StockBatch(nil), stock...)
	m.sales = append([]models.Sale(nil), sales...)
	m.expenses = append([]models.Expense(nil), expenses...)
	m.sortLocked()
	m.loaded = true
}

// snapshot returns copies of the collections; callers own the slices.
func (m *mirror) snapshot() models.LedgerSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return models.LedgerSnapshot{
		Stock:    append([]models.StockBatch(nil), m.stock...),
		Sales:    append([]models.Sale(nil), m.sales...),
		Expenses: append([]models.Expense(nil), m.expenses...),
		Loading:  !m.loaded,
	}
}

func (m *mirror) stockByID(id string) (models.StockBatch, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.stock {
		if b.ID == id {
			return b, true
		}
	}
	return models.StockBatch{}, false
}

func (m *mirror) saleByID(id string) (models.Sale, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sales {
		if s.ID == id {
			return s, true
		}
	}
	return models.Sale{}, false
}

func (m *mirror) expenseByID(id string) (models.Expense, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.expenses {
		if e.ID == id {
			return e, true
		}
	}
	return models.Expense{}, false
}

func (m *mirror) upsertStock(batch models.StockBatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range m.stock {
		if b.ID == batch.ID {
			m.stock[i] = batch
			m.sortLocked()
			return
		}
	}
	m.stock = append(m.stock, batch)
	m.sortLocked()
}

func (m *mirror) upsertSale(sale models.Sale) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.sales {
		if s.ID == sale.ID {
			m.sales[i] = sale
			m.sortLocked()
			return
		}
	}
	m.sales = append(m.sales, sale)
	m.sortLocked()
}

func (m *mirror) upsertExpense(expense models.Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.expenses {
		if e.ID == expense.ID {
			m.expenses[i] = expense
			m.sortLocked()
			return
		}
	}
	m.expenses = append(m.expenses, expense)
	m.sortLocked()
}

func (m *mirror) remove(coll models.Collection, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch coll {
	case models.CollectionStock:
		for i, b := range m.stock {
			if b.ID == id {
				m.stock = append(m.stock[:i], m.stock[i+1:]...)
				return
			}
		}
	case models.CollectionSales:
		for i, s := range m.sales {
			if s.ID == id {
				m.sales = append(m.sales[:i], m.sales[i+1:]...)
				return
			}
		}
	case models.CollectionExpenses:
		for i, e := range m.expenses {
			if e.ID == id {
				m.expenses = append(m.expenses[:i], m.expenses[i+1:]...)
				return
			}
		}
	}
}

// adjustStockAvailability shifts a batch's available packet count in place.
func (m *mirror) adjustStockAvailability(id string, delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.stock {
		if m.stock[i].ID == id {
			m.stock[i].PacketsAvailable += delta
			return
		}
	}
}

// applyEvent folds one change-stream push into the mirror.
func (m *mirror) applyEvent(ev models.ChangeEvent) {
	if ev.Op == models.ChangeRemove {
		m.remove(ev.Collection, ev.ID)
		return
	}
	switch {
	case ev.Stock != nil:
		m.upsertStock(*ev.Stock)
	case ev.Sale != nil:
		m.upsertSale(*ev.Sale)
	case ev.Expense != nil:
		m.upsertExpense(*ev.Expense)
	}
}

// sortLocked keeps each collection ordered most-recent-first by its date
// field, ties broken by creation time so fresh records surface first.
func (m *mirror) sortLocked() {
	sort.SliceStable(m.stock, func(i, j int) bool {
		if !m.stock[i].ArrivalDate.Equal(m.stock[j].ArrivalDate) {
			return m.stock[i].ArrivalDate.After(m.stock[j].ArrivalDate)
		}
		return m.stock[i].CreatedAt.After(m.stock[j].CreatedAt)
	})
	sort.SliceStable(m.sales, func(i, j int) bool {
		if !m.sales[i].SaleDate.Equal(m.sales[j].SaleDate) {
			return m.sales[i].SaleDate.After(m.sales[j].SaleDate)
		}
		return m.sales[i].CreatedAt.After(m.sales[j].CreatedAt)
	})
	sort.SliceStable(m.expenses, func(i, j int) bool {
		if !m.expenses[i].ExpenseDate.Equal(m.expenses[j].ExpenseDate) {
			return m.expenses[i].ExpenseDate.After(m.expenses[j].ExpenseDate)
		}
		return m.expenses[i].CreatedAt.After(m.expenses[j].CreatedAt)
	})
}
