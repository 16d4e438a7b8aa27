// Package search filters the ledger collections for the dashboard: a
// free-text query, an optional entity filter and an optional inclusive date
// range, ANDed together. Input order is preserved.
package search

import (
	"sort"
	"strings"
	"time"

	"github.com/beejwala/seedledger/internal/domain/models"
)

// Params is one filter request. From and To are calendar days; From is
// widened to start-of-day and To to end-of-day, both inclusive.
type Params struct {
	Query  string
	Entity string
	From   *time.Time
	To     *time.Time
}

// Sales filters sales by customer name text, exact customer entity and sale
// date.
func Sales(in []models.Sale, p Params) []models.Sale {
	out := make([]models.Sale, 0, len(in))
	for _, s := range in {
		if !matchText(p.Query, s.CustomerName) {
			continue
		}
		if !matchEntity(p.Entity, s.CustomerName) {
			continue
		}
		if !matchDate(s.SaleDate, p) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Stock filters batches by supplier, seed or lot number text, exact supplier
// entity and arrival date.
func Stock(in []models.StockBatch, p Params) []models.StockBatch {
	out := make([]models.StockBatch, 0, len(in))
	for _, b := range in {
		if !matchText(p.Query, b.SupplierName, b.SeedName, b.LotNo) {
			continue
		}
		if !matchEntity(p.Entity, b.SupplierName) {
			continue
		}
		if !matchDate(b.ArrivalDate, p) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Expenses filters expenses by category or description text, exact category
// entity and expense date.
func Expenses(in []models.Expense, p Params) []models.Expense {
	out := make([]models.Expense, 0, len(in))
	for _, e := range in {
		if !matchText(p.Query, e.Category, e.Description) {
			continue
		}
		if !matchEntity(p.Entity, e.Category) {
			continue
		}
		if !matchDate(e.ExpenseDate, p) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Entities returns the sorted unique values backing a collection's entity
// filter dropdown: customers for sales, suppliers for stock, categories for
// expenses.
func Entities(snap models.LedgerSnapshot, coll models.Collection) []string {
	seen := map[string]struct{}{}
	var out []string
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	switch coll {
	case models.CollectionSales:
		for _, s := range snap.Sales {
			add(s.CustomerName)
		}
	case models.CollectionStock:
		for _, b := range snap.Stock {
			add(b.SupplierName)
		}
	case models.CollectionExpenses:
		for _, e := range snap.Expenses {
			add(e.Category)
		}
	}

	sort.Strings(out)
	return out
}

// matchText is a case-insensitive substring match across the collection's
// searchable fields. An empty query matches everything; an empty field never
// satisfies a non-empty query.
func matchText(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, f := range fields {
		if f == "" {
			continue
		}
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// matchEntity is exact and case-sensitive, mirroring the dropdown the values
// came from.
func matchEntity(entity, field string) bool {
	return entity == "" || field == entity
}

func matchDate(d time.Time, p Params) bool {
	if p.From != nil {
		lo := startOfDay(*p.From)
		if d.Before(lo) {
			return false
		}
	}
	if p.To != nil {
		hi := endOfDay(*p.To)
		if d.After(hi) {
			return false
		}
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
