package models

// Collection names one of the ledger's record collections. The values double
// as document-store collection names.
type Collection string

const (
	CollectionStock    Collection = "stock"
	CollectionSales    Collection = "sales"
	CollectionExpenses Collection = "expenses"
)

// ParseCollection maps a request parameter onto a known collection.
func ParseCollection(name string) (Collection, error) {
	switch Collection(name) {
	case CollectionStock, CollectionSales, CollectionExpenses:
		return Collection(name), nil
	}
	return "", ValidationError{Field: "collection", Reason: "must be one of stock, sales, expenses"}
}

// LedgerSnapshot is the read surface handed to the UI: the three collections
// ordered most-recent-first by their date fields, and a loading flag that
// stays true until the initial load of all three has completed.
type LedgerSnapshot struct {
	Stock    []StockBatch `json:"stock"`
	Sales    []Sale       `json:"sales"`
	Expenses []Expense    `json:"expenses"`
	Loading  bool         `json:"loading"`
}

// ChangeOp distinguishes the two mirror-relevant kinds of store change.
type ChangeOp string

const (
	ChangeUpsert ChangeOp = "upsert"
	ChangeRemove ChangeOp = "remove"
)

// ChangeEvent is one live update pushed by the document store. Exactly one of
// the record pointers is set for upserts, matching Collection; removals carry
// only the ID.
type ChangeEvent struct {
	Collection Collection
	Op         ChangeOp
	ID         string
	Stock      *StockBatch
	Sale       *Sale
	Expense    *Expense
}
