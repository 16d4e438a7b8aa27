package models

import "time"

// Stats is the derived dashboard snapshot. Every figure is a pure aggregation
// over the current collections, recomputed on demand.
type Stats struct {
	TotalCollection float64 `bson:"total_collection" json:"total_collection"`
	TotalSalesValue float64 `bson:"total_sales_value" json:"total_sales_value"`
	StockValue      float64 `bson:"stock_value" json:"stock_value"`
	TotalExpenses   float64 `bson:"total_expenses" json:"total_expenses"`
	TotalBatches    int     `bson:"total_batches" json:"total_batches"`
	ExpenseCount    int     `bson:"expense_count" json:"expense_count"`
}

// DailySummary is one scheduled snapshot of the ledger, persisted to the
// daily_reports collection and fanned out to the notifier and sheet export.
type DailySummary struct {
	ID              string    `bson:"_id,omitempty" json:"id"`
	Date            time.Time `bson:"date" json:"date"`
	Stats           Stats     `bson:"stats" json:"stats"`
	SoldOutBatches  int       `bson:"sold_out_batches" json:"sold_out_batches"`
	OutstandingDues float64   `bson:"outstanding_dues" json:"outstanding_dues"`
	Message         string    `bson:"message" json:"message"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}
