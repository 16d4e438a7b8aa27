package models

import "time"

// StockBatch is one supplier delivery of seed packets held in inventory.
type StockBatch struct {
	ID                  string    `bson:"_id,omitempty" json:"id"`
	SupplierName        string    `bson:"supplier_name" json:"supplier_name"`
	SeedName            string    `bson:"seed_name" json:"seed_name"`
	LotNo               string    `bson:"lot_no" json:"lot_no"`
	ArrivalDate         time.Time `bson:"arrival_date" json:"arrival_date"`
	CostPerPacket       float64   `bson:"cost_per_packet" json:"cost_per_packet"`
	TotalPacketsInitial int       `bson:"total_packets_initial" json:"total_packets_initial"`
	PacketsAvailable    int       `bson:"packets_available" json:"packets_available"`
	TotalStockValue     float64   `bson:"total_stock_value" json:"total_stock_value"`
	CreatedAt           time.Time `bson:"created_at" json:"created_at"`
}

// StockBatchForm carries a stock entry as submitted by the UI. Numeric fields
// arrive as text and are parsed before anything is persisted.
type StockBatchForm struct {
	SupplierName        string `json:"supplier_name"`
	SeedName            string `json:"seed_name"`
	LotNo               string `json:"lot_no"`
	ArrivalDate         string `json:"arrival_date"`
	TotalPacketsInitial string `json:"total_packets_initial"`
	CostPerPacket       string `json:"cost_per_packet"`
}

// NewStockBatch is the validated, typed shape of a stock entry form.
type NewStockBatch struct {
	SupplierName        string
	SeedName            string
	LotNo               string
	ArrivalDate         time.Time // zero value means "default to today"
	TotalPacketsInitial int
	CostPerPacket       float64
}

// Parse validates the form and converts its text numbers into typed values.
func (f StockBatchForm) Parse() (NewStockBatch, error) {
	var out NewStockBatch
	var err error

	if out.SupplierName, err = requireText("supplier_name", f.SupplierName); err != nil {
		return NewStockBatch{}, err
	}
	if out.SeedName, err = requireText("seed_name", f.SeedName); err != nil {
		return NewStockBatch{}, err
	}
	if out.LotNo, err = requireText("lot_no", f.LotNo); err != nil {
		return NewStockBatch{}, err
	}
	if out.TotalPacketsInitial, err = parsePackets("total_packets_initial", f.TotalPacketsInitial, 1); err != nil {
		return NewStockBatch{}, err
	}
	if out.CostPerPacket, err = parseAmount("cost_per_packet", f.CostPerPacket); err != nil {
		return NewStockBatch{}, err
	}
	if out.ArrivalDate, err = parseOptionalDate("arrival_date", f.ArrivalDate); err != nil {
		return NewStockBatch{}, err
	}

	return out, nil
}

// StockBatchPatch names the fields an update may replace. Nil fields are left
// untouched. The initial packet count and the stock value computed from it are
// fixed at creation and deliberately absent here.
type StockBatchPatch struct {
	SupplierName     *string
	SeedName         *string
	LotNo            *string
	ArrivalDate      *time.Time
	CostPerPacket    *float64
	PacketsAvailable *int
}

// IsEmpty reports whether the patch names no fields at all.
func (p StockBatchPatch) IsEmpty() bool {
	return p.SupplierName == nil && p.SeedName == nil && p.LotNo == nil &&
		p.ArrivalDate == nil && p.CostPerPacket == nil && p.PacketsAvailable == nil
}

// StockBatchPatchForm is the text-typed partial update submitted by the UI.
type StockBatchPatchForm struct {
	SupplierName     *string `json:"supplier_name"`
	SeedName         *string `json:"seed_name"`
	LotNo            *string `json:"lot_no"`
	ArrivalDate      *string `json:"arrival_date"`
	CostPerPacket    *string `json:"cost_per_packet"`
	PacketsAvailable *string `json:"packets_available"`
}

// Parse converts the fields present in the form into their typed patch.
func (f StockBatchPatchForm) Parse() (StockBatchPatch, error) {
	var out StockBatchPatch

	if f.SupplierName != nil {
		v, err := requireText("supplier_name", *f.SupplierName)
		if err != nil {
			return StockBatchPatch{}, err
		}
		out.SupplierName = &v
	}
	if f.SeedName != nil {
		v, err := requireText("seed_name", *f.SeedName)
		if err != nil {
			return StockBatchPatch{}, err
		}
		out.SeedName = &v
	}
	if f.LotNo != nil {
		v, err := requireText("lot_no", *f.LotNo)
		if err != nil {
			return StockBatchPatch{}, err
		}
		out.LotNo = &v
	}
	if f.ArrivalDate != nil {
		d, err := parseDate("arrival_date", *f.ArrivalDate)
		if err != nil {
			return StockBatchPatch{}, err
		}
		out.ArrivalDate = &d
	}
	if f.CostPerPacket != nil {
		v, err := parseAmount("cost_per_packet", *f.CostPerPacket)
		if err != nil {
			return StockBatchPatch{}, err
		}
		out.CostPerPacket = &v
	}
	if f.PacketsAvailable != nil {
		v, err := parsePackets("packets_available", *f.PacketsAvailable, 0)
		if err != nil {
			return StockBatchPatch{}, err
		}
		out.PacketsAvailable = &v
	}

	return out, nil
}
