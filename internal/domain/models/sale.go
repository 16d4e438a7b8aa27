package models

import "time"

// Sale records packets sold to a customer out of one stock batch. The batch
// reference is non-owning; the batch may be deleted while the sale remains.
type Sale struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	CustomerName   string    `bson:"customer_name" json:"customer_name"`
	StockBatchID   string    `bson:"stock_batch_id" json:"stock_batch_id"`
	PacketsSold    int       `bson:"packets_sold" json:"packets_sold"`
	PricePerPacket float64   `bson:"price_per_packet" json:"price_per_packet"`
	TotalAmountDue float64   `bson:"total_amount_due" json:"total_amount_due"`
	AmountPaid     float64   `bson:"amount_paid" json:"amount_paid"`
	IsFullyPaid    bool      `bson:"is_fully_paid" json:"is_fully_paid"`
	SaleDate       time.Time `bson:"sale_date" json:"sale_date"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

// FullyPaid is the single place the paid flag is derived. Every mutation path
// (create, patch, payment, settlement) goes through it; the flag is never
// accepted from input.
func FullyPaid(amountPaid, totalAmountDue float64) bool {
	return amountPaid >= totalAmountDue
}

// SaleForm carries a sale as submitted by the UI. total_amount_due is
// optional: when blank the total is computed as packets x price.
type SaleForm struct {
	CustomerName   string `json:"customer_name"`
	StockBatchID   string `json:"stock_batch_id"`
	PacketsSold    string `json:"packets_sold"`
	PricePerPacket string `json:"price_per_packet"`
	AmountPaidNow  string `json:"amount_paid_now"`
	TotalAmountDue string `json:"total_amount_due"`
	SaleDate       string `json:"sale_date"`
}

// NewSale is the validated, typed shape of a sale form.
type NewSale struct {
	CustomerName   string
	StockBatchID   string
	PacketsSold    int
	PricePerPacket float64
	AmountPaidNow  float64
	TotalAmountDue *float64  // nil means "compute from packets x price"
	SaleDate       time.Time // zero value means "default to now"
}

// Parse validates the form and converts its text numbers into typed values.
func (f SaleForm) Parse() (NewSale, error) {
	var out NewSale
	var err error

	if out.CustomerName, err = requireText("customer_name", f.CustomerName); err != nil {
		return NewSale{}, err
	}
	if out.StockBatchID, err = requireText("stock_batch_id", f.StockBatchID); err != nil {
		return NewSale{}, err
	}
	if out.PacketsSold, err = parsePackets("packets_sold", f.PacketsSold, 1); err != nil {
		return NewSale{}, err
	}
	if out.PricePerPacket, err = parseAmount("price_per_packet", f.PricePerPacket); err != nil {
		return NewSale{}, err
	}
	if out.AmountPaidNow, err = parseAmount("amount_paid_now", f.AmountPaidNow); err != nil {
		return NewSale{}, err
	}
	if f.TotalAmountDue != "" {
		v, err := parseAmount("total_amount_due", f.TotalAmountDue)
		if err != nil {
			return NewSale{}, err
		}
		out.TotalAmountDue = &v
	}
	if out.SaleDate, err = parseOptionalDate("sale_date", f.SaleDate); err != nil {
		return NewSale{}, err
	}

	return out, nil
}

// SalePatch names the fields an update may replace. IsFullyPaid is computed
// by the ledger service whenever either amount resolves differently; it is
// not part of the inbound form.
type SalePatch struct {
	CustomerName   *string
	PacketsSold    *int
	PricePerPacket *float64
	TotalAmountDue *float64
	AmountPaid     *float64
	SaleDate       *time.Time
	IsFullyPaid    *bool
}

// IsEmpty reports whether the patch names no fields at all.
func (p SalePatch) IsEmpty() bool {
	return p.CustomerName == nil && p.PacketsSold == nil && p.PricePerPacket == nil &&
		p.TotalAmountDue == nil && p.AmountPaid == nil && p.SaleDate == nil && p.IsFullyPaid == nil
}

// SalePatchForm is the text-typed partial update submitted by the UI.
// Editing packets_sold here replaces the figure on the record only; stock
// availability is never re-adjusted by an edit.
type SalePatchForm struct {
	CustomerName   *string `json:"customer_name"`
	PacketsSold    *string `json:"packets_sold"`
	PricePerPacket *string `json:"price_per_packet"`
	TotalAmountDue *string `json:"total_amount_due"`
	AmountPaid     *string `json:"amount_paid"`
	SaleDate       *string `json:"sale_date"`
}

// Parse converts the fields present in the form into their typed patch.
func (f SalePatchForm) Parse() (SalePatch, error) {
	var out SalePatch

	if f.CustomerName != nil {
		v, err := requireText("customer_name", *f.CustomerName)
		if err != nil {
			return SalePatch{}, err
		}
		out.CustomerName = &v
	}
	if f.PacketsSold != nil {
		v, err := parsePackets("packets_sold", *f.PacketsSold, 1)
		if err != nil {
			return SalePatch{}, err
		}
		out.PacketsSold = &v
	}
	if f.PricePerPacket != nil {
		v, err := parseAmount("price_per_packet", *f.PricePerPacket)
		if err != nil {
			return SalePatch{}, err
		}
		out.PricePerPacket = &v
	}
	if f.TotalAmountDue != nil {
		v, err := parseAmount("total_amount_due", *f.TotalAmountDue)
		if err != nil {
			return SalePatch{}, err
		}
		out.TotalAmountDue = &v
	}
	if f.AmountPaid != nil {
		v, err := parseAmount("amount_paid", *f.AmountPaid)
		if err != nil {
			return SalePatch{}, err
		}
		out.AmountPaid = &v
	}
	if f.SaleDate != nil {
		d, err := parseDate("sale_date", *f.SaleDate)
		if err != nil {
			return SalePatch{}, err
		}
		out.SaleDate = &d
	}

	return out, nil
}

// PaymentForm carries a partial payment amount as text.
type PaymentForm struct {
	Amount string `json:"amount"`
}

// Parse converts the payment amount; positivity is enforced by the ledger.
func (f PaymentForm) Parse() (float64, error) {
	return parseAmount("amount", f.Amount)
}
