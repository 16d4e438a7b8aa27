package models

import (
	"errors"
	"testing"
	"time"
)

func TestStockBatchFormParse(t *testing.T) {
	form := StockBatchForm{
		SupplierName:        "  Green Valley ",
		SeedName:            "Tomato",
		LotNo:               "LOT-77",
		ArrivalDate:         "2024-03-01",
		TotalPacketsInitial: "200",
		CostPerPacket:       "5.50",
	}

	got, err := form.Parse()
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if got.SupplierName != "Green Valley" {
		t.Errorf("SupplierName = %q, want trimmed", got.SupplierName)
	}
	if got.TotalPacketsInitial != 200 || got.CostPerPacket != 5.50 {
		t.Errorf("numbers = %d / %v, want 200 / 5.5", got.TotalPacketsInitial, got.CostPerPacket)
	}
	if want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC); !got.ArrivalDate.Equal(want) {
		t.Errorf("ArrivalDate = %v, want %v", got.ArrivalDate, want)
	}
}

func TestStockBatchFormParseErrors(t *testing.T) {
	valid := StockBatchForm{
		SupplierName:        "s",
		SeedName:            "n",
		LotNo:               "l",
		TotalPacketsInitial: "10",
		CostPerPacket:       "1",
	}

	tests := []struct {
		name   string
		mutate func(*StockBatchForm)
		field  string
	}{
		{"blank supplier", func(f *StockBatchForm) { f.SupplierName = "   " }, "supplier_name"},
		{"fractional packets", func(f *StockBatchForm) { f.TotalPacketsInitial = "10.5" }, "total_packets_initial"},
		{"zero packets", func(f *StockBatchForm) { f.TotalPacketsInitial = "0" }, "total_packets_initial"},
		{"cost not a number", func(f *StockBatchForm) { f.CostPerPacket = "five" }, "cost_per_packet"},
		{"negative cost", func(f *StockBatchForm) { f.CostPerPacket = "-1" }, "cost_per_packet"},
		{"bad date", func(f *StockBatchForm) { f.ArrivalDate = "01/03/2024" }, "arrival_date"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := valid
			tc.mutate(&form)
			_, err := form.Parse()
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("got %v, want ValidationError", err)
			}
			if verr.Field != tc.field {
				t.Errorf("Field = %q, want %q", verr.Field, tc.field)
			}
		})
	}
}

func TestSaleFormParseOptionalTotal(t *testing.T) {
	form := SaleForm{
		CustomerName:   "Ravi",
		StockBatchID:   "b1",
		PacketsSold:    "50",
		PricePerPacket: "8",
		AmountPaidNow:  "0",
	}

	got, err := form.Parse()
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if got.TotalAmountDue != nil {
		t.Error("blank total_amount_due must stay unset")
	}

	form.TotalAmountDue = "380"
	got, err = form.Parse()
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if got.TotalAmountDue == nil || *got.TotalAmountDue != 380 {
		t.Errorf("TotalAmountDue = %v, want 380", got.TotalAmountDue)
	}
}

func TestSaleFormParseRejectsZeroPackets(t *testing.T) {
	form := SaleForm{
		CustomerName:   "Ravi",
		StockBatchID:   "b1",
		PacketsSold:    "0",
		PricePerPacket: "8",
		AmountPaidNow:  "0",
	}
	if _, err := form.Parse(); err == nil {
		t.Fatal("zero packets accepted")
	}
}

func TestSalePatchFormParse(t *testing.T) {
	paid := "120"
	bad := "lots"

	form := SalePatchForm{AmountPaid: &paid}
	patch, err := form.Parse()
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if patch.AmountPaid == nil || *patch.AmountPaid != 120 {
		t.Errorf("AmountPaid = %v, want 120", patch.AmountPaid)
	}
	if patch.IsFullyPaid != nil {
		t.Error("patch parsing must never set the paid flag")
	}

	form = SalePatchForm{AmountPaid: &bad}
	if _, err := form.Parse(); err == nil {
		t.Fatal("unparseable amount accepted")
	}

	if !(SalePatchForm{}).mustParse(t).IsEmpty() {
		t.Error("empty form produced a non-empty patch")
	}
}

func (f SalePatchForm) mustParse(t *testing.T) SalePatch {
	t.Helper()
	p, err := f.Parse()
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	return p
}

func TestExpenseFormParse(t *testing.T) {
	form := ExpenseForm{Category: "Petrol", Amount: "40.25", Description: "van refuel"}
	got, err := form.Parse()
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if got.Amount != 40.25 || got.Category != "Petrol" || got.Description != "van refuel" {
		t.Errorf("parsed = %+v", got)
	}
	if !got.ExpenseDate.IsZero() {
		t.Error("blank expense_date must stay zero for the ledger to default")
	}

	form.Amount = ""
	if _, err := form.Parse(); err == nil {
		t.Fatal("blank amount accepted")
	}
}

func TestFullyPaid(t *testing.T) {
	tests := []struct {
		paid, due float64
		want      bool
	}{
		{0, 0, true},
		{100, 400, false},
		{400, 400, true},
		{400.01, 400, true},
		{399.99, 400, false},
	}
	for _, tc := range tests {
		if got := FullyPaid(tc.paid, tc.due); got != tc.want {
			t.Errorf("FullyPaid(%v, %v) = %v, want %v", tc.paid, tc.due, got, tc.want)
		}
	}
}

func TestParseCollection(t *testing.T) {
	for _, name := range []string{"stock", "sales", "expenses"} {
		if _, err := ParseCollection(name); err != nil {
			t.Errorf("ParseCollection(%q) failed: %v", name, err)
		}
	}
	if _, err := ParseCollection("payments"); err == nil {
		t.Error("unknown collection accepted")
	}
}
