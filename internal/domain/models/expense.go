package models

import "time"

// ExpenseCategories is the fixed set offered by the UI. Category stays free
// text in the record so the set can grow without a migration.
var ExpenseCategories = []string{"Petrol", "Electricity", "Groceries", "Rent", "Mobile", "Wifi", "Other"}

// Expense is a miscellaneous operating cost.
type Expense struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Category    string    `bson:"category" json:"category"`
	Amount      float64   `bson:"amount" json:"amount"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	ExpenseDate time.Time `bson:"expense_date" json:"expense_date"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// ExpenseForm carries an expense as submitted by the UI.
type ExpenseForm struct {
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	ExpenseDate string `json:"expense_date"`
}

// NewExpense is the validated, typed shape of an expense form.
type NewExpense struct {
	Category    string
	Amount      float64
	Description string
	ExpenseDate time.Time // zero value means "default to now"
}

// Parse validates the form and converts its text numbers into typed values.
func (f ExpenseForm) Parse() (NewExpense, error) {
	var out NewExpense
	var err error

	if out.Category, err = requireText("category", f.Category); err != nil {
		return NewExpense{}, err
	}
	if out.Amount, err = parseAmount("amount", f.Amount); err != nil {
		return NewExpense{}, err
	}
	if out.ExpenseDate, err = parseOptionalDate("expense_date", f.ExpenseDate); err != nil {
		return NewExpense{}, err
	}
	out.Description = f.Description

	return out, nil
}

// ExpensePatch names the fields an update may replace.
type ExpensePatch struct {
	Category    *string
	Amount      *float64
	Description *string
	ExpenseDate *time.Time
}

// IsEmpty reports whether the patch names no fields at all.
func (p ExpensePatch) IsEmpty() bool {
	return p.Category == nil && p.Amount == nil && p.Description == nil && p.ExpenseDate == nil
}

// ExpensePatchForm is the text-typed partial update submitted by the UI.
type ExpensePatchForm struct {
	Category    *string `json:"category"`
	Amount      *string `json:"amount"`
	Description *string `json:"description"`
	ExpenseDate *string `json:"expense_date"`
}

// Parse converts the fields present in the form into their typed patch.
func (f ExpensePatchForm) Parse() (ExpensePatch, error) {
	var out ExpensePatch

	if f.Category != nil {
		v, err := requireText("category", *f.Category)
		if err != nil {
			return ExpensePatch{}, err
		}
		out.Category = &v
	}
	if f.Amount != nil {
		v, err := parseAmount("amount", *f.Amount)
		if err != nil {
			return ExpensePatch{}, err
		}
		out.Amount = &v
	}
	if f.Description != nil {
		out.Description = f.Description
	}
	if f.ExpenseDate != nil {
		d, err := parseDate("expense_date", *f.ExpenseDate)
		if err != nil {
			return ExpensePatch{}, err
		}
		out.ExpenseDate = &d
	}

	return out, nil
}
