package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single row in a monthly transactions.csv.
// Amounts are signed: positive = inflow, negative = outflow.
type Transaction struct {
	ID            string // "YYYY-MM-NNN"
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	AccountID     int
	CategoryID    int
	BudgetType    BudgetType
	ToAccountID   int    // transfer destination, 0 = not a transfer
	LinkedID      string // paired transaction ID, "" = unlinked
	TaxDeductible bool
	Notes         string
}

// IsTransfer reports whether the transaction records a transfer between
// accounts.
func (t Transaction) IsTransfer() bool {
	return t.ToAccountID != 0
}

// IsLinked reports whether the transaction is one leg of a mutual pair.
func (t Transaction) IsLinked() bool {
	return t.LinkedID != ""
}

// MirrorsLink reports whether other is a valid counterpart: the links point
// at each other and the amounts are exact negations.
func (t Transaction) MirrorsLink(other Transaction) bool {
	return t.LinkedID == other.ID &&
		other.LinkedID == t.ID &&
		t.Amount.Add(other.Amount).IsZero()
}
