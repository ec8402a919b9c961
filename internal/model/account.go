package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetType partitions accounts, transactions, and categories into the
// household and business books.
type BudgetType string

const (
	BudgetHousehold BudgetType = "household"
	BudgetBusiness  BudgetType = "business"
)

// Valid reports whether bt is a known budget type.
func (bt BudgetType) Valid() bool {
	return bt == BudgetHousehold || bt == BudgetBusiness
}

// monthFormat is the layout for LastPaymentMonth values.
const monthFormat = "2006-01"

// Account represents a row in accounts.csv.
type Account struct {
	ID               int
	Name             string
	BudgetType       BudgetType
	Balance          decimal.Decimal
	CreditLimit      decimal.Decimal // zero = not a credit account
	InterestRate     decimal.Decimal // annual percentage, zero = none
	PaymentDueDay    int             // day of month 1-31, 0 = no due date
	MinimumPayment   decimal.Decimal
	WebsiteURL       string
	Notes            string
	LastPaymentMonth string // "YYYY-MM" when the current cycle is paid, "" = unpaid
}

// HasDueDate reports whether the account tracks a monthly payment due date.
func (a Account) HasDueDate() bool {
	return a.PaymentDueDay >= 1 && a.PaymentDueDay <= 31
}

// PaidForMonth reports whether the bill is marked paid for the month
// containing now.
func (a Account) PaidForMonth(now time.Time) bool {
	return a.LastPaymentMonth != "" && a.LastPaymentMonth == now.Format(monthFormat)
}

// MarkPaid records the month containing now as the last paid billing cycle.
func (a *Account) MarkPaid(now time.Time) {
	a.LastPaymentMonth = now.Format(monthFormat)
}

// MarkUnpaid clears the paid marker for the current billing cycle.
func (a *Account) MarkUnpaid() {
	a.LastPaymentMonth = ""
}
