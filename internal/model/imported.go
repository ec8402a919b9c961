package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ImportedRow is a parsed row from a user-mapped CSV, prior to category and
// account resolution.
type ImportedRow struct {
	Row         int // 1-based row number in the source file, including any header
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = expense, positive = income
	Category    string          // raw category name, "" = unmapped
	Account     string          // raw account name, "" = unmapped
	Notes       string
}
