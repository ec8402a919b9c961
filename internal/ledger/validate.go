package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/billfold-dev/billfold/internal/id"
	"github.com/billfold-dev/billfold/internal/model"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	TxnID       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.TxnID, e.Description)
}

// AccountStore resolves account references and carries stored balances.
type AccountStore interface {
	Exists(id int) bool
	Get(id int) (model.Account, bool)
	AdjustBalance(id int, delta decimal.Decimal) error
}

// CategoryChecker tests whether a category ID exists.
type CategoryChecker interface {
	Exists(id int) bool
}

// ValidateTxns enforces 6 invariants on a month's transactions.
func ValidateTxns(txns []model.Transaction, accounts AccountStore, categories CategoryChecker, year, month int) []ValidationError {
	var errs []ValidationError

	byID := make(map[string]model.Transaction, len(txns))

	for _, txn := range txns {
		// Invariant 1: References resolve.
		if !accounts.Exists(txn.AccountID) {
			errs = append(errs, ValidationError{
				Invariant:   1,
				TxnID:       txn.ID,
				Description: fmt.Sprintf("unknown account %d", txn.AccountID),
			})
		}
		if txn.ToAccountID != 0 {
			if !accounts.Exists(txn.ToAccountID) {
				errs = append(errs, ValidationError{
					Invariant:   1,
					TxnID:       txn.ID,
					Description: fmt.Sprintf("unknown destination account %d", txn.ToAccountID),
				})
			}
			if txn.ToAccountID == txn.AccountID {
				errs = append(errs, ValidationError{
					Invariant:   1,
					TxnID:       txn.ID,
					Description: "transfer destination equals source account",
				})
			}
		}
		if !categories.Exists(txn.CategoryID) {
			errs = append(errs, ValidationError{
				Invariant:   1,
				TxnID:       txn.ID,
				Description: fmt.Sprintf("unknown category %d", txn.CategoryID),
			})
		}

		// Invariant 2: Budget type is valid and matches the account's book.
		if !txn.BudgetType.Valid() {
			errs = append(errs, ValidationError{
				Invariant:   2,
				TxnID:       txn.ID,
				Description: fmt.Sprintf("invalid budget type %q", txn.BudgetType),
			})
		} else if acct, ok := accounts.Get(txn.AccountID); ok && acct.BudgetType != txn.BudgetType {
			errs = append(errs, ValidationError{
				Invariant:   2,
				TxnID:       txn.ID,
				Description: fmt.Sprintf("budget type %q does not match account's %q", txn.BudgetType, acct.BudgetType),
			})
		}

		// Invariant 3: Date within the month file.
		if txn.Date.Year() != year || int(txn.Date.Month()) != month {
			errs = append(errs, ValidationError{
				Invariant:   3,
				TxnID:       txn.ID,
				Description: fmt.Sprintf("date %s not in %04d-%02d", txn.Date.Format("2006-01-02"), year, month),
			})
		}

		// Invariant 4: Non-zero amount with at most 2 decimal places.
		if txn.Amount.IsZero() {
			errs = append(errs, ValidationError{
				Invariant:   4,
				TxnID:       txn.ID,
				Description: "amount must be non-zero",
			})
		}
		cents := decimal.NewFromInt(100)
		if !txn.Amount.Mul(cents).Equal(txn.Amount.Mul(cents).Floor()) {
			errs = append(errs, ValidationError{
				Invariant:   4,
				TxnID:       txn.ID,
				Description: fmt.Sprintf("amount %s has more than 2 decimal places", txn.Amount),
			})
		}

		// Invariant 5: IDs parse, belong to this month, and are unique.
		idYear, idMonth, _, err := id.ParseTxnID(txn.ID)
		switch {
		case err != nil:
			errs = append(errs, ValidationError{
				Invariant:   5,
				TxnID:       txn.ID,
				Description: fmt.Sprintf("invalid transaction ID: %v", err),
			})
		case idYear != year || idMonth != month:
			errs = append(errs, ValidationError{
				Invariant:   5,
				TxnID:       txn.ID,
				Description: fmt.Sprintf("ID month does not match file %04d-%02d", year, month),
			})
		}
		if _, dup := byID[txn.ID]; dup {
			errs = append(errs, ValidationError{
				Invariant:   5,
				TxnID:       txn.ID,
				Description: "duplicate transaction ID",
			})
		}
		byID[txn.ID] = txn
	}

	// Invariant 6: Links within the month are mutual and amounts negate.
	// Links into other months are checked by the service at link time.
	for _, txn := range txns {
		if !txn.IsLinked() {
			continue
		}
		linkYear, linkMonth, _, err := id.ParseTxnID(txn.LinkedID)
		if err != nil {
			errs = append(errs, ValidationError{
				Invariant:   6,
				TxnID:       txn.ID,
				Description: fmt.Sprintf("invalid linked ID %q: %v", txn.LinkedID, err),
			})
			continue
		}
		if linkYear != year || linkMonth != month {
			continue
		}
		pair, ok := byID[txn.LinkedID]
		if !ok {
			errs = append(errs, ValidationError{
				Invariant:   6,
				TxnID:       txn.ID,
				Description: fmt.Sprintf("linked transaction %s not found", txn.LinkedID),
			})
			continue
		}
		if pair.LinkedID != txn.ID {
			errs = append(errs, ValidationError{
				Invariant:   6,
				TxnID:       txn.ID,
				Description: fmt.Sprintf("link to %s is not mutual", txn.LinkedID),
			})
		}
		if !txn.Amount.Add(pair.Amount).IsZero() {
			errs = append(errs, ValidationError{
				Invariant:   6,
				TxnID:       txn.ID,
				Description: fmt.Sprintf("linked amounts %s and %s do not negate", txn.Amount, pair.Amount),
			})
		}
	}

	return errs
}
