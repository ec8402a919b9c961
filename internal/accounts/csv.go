package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/billfold-dev/billfold/internal/model"
)

const (
	numFields      = 11
	colID          = 0
	colName        = 1
	colBudgetType  = 2
	colBalance     = 3
	colCreditLimit = 4
	colInterest    = 5
	colDueDay      = 6
	colMinPayment  = 7
	colWebsiteURL  = 8
	colNotes       = 9
	colLastPaid    = 10
)

// ReadAccounts reads accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accts = append(accts, acct)
	}
	return accts, nil
}

// WriteAccounts writes accounts.csv.
func WriteAccounts(w io.Writer, accts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"account_id", "name", "budget_type", "balance", "credit_limit",
		"interest_rate", "payment_due_day", "minimum_payment", "website_url",
		"notes", "last_payment_month",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = strconv.Itoa(acct.ID)
	row[colName] = acct.Name
	row[colBudgetType] = string(acct.BudgetType)
	row[colBalance] = acct.Balance.StringFixed(2)

	if !acct.CreditLimit.IsZero() {
		row[colCreditLimit] = acct.CreditLimit.StringFixed(2)
	}
	if !acct.InterestRate.IsZero() {
		row[colInterest] = acct.InterestRate.String()
	}
	if acct.PaymentDueDay != 0 {
		row[colDueDay] = strconv.Itoa(acct.PaymentDueDay)
	}
	if !acct.MinimumPayment.IsZero() {
		row[colMinPayment] = acct.MinimumPayment.StringFixed(2)
	}

	row[colWebsiteURL] = acct.WebsiteURL
	row[colNotes] = acct.Notes
	row[colLastPaid] = acct.LastPaymentMonth
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	acctID, err := strconv.Atoi(record[colID])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing account_id %q: %w", record[colID], err)
	}

	balance, err := decimal.NewFromString(record[colBalance])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing balance %q: %w", record[colBalance], err)
	}

	var creditLimit, interestRate, minPayment decimal.Decimal

	if record[colCreditLimit] != "" {
		creditLimit, err = decimal.NewFromString(record[colCreditLimit])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing credit_limit %q: %w", record[colCreditLimit], err)
		}
	}

	if record[colInterest] != "" {
		interestRate, err = decimal.NewFromString(record[colInterest])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing interest_rate %q: %w", record[colInterest], err)
		}
	}

	var dueDay int
	if record[colDueDay] != "" {
		dueDay, err = strconv.Atoi(record[colDueDay])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing payment_due_day %q: %w", record[colDueDay], err)
		}
		if dueDay < 1 || dueDay > 31 {
			return model.Account{}, fmt.Errorf("payment_due_day %d out of range 1-31", dueDay)
		}
	}

	if record[colMinPayment] != "" {
		minPayment, err = decimal.NewFromString(record[colMinPayment])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing minimum_payment %q: %w", record[colMinPayment], err)
		}
	}

	return model.Account{
		ID:               acctID,
		Name:             record[colName],
		BudgetType:       model.BudgetType(record[colBudgetType]),
		Balance:          balance,
		CreditLimit:      creditLimit,
		InterestRate:     interestRate,
		PaymentDueDay:    dueDay,
		MinimumPayment:   minPayment,
		WebsiteURL:       record[colWebsiteURL],
		Notes:            record[colNotes],
		LastPaymentMonth: record[colLastPaid],
	}, nil
}
