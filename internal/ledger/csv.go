package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billfold-dev/billfold/internal/model"
)

// Header is the CSV header for a monthly transactions.csv.
const Header = "id,date,description,amount,account_id,category_id,budget_type,to_account_id,linked_id,tax_deductible,notes"

const (
	numFields     = 11
	dateFormat    = "2006-01-02"
	colID         = 0
	colDate       = 1
	colDesc       = 2
	colAmount     = 3
	colAcctID     = 4
	colCatID      = 5
	colBudgetType = 6
	colToAcctID   = 7
	colLinkedID   = 8
	colTaxDeduct  = 9
	colNotes      = 10
)

// ReadTxns reads all transactions from a transactions.csv reader.
func ReadTxns(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, err := UnmarshalTxn(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// WriteTxns writes transactions to a transactions.csv writer (including header).
func WriteTxns(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, txn := range txns {
		if err := cw.Write(MarshalTxn(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// AppendTxns appends transactions to an existing transactions.csv writer (no header).
func AppendTxns(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, txn := range txns {
		if err := cw.Write(MarshalTxn(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}

// MarshalTxn converts a Transaction to a CSV row.
func MarshalTxn(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = txn.ID
	row[colDate] = txn.Date.Format(dateFormat)
	row[colDesc] = txn.Description
	row[colAmount] = txn.Amount.StringFixed(2)
	row[colAcctID] = strconv.Itoa(txn.AccountID)
	row[colCatID] = strconv.Itoa(txn.CategoryID)
	row[colBudgetType] = string(txn.BudgetType)

	if txn.ToAccountID != 0 {
		row[colToAcctID] = strconv.Itoa(txn.ToAccountID)
	}
	row[colLinkedID] = txn.LinkedID
	if txn.TaxDeductible {
		row[colTaxDeduct] = "true"
	}
	row[colNotes] = txn.Notes

	return row
}

// UnmarshalTxn converts a CSV row to a Transaction.
func UnmarshalTxn(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	acctID, err := strconv.Atoi(record[colAcctID])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing account_id %q: %w", record[colAcctID], err)
	}

	catID, err := strconv.Atoi(record[colCatID])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing category_id %q: %w", record[colCatID], err)
	}

	var toAcctID int
	if record[colToAcctID] != "" {
		toAcctID, err = strconv.Atoi(record[colToAcctID])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing to_account_id %q: %w", record[colToAcctID], err)
		}
	}

	var taxDeductible bool
	if record[colTaxDeduct] != "" {
		taxDeductible, err = strconv.ParseBool(record[colTaxDeduct])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing tax_deductible %q: %w", record[colTaxDeduct], err)
		}
	}

	return model.Transaction{
		ID:            record[colID],
		Date:          date,
		Description:   record[colDesc],
		Amount:        amount,
		AccountID:     acctID,
		CategoryID:    catID,
		BudgetType:    model.BudgetType(record[colBudgetType]),
		ToAccountID:   toAcctID,
		LinkedID:      record[colLinkedID],
		TaxDeductible: taxDeductible,
		Notes:         record[colNotes],
	}, nil
}
