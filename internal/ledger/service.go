package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billfold-dev/billfold/internal/id"
	"github.com/billfold-dev/billfold/internal/model"
)

const monthFile = "transactions.csv"

// LinkMode selects how a transfer relates to its destination account.
type LinkMode string

const (
	// LinkPair creates the destination leg automatically with negated amount.
	LinkPair LinkMode = "pair"
	// LinkExisting links to an unlinked transaction already in the
	// destination account that matches the transfer amount.
	LinkExisting LinkMode = "existing"
	// LinkNone records only the source leg.
	LinkNone LinkMode = "none"
)

// Service provides business logic for the transaction ledger.
type Service struct {
	dataDir    string
	accounts   AccountStore
	categories CategoryChecker
}

// NewService creates a ledger Service.
func NewService(dataDir string, accounts AccountStore, categories CategoryChecker) *Service {
	return &Service{dataDir: dataDir, accounts: accounts, categories: categories}
}

// AddParams holds parameters for recording a transaction.
type AddParams struct {
	Date          time.Time
	Description   string
	Amount        decimal.Decimal // signed: positive inflow, negative outflow
	AccountID     int
	CategoryID    int
	BudgetType    model.BudgetType
	TaxDeductible bool
	Notes         string
}

// Add validates and appends a transaction to the month's file, adjusting the
// account's stored balance. Returns the transaction ID.
func (s *Service) Add(params AddParams) (string, error) {
	year := params.Date.Year()
	month := int(params.Date.Month())

	seq, err := s.NextSeq(year, month)
	if err != nil {
		return "", err
	}

	txn := model.Transaction{
		ID:            id.FormatTxnID(year, month, seq),
		Date:          params.Date,
		Description:   params.Description,
		Amount:        params.Amount,
		AccountID:     params.AccountID,
		CategoryID:    params.CategoryID,
		BudgetType:    params.BudgetType,
		TaxDeductible: params.TaxDeductible,
		Notes:         params.Notes,
	}

	existing, err := s.ReadMonth(year, month)
	if err != nil {
		return "", err
	}

	if err := s.validateMonth(append(existing, txn), year, month); err != nil {
		return "", err
	}

	if err := s.appendMonth(year, month, []model.Transaction{txn}); err != nil {
		return "", err
	}

	if err := s.accounts.AdjustBalance(txn.AccountID, txn.Amount); err != nil {
		return "", fmt.Errorf("adjusting balance: %w", err)
	}
	return txn.ID, nil
}

// TransferParams holds parameters for recording a transfer between accounts.
// Amount is the positive magnitude moved from source to destination.
type TransferParams struct {
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
	FromAccountID int
	ToAccountID   int
	CategoryID    int
	Notes         string
}

// AddTransfer records a transfer's source leg and, depending on mode, pairs
// it with a destination leg. Returns the IDs of all transactions touched.
func (s *Service) AddTransfer(params TransferParams, mode LinkMode) ([]string, error) {
	if !params.Amount.IsPositive() {
		return nil, fmt.Errorf("transfer amount must be positive, got %s", params.Amount)
	}

	fromAcct, ok := s.accounts.Get(params.FromAccountID)
	if !ok {
		return nil, fmt.Errorf("unknown source account %d", params.FromAccountID)
	}
	toAcct, ok := s.accounts.Get(params.ToAccountID)
	if !ok {
		return nil, fmt.Errorf("unknown destination account %d", params.ToAccountID)
	}

	year := params.Date.Year()
	month := int(params.Date.Month())

	existing, err := s.ReadMonth(year, month)
	if err != nil {
		return nil, err
	}

	seq, err := s.NextSeq(year, month)
	if err != nil {
		return nil, err
	}

	source := model.Transaction{
		ID:          id.FormatTxnID(year, month, seq),
		Date:        params.Date,
		Description: params.Description,
		Amount:      params.Amount.Neg(),
		AccountID:   params.FromAccountID,
		CategoryID:  params.CategoryID,
		BudgetType:  fromAcct.BudgetType,
		ToAccountID: params.ToAccountID,
		Notes:       params.Notes,
	}

	switch mode {
	case LinkNone:
		if err := s.validateMonth(append(existing, source), year, month); err != nil {
			return nil, err
		}
		if err := s.appendMonth(year, month, []model.Transaction{source}); err != nil {
			return nil, err
		}
		if err := s.accounts.AdjustBalance(source.AccountID, source.Amount); err != nil {
			return nil, fmt.Errorf("adjusting balance: %w", err)
		}
		return []string{source.ID}, nil

	case LinkPair:
		dest := model.Transaction{
			ID:          id.FormatTxnID(year, month, seq+1),
			Date:        params.Date,
			Description: params.Description,
			Amount:      params.Amount,
			AccountID:   params.ToAccountID,
			CategoryID:  params.CategoryID,
			BudgetType:  toAcct.BudgetType,
			LinkedID:    source.ID,
			Notes:       params.Notes,
		}
		source.LinkedID = dest.ID

		if err := s.validateMonth(append(existing, source, dest), year, month); err != nil {
			return nil, err
		}
		if err := s.appendMonth(year, month, []model.Transaction{source, dest}); err != nil {
			return nil, err
		}
		if err := s.accounts.AdjustBalance(source.AccountID, source.Amount); err != nil {
			return nil, fmt.Errorf("adjusting balance: %w", err)
		}
		if err := s.accounts.AdjustBalance(dest.AccountID, dest.Amount); err != nil {
			return nil, fmt.Errorf("adjusting balance: %w", err)
		}
		return []string{source.ID, dest.ID}, nil

	case LinkExisting:
		candIdx := -1
		for i, t := range existing {
			if t.AccountID == params.ToAccountID && !t.IsLinked() && t.Amount.Equal(params.Amount) {
				candIdx = i
				break
			}
		}
		if candIdx == -1 {
			return nil, fmt.Errorf("no unlinked transaction of %s found in account %d for %04d-%02d",
				params.Amount.StringFixed(2), params.ToAccountID, year, month)
		}

		source.LinkedID = existing[candIdx].ID
		all := make([]model.Transaction, len(existing), len(existing)+1)
		copy(all, existing)
		all[candIdx].LinkedID = source.ID
		all = append(all, source)

		if err := s.validateMonth(all, year, month); err != nil {
			return nil, err
		}
		if err := s.writeMonth(year, month, all); err != nil {
			return nil, err
		}
		// The destination leg already exists, so only the source side
		// moves the stored balance.
		if err := s.accounts.AdjustBalance(source.AccountID, source.Amount); err != nil {
			return nil, fmt.Errorf("adjusting balance: %w", err)
		}
		return []string{source.ID, existing[candIdx].ID}, nil

	default:
		return nil, fmt.Errorf("unknown link mode %q", mode)
	}
}

// UpdateParams holds optional field changes; nil fields are left unchanged.
type UpdateParams struct {
	Date          *time.Time
	Description   *string
	Amount        *decimal.Decimal
	CategoryID    *int
	TaxDeductible *bool
	Notes         *string
}

// Update edits a transaction in place. For a linked transaction, propagate
// mirrors date, description, negated amount, notes, and the tax flag to the
// pair; propagate=false applies the edit unilaterally and severs the link.
func (s *Service) Update(txnID string, changes UpdateParams, propagate bool) error {
	year, month, _, err := id.ParseTxnID(txnID)
	if err != nil {
		return err
	}

	txns, err := s.ReadMonth(year, month)
	if err != nil {
		return err
	}
	idx := indexOf(txns, txnID)
	if idx == -1 {
		return fmt.Errorf("transaction %s not found", txnID)
	}

	old := txns[idx]
	updated := old

	if changes.Date != nil {
		if changes.Date.Year() != year || int(changes.Date.Month()) != month {
			return fmt.Errorf("cannot move transaction %s to a different month; delete and re-add instead", txnID)
		}
		updated.Date = *changes.Date
	}
	if changes.Description != nil {
		updated.Description = *changes.Description
	}
	if changes.Amount != nil {
		updated.Amount = *changes.Amount
	}
	if changes.CategoryID != nil {
		updated.CategoryID = *changes.CategoryID
	}
	if changes.TaxDeductible != nil {
		updated.TaxDeductible = *changes.TaxDeductible
	}
	if changes.Notes != nil {
		updated.Notes = *changes.Notes
	}

	var pairDelta decimal.Decimal
	var pairAcctID int

	if old.IsLinked() {
		pairIdx, err := s.pairIndex(txns, old, year, month)
		if err != nil {
			return err
		}
		if propagate {
			oldPair := txns[pairIdx]
			pair := oldPair
			pair.Date = updated.Date
			pair.Description = updated.Description
			pair.Amount = updated.Amount.Neg()
			pair.TaxDeductible = updated.TaxDeductible
			pair.Notes = updated.Notes
			txns[pairIdx] = pair

			pairDelta = pair.Amount.Sub(oldPair.Amount)
			pairAcctID = pair.AccountID
		} else {
			updated.LinkedID = ""
			txns[pairIdx].LinkedID = ""
		}
	}

	txns[idx] = updated

	if err := s.validateMonth(txns, year, month); err != nil {
		return err
	}
	if err := s.writeMonth(year, month, txns); err != nil {
		return err
	}

	delta := updated.Amount.Sub(old.Amount)
	if !delta.IsZero() {
		if err := s.accounts.AdjustBalance(updated.AccountID, delta); err != nil {
			return fmt.Errorf("adjusting balance: %w", err)
		}
	}
	if !pairDelta.IsZero() {
		if err := s.accounts.AdjustBalance(pairAcctID, pairDelta); err != nil {
			return fmt.Errorf("adjusting balance: %w", err)
		}
	}
	return nil
}

// Delete removes a transaction. For a linked transaction, deleteLinked=true
// removes both legs; deleteLinked=false removes one leg and clears the
// survivor's link.
func (s *Service) Delete(txnID string, deleteLinked bool) error {
	year, month, _, err := id.ParseTxnID(txnID)
	if err != nil {
		return err
	}

	txns, err := s.ReadMonth(year, month)
	if err != nil {
		return err
	}
	idx := indexOf(txns, txnID)
	if idx == -1 {
		return fmt.Errorf("transaction %s not found", txnID)
	}

	txn := txns[idx]
	remove := map[string]bool{txn.ID: true}

	if txn.IsLinked() {
		pairIdx, err := s.pairIndex(txns, txn, year, month)
		if err != nil {
			return err
		}
		if deleteLinked {
			remove[txns[pairIdx].ID] = true
		} else {
			txns[pairIdx].LinkedID = ""
		}
	}

	var kept []model.Transaction
	var removed []model.Transaction
	for _, t := range txns {
		if remove[t.ID] {
			removed = append(removed, t)
			continue
		}
		kept = append(kept, t)
	}

	if err := s.writeMonth(year, month, kept); err != nil {
		return err
	}

	for _, t := range removed {
		if err := s.accounts.AdjustBalance(t.AccountID, t.Amount.Neg()); err != nil {
			return fmt.Errorf("adjusting balance: %w", err)
		}
	}
	return nil
}

// Unlink severs a mutual link without touching either transaction's fields.
func (s *Service) Unlink(txnID string) error {
	year, month, _, err := id.ParseTxnID(txnID)
	if err != nil {
		return err
	}

	txns, err := s.ReadMonth(year, month)
	if err != nil {
		return err
	}
	idx := indexOf(txns, txnID)
	if idx == -1 {
		return fmt.Errorf("transaction %s not found", txnID)
	}
	if !txns[idx].IsLinked() {
		return fmt.Errorf("transaction %s is not linked", txnID)
	}

	pairIdx, err := s.pairIndex(txns, txns[idx], year, month)
	if err != nil {
		return err
	}

	txns[idx].LinkedID = ""
	txns[pairIdx].LinkedID = ""

	return s.writeMonth(year, month, txns)
}

// Get returns a transaction by ID.
func (s *Service) Get(txnID string) (model.Transaction, error) {
	year, month, _, err := id.ParseTxnID(txnID)
	if err != nil {
		return model.Transaction{}, err
	}

	txns, err := s.ReadMonth(year, month)
	if err != nil {
		return model.Transaction{}, err
	}
	if idx := indexOf(txns, txnID); idx != -1 {
		return txns[idx], nil
	}
	return model.Transaction{}, fmt.Errorf("transaction %s not found", txnID)
}

// Filter selects transactions in List. Zero values mean "any".
type Filter struct {
	From       time.Time // inclusive
	To         time.Time // inclusive
	AccountID  int
	CategoryID int
	BudgetType model.BudgetType
}

func (f Filter) matches(txn model.Transaction) bool {
	if !f.From.IsZero() && txn.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && txn.Date.After(f.To) {
		return false
	}
	if f.AccountID != 0 && txn.AccountID != f.AccountID {
		return false
	}
	if f.CategoryID != 0 && txn.CategoryID != f.CategoryID {
		return false
	}
	if f.BudgetType != "" && txn.BudgetType != f.BudgetType {
		return false
	}
	return true
}

// List returns matching transactions across all months, sorted by date then ID.
func (s *Service) List(f Filter) ([]model.Transaction, error) {
	pattern := filepath.Join(s.dataDir, "[0-9][0-9][0-9][0-9]", "[0-9][0-9]", monthFile)
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("scanning ledger: %w", err)
	}

	var result []model.Transaction
	for _, path := range paths {
		txns, err := readFile(path)
		if err != nil {
			return nil, err
		}
		for _, txn := range txns {
			if f.matches(txn) {
				result = append(result, txn)
			}
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Descriptions returns the distinct transaction descriptions across the
// ledger, used for vendor-merge suggestions during import.
func (s *Service) Descriptions() ([]string, error) {
	txns, err := s.List(Filter{})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var descs []string
	for _, txn := range txns {
		key := strings.ToLower(txn.Description)
		if txn.Description == "" || seen[key] {
			continue
		}
		seen[key] = true
		descs = append(descs, txn.Description)
	}
	return descs, nil
}

// ReadMonth reads all transactions for a given year/month.
func (s *Service) ReadMonth(year, month int) ([]model.Transaction, error) {
	return readFileAllowMissing(s.monthPath(year, month))
}

// ReadYear reads all transactions for a year in month order.
func (s *Service) ReadYear(year int) ([]model.Transaction, error) {
	var result []model.Transaction
	for month := 1; month <= 12; month++ {
		txns, err := s.ReadMonth(year, month)
		if err != nil {
			return nil, err
		}
		result = append(result, txns...)
	}
	return result, nil
}

// NextSeq returns the next available sequence number for a month. Sequence
// numbers are never reused, so deletions may leave gaps.
func (s *Service) NextSeq(year, month int) (int, error) {
	txns, err := s.ReadMonth(year, month)
	if err != nil {
		return 0, err
	}

	maxSeq := 0
	for _, txn := range txns {
		_, _, seq, err := id.ParseTxnID(txn.ID)
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1, nil
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), monthFile)
}

func (s *Service) validateMonth(txns []model.Transaction, year, month int) error {
	verrs := ValidateTxns(txns, s.accounts, s.categories, year, month)
	if len(verrs) == 0 {
		return nil
	}
	msgs := make([]string, len(verrs))
	for i, ve := range verrs {
		msgs[i] = ve.Error()
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}

// pairIndex locates the counterpart of a linked transaction within the same
// month file. Pairs always live in the same month because linking only ever
// happens within one.
func (s *Service) pairIndex(txns []model.Transaction, txn model.Transaction, year, month int) (int, error) {
	linkYear, linkMonth, _, err := id.ParseTxnID(txn.LinkedID)
	if err != nil {
		return 0, fmt.Errorf("transaction %s has invalid link %q: %w", txn.ID, txn.LinkedID, err)
	}
	if linkYear != year || linkMonth != month {
		return 0, fmt.Errorf("transaction %s links outside its month to %s", txn.ID, txn.LinkedID)
	}
	idx := indexOf(txns, txn.LinkedID)
	if idx == -1 {
		return 0, fmt.Errorf("linked transaction %s not found", txn.LinkedID)
	}
	return idx, nil
}

func (s *Service) appendMonth(year, month int, txns []model.Transaction) error {
	path := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	if err := AppendTxns(f, txns); err != nil {
		return fmt.Errorf("appending transactions: %w", err)
	}
	return nil
}

func (s *Service) writeMonth(year, month int, txns []model.Transaction) error {
	path := s.monthPath(year, month)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rewriting ledger: %w", err)
	}
	defer f.Close()

	if err := WriteTxns(f, txns); err != nil {
		return fmt.Errorf("writing transactions: %w", err)
	}
	return nil
}

func indexOf(txns []model.Transaction, txnID string) int {
	for i, t := range txns {
		if t.ID == txnID {
			return i
		}
	}
	return -1
}

func readFile(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	txns, err := ReadTxns(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}
	return txns, nil
}

func readFileAllowMissing(path string) ([]model.Transaction, error) {
	txns, err := readFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return txns, err
}
