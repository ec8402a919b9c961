package accounts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/billfold-dev/billfold/internal/model"
)

// Service provides in-memory lookup and mutation over the account register.
type Service struct {
	accounts []model.Account
	byID     map[int]*model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accts []model.Account) *Service {
	s := &Service{accounts: accts}
	s.reindex()
	return s
}

func (s *Service) reindex() {
	s.byID = make(map[int]*model.Account, len(s.accounts))
	for i := range s.accounts {
		s.byID[s.accounts[i].ID] = &s.accounts[i]
	}
}

// Load reads accounts.csv from a data dir and returns a Service.
func Load(dataDir string) (*Service, error) {
	path := filepath.Join(dataDir, "accounts", "accounts.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening account register: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading account register: %w", err)
	}
	return NewService(accts), nil
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(acctID int) (model.Account, bool) {
	a, ok := s.byID[acctID]
	if !ok {
		return model.Account{}, false
	}
	return *a, true
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(acctID int) bool {
	_, ok := s.byID[acctID]
	return ok
}

// ByBudgetType returns all accounts in the given book.
func (s *Service) ByBudgetType(bt model.BudgetType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.BudgetType == bt {
			result = append(result, a)
		}
	}
	return result
}

// ByName returns the first account whose name matches case-insensitively.
func (s *Service) ByName(name string) (model.Account, bool) {
	for _, a := range s.accounts {
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return model.Account{}, false
}

// NextID returns the next unused account ID.
func (s *Service) NextID() int {
	maxID := 0
	for _, a := range s.accounts {
		if a.ID > maxID {
			maxID = a.ID
		}
	}
	return maxID + 1
}

// Add appends a new account, assigning the next ID. Returns the assigned ID.
func (s *Service) Add(acct model.Account) (int, error) {
	if !acct.BudgetType.Valid() {
		return 0, fmt.Errorf("invalid budget type %q", acct.BudgetType)
	}
	if acct.Name == "" {
		return 0, fmt.Errorf("account name is required")
	}
	acct.ID = s.NextID()
	s.accounts = append(s.accounts, acct)
	s.reindex()
	return acct.ID, nil
}

// Update replaces an existing account in place.
func (s *Service) Update(acct model.Account) error {
	existing, ok := s.byID[acct.ID]
	if !ok {
		return fmt.Errorf("unknown account %d", acct.ID)
	}
	*existing = acct
	return nil
}

// AdjustBalance applies a signed delta to an account's stored balance.
func (s *Service) AdjustBalance(acctID int, delta decimal.Decimal) error {
	a, ok := s.byID[acctID]
	if !ok {
		return fmt.Errorf("unknown account %d", acctID)
	}
	a.Balance = a.Balance.Add(delta)
	return nil
}

// Save writes the register to <dataDir>/accounts/accounts.csv.
func (s *Service) Save(dataDir string) error {
	dir := filepath.Join(dataDir, "accounts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	path := filepath.Join(dir, "accounts.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating account register file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing account register: %w", err)
	}
	return nil
}
