package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"

	"github.com/billfold-dev/billfold/internal/accounts"
	"github.com/billfold-dev/billfold/internal/auditlog"
	"github.com/billfold-dev/billfold/internal/categories"
	"github.com/billfold-dev/billfold/internal/config"
	"github.com/billfold-dev/billfold/internal/gitops"
	"github.com/billfold-dev/billfold/internal/ledger"
	"github.com/billfold-dev/billfold/internal/model"
)

// app bundles the loaded state every data-touching command needs.
type app struct {
	dataDir    string
	cfg        *config.Config
	accounts   *accounts.Service
	categories *categories.Service
	ledger     *ledger.Service
}

// loadApp reads the config, account register, and categories from the data
// directory. The ledger itself is read lazily per month.
func loadApp(dataDir string) (*app, error) {
	absDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(absDir, config.FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s is not a billfold directory (run `billfold init` first)", absDir)
		}
		return nil, err
	}

	accts, err := accounts.Load(absDir)
	if err != nil {
		return nil, err
	}
	cats, err := categories.Load(absDir)
	if err != nil {
		return nil, err
	}

	return &app{
		dataDir:    absDir,
		cfg:        cfg,
		accounts:   accts,
		categories: cats,
		ledger:     ledger.NewService(absDir, accts, cats),
	}, nil
}

// finish persists the account register, auto-commits if configured, and
// appends an audit entry. Called after every successful mutation.
func (a *app) finish(action, details, txnID string) error {
	if err := a.accounts.Save(a.dataDir); err != nil {
		return err
	}

	entry := auditlog.NewEntry(action, details, txnID)

	if a.cfg.Git.AutoCommit && gitops.IsRepo(a.dataDir) {
		dirty, err := gitops.HasChanges(a.dataDir)
		if err != nil {
			return err
		}
		if dirty {
			hash, err := gitops.CommitAll(a.dataDir, action+": "+details, a.cfg.Git.AuthorName, a.cfg.Git.AuthorEmail)
			if err != nil {
				return fmt.Errorf("auto-commit: %w", err)
			}
			entry.CommitHash = hash
		}
	}

	return auditlog.Append(a.dataDir, entry)
}

// defaultBudgetType returns the configured default book, falling back to
// household for configs written by hand without one.
func (a *app) defaultBudgetType() model.BudgetType {
	bt := model.BudgetType(a.cfg.Profile.DefaultBudgetType)
	if !bt.Valid() {
		return model.BudgetHousehold
	}
	return bt
}

// resolveAccount accepts either an account ID or a case-insensitive name.
func (a *app) resolveAccount(ref string) (model.Account, error) {
	if acctID, err := strconv.Atoi(ref); err == nil {
		if acct, ok := a.accounts.Get(acctID); ok {
			return acct, nil
		}
		return model.Account{}, fmt.Errorf("unknown account %d", acctID)
	}
	if acct, ok := a.accounts.ByName(ref); ok {
		return acct, nil
	}
	return model.Account{}, fmt.Errorf("unknown account %q", ref)
}

// resolveCategory accepts a category ID or name. An empty ref falls back to
// the book's Uncategorized category.
func (a *app) resolveCategory(ref string, bt model.BudgetType) (model.Category, error) {
	if ref == "" {
		if cat, ok := a.categories.Uncategorized(bt); ok {
			return cat, nil
		}
		return model.Category{}, fmt.Errorf("no %s category for budget type %s", categories.UncategorizedName, bt)
	}
	if catID, err := strconv.Atoi(ref); err == nil {
		if cat, ok := a.categories.Get(catID); ok {
			return cat, nil
		}
		return model.Category{}, fmt.Errorf("unknown category %d", catID)
	}
	if cat, ok := a.categories.ByName(ref, bt); ok {
		return cat, nil
	}
	return model.Category{}, fmt.Errorf("unknown category %q in %s book", ref, bt)
}
