package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/billfold-dev/billfold/internal/accounts"
	"github.com/billfold-dev/billfold/internal/categories"
	"github.com/billfold-dev/billfold/internal/config"
	"github.com/billfold-dev/billfold/internal/gitops"
	"github.com/billfold-dev/billfold/internal/model"
)

func newInitCommand() *cobra.Command {
	var name string
	var budgetType string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new billfold data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			bt := model.BudgetType(budgetType)
			if !bt.Valid() {
				return fmt.Errorf("invalid budget type %q (want household or business)", budgetType)
			}

			return runInit(absDir, name, bt)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "profile name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&budgetType, "budget-type", "household", "default budget type (household or business)")

	return cmd
}

func runInit(dir, name string, bt model.BudgetType) error {
	// Create directory structure.
	dirs := []string{
		"accounts",
		"categories",
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write billfold.yaml.
	cfg := config.Default(name, string(bt))
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Seed the account register for the default book.
	acctSvc := accounts.NewService(accounts.DefaultAccounts(bt))
	if err := acctSvc.Save(dir); err != nil {
		return fmt.Errorf("writing account register: %w", err)
	}

	// Seed categories for both books so cross-book transfers work from
	// day one.
	cats := append(categories.DefaultSet(model.BudgetHousehold), categories.DefaultSet(model.BudgetBusiness)...)
	catSvc := categories.NewService(cats)
	if err := catSvc.Save(dir); err != nil {
		return fmt.Errorf("writing categories: %w", err)
	}

	// Write .gitignore. Raw bank exports stay out of history.
	gitignore := "import/\n.billfold-cache/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	// Write logs/.gitkeep.
	if err := os.WriteFile(filepath.Join(dir, "logs", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	// Initialize git and create initial commit.
	if err := gitops.Init(dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}

	hash, err := gitops.CommitAll(dir, "init: Initialize "+name, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Printf("Initialized billfold directory at %s (%s)\n", dir, hash)
	return nil
}
