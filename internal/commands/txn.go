package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/billfold-dev/billfold/internal/ledger"
	"github.com/billfold-dev/billfold/internal/model"
)

const dateLayout = "2006-01-02"

func parseDateFlag(value, name string) (time.Time, error) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: want YYYY-MM-DD", name, value)
	}
	return d, nil
}

func newTxnCommand(opts *globalOptions) *cobra.Command {
	txnCmd := &cobra.Command{
		Use:   "txn",
		Short: "Transaction ledger operations",
	}
	txnCmd.AddCommand(newTxnAddCommand(opts))
	txnCmd.AddCommand(newTxnListCommand(opts))
	txnCmd.AddCommand(newTxnEditCommand(opts))
	txnCmd.AddCommand(newTxnRmCommand(opts))
	txnCmd.AddCommand(newTxnUnlinkCommand(opts))
	return txnCmd
}

func newTxnAddCommand(opts *globalOptions) *cobra.Command {
	var date, description, amount, account, category, notes string
	var taxDeductible bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.dataDir)
			if err != nil {
				return err
			}

			when := time.Now()
			if date != "" {
				if when, err = parseDateFlag(date, "date"); err != nil {
					return err
				}
			}

			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}

			acct, err := a.resolveAccount(account)
			if err != nil {
				return err
			}
			cat, err := a.resolveCategory(category, acct.BudgetType)
			if err != nil {
				return err
			}

			txnID, err := a.ledger.Add(ledger.AddParams{
				Date:          when,
				Description:   description,
				Amount:        amt,
				AccountID:     acct.ID,
				CategoryID:    cat.ID,
				BudgetType:    acct.BudgetType,
				TaxDeductible: taxDeductible,
				Notes:         notes,
			})
			if err != nil {
				return err
			}

			if err := a.finish("txn_add", fmt.Sprintf("Added %s %s", description, amt.StringFixed(2)), txnID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s %s (%s)\n", txnID, description, amt.StringFixed(2), acct.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "transaction date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&description, "desc", "", "description (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "signed amount, negative for spending (required)")
	cmd.Flags().StringVar(&account, "account", "", "account ID or name (required)")
	cmd.Flags().StringVar(&category, "category", "", "category ID or name (default Uncategorized)")
	cmd.Flags().BoolVar(&taxDeductible, "tax-deductible", false, "flag as tax deductible")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	_ = cmd.MarkFlagRequired("desc")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func newTxnListCommand(opts *globalOptions) *cobra.Command {
	var from, to, account, budgetType string
	var categoryID int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.dataDir)
			if err != nil {
				return err
			}

			var filter ledger.Filter
			if from != "" {
				if filter.From, err = parseDateFlag(from, "from"); err != nil {
					return err
				}
			}
			if to != "" {
				if filter.To, err = parseDateFlag(to, "to"); err != nil {
					return err
				}
			}
			if account != "" {
				acct, err := a.resolveAccount(account)
				if err != nil {
					return err
				}
				filter.AccountID = acct.ID
			}
			filter.CategoryID = categoryID
			filter.BudgetType = model.BudgetType(budgetType)

			txns, err := a.ledger.List(filter)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tAMOUNT\tACCOUNT\tCATEGORY\tLINK")
			for _, txn := range txns {
				acctName := fmt.Sprintf("%d", txn.AccountID)
				if acct, ok := a.accounts.Get(txn.AccountID); ok {
					acctName = acct.Name
				}
				catName := fmt.Sprintf("%d", txn.CategoryID)
				if cat, ok := a.categories.Get(txn.CategoryID); ok {
					catName = cat.Name
				}
				link := "-"
				if txn.IsLinked() {
					link = txn.LinkedID
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					txn.ID, txn.Date.Format(dateLayout), txn.Description,
					txn.Amount.StringFixed(2), acctName, catName, link)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&account, "account", "", "filter by account ID or name")
	cmd.Flags().IntVar(&categoryID, "category", 0, "filter by category ID")
	cmd.Flags().StringVar(&budgetType, "type", "", "filter by budget type")
	return cmd
}

func newTxnEditCommand(opts *globalOptions) *cobra.Command {
	var date, description, amount, category, notes string
	var taxDeductible, sever bool

	cmd := &cobra.Command{
		Use:   "edit <txn-id>",
		Short: "Edit a transaction",
		Long: "Edit a transaction. Edits to a linked transaction mirror to its " +
			"pair unless --sever is given, which applies the edit to this side " +
			"only and breaks the link.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.dataDir)
			if err != nil {
				return err
			}
			txnID := args[0]

			txn, err := a.ledger.Get(txnID)
			if err != nil {
				return err
			}

			var changes ledger.UpdateParams
			if cmd.Flags().Changed("date") {
				when, err := parseDateFlag(date, "date")
				if err != nil {
					return err
				}
				changes.Date = &when
			}
			if cmd.Flags().Changed("desc") {
				changes.Description = &description
			}
			if cmd.Flags().Changed("amount") {
				amt, err := decimal.NewFromString(amount)
				if err != nil {
					return fmt.Errorf("invalid --amount %q: %w", amount, err)
				}
				changes.Amount = &amt
			}
			if cmd.Flags().Changed("category") {
				cat, err := a.resolveCategory(category, txn.BudgetType)
				if err != nil {
					return err
				}
				changes.CategoryID = &cat.ID
			}
			if cmd.Flags().Changed("tax-deductible") {
				changes.TaxDeductible = &taxDeductible
			}
			if cmd.Flags().Changed("notes") {
				changes.Notes = &notes
			}

			if err := a.ledger.Update(txnID, changes, !sever); err != nil {
				return err
			}

			if err := a.finish("txn_edit", "Edited "+txnID, txnID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", txnID)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "transaction date (YYYY-MM-DD, same month only)")
	cmd.Flags().StringVar(&description, "desc", "", "description")
	cmd.Flags().StringVar(&amount, "amount", "", "signed amount")
	cmd.Flags().StringVar(&category, "category", "", "category ID or name")
	cmd.Flags().BoolVar(&taxDeductible, "tax-deductible", false, "flag as tax deductible")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().BoolVar(&sever, "sever", false, "edit this side only and break the link")
	return cmd
}

func newTxnRmCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <txn-id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.dataDir)
			if err != nil {
				return err
			}
			txnID := args[0]

			txn, err := a.ledger.Get(txnID)
			if err != nil {
				return err
			}

			deleteLinked := false
			if txn.IsLinked() {
				// Declining keeps the pair but breaks the link, so the
				// survivor no longer mirrors a deleted transaction.
				deleteLinked = opts.assumeYes || confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
					fmt.Sprintf("%s is linked to %s. Delete both legs?", txnID, txn.LinkedID))
			} else if !opts.assumeYes {
				if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete %s (%s)?", txnID, txn.Description)) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}

			if err := a.ledger.Delete(txnID, deleteLinked); err != nil {
				return err
			}

			details := "Deleted " + txnID
			if deleteLinked {
				details = fmt.Sprintf("Deleted %s and linked %s", txnID, txn.LinkedID)
			}
			if err := a.finish("txn_rm", details, txnID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), details)
			return nil
		},
	}
	return cmd
}

func newTxnUnlinkCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unlink <txn-id>",
		Short: "Break a transfer link without editing either transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.dataDir)
			if err != nil {
				return err
			}
			txnID := args[0]

			if err := a.ledger.Unlink(txnID); err != nil {
				return err
			}
			if err := a.finish("txn_unlink", "Unlinked "+txnID, txnID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unlinked %s\n", txnID)
			return nil
		},
	}
	return cmd
}
