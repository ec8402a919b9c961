package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/billfold-dev/billfold/internal/ledger"
)

func newTransferCommand(opts *globalOptions) *cobra.Command {
	var date, description, amount, from, to, category, notes, mode string

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Record a transfer between accounts",
		Long: "Record a transfer between accounts. Mode \"pair\" writes both " +
			"legs linked together, \"existing\" links the new source leg to a " +
			"matching unlinked transaction already in the destination account, " +
			"and \"none\" records only the source leg.",
		Args: cobra.NoArgs,
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

			fromAcct, err := a.resolveAccount(from)
			if err != nil {
				return err
			}
			toAcct, err := a.resolveAccount(to)
			if err != nil {
				return err
			}

			// The category lives in the source account's book.
			cat, err := a.resolveCategory(category, fromAcct.BudgetType)
			if err != nil {
				return err
			}

			if description == "" {
				description = fmt.Sprintf("Transfer %s to %s", fromAcct.Name, toAcct.Name)
			}

			txnIDs, err := a.ledger.AddTransfer(ledger.TransferParams{
				Date:          when,
				Description:   description,
				Amount:        amt,
				FromAccountID: fromAcct.ID,
				ToAccountID:   toAcct.ID,
				CategoryID:    cat.ID,
				Notes:         notes,
			}, ledger.LinkMode(mode))
			if err != nil {
				return err
			}

			details := fmt.Sprintf("Transfer %s from %s to %s (%s)",
				amt.StringFixed(2), fromAcct.Name, toAcct.Name, strings.Join(txnIDs, ", "))
			if err := a.finish("transfer", details, txnIDs[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), details)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "transfer date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&description, "desc", "", "description (default generated)")
	cmd.Flags().StringVar(&amount, "amount", "", "positive amount to move (required)")
	cmd.Flags().StringVar(&from, "from", "", "source account ID or name (required)")
	cmd.Flags().StringVar(&to, "to", "", "destination account ID or name (required)")
	cmd.Flags().StringVar(&category, "category", "Transfer", "category ID or name")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&mode, "mode", string(ledger.LinkPair), "link mode: pair, existing, or none")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
