package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/billfold-dev/billfold/internal/duedate"
	"github.com/billfold-dev/billfold/internal/model"
)

func newAccountCommand(opts *globalOptions) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account register operations",
	}
	accountCmd.AddCommand(newAccountAddCommand(opts))
	accountCmd.AddCommand(newAccountListCommand(opts))
	accountCmd.AddCommand(newAccountSetCommand(opts))
	accountCmd.AddCommand(newAccountPayCommand(opts))
	accountCmd.AddCommand(newAccountUnpayCommand(opts))
	return accountCmd
}

// accountFlags holds the string forms of account fields shared by add and set.
type accountFlags struct {
	name           string
	budgetType     string
	balance        string
	creditLimit    string
	interestRate   string
	dueDay         int
	minimumPayment string
	websiteURL     string
	notes          string
}

func (f *accountFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "account name")
	cmd.Flags().StringVar(&f.budgetType, "type", "", "budget type (household or business)")
	cmd.Flags().StringVar(&f.balance, "balance", "", "current balance")
	cmd.Flags().StringVar(&f.creditLimit, "credit-limit", "", "credit limit")
	cmd.Flags().StringVar(&f.interestRate, "interest-rate", "", "annual interest rate percentage")
	cmd.Flags().IntVar(&f.dueDay, "due-day", 0, "payment due day of month (1-31)")
	cmd.Flags().StringVar(&f.minimumPayment, "minimum-payment", "", "minimum monthly payment")
	cmd.Flags().StringVar(&f.websiteURL, "url", "", "account website")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
}

func parseDecimalFlag(value, name string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", name, value, err)
	}
	return d, nil
}

func newAccountAddCommand(opts *globalOptions) *cobra.Command {
	flags := &accountFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.dataDir)
			if err != nil {
				return err
			}

			acct := model.Account{
				Name:          flags.name,
				PaymentDueDay: flags.dueDay,
				WebsiteURL:    flags.websiteURL,
				Notes:         flags.notes,
			}

			acct.BudgetType = a.defaultBudgetType()
			if flags.budgetType != "" {
				acct.BudgetType = model.BudgetType(flags.budgetType)
			}

			if acct.Balance, err = parseDecimalFlag(flags.balance, "balance"); err != nil {
				return err
			}
			if acct.CreditLimit, err = parseDecimalFlag(flags.creditLimit, "credit-limit"); err != nil {
				return err
			}
			if acct.InterestRate, err = parseDecimalFlag(flags.interestRate, "interest-rate"); err != nil {
				return err
			}
			if acct.MinimumPayment, err = parseDecimalFlag(flags.minimumPayment, "minimum-payment"); err != nil {
				return err
			}
			if flags.dueDay != 0 && (flags.dueDay < 1 || flags.dueDay > 31) {
				return fmt.Errorf("invalid --due-day %d: must be 1-31", flags.dueDay)
			}

			acctID, err := a.accounts.Add(acct)
			if err != nil {
				return err
			}

			if err := a.finish("account_add", fmt.Sprintf("Added account %d %s", acctID, acct.Name), ""); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added account %d: %s\n", acctID, acct.Name)
			return nil
		},
	}

	flags.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newAccountListCommand(opts *globalOptions) *cobra.Command {
	var budgetType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.dataDir)
			if err != nil {
				return err
			}

			accts := a.accounts.All()
			if budgetType != "" {
				accts = a.accounts.ByBudgetType(model.BudgetType(budgetType))
			}

			now := time.Now()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tBALANCE\tDUE")
			for _, acct := range accts {
				due := "-"
				switch state, days := duedate.Status(acct, now); state {
				case duedate.StatePaid:
					due = "paid"
				case duedate.StateDue:
					due = fmt.Sprintf("in %dd", days)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					acct.ID, acct.Name, acct.BudgetType, acct.Balance.StringFixed(2), due)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&budgetType, "type", "", "filter by budget type")
	return cmd
}

func newAccountSetCommand(opts *globalOptions) *cobra.Command {
	flags := &accountFlags{}

	cmd := &cobra.Command{
		Use:   "set <account>",
		Short: "Update account fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.dataDir)
			if err != nil {
				return err
			}

			acct, err := a.resolveAccount(args[0])
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("name") {
				acct.Name = flags.name
			}
			if cmd.Flags().Changed("type") {
				bt := model.BudgetType(flags.budgetType)
				if !bt.Valid() {
					return fmt.Errorf("invalid --type %q", flags.budgetType)
				}
				acct.BudgetType = bt
			}
			if cmd.Flags().Changed("balance") {
				if acct.Balance, err = parseDecimalFlag(flags.balance, "balance"); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("credit-limit") {
				if acct.CreditLimit, err = parseDecimalFlag(flags.creditLimit, "credit-limit"); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("interest-rate") {
				if acct.InterestRate, err = parseDecimalFlag(flags.interestRate, "interest-rate"); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("due-day") {
				if flags.dueDay != 0 && (flags.dueDay < 1 || flags.dueDay > 31) {
					return fmt.Errorf("invalid --due-day %d: must be 1-31", flags.dueDay)
				}
				acct.PaymentDueDay = flags.dueDay
			}
			if cmd.Flags().Changed("minimum-payment") {
				if acct.MinimumPayment, err = parseDecimalFlag(flags.minimumPayment, "minimum-payment"); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("url") {
				acct.WebsiteURL = flags.websiteURL
			}
			if cmd.Flags().Changed("notes") {
				acct.Notes = flags.notes
			}

			if err := a.accounts.Update(acct); err != nil {
				return err
			}
			if err := a.finish("account_set", fmt.Sprintf("Updated account %d %s", acct.ID, acct.Name), ""); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated account %d: %s\n", acct.ID, acct.Name)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newAccountPayCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay <account>",
		Short: "Mark an account's bill paid for the current month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.dataDir)
			if err != nil {
				return err
			}

			acct, err := a.resolveAccount(args[0])
			if err != nil {
				return err
			}
			if !acct.HasDueDate() {
				return fmt.Errorf("account %s has no payment due day", acct.Name)
			}

			acct.MarkPaid(time.Now())
			if err := a.accounts.Update(acct); err != nil {
				return err
			}
			if err := a.finish("account_pay", fmt.Sprintf("Marked %s paid for %s", acct.Name, acct.LastPaymentMonth), ""); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s paid for %s\n", acct.Name, acct.LastPaymentMonth)
			return nil
		},
	}
	return cmd
}

func newAccountUnpayCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unpay <account>",
		Short: "Clear an account's paid marker for the current month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.dataDir)
			if err != nil {
				return err
			}

			acct, err := a.resolveAccount(args[0])
			if err != nil {
				return err
			}

			acct.MarkUnpaid()
			if err := a.accounts.Update(acct); err != nil {
				return err
			}
			if err := a.finish("account_unpay", fmt.Sprintf("Cleared paid marker for %s", acct.Name), ""); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared paid marker for %s\n", acct.Name)
			return nil
		},
	}
	return cmd
}
