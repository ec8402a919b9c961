package commands

import (
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/billfold-dev/billfold/internal/ledger"
	"github.com/billfold-dev/billfold/internal/model"
)

func newReportCommand(opts *globalOptions) *cobra.Command {
	var month, from, to, budgetType string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Spending and income by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.dataDir)
			if err != nil {
				return err
			}

			var filter ledger.Filter
			switch {
			case month != "":
				start, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("invalid --month %q: want YYYY-MM", month)
				}
				filter.From = start
				filter.To = start.AddDate(0, 1, -1)
			default:
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
			}

			bt := a.defaultBudgetType()
			if budgetType != "" {
				bt = model.BudgetType(budgetType)
				if !bt.Valid() {
					return fmt.Errorf("invalid --type %q", budgetType)
				}
			}
			filter.BudgetType = bt

			txns, err := a.ledger.List(filter)
			if err != nil {
				return err
			}

			return renderReport(cmd, a, txns, bt)
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "report month (YYYY-MM)")
	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&budgetType, "type", "", "budget type (default from config)")
	return cmd
}

type categoryTotal struct {
	group string
	name  string
	total decimal.Decimal
	count int
}

func renderReport(cmd *cobra.Command, a *app, txns []model.Transaction, bt model.BudgetType) error {
	totals := make(map[int]*categoryTotal)
	var income, expense decimal.Decimal

	for _, txn := range txns {
		ct, ok := totals[txn.CategoryID]
		if !ok {
			ct = &categoryTotal{name: fmt.Sprintf("category %d", txn.CategoryID)}
			if cat, found := a.categories.Get(txn.CategoryID); found {
				ct.name = cat.Name
				ct.group = cat.Group
			}
			totals[txn.CategoryID] = ct
		}
		ct.total = ct.total.Add(txn.Amount)
		ct.count++

		if txn.Amount.IsPositive() {
			income = income.Add(txn.Amount)
		} else {
			expense = expense.Add(txn.Amount)
		}
	}

	rows := make([]*categoryTotal, 0, len(totals))
	for _, ct := range totals {
		rows = append(rows, ct)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].group != rows[j].group {
			return rows[i].group < rows[j].group
		}
		return rows[i].name < rows[j].name
	})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Report for %s book (%d transactions)\n\n", bt, len(txns))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tCATEGORY\tCOUNT\tTOTAL")
	for _, ct := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", ct.group, ct.name, ct.count, ct.total.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nIncome:   %s\n", income.StringFixed(2))
	fmt.Fprintf(out, "Expenses: %s\n", expense.StringFixed(2))
	fmt.Fprintf(out, "Net:      %s\n", income.Add(expense).StringFixed(2))
	return nil
}
