package commands

import (
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/billfold-dev/billfold/internal/config"
	"github.com/billfold-dev/billfold/internal/duedate"
	"github.com/billfold-dev/billfold/internal/logger"
	"github.com/billfold-dev/billfold/internal/reminders"
)

func newBillsCommand(opts *globalOptions) *cobra.Command {
	var watch bool
	var windowDays int

	cmd := &cobra.Command{
		Use:   "bills",
		Short: "Show bills due soon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts.dataDir)
			if err != nil {
				return err
			}

			window := a.cfg.Reminders.WindowDays
			if cmd.Flags().Changed("window") {
				window = windowDays
			}

			if watch {
				if !a.cfg.Reminders.Enabled {
					return fmt.Errorf("reminders are disabled in %s (set reminders.enabled: true)", config.FileName)
				}
				return runBillsWatch(cmd, a, opts.verbose, window)
			}
			return runBillsList(cmd, a, window)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and re-check on the configured schedule")
	cmd.Flags().IntVar(&windowDays, "window", 7, "days ahead to look for due bills")
	return cmd
}

func runBillsList(cmd *cobra.Command, a *app, windowDays int) error {
	bills := duedate.Upcoming(a.accounts.All(), time.Now(), windowDays)
	if len(bills) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No bills due in the next %d days\n", windowDays)
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DUE\tACCOUNT\tMINIMUM\tSTATUS")
	for _, b := range bills {
		status := fmt.Sprintf("due in %dd", b.DaysUntil)
		switch {
		case b.Paid:
			status = "paid"
		case b.DaysUntil == 0:
			status = "due today"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			b.DueDate.Format("2006-01-02"), b.AccountName, b.MinimumPayment.StringFixed(2), status)
	}
	return tw.Flush()
}

func runBillsWatch(cmd *cobra.Command, a *app, verbose bool, windowDays int) error {
	log := logger.New(verbose)

	w := reminders.New(log, a.dataDir, windowDays)
	if err := w.Start(a.cfg.Reminders.Schedule); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching bills on schedule %q (ctrl-c to stop)\n", a.cfg.Reminders.Schedule)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}
