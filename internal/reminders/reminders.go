// Package reminders runs the scheduled due-bill check behind `billfold
// bills --watch`.
package reminders

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/billfold-dev/billfold/internal/accounts"
	"github.com/billfold-dev/billfold/internal/duedate"
)

// Watcher periodically scans accounts for bills due within the
// configured window and logs a reminder for each.
type Watcher struct {
	log        zerolog.Logger
	dataDir    string
	windowDays int
	cron       *cron.Cron
}

// New creates a Watcher. windowDays controls how far ahead bills are
// reported.
func New(log zerolog.Logger, dataDir string, windowDays int) *Watcher {
	return &Watcher{log: log, dataDir: dataDir, windowDays: windowDays}
}

// Start schedules CheckOnce on the given cron expression and runs it
// immediately so the user gets output without waiting for the first
// tick.
func (w *Watcher) Start(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := w.CheckOnce(); err != nil {
			w.log.Error().Err(err).Msg("bill check failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	w.cron = c
	c.Start()

	if err := w.CheckOnce(); err != nil {
		w.log.Error().Err(err).Msg("bill check failed")
	}
	return nil
}

// Stop halts the schedule. Safe to call if Start was never called.
func (w *Watcher) Stop() {
	if w.cron != nil {
		w.cron.Stop()
	}
}

// CheckOnce reloads accounts from disk and logs every bill due within
// the window. Accounts are re-read each run so edits made while the
// watcher is up are picked up.
func (w *Watcher) CheckOnce() error {
	svc, err := accounts.Load(w.dataDir)
	if err != nil {
		return fmt.Errorf("loading accounts: %w", err)
	}

	bills := duedate.Upcoming(svc.All(), time.Now(), w.windowDays)
	if len(bills) == 0 {
		w.log.Info().Int("window_days", w.windowDays).Msg("no bills due")
		return nil
	}

	for _, b := range bills {
		ev := w.log.Info()
		if b.DaysUntil <= 1 && !b.Paid {
			ev = w.log.Warn()
		}
		ev.Str("account", b.AccountName).
			Str("due", b.DueDate.Format("2006-01-02")).
			Int("days_until", b.DaysUntil).
			Str("minimum_payment", b.MinimumPayment.StringFixed(2)).
			Bool("paid", b.Paid).
			Msg("bill due")
	}
	return nil
}
