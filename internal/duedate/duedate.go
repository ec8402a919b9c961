// Package duedate computes payment due dates and billing-cycle status for
// accounts that carry a day-of-month due day.
package duedate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billfold-dev/billfold/internal/model"
)

// State is the billing-cycle status of an account.
type State string

const (
	// StateNone means the account has no payment due day.
	StateNone State = "none"
	// StatePaid means the bill is marked paid for the current month.
	StatePaid State = "paid"
	// StateDue means a payment is due this cycle.
	StateDue State = "due"
)

// Next returns the next occurrence of a day-of-month due day: the current
// month if today's day has not yet passed it, otherwise the following month.
// Days past the end of the target month are not clamped; time.Date rollover
// applies (e.g. day 31 in April resolves to May 1).
func Next(day int, today time.Time) time.Time {
	year, month, d := today.Date()
	if d <= day {
		return time.Date(year, month, day, 0, 0, 0, 0, today.Location())
	}
	return time.Date(year, month+1, day, 0, 0, 0, 0, today.Location())
}

// DaysUntil returns the calendar-day difference between the next due date
// and today. A bill due today reports 0; negative means overdue. Both ends
// are rebuilt in UTC so DST transitions cannot shorten a day.
func DaysUntil(day int, today time.Time) int {
	due := Next(day, today)
	from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// Status returns the billing-cycle state of an account and, when due, the
// days remaining until the due date.
func Status(acct model.Account, today time.Time) (State, int) {
	if !acct.HasDueDate() {
		return StateNone, 0
	}
	if acct.PaidForMonth(today) {
		return StatePaid, 0
	}
	return StateDue, DaysUntil(acct.PaymentDueDay, today)
}

// Bill summarizes an upcoming payment for one account.
type Bill struct {
	AccountID      int
	AccountName    string
	DueDate        time.Time
	DaysUntil      int
	MinimumPayment decimal.Decimal
	Paid           bool
}

// Upcoming returns bills due within windowDays of today, sorted by due date
// then account name. Bills already paid this month are included and flagged
// so callers can render them as satisfied.
func Upcoming(accts []model.Account, today time.Time, windowDays int) []Bill {
	var bills []Bill
	for _, a := range accts {
		if !a.HasDueDate() {
			continue
		}
		days := DaysUntil(a.PaymentDueDay, today)
		if days > windowDays {
			continue
		}
		bills = append(bills, Bill{
			AccountID:      a.ID,
			AccountName:    a.Name,
			DueDate:        Next(a.PaymentDueDay, today),
			DaysUntil:      days,
			MinimumPayment: a.MinimumPayment,
			Paid:           a.PaidForMonth(today),
		})
	}

	sort.Slice(bills, func(i, j int) bool {
		if !bills[i].DueDate.Equal(bills[j].DueDate) {
			return bills[i].DueDate.Before(bills[j].DueDate)
		}
		return bills[i].AccountName < bills[j].AccountName
	})
	return bills
}
