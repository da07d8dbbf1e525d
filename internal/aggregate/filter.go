// Package aggregate derives filtered views and totals from a ledger
// snapshot. Everything here is a pure function of its inputs.
package aggregate

import (
	"time"

	"kumbara/internal/models"
)

// Window is an inclusive range of calendar days, each bound held as UTC
// midnight of that day. A nil bound is open.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether the calendar day of t falls inside w. The day is
// read in t's own location, the same way the ledger orders entries, so a
// date stored as UTC midnight keeps its day whatever the local zone is.
func (w Window) Contains(t time.Time) bool {
	day := dayOf(t)
	if w.Start != nil && day.Before(*w.Start) {
		return false
	}
	if w.End != nil && day.After(*w.End) {
		return false
	}
	return true
}

// WindowFor resolves a filter into a concrete window at now. "Today" is the
// calendar day of now in now's location.
//
//   - last30Days: from the day 30 days before today, no upper bound
//   - thisMonth: from the first day of the current month, no upper bound
//   - allTime: unbounded
//   - custom: [start day, end day] inclusive; a missing end means today and
//     a missing start means unbounded
func WindowFor(f models.Filter, now time.Time) Window {
	today := dayOf(now)
	switch f.Kind {
	case models.FilterLast30Days:
		start := today.AddDate(0, 0, -30)
		return Window{Start: &start}
	case models.FilterThisMonth:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Window{Start: &start}
	case models.FilterCustom:
		if f.CustomRange == nil || f.CustomRange.StartDate.IsZero() {
			return Window{}
		}
		start := dayOf(f.CustomRange.StartDate)
		end := today
		if f.CustomRange.EndDate != nil && !f.CustomRange.EndDate.IsZero() {
			end = dayOf(*f.CustomRange.EndDate)
		}
		return Window{Start: &start, End: &end}
	default:
		return Window{}
	}
}

// Filter returns the transactions inside the filter's window, keeping the
// input order.
func Filter(txns []models.Transaction, f models.Filter, now time.Time) []models.Transaction {
	w := WindowFor(f, now)
	out := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		if w.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// Investments returns only the investment transactions, keeping the input order.
func Investments(txns []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0)
	for _, t := range txns {
		if t.IsInvestment() {
			out = append(out, t)
		}
	}
	return out
}

// dayOf maps t to UTC midnight of its calendar day in t's location.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
