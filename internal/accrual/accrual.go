// Package accrual computes accrued interest and outstanding totals for bond
// records. Every function here is pure: the evaluation date is an explicit
// parameter, so open-ended tranches stay testable and callers decide what
// "today" means. Nothing in this package rounds; flooring to whole won
// happens only at the presentation boundary.
package accrual

import (
	"math"
	"time"

	"github.com/haneulsoft/caseledger/internal/domain"
)

// daysPerYear converts elapsed days to years for simple-interest accrual.
// 365.25 matches the convention used on the original bond ledgers.
const daysPerYear = 365.25

// AccrueInterest returns the simple interest accrued by one tranche of the
// given principal, evaluated at now. A tranche missing its rate, start date,
// or end bound contributes zero; operators routinely leave the second tranche
// unfilled, so this is not an error. An open end bound resolves to now on
// every call. Elapsed time is clamped at zero, so an end before the start
// also yields zero rather than negative interest.
func AccrueInterest(principal float64, t domain.InterestTranche, now time.Time) float64 {
	rate := t.Rate.Float64()
	if rate == 0 || t.Start.IsZero() {
		return 0
	}

	var end time.Time
	switch t.End.Kind {
	case domain.BoundFixed:
		end = t.End.Date
	case domain.BoundOpen:
		end = now
	default:
		return 0
	}

	days := end.Sub(t.Start.Time).Hours() / 24
	years := days / daysPerYear
	if years < 0 {
		years = 0
	}

	v := sanitize(principal) * (rate / 100) * years
	return sanitize(v)
}

// InterestTotals returns the accrued interest of each tranche in order.
// Tranches are independent: no tranche sees another's dates or amount, and
// the slice length follows the record (the two-tranche cap is a boundary
// policy, not an engine invariant).
func InterestTotals(b domain.BondRecord, now time.Time) []float64 {
	totals := make([]float64, len(b.Tranches))
	principal := b.Principal.Float64()
	for i, t := range b.Tranches {
		totals[i] = AccrueInterest(principal, t, now)
	}
	return totals
}

// SumExpenses sums every expense amount, including zero and negative entries.
// This mirrors the ledger behavior the firm signed off on: the itemized
// display hides non-positive rows (see DisplayableExpenses) but the monetary
// total never does. Keep the two in lockstep only if the business rule
// changes on both sides at once.
func SumExpenses(expenses []domain.Expense) float64 {
	var sum float64
	for _, e := range expenses {
		sum += e.Amount.Float64()
	}
	return sanitize(sum)
}

// DisplayableExpenses returns the expenses with a positive amount, in input
// order. This filter is for itemized listings only and must not be used when
// computing totals.
func DisplayableExpenses(expenses []domain.Expense) []domain.Expense {
	out := make([]domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.Amount.Float64() > 0 {
			out = append(out, e)
		}
	}
	return out
}

// Total returns the outstanding amount for a bond record evaluated at now:
// principal plus every tranche's accrued interest plus all expenses.
func Total(b domain.BondRecord, now time.Time) float64 {
	total := b.Principal.Float64()
	for _, interest := range InterestTotals(b, now) {
		total += interest
	}
	total += SumExpenses(b.Expenses)
	return sanitize(total)
}

// sanitize maps NaN and infinities to zero so a single corrupt input cannot
// silently poison a displayed total.
func sanitize(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
