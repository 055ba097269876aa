package accrual

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haneulsoft/caseledger/internal/domain"
)

var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func tranche(rate float64, start domain.Date, end domain.Bound) domain.InterestTranche {
	return domain.InterestTranche{Rate: domain.Amount(rate), Start: start, End: end}
}

func TestAccrueInterestMissingFields(t *testing.T) {
	start := domain.NewDate(2023, time.January, 1)
	end := domain.FixedBound(time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		tr   domain.InterestTranche
	}{
		{"no rate", tranche(0, start, end)},
		{"no start", tranche(12, domain.Date{}, end)},
		{"no end", tranche(12, start, domain.Bound{Kind: domain.BoundAbsent})},
		{"zero value", domain.InterestTranche{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Zero(t, AccrueInterest(10_000_000, tt.tr, testNow))
		})
	}
}

func TestAccrueInterestSimpleInterest(t *testing.T) {
	start := domain.NewDate(2023, time.January, 1)
	end := domain.FixedBound(time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC))
	tr := tranche(12, start, end)

	// 181 days from 2023-01-01 to 2023-07-01.
	want := 10_000_000 * 0.12 * (181.0 / 365.25)
	got := AccrueInterest(10_000_000, tr, testNow)
	assert.InDelta(t, want, got, 1e-6)

	// Linear in principal.
	assert.InDelta(t, 2*got, AccrueInterest(20_000_000, tr, testNow), 1e-6)

	// Linear in rate.
	double := tranche(24, start, end)
	assert.InDelta(t, 2*got, AccrueInterest(10_000_000, double, testNow), 1e-6)

	assert.GreaterOrEqual(t, got, 0.0)
}

func TestAccrueInterestEndBeforeStartClamps(t *testing.T) {
	tr := tranche(12,
		domain.NewDate(2023, time.July, 1),
		domain.FixedBound(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
	)
	assert.Zero(t, AccrueInterest(10_000_000, tr, testNow))
}

func TestAccrueInterestOpenEndDriftsDaily(t *testing.T) {
	tr := tranche(5, domain.NewDate(2024, time.January, 1), domain.OpenBound())

	day1 := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	v1 := AccrueInterest(10_000_000, tr, day1)
	v2 := AccrueInterest(10_000_000, tr, day2)

	perDay := 10_000_000 * 0.05 / 365.25
	assert.InDelta(t, perDay, v2-v1, 1e-6)
}

func TestInterestTotalsIndependentTranches(t *testing.T) {
	bond := domain.BondRecord{
		Principal: 10_000_000,
		Tranches: []domain.InterestTranche{
			tranche(12,
				domain.NewDate(2023, time.January, 1),
				domain.FixedBound(time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC))),
			{}, // unfilled second tranche
		},
	}

	totals := InterestTotals(bond, testNow)
	require.Len(t, totals, 2)
	assert.Positive(t, totals[0])
	assert.Zero(t, totals[1])

	// Removing the first tranche must not change the second's contribution.
	bond.Tranches = bond.Tranches[1:]
	assert.Zero(t, InterestTotals(bond, testNow)[0])
}

func TestSumExpenses(t *testing.T) {
	assert.Zero(t, SumExpenses(nil))
	assert.Zero(t, SumExpenses([]domain.Expense{}))

	expenses := []domain.Expense{
		{Item: "송달료", Amount: 30_000},
		{Item: "인지액", Amount: 0},
		{Item: "환급", Amount: -5_000},
		{Item: "서기료", Amount: 50_000},
	}
	want := 75_000.0
	assert.InDelta(t, want, SumExpenses(expenses), 1e-9)

	// Order independence.
	reversed := []domain.Expense{expenses[3], expenses[2], expenses[1], expenses[0]}
	assert.InDelta(t, SumExpenses(expenses), SumExpenses(reversed), 1e-9)
}

func TestDisplayableExpensesHidesNonPositive(t *testing.T) {
	expenses := []domain.Expense{
		{Item: "서기료", Amount: 50_000},
		{Item: "인지액", Amount: 0},
		{Item: "환급", Amount: -5_000},
	}
	shown := DisplayableExpenses(expenses)
	require.Len(t, shown, 1)
	assert.Equal(t, "서기료", shown[0].Item)

	// The display filter must not leak into the sum.
	assert.InDelta(t, 45_000.0, SumExpenses(expenses), 1e-9)
}

func TestTotalAssembly(t *testing.T) {
	tests := []struct {
		name string
		bond domain.BondRecord
	}{
		{"no tranches no expenses", domain.BondRecord{Principal: 1_000_000}},
		{"one tranche", domain.BondRecord{
			Principal: 1_000_000,
			Tranches: []domain.InterestTranche{
				tranche(5, domain.NewDate(2023, time.March, 1), domain.OpenBound()),
			},
		}},
		{"two tranches with expenses", domain.BondRecord{
			Principal: 1_000_000,
			Tranches: []domain.InterestTranche{
				tranche(5, domain.NewDate(2022, time.January, 1),
					domain.FixedBound(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))),
				tranche(12, domain.NewDate(2023, time.January, 2), domain.OpenBound()),
			},
			Expenses: []domain.Expense{
				{Item: "송달료", Amount: 30_000},
				{Item: "인지액", Amount: 0},
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.bond.Principal.Float64() + SumExpenses(tt.bond.Expenses)
			for _, interest := range InterestTotals(tt.bond, testNow) {
				want += interest
			}
			assert.InDelta(t, want, Total(tt.bond, testNow), 1e-9)
		})
	}
}

func TestTotalConcreteScenario(t *testing.T) {
	bond := domain.BondRecord{
		Principal: 10_000_000,
		Tranches: []domain.InterestTranche{
			tranche(12,
				domain.NewDate(2023, time.January, 1),
				domain.FixedBound(time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC))),
		},
		Expenses: []domain.Expense{
			{Item: "서기료", Amount: 50_000},
			{Item: "인지액", Amount: 0},
		},
	}

	interest := 10_000_000 * 0.12 * (181.0 / 365.25)
	assert.InDelta(t, 10_000_000+interest+50_000, Total(bond, testNow), 1e-6)

	shown := DisplayableExpenses(bond.Expenses)
	require.Len(t, shown, 1)
	assert.Equal(t, "서기료", shown[0].Item)
}
