package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haneulsoft/caseledger/internal/accrual"
	"github.com/haneulsoft/caseledger/internal/domain"
)

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

type fakeBondStore struct {
	records map[string]domain.BondRecord // keyed by case ID
}

func newFakeBondStore() *fakeBondStore {
	return &fakeBondStore{records: make(map[string]domain.BondRecord)}
}

func (f *fakeBondStore) Upsert(_ context.Context, b domain.BondRecord) error {
	f.records[b.CaseID] = b
	return nil
}

func (f *fakeBondStore) GetByCaseID(_ context.Context, caseID string) (domain.BondRecord, error) {
	b, ok := f.records[caseID]
	if !ok {
		return domain.BondRecord{}, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeBondStore) ListAll(_ context.Context) ([]domain.BondRecord, error) {
	out := make([]domain.BondRecord, 0, len(f.records))
	for _, b := range f.records {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBondStore) Delete(_ context.Context, caseID string) error {
	if _, ok := f.records[caseID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.records, caseID)
	return nil
}

type fakeCaseStore struct {
	cases map[string]domain.Case
}

func newFakeCaseStore(cases ...domain.Case) *fakeCaseStore {
	f := &fakeCaseStore{cases: make(map[string]domain.Case)}
	for _, c := range cases {
		f.cases[c.ID] = c
	}
	return f
}

func (f *fakeCaseStore) Create(_ context.Context, c domain.Case) error {
	f.cases[c.ID] = c
	return nil
}

func (f *fakeCaseStore) Update(_ context.Context, c domain.Case) error {
	f.cases[c.ID] = c
	return nil
}

func (f *fakeCaseStore) Close(_ context.Context, id string, closedAt time.Time) error {
	c, ok := f.cases[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Status = domain.CaseClosed
	c.ClosedAt = &closedAt
	f.cases[id] = c
	return nil
}

func (f *fakeCaseStore) GetByID(_ context.Context, id string) (domain.Case, error) {
	c, ok := f.cases[id]
	if !ok {
		return domain.Case{}, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeCaseStore) GetByNumber(_ context.Context, _ string) (domain.Case, error) {
	return domain.Case{}, domain.ErrNotFound
}

func (f *fakeCaseStore) List(_ context.Context, _ domain.CaseStatus, _ domain.ListOpts) ([]domain.Case, error) {
	return nil, nil
}

func (f *fakeCaseStore) CountByStatus(_ context.Context) (map[domain.CaseStatus]int64, error) {
	return nil, nil
}

type fakeTimelineStore struct {
	events []domain.TimelineEvent
}

func (f *fakeTimelineStore) Append(_ context.Context, ev domain.TimelineEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeTimelineStore) ListByCase(_ context.Context, _ string, _ domain.ListOpts) ([]domain.TimelineEvent, error) {
	return f.events, nil
}

type fakeAuditStore struct {
	entries []string
}

func (f *fakeAuditStore) Log(_ context.Context, event string, _ map[string]any) error {
	f.entries = append(f.entries, event)
	return nil
}

func (f *fakeAuditStore) List(_ context.Context, _ domain.ListOpts) ([]domain.AuditEntry, error) {
	return nil, nil
}

func (f *fakeAuditStore) DeleteBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

var testClock = time.Date(2023, 7, 1, 12, 0, 0, 0, time.UTC)

func newTestBondService(t *testing.T, cases ...domain.Case) (*BondService, *fakeBondStore, *fakeTimelineStore, *fakeAuditStore) {
	t.Helper()

	bonds := newFakeBondStore()
	timeline := &fakeTimelineStore{}
	audit := &fakeAuditStore{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewBondService(bonds, newFakeCaseStore(cases...), timeline, audit, nil, logger)
	svc.now = func() time.Time { return testClock }

	return svc, bonds, timeline, audit
}

func activeCase(id string) domain.Case {
	return domain.Case{ID: id, Title: "test claim", Status: domain.CaseActive}
}

func tranche(rate float64, start, end time.Time) domain.InterestTranche {
	return domain.InterestTranche{
		Rate:  domain.Amount(rate),
		Start: domain.Date{Time: start},
		End:   domain.FixedBound(end),
	}
}

// ---------------------------------------------------------------------------
// tests
// ---------------------------------------------------------------------------

func TestSaveBondRejectsThreeTranches(t *testing.T) {
	svc, _, _, _ := newTestBondService(t, activeCase("c1"))

	jan := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	b := domain.BondRecord{
		Principal: 1_000_000,
		Tranches: []domain.InterestTranche{
			tranche(5, jan, jan.AddDate(0, 1, 0)),
			tranche(12, jan.AddDate(0, 1, 0), jan.AddDate(0, 2, 0)),
			tranche(15, jan.AddDate(0, 2, 0), jan.AddDate(0, 3, 0)),
		},
	}

	_, err := svc.SaveBond(context.Background(), "c1", b)
	assert.ErrorIs(t, err, domain.ErrTooManyTranches)
}

func TestSaveBondRejectsClosedCase(t *testing.T) {
	closed := activeCase("c1")
	closed.Status = domain.CaseClosed
	svc, _, _, _ := newTestBondService(t, closed)

	_, err := svc.SaveBond(context.Background(), "c1", domain.BondRecord{Principal: 100})
	assert.ErrorIs(t, err, domain.ErrCaseClosed)
}

func TestSaveBondUnknownCase(t *testing.T) {
	svc, _, _, _ := newTestBondService(t)

	_, err := svc.SaveBond(context.Background(), "nope", domain.BondRecord{Principal: 100})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveBondReplacesWholesaleKeepingIdentity(t *testing.T) {
	svc, bonds, timeline, audit := newTestBondService(t, activeCase("c1"))
	ctx := context.Background()

	first, err := svc.SaveBond(ctx, "c1", domain.BondRecord{
		Principal: 10_000_000,
		Expenses:  []domain.Expense{{Item: "filing fee", Amount: 50_000}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := svc.SaveBond(ctx, "c1", domain.BondRecord{
		Principal: 20_000_000,
	})
	require.NoError(t, err)

	// Same record identity, fully replaced contents.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	stored := bonds.records["c1"]
	assert.Equal(t, float64(20_000_000), stored.Principal.Float64())
	assert.Empty(t, stored.Expenses)

	assert.Len(t, timeline.events, 2)
	assert.Contains(t, audit.entries, "bond.save")
}

func TestGetStatementEvaluatesAtServiceClock(t *testing.T) {
	svc, bonds, _, _ := newTestBondService(t, activeCase("c1"))
	ctx := context.Background()

	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	record := domain.BondRecord{
		ID:        "b1",
		CaseID:    "c1",
		Principal: 10_000_000,
		Tranches:  []domain.InterestTranche{tranche(12, start, end)},
		Expenses: []domain.Expense{
			{Item: "service fee", Amount: 50_000},
			{Item: "stamp duty", Amount: 0},
			{Item: "refund", Amount: -10_000},
		},
	}
	bonds.records["c1"] = record

	stmt, err := svc.GetStatement(ctx, "c1")
	require.NoError(t, err)

	require.Len(t, stmt.Interest, 1)
	assert.InDelta(t, accrual.AccrueInterest(10_000_000, record.Tranches[0], testClock), stmt.Interest[0], 1e-9)
	assert.InDelta(t, stmt.Interest[0], stmt.InterestTotal, 1e-9)

	// The expense sum keeps every entry; the display list drops the
	// non-positive ones.
	assert.InDelta(t, 40_000, stmt.ExpenseTotal, 1e-9)
	require.Len(t, stmt.Expenses, 1)
	assert.Equal(t, "service fee", stmt.Expenses[0].Item)

	assert.InDelta(t, 10_000_000+stmt.InterestTotal+40_000, stmt.Total, 1e-6)
	assert.Equal(t, testClock, stmt.EvaluatedAt)
}

func TestGetStatementOpenTrancheDriftsWithClock(t *testing.T) {
	svc, bonds, _, _ := newTestBondService(t, activeCase("c1"))
	ctx := context.Background()

	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	bonds.records["c1"] = domain.BondRecord{
		ID:        "b1",
		CaseID:    "c1",
		Principal: 10_000_000,
		Tranches: []domain.InterestTranche{{
			Rate:  5,
			Start: domain.Date{Time: start},
			End:   domain.OpenBound(),
		}},
	}

	today, err := svc.GetStatement(ctx, "c1")
	require.NoError(t, err)

	svc.now = func() time.Time { return testClock.AddDate(0, 0, 1) }
	tomorrow, err := svc.GetStatement(ctx, "c1")
	require.NoError(t, err)

	perDay := 10_000_000 * 0.05 / 365.25
	assert.InDelta(t, perDay, tomorrow.Total-today.Total, 1e-6)
}

func TestOutstandingTotalSumsAllRecords(t *testing.T) {
	svc, bonds, _, _ := newTestBondService(t, activeCase("c1"), activeCase("c2"))
	ctx := context.Background()

	bonds.records["c1"] = domain.BondRecord{CaseID: "c1", Principal: 1_000_000}
	bonds.records["c2"] = domain.BondRecord{
		CaseID:    "c2",
		Principal: 2_000_000,
		Expenses:  []domain.Expense{{Item: "fee", Amount: 30_000}},
	}

	total, err := svc.OutstandingTotal(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 3_030_000, total, 1e-6)
}

func TestDeleteBondMissingRecord(t *testing.T) {
	svc, _, _, _ := newTestBondService(t, activeCase("c1"))

	err := svc.DeleteBond(context.Background(), "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
