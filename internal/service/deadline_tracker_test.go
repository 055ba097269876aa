package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haneulsoft/caseledger/internal/domain"
)

type fakeTaskStore struct {
	open []domain.Task
}

func (f *fakeTaskStore) Create(_ context.Context, _ domain.Task) error   { return nil }
func (f *fakeTaskStore) Update(_ context.Context, _ domain.Task) error   { return nil }
func (f *fakeTaskStore) Complete(_ context.Context, _ string, _ time.Time) error {
	return nil
}
func (f *fakeTaskStore) GetByID(_ context.Context, _ string) (domain.Task, error) {
	return domain.Task{}, domain.ErrNotFound
}
func (f *fakeTaskStore) ListByCase(_ context.Context, _ string, _ domain.ListOpts) ([]domain.Task, error) {
	return nil, nil
}
func (f *fakeTaskStore) ListOpenWithDueDate(_ context.Context) ([]domain.Task, error) {
	return f.open, nil
}
func (f *fakeTaskStore) CountOpen(_ context.Context) (int64, error) { return 0, nil }

type recordingNotifier struct {
	events []string
	titles []string
}

func (r *recordingNotifier) Notify(_ context.Context, event, title, _ string) error {
	r.events = append(r.events, event)
	r.titles = append(r.titles, title)
	return nil
}

type countingLimiter struct {
	waits int
}

func (c *countingLimiter) Allow(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	return true, nil
}

func (c *countingLimiter) Wait(_ context.Context, _ string) error {
	c.waits++
	return nil
}

func dueOn(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func newTestTracker(t *testing.T, store *fakeTaskStore) (*DeadlineTracker, *recordingNotifier, *countingLimiter) {
	t.Helper()

	notifier := &recordingNotifier{}
	limiter := &countingLimiter{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tracker := NewDeadlineTracker(store, nil, notifier, limiter, time.Minute, logger)
	return tracker, notifier, limiter
}

func TestDeadlineTrackerAlertsOncePerBucket(t *testing.T) {
	store := &fakeTaskStore{open: []domain.Task{
		{ID: "t1", CaseID: "c1", Kind: domain.TaskCorrectionOrder, Title: "file correction", DueDate: dueOn(2025, 6, 12)},
	}}
	tracker, notifier, limiter := newTestTracker(t, store)
	ctx := context.Background()

	// Two days out: urgent, alerted once.
	tracker.now = func() time.Time { return time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC) }
	require.NoError(t, tracker.scan(ctx))
	require.Equal(t, []string{"deadline_urgent"}, notifier.events)
	assert.Equal(t, "D-2: file correction", notifier.titles[0])

	// Still urgent the next scan: no repeat alert.
	require.NoError(t, tracker.scan(ctx))
	assert.Len(t, notifier.events, 1)

	// Every outbound notification went through the throttle.
	assert.Equal(t, 1, limiter.waits)
}

func TestDeadlineTrackerReAlertsOnExpiry(t *testing.T) {
	store := &fakeTaskStore{open: []domain.Task{
		{ID: "t1", CaseID: "c1", Kind: domain.TaskCorrectionOrder, Title: "file correction", DueDate: dueOn(2025, 6, 12)},
	}}
	tracker, notifier, _ := newTestTracker(t, store)
	ctx := context.Background()

	tracker.now = func() time.Time { return time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC) }
	require.NoError(t, tracker.scan(ctx))

	// The deadline passes: the same task alerts again in the expired bucket.
	tracker.now = func() time.Time { return time.Date(2025, 6, 13, 9, 0, 0, 0, time.UTC) }
	require.NoError(t, tracker.scan(ctx))

	require.Equal(t, []string{"deadline_urgent", "deadline_expired"}, notifier.events)
	assert.Equal(t, "D+1 overdue: file correction", notifier.titles[1])

	// Remaining expired: still no repeat.
	require.NoError(t, tracker.scan(ctx))
	assert.Len(t, notifier.events, 2)
}

func TestDeadlineTrackerSkipsNormalAndPrunesClosed(t *testing.T) {
	store := &fakeTaskStore{open: []domain.Task{
		{ID: "far", CaseID: "c1", Kind: domain.TaskInquiry, Title: "far off", DueDate: dueOn(2025, 7, 1)},
		{ID: "soon", CaseID: "c1", Kind: domain.TaskInquiry, Title: "due soon", DueDate: dueOn(2025, 6, 11)},
	}}
	tracker, notifier, _ := newTestTracker(t, store)
	ctx := context.Background()

	tracker.now = func() time.Time { return time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC) }
	require.NoError(t, tracker.scan(ctx))
	require.Equal(t, []string{"deadline_urgent"}, notifier.events)

	// Task completed: it disappears from the open list and the dedup state.
	store.open = store.open[:1]
	require.NoError(t, tracker.scan(ctx))
	assert.NotContains(t, tracker.alerted, "soon")

	// Reopened with the same urgency: it alerts again.
	store.open = append(store.open, domain.Task{
		ID: "soon", CaseID: "c1", Kind: domain.TaskInquiry, Title: "due soon", DueDate: dueOn(2025, 6, 11),
	})
	require.NoError(t, tracker.scan(ctx))
	assert.Equal(t, []string{"deadline_urgent", "deadline_urgent"}, notifier.events)
}
