package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysUntilIgnoresTimeOfDay(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 5, 20, 23, 59, 0, 0, loc)

	tests := []struct {
		name string
		due  time.Time
		want int
	}{
		{"due today early morning", time.Date(2024, 5, 20, 0, 1, 0, 0, loc), 0},
		{"due today late evening", time.Date(2024, 5, 20, 23, 0, 0, 0, loc), 0},
		{"due yesterday", time.Date(2024, 5, 19, 12, 0, 0, 0, loc), -1},
		{"due tomorrow", time.Date(2024, 5, 21, 0, 30, 0, 0, loc), 1},
		{"due in a week", time.Date(2024, 5, 27, 6, 0, 0, 0, loc), 7},
		{"long past", time.Date(2024, 4, 20, 18, 0, 0, 0, loc), -30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntil(tt.due, now))
		})
	}
}

func TestDaysUntilAtMidnightBoundary(t *testing.T) {
	loc := time.UTC
	due := time.Date(2024, 5, 21, 0, 0, 0, 0, loc)

	// One second before and after midnight must flip the count by one day.
	assert.Equal(t, 1, DaysUntil(due, time.Date(2024, 5, 20, 23, 59, 59, 0, loc)))
	assert.Equal(t, 0, DaysUntil(due, time.Date(2024, 5, 21, 0, 0, 1, 0, loc)))
}

func TestDaysUntilAcrossDSTTransitions(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Spring-forward (2025-03-09): the local day is 23 hours, which must not
	// truncate "due tomorrow" down to zero.
	due := time.Date(2025, 3, 10, 9, 0, 0, 0, loc)
	now := time.Date(2025, 3, 9, 12, 0, 0, 0, loc)
	assert.Equal(t, 1, DaysUntil(due, now))

	// Fall-back (2025-11-02): the 25-hour day must not over-count.
	due = time.Date(2025, 11, 3, 9, 0, 0, 0, loc)
	now = time.Date(2025, 11, 2, 12, 0, 0, 0, loc)
	assert.Equal(t, 1, DaysUntil(due, now))

	// A longer span containing the transition stays exact.
	due = time.Date(2025, 3, 16, 0, 0, 0, 0, loc)
	now = time.Date(2025, 3, 6, 18, 0, 0, 0, loc)
	assert.Equal(t, 10, DaysUntil(due, now))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, StatusExpired, Classify(-1))
	assert.Equal(t, StatusUrgent, Classify(0))
	assert.Equal(t, StatusUrgent, Classify(2))
	assert.Equal(t, StatusNormal, Classify(3))
	assert.Equal(t, StatusNormal, Classify(30))
}
