package domain

import (
	"context"
	"time"
)

// DashboardSnapshot is the cached aggregate view shown on the operator
// dashboard. It deliberately carries no bond totals: open-ended tranches
// drift daily, so outstanding figures are always computed fresh per request.
type DashboardSnapshot struct {
	ActiveCases    int64     `json:"active_cases"`
	OnHoldCases    int64     `json:"on_hold_cases"`
	ClosedCases    int64     `json:"closed_cases"`
	OpenTasks      int64     `json:"open_tasks"`
	TotalRecovered float64   `json:"total_recovered"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// DashboardCache stores the latest dashboard snapshot with a short TTL.
type DashboardCache interface {
	Set(ctx context.Context, snap DashboardSnapshot) error
	Get(ctx context.Context) (DashboardSnapshot, error)
	Invalidate(ctx context.Context) error
}

// RateLimiter provides distributed rate limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Wait(ctx context.Context, key string) error
}

// LockManager provides distributed locking.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// SignalBus provides pub/sub fan-out for case, bond, and deadline events.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
