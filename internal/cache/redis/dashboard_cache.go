package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/haneulsoft/caseledger/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	dashboardKey        = "dashboard:snapshot"
	defaultDashboardTTL = 2 * time.Minute
)

// DashboardCache implements domain.DashboardCache using a single JSON value
// with a short TTL. The snapshot carries counts and recovered totals only;
// outstanding bond figures are never cached because open-ended tranches
// change value daily.
type DashboardCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewDashboardCache creates a DashboardCache backed by the given Client.
// A non-positive ttl falls back to the default.
func NewDashboardCache(c *Client, ttl time.Duration) *DashboardCache {
	if ttl <= 0 {
		ttl = defaultDashboardTTL
	}
	return &DashboardCache{rdb: c.Underlying(), ttl: ttl}
}

// Set stores the snapshot, replacing any previous one.
func (dc *DashboardCache) Set(ctx context.Context, snap domain.DashboardSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal dashboard snapshot: %w", err)
	}
	if err := dc.rdb.Set(ctx, dashboardKey, data, dc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set dashboard snapshot: %w", err)
	}
	return nil
}

// Get retrieves the latest snapshot. It returns domain.ErrNotFound when no
// snapshot is cached or the TTL has lapsed.
func (dc *DashboardCache) Get(ctx context.Context) (domain.DashboardSnapshot, error) {
	data, err := dc.rdb.Get(ctx, dashboardKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.DashboardSnapshot{}, domain.ErrNotFound
		}
		return domain.DashboardSnapshot{}, fmt.Errorf("redis: get dashboard snapshot: %w", err)
	}

	var snap domain.DashboardSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.DashboardSnapshot{}, fmt.Errorf("redis: unmarshal dashboard snapshot: %w", err)
	}
	return snap, nil
}

// Invalidate drops the cached snapshot so the next read recomputes.
func (dc *DashboardCache) Invalidate(ctx context.Context) error {
	if err := dc.rdb.Del(ctx, dashboardKey).Err(); err != nil {
		return fmt.Errorf("redis: invalidate dashboard snapshot: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.DashboardCache = (*DashboardCache)(nil)
