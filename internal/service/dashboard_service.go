package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/haneulsoft/caseledger/internal/domain"
)

// refreshLockTTL bounds how long a dashboard refresh may hold the
// distributed lock before it expires on its own.
const refreshLockTTL = 30 * time.Second

// DashboardService assembles the operator dashboard snapshot. Case, task,
// and recovery counts are cached with a short TTL; a distributed lock keeps
// concurrent refreshes from stampeding the database. Bond totals are never
// part of the snapshot because open-ended tranches drift daily.
type DashboardService struct {
	cases        domain.CaseStore
	tasks        domain.TaskStore
	enforcements domain.EnforcementStore
	cache        domain.DashboardCache
	locks        domain.LockManager
	now          func() time.Time
	logger       *slog.Logger
}

// NewDashboardService creates a DashboardService with all required
// dependencies.
func NewDashboardService(
	cases domain.CaseStore,
	tasks domain.TaskStore,
	enforcements domain.EnforcementStore,
	cache domain.DashboardCache,
	locks domain.LockManager,
	logger *slog.Logger,
) *DashboardService {
	return &DashboardService{
		cases:        cases,
		tasks:        tasks,
		enforcements: enforcements,
		cache:        cache,
		locks:        locks,
		now:          time.Now,
		logger:       logger,
	}
}

// Snapshot returns the dashboard snapshot, serving from cache when fresh and
// recomputing on a miss.
func (s *DashboardService) Snapshot(ctx context.Context) (domain.DashboardSnapshot, error) {
	snap, err := s.cache.Get(ctx)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.WarnContext(ctx, "dashboard_service: cache read failed",
			slog.String("error", err.Error()),
		)
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the snapshot from the stores and writes it back to the
// cache. A distributed lock serializes refreshes across instances; when the
// lock is already held, Refresh computes without caching rather than wait.
func (s *DashboardService) Refresh(ctx context.Context) (domain.DashboardSnapshot, error) {
	unlock, err := s.locks.Acquire(ctx, "dashboard_refresh", refreshLockTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			return s.compute(ctx)
		}
		return domain.DashboardSnapshot{}, fmt.Errorf("dashboard_service: acquire refresh lock: %w", err)
	}
	defer unlock()

	snap, err := s.compute(ctx)
	if err != nil {
		return domain.DashboardSnapshot{}, err
	}

	if cacheErr := s.cache.Set(ctx, snap); cacheErr != nil {
		s.logger.WarnContext(ctx, "dashboard_service: cache write failed",
			slog.String("error", cacheErr.Error()),
		)
	}

	return snap, nil
}

func (s *DashboardService) compute(ctx context.Context) (domain.DashboardSnapshot, error) {
	counts, err := s.cases.CountByStatus(ctx)
	if err != nil {
		return domain.DashboardSnapshot{}, fmt.Errorf("dashboard_service: count cases: %w", err)
	}

	openTasks, err := s.tasks.CountOpen(ctx)
	if err != nil {
		return domain.DashboardSnapshot{}, fmt.Errorf("dashboard_service: count open tasks: %w", err)
	}

	recovered, err := s.enforcements.SumRecoveredAll(ctx)
	if err != nil {
		return domain.DashboardSnapshot{}, fmt.Errorf("dashboard_service: sum recovered: %w", err)
	}

	return domain.DashboardSnapshot{
		ActiveCases:    counts[domain.CaseActive],
		OnHoldCases:    counts[domain.CaseOnHold],
		ClosedCases:    counts[domain.CaseClosed],
		OpenTasks:      openTasks,
		TotalRecovered: recovered,
		GeneratedAt:    s.now().UTC(),
	}, nil
}
