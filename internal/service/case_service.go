// Package service implements the business operations of the case ledger on
// top of the domain stores: case lifecycle, bond statements, enforcements,
// tasks and deadlines, attachments, and the dashboard.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haneulsoft/caseledger/internal/domain"
)

// CaseService handles case lifecycle: intake, updates, and closing.
type CaseService struct {
	cases    domain.CaseStore
	timeline domain.TimelineStore
	audit    domain.AuditStore
	bus      domain.SignalBus
	cache    domain.DashboardCache
	now      func() time.Time
	logger   *slog.Logger
}

// NewCaseService creates a CaseService with all required dependencies.
func NewCaseService(
	cases domain.CaseStore,
	timeline domain.TimelineStore,
	audit domain.AuditStore,
	bus domain.SignalBus,
	cache domain.DashboardCache,
	logger *slog.Logger,
) *CaseService {
	return &CaseService{
		cases:    cases,
		timeline: timeline,
		audit:    audit,
		bus:      bus,
		cache:    cache,
		now:      time.Now,
		logger:   logger,
	}
}

// CreateCase registers a new case. The ID and timestamps are assigned here;
// status defaults to active when the caller leaves it empty.
func (s *CaseService) CreateCase(ctx context.Context, c domain.Case) (domain.Case, error) {
	now := s.now().UTC()
	c.ID = uuid.New().String()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = domain.CaseActive
	}

	if err := s.cases.Create(ctx, c); err != nil {
		return domain.Case{}, fmt.Errorf("case_service: create: %w", err)
	}

	s.appendTimeline(ctx, c.ID, "case_created", "case registered: "+c.Title)
	s.auditLog(ctx, "case.create", map[string]any{"case_id": c.ID, "title": c.Title})
	s.invalidateDashboard(ctx)

	s.logger.InfoContext(ctx, "case_service: case created",
		slog.String("case_id", c.ID),
		slog.String("status", string(c.Status)),
	)

	return c, nil
}

// UpdateCase replaces the mutable fields of an existing case. Closed cases
// are read-only and return domain.ErrCaseClosed.
func (s *CaseService) UpdateCase(ctx context.Context, c domain.Case) (domain.Case, error) {
	existing, err := s.cases.GetByID(ctx, c.ID)
	if err != nil {
		return domain.Case{}, fmt.Errorf("case_service: get %q: %w", c.ID, err)
	}
	if existing.Status == domain.CaseClosed {
		return domain.Case{}, domain.ErrCaseClosed
	}

	c.CreatedAt = existing.CreatedAt
	c.ClosedAt = existing.ClosedAt
	c.UpdatedAt = s.now().UTC()
	if c.Status == "" {
		c.Status = existing.Status
	}

	if err := s.cases.Update(ctx, c); err != nil {
		return domain.Case{}, fmt.Errorf("case_service: update %q: %w", c.ID, err)
	}

	if c.Status != existing.Status {
		s.appendTimeline(ctx, c.ID, "status_changed",
			fmt.Sprintf("status changed: %s -> %s", existing.Status, c.Status))
		s.invalidateDashboard(ctx)
	}
	s.auditLog(ctx, "case.update", map[string]any{"case_id": c.ID})

	return c, nil
}

// CloseCase marks a case closed and records the closing time. Closing an
// already-closed case returns domain.ErrCaseClosed.
func (s *CaseService) CloseCase(ctx context.Context, id string) error {
	existing, err := s.cases.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("case_service: get %q: %w", id, err)
	}
	if existing.Status == domain.CaseClosed {
		return domain.ErrCaseClosed
	}

	closedAt := s.now().UTC()
	if err := s.cases.Close(ctx, id, closedAt); err != nil {
		return fmt.Errorf("case_service: close %q: %w", id, err)
	}

	s.appendTimeline(ctx, id, "case_closed", "case closed")
	s.auditLog(ctx, "case.close", map[string]any{"case_id": id})
	s.invalidateDashboard(ctx)
	s.publish(ctx, "case_closed", map[string]any{
		"event":   "case_closed",
		"case_id": id,
	})

	s.logger.InfoContext(ctx, "case_service: case closed",
		slog.String("case_id", id),
	)

	return nil
}

// GetCase retrieves a single case by ID.
func (s *CaseService) GetCase(ctx context.Context, id string) (domain.Case, error) {
	c, err := s.cases.GetByID(ctx, id)
	if err != nil {
		return domain.Case{}, fmt.Errorf("case_service: get %q: %w", id, err)
	}
	return c, nil
}

// GetCaseByNumber retrieves a case by its court case number.
func (s *CaseService) GetCaseByNumber(ctx context.Context, caseNumber string) (domain.Case, error) {
	c, err := s.cases.GetByNumber(ctx, caseNumber)
	if err != nil {
		return domain.Case{}, fmt.Errorf("case_service: get by number %q: %w", caseNumber, err)
	}
	return c, nil
}

// ListCases returns cases, optionally filtered by status.
func (s *CaseService) ListCases(ctx context.Context, status domain.CaseStatus, opts domain.ListOpts) ([]domain.Case, error) {
	cases, err := s.cases.List(ctx, status, opts)
	if err != nil {
		return nil, fmt.Errorf("case_service: list: %w", err)
	}
	return cases, nil
}

// Timeline returns the event history for a case, newest first.
func (s *CaseService) Timeline(ctx context.Context, caseID string, opts domain.ListOpts) ([]domain.TimelineEvent, error) {
	events, err := s.timeline.ListByCase(ctx, caseID, opts)
	if err != nil {
		return nil, fmt.Errorf("case_service: timeline %q: %w", caseID, err)
	}
	return events, nil
}

// appendTimeline records a case history event. Timeline failures are logged
// but never fail the primary operation.
func (s *CaseService) appendTimeline(ctx context.Context, caseID, kind, description string) {
	ev := domain.TimelineEvent{
		ID:          uuid.New().String(),
		CaseID:      caseID,
		Kind:        kind,
		Description: description,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.timeline.Append(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "case_service: timeline append failed",
			slog.String("case_id", caseID),
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
	}
}

func (s *CaseService) auditLog(ctx context.Context, event string, detail map[string]any) {
	if err := s.audit.Log(ctx, event, detail); err != nil {
		s.logger.WarnContext(ctx, "case_service: audit log failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

func (s *CaseService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "case_service: dashboard invalidate failed",
			slog.String("error", err.Error()),
		)
	}
}

func (s *CaseService) publish(ctx context.Context, channel string, payload map[string]any) {
	if s.bus == nil {
		return
	}
	data, _ := json.Marshal(payload)
	if err := s.bus.Publish(ctx, channel, data); err != nil {
		s.logger.WarnContext(ctx, "case_service: publish failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
}
