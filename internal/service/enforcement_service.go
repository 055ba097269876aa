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

// EnforcementService records collection activity against cases.
type EnforcementService struct {
	enforcements domain.EnforcementStore
	cases        domain.CaseStore
	timeline     domain.TimelineStore
	audit        domain.AuditStore
	bus          domain.SignalBus
	cache        domain.DashboardCache
	now          func() time.Time
	logger       *slog.Logger
}

// NewEnforcementService creates an EnforcementService with all required
// dependencies.
func NewEnforcementService(
	enforcements domain.EnforcementStore,
	cases domain.CaseStore,
	timeline domain.TimelineStore,
	audit domain.AuditStore,
	bus domain.SignalBus,
	cache domain.DashboardCache,
	logger *slog.Logger,
) *EnforcementService {
	return &EnforcementService{
		enforcements: enforcements,
		cases:        cases,
		timeline:     timeline,
		audit:        audit,
		bus:          bus,
		cache:        cache,
		now:          time.Now,
		logger:       logger,
	}
}

// Record registers a collection action against a case. Closed cases reject
// new enforcements with domain.ErrCaseClosed.
func (s *EnforcementService) Record(ctx context.Context, e domain.Enforcement) (domain.Enforcement, error) {
	c, err := s.cases.GetByID(ctx, e.CaseID)
	if err != nil {
		return domain.Enforcement{}, fmt.Errorf("enforcement_service: get case %q: %w", e.CaseID, err)
	}
	if c.Status == domain.CaseClosed {
		return domain.Enforcement{}, domain.ErrCaseClosed
	}

	now := s.now().UTC()
	e.ID = uuid.New().String()
	e.CreatedAt = now
	if e.OccurredAt.IsZero() {
		e.OccurredAt = now
	}
	if e.Kind == "" {
		e.Kind = domain.EnforcementOther
	}

	if err := s.enforcements.Create(ctx, e); err != nil {
		return domain.Enforcement{}, fmt.Errorf("enforcement_service: create: %w", err)
	}

	s.appendTimeline(ctx, e.CaseID, "enforcement",
		fmt.Sprintf("enforcement recorded: %s", e.Kind))
	s.auditLog(ctx, "enforcement.record", map[string]any{
		"case_id":   e.CaseID,
		"kind":      string(e.Kind),
		"recovered": e.Recovered.Float64(),
	})

	// Recovered amounts change the dashboard totals.
	if e.Recovered.Float64() > 0 {
		s.invalidateDashboard(ctx)
	}

	s.publish(ctx, "enforcement_recorded", map[string]any{
		"event":     "enforcement_recorded",
		"case_id":   e.CaseID,
		"kind":      string(e.Kind),
		"recovered": e.Recovered.Float64(),
	})

	return e, nil
}

// ListByCase returns the enforcement history for a case.
func (s *EnforcementService) ListByCase(ctx context.Context, caseID string, opts domain.ListOpts) ([]domain.Enforcement, error) {
	list, err := s.enforcements.ListByCase(ctx, caseID, opts)
	if err != nil {
		return nil, fmt.Errorf("enforcement_service: list case %q: %w", caseID, err)
	}
	return list, nil
}

// SumRecovered returns the total amount recovered for a single case.
func (s *EnforcementService) SumRecovered(ctx context.Context, caseID string) (float64, error) {
	sum, err := s.enforcements.SumRecovered(ctx, caseID)
	if err != nil {
		return 0, fmt.Errorf("enforcement_service: sum case %q: %w", caseID, err)
	}
	return sum, nil
}

func (s *EnforcementService) appendTimeline(ctx context.Context, caseID, kind, description string) {
	ev := domain.TimelineEvent{
		ID:          uuid.New().String(),
		CaseID:      caseID,
		Kind:        kind,
		Description: description,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.timeline.Append(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "enforcement_service: timeline append failed",
			slog.String("case_id", caseID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *EnforcementService) auditLog(ctx context.Context, event string, detail map[string]any) {
	if err := s.audit.Log(ctx, event, detail); err != nil {
		s.logger.WarnContext(ctx, "enforcement_service: audit log failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

func (s *EnforcementService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "enforcement_service: dashboard invalidate failed",
			slog.String("error", err.Error()),
		)
	}
}

func (s *EnforcementService) publish(ctx context.Context, channel string, payload map[string]any) {
	if s.bus == nil {
		return
	}
	data, _ := json.Marshal(payload)
	if err := s.bus.Publish(ctx, channel, data); err != nil {
		s.logger.WarnContext(ctx, "enforcement_service: publish failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
}
