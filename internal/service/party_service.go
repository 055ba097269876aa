package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haneulsoft/caseledger/internal/domain"
)

// PartyService manages creditor and debtor records. Stored values are always
// unmasked; masking happens in the handlers.
type PartyService struct {
	parties domain.PartyStore
	audit   domain.AuditStore
	now     func() time.Time
	logger  *slog.Logger
}

// NewPartyService creates a PartyService with all required dependencies.
func NewPartyService(parties domain.PartyStore, audit domain.AuditStore, logger *slog.Logger) *PartyService {
	return &PartyService{
		parties: parties,
		audit:   audit,
		now:     time.Now,
		logger:  logger,
	}
}

// CreateParty registers a new creditor or debtor.
func (s *PartyService) CreateParty(ctx context.Context, p domain.Party) (domain.Party, error) {
	p.ID = uuid.New().String()
	p.CreatedAt = s.now().UTC()
	if p.Role == "" {
		p.Role = domain.PartyDebtor
	}

	if err := s.parties.Create(ctx, p); err != nil {
		return domain.Party{}, fmt.Errorf("party_service: create: %w", err)
	}

	s.auditLog(ctx, "party.create", map[string]any{
		"party_id": p.ID,
		"role":     string(p.Role),
	})

	return p, nil
}

// UpdateParty replaces the mutable fields of an existing party.
func (s *PartyService) UpdateParty(ctx context.Context, p domain.Party) (domain.Party, error) {
	existing, err := s.parties.GetByID(ctx, p.ID)
	if err != nil {
		return domain.Party{}, fmt.Errorf("party_service: get %q: %w", p.ID, err)
	}

	p.CreatedAt = existing.CreatedAt
	if p.Role == "" {
		p.Role = existing.Role
	}

	if err := s.parties.Update(ctx, p); err != nil {
		return domain.Party{}, fmt.Errorf("party_service: update %q: %w", p.ID, err)
	}

	s.auditLog(ctx, "party.update", map[string]any{"party_id": p.ID})
	return p, nil
}

// GetParty retrieves a single party by ID.
func (s *PartyService) GetParty(ctx context.Context, id string) (domain.Party, error) {
	p, err := s.parties.GetByID(ctx, id)
	if err != nil {
		return domain.Party{}, fmt.Errorf("party_service: get %q: %w", id, err)
	}
	return p, nil
}

// ListParties returns parties, optionally filtered by role.
func (s *PartyService) ListParties(ctx context.Context, role domain.PartyRole, opts domain.ListOpts) ([]domain.Party, error) {
	parties, err := s.parties.List(ctx, role, opts)
	if err != nil {
		return nil, fmt.Errorf("party_service: list: %w", err)
	}
	return parties, nil
}

func (s *PartyService) auditLog(ctx context.Context, event string, detail map[string]any) {
	if err := s.audit.Log(ctx, event, detail); err != nil {
		s.logger.WarnContext(ctx, "party_service: audit log failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}
