package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haneulsoft/caseledger/internal/accrual"
	"github.com/haneulsoft/caseledger/internal/domain"
)

// maxTranches caps the number of interest tranches per bond record. The
// accrual engine itself handles any count; the cap is claim-shape policy
// enforced here at the service boundary.
const maxTranches = 2

// BondStatement is a bond record evaluated at a point in time: the stored
// figures plus the computed interest, expense, and grand totals. Expenses
// carries only the displayable entries (amount > 0); ExpenseTotal sums all
// of them regardless.
type BondStatement struct {
	Record        domain.BondRecord `json:"record"`
	Interest      []float64         `json:"interest"`
	InterestTotal float64           `json:"interest_total"`
	Expenses      []domain.Expense  `json:"expenses"`
	ExpenseTotal  float64           `json:"expense_total"`
	Total         float64           `json:"total"`
	EvaluatedAt   time.Time         `json:"evaluated_at"`
}

// BondService manages bond records and produces evaluated statements.
type BondService struct {
	bonds    domain.BondStore
	cases    domain.CaseStore
	timeline domain.TimelineStore
	audit    domain.AuditStore
	bus      domain.SignalBus
	now      func() time.Time
	logger   *slog.Logger
}

// NewBondService creates a BondService with all required dependencies.
func NewBondService(
	bonds domain.BondStore,
	cases domain.CaseStore,
	timeline domain.TimelineStore,
	audit domain.AuditStore,
	bus domain.SignalBus,
	logger *slog.Logger,
) *BondService {
	return &BondService{
		bonds:    bonds,
		cases:    cases,
		timeline: timeline,
		audit:    audit,
		bus:      bus,
		now:      time.Now,
		logger:   logger,
	}
}

// SaveBond replaces the bond record for a case wholesale. It enforces the
// tranche cap, rejects edits on closed cases, and publishes a bond_updated
// event on success. Malformed money or date fields inside the record have
// already collapsed to their zero values during decoding; they are stored
// as-is and simply contribute nothing to the totals.
func (s *BondService) SaveBond(ctx context.Context, caseID string, b domain.BondRecord) (domain.BondRecord, error) {
	if len(b.Tranches) > maxTranches {
		return domain.BondRecord{}, domain.ErrTooManyTranches
	}

	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return domain.BondRecord{}, fmt.Errorf("bond_service: get case %q: %w", caseID, err)
	}
	if c.Status == domain.CaseClosed {
		return domain.BondRecord{}, domain.ErrCaseClosed
	}

	now := s.now().UTC()
	b.CaseID = caseID
	b.UpdatedAt = now

	existing, err := s.bonds.GetByCaseID(ctx, caseID)
	switch {
	case err == nil:
		b.ID = existing.ID
		b.CreatedAt = existing.CreatedAt
	case errors.Is(err, domain.ErrNotFound):
		b.ID = uuid.New().String()
		b.CreatedAt = now
	default:
		return domain.BondRecord{}, fmt.Errorf("bond_service: lookup existing for case %q: %w", caseID, err)
	}

	if err := s.bonds.Upsert(ctx, b); err != nil {
		return domain.BondRecord{}, fmt.Errorf("bond_service: upsert case %q: %w", caseID, err)
	}

	s.appendTimeline(ctx, caseID, "bond_updated", "bond record replaced")
	s.auditLog(ctx, "bond.save", map[string]any{
		"case_id":  caseID,
		"tranches": len(b.Tranches),
		"expenses": len(b.Expenses),
	})
	s.publish(ctx, "bond_updated", map[string]any{
		"event":   "bond_updated",
		"case_id": caseID,
	})

	s.logger.InfoContext(ctx, "bond_service: bond saved",
		slog.String("case_id", caseID),
		slog.Int("tranches", len(b.Tranches)),
	)

	return b, nil
}

// GetStatement returns the bond record for a case evaluated at the current
// time. Open-ended tranches are resolved against now on every call, so two
// reads a day apart return different interest figures.
func (s *BondService) GetStatement(ctx context.Context, caseID string) (BondStatement, error) {
	b, err := s.bonds.GetByCaseID(ctx, caseID)
	if err != nil {
		return BondStatement{}, fmt.Errorf("bond_service: get case %q: %w", caseID, err)
	}
	return s.evaluate(b), nil
}

// ListStatements returns all bond records evaluated at a single shared
// instant, so figures across cases are comparable.
func (s *BondService) ListStatements(ctx context.Context) ([]BondStatement, error) {
	records, err := s.bonds.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("bond_service: list: %w", err)
	}

	now := s.now()
	statements := make([]BondStatement, 0, len(records))
	for _, b := range records {
		statements = append(statements, evaluateAt(b, now))
	}
	return statements, nil
}

// DeleteBond removes the bond record for a case.
func (s *BondService) DeleteBond(ctx context.Context, caseID string) error {
	if err := s.bonds.Delete(ctx, caseID); err != nil {
		return fmt.Errorf("bond_service: delete case %q: %w", caseID, err)
	}
	s.auditLog(ctx, "bond.delete", map[string]any{"case_id": caseID})
	return nil
}

// OutstandingTotal sums the evaluated grand totals of every bond record at
// the current time.
func (s *BondService) OutstandingTotal(ctx context.Context) (float64, error) {
	records, err := s.bonds.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("bond_service: list for outstanding total: %w", err)
	}

	now := s.now()
	var sum float64
	for _, b := range records {
		sum += accrual.Total(b, now)
	}
	return sum, nil
}

func (s *BondService) evaluate(b domain.BondRecord) BondStatement {
	return evaluateAt(b, s.now())
}

func evaluateAt(b domain.BondRecord, now time.Time) BondStatement {
	interest := accrual.InterestTotals(b, now)

	var interestTotal float64
	for _, v := range interest {
		interestTotal += v
	}

	return BondStatement{
		Record:        b,
		Interest:      interest,
		InterestTotal: interestTotal,
		Expenses:      accrual.DisplayableExpenses(b.Expenses),
		ExpenseTotal:  accrual.SumExpenses(b.Expenses),
		Total:         accrual.Total(b, now),
		EvaluatedAt:   now,
	}
}

func (s *BondService) appendTimeline(ctx context.Context, caseID, kind, description string) {
	ev := domain.TimelineEvent{
		ID:          uuid.New().String(),
		CaseID:      caseID,
		Kind:        kind,
		Description: description,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.timeline.Append(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "bond_service: timeline append failed",
			slog.String("case_id", caseID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *BondService) auditLog(ctx context.Context, event string, detail map[string]any) {
	if err := s.audit.Log(ctx, event, detail); err != nil {
		s.logger.WarnContext(ctx, "bond_service: audit log failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

func (s *BondService) publish(ctx context.Context, channel string, payload map[string]any) {
	if s.bus == nil {
		return
	}
	data, _ := json.Marshal(payload)
	if err := s.bus.Publish(ctx, channel, data); err != nil {
		s.logger.WarnContext(ctx, "bond_service: publish failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
}
