package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haneulsoft/caseledger/internal/domain"
)

// EnforcementStore implements domain.EnforcementStore using PostgreSQL.
type EnforcementStore struct {
	pool *pgxpool.Pool
}

// NewEnforcementStore creates a new EnforcementStore.
func NewEnforcementStore(pool *pgxpool.Pool) *EnforcementStore {
	return &EnforcementStore{pool: pool}
}

// Create inserts a new enforcement record.
func (s *EnforcementStore) Create(ctx context.Context, e domain.Enforcement) error {
	const query = `
		INSERT INTO enforcements (id, case_id, kind, recovered, note, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.pool.Exec(ctx, query,
		e.ID, e.CaseID, string(e.Kind), e.Recovered.Float64(), e.Note, e.OccurredAt, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create enforcement %s: %w", e.ID, err)
	}
	return nil
}

// ListByCase returns enforcement records for a case, newest first.
func (s *EnforcementStore) ListByCase(ctx context.Context, caseID string, opts domain.ListOpts) ([]domain.Enforcement, error) {
	query := `
		SELECT id, case_id, kind, recovered, note, occurred_at, created_at
		FROM enforcements WHERE case_id = $1`
	args := []any{caseID}
	argIdx := 2

	if opts.Since != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}

	query += " ORDER BY occurred_at DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list enforcements for case %s: %w", caseID, err)
	}
	defer rows.Close()

	var list []domain.Enforcement
	for rows.Next() {
		var e domain.Enforcement
		var kind string
		var recovered float64
		if err := rows.Scan(&e.ID, &e.CaseID, &kind, &recovered, &e.Note, &e.OccurredAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan enforcement: %w", err)
		}
		e.Kind = domain.EnforcementKind(kind)
		e.Recovered = domain.Amount(recovered)
		list = append(list, e)
	}
	return list, rows.Err()
}

// SumRecovered returns the total recovered amount for one case.
func (s *EnforcementStore) SumRecovered(ctx context.Context, caseID string) (float64, error) {
	var sum float64
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(recovered), 0) FROM enforcements WHERE case_id = $1`,
		caseID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("postgres: sum recovered for case %s: %w", caseID, err)
	}
	return sum, nil
}

// SumRecoveredAll returns the total recovered amount across every case.
func (s *EnforcementStore) SumRecoveredAll(ctx context.Context) (float64, error) {
	var sum float64
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(recovered), 0) FROM enforcements`,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("postgres: sum recovered: %w", err)
	}
	return sum, nil
}
