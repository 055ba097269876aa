package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haneulsoft/caseledger/internal/domain"
)

// BondStore implements domain.BondStore using PostgreSQL. Tranches and
// expenses are stored as JSONB arrays on the bond row; the end bound
// serializes through domain.Bound, so an open-ended bound is persisted as
// the literal "dynamic" rather than any date.
type BondStore struct {
	pool *pgxpool.Pool
}

// NewBondStore creates a new BondStore.
func NewBondStore(pool *pgxpool.Pool) *BondStore {
	return &BondStore{pool: pool}
}

// Upsert inserts or wholesale-replaces the bond record for a case. Replacement
// is destructive: no versioning, no partial-field merge.
func (s *BondStore) Upsert(ctx context.Context, b domain.BondRecord) error {
	tranchesJSON, err := json.Marshal(b.Tranches)
	if err != nil {
		return fmt.Errorf("postgres: marshal tranches for case %s: %w", b.CaseID, err)
	}
	expensesJSON, err := json.Marshal(b.Expenses)
	if err != nil {
		return fmt.Errorf("postgres: marshal expenses for case %s: %w", b.CaseID, err)
	}

	const query = `
		INSERT INTO bonds (id, case_id, principal, tranches, expenses, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (case_id) DO UPDATE SET
			principal = EXCLUDED.principal,
			tranches = EXCLUDED.tranches,
			expenses = EXCLUDED.expenses,
			updated_at = EXCLUDED.updated_at`
	_, err = s.pool.Exec(ctx, query,
		b.ID, b.CaseID, b.Principal.Float64(), tranchesJSON, expensesJSON,
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert bond for case %s: %w", b.CaseID, err)
	}
	return nil
}

// GetByCaseID returns the bond record attached to a case.
func (s *BondStore) GetByCaseID(ctx context.Context, caseID string) (domain.BondRecord, error) {
	const query = `
		SELECT id, case_id, principal, tranches, expenses, created_at, updated_at
		FROM bonds WHERE case_id = $1`
	b, err := scanBond(s.pool.QueryRow(ctx, query, caseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.BondRecord{}, domain.ErrNotFound
		}
		return domain.BondRecord{}, fmt.Errorf("postgres: get bond for case %s: %w", caseID, err)
	}
	return b, nil
}

// ListAll returns every bond record. Used by dashboard aggregation, which
// recomputes open-ended accrual fresh on every pass.
func (s *BondStore) ListAll(ctx context.Context) ([]domain.BondRecord, error) {
	const query = `
		SELECT id, case_id, principal, tranches, expenses, created_at, updated_at
		FROM bonds ORDER BY created_at`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list bonds: %w", err)
	}
	defer rows.Close()

	var bonds []domain.BondRecord
	for rows.Next() {
		b, err := scanBond(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan bond: %w", err)
		}
		bonds = append(bonds, b)
	}
	return bonds, rows.Err()
}

// Delete removes the bond record for a case.
func (s *BondStore) Delete(ctx context.Context, caseID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM bonds WHERE case_id = $1`, caseID)
	if err != nil {
		return fmt.Errorf("postgres: delete bond for case %s: %w", caseID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanBond(scanner interface{ Scan(dest ...any) error }) (domain.BondRecord, error) {
	var b domain.BondRecord
	var principal float64
	var tranchesJSON, expensesJSON []byte

	err := scanner.Scan(
		&b.ID, &b.CaseID, &principal, &tranchesJSON, &expensesJSON,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return domain.BondRecord{}, err
	}
	b.Principal = domain.Amount(principal)

	if len(tranchesJSON) > 0 {
		if err := json.Unmarshal(tranchesJSON, &b.Tranches); err != nil {
			return domain.BondRecord{}, fmt.Errorf("unmarshal tranches: %w", err)
		}
	}
	if len(expensesJSON) > 0 {
		if err := json.Unmarshal(expensesJSON, &b.Expenses); err != nil {
			return domain.BondRecord{}, fmt.Errorf("unmarshal expenses: %w", err)
		}
	}
	return b, nil
}
