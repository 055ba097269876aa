package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haneulsoft/caseledger/internal/domain"
)

// CaseStore implements domain.CaseStore using PostgreSQL.
type CaseStore struct {
	pool *pgxpool.Pool
}

// NewCaseStore creates a new CaseStore backed by the given connection pool.
func NewCaseStore(pool *pgxpool.Pool) *CaseStore {
	return &CaseStore{pool: pool}
}

const caseSelectCols = `id, case_number, court, title, status, creditor_id, debtor_id,
	assignee_id, created_at, updated_at, closed_at`

// Create inserts a new case.
func (s *CaseStore) Create(ctx context.Context, c domain.Case) error {
	const query = `
		INSERT INTO cases (id, case_number, court, title, status, creditor_id, debtor_id, assignee_id, created_at, updated_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := s.pool.Exec(ctx, query,
		c.ID, c.CaseNumber, c.Court, c.Title, string(c.Status),
		c.CreditorID, c.DebtorID, c.AssigneeID, c.CreatedAt, c.UpdatedAt, c.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create case %s: %w", c.ID, err)
	}
	return nil
}

// Update replaces the mutable fields of an existing case.
func (s *CaseStore) Update(ctx context.Context, c domain.Case) error {
	const query = `
		UPDATE cases SET
			case_number = $2, court = $3, title = $4, status = $5,
			creditor_id = $6, debtor_id = $7, assignee_id = $8, updated_at = NOW()
		WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query,
		c.ID, c.CaseNumber, c.Court, c.Title, string(c.Status),
		c.CreditorID, c.DebtorID, c.AssigneeID,
	)
	if err != nil {
		return fmt.Errorf("postgres: update case %s: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Close marks a case closed and records the closing time.
func (s *CaseStore) Close(ctx context.Context, id string, closedAt time.Time) error {
	const query = `
		UPDATE cases SET status = 'closed', closed_at = $2, updated_at = NOW()
		WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, id, closedAt)
	if err != nil {
		return fmt.Errorf("postgres: close case %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID retrieves a single case by ID.
func (s *CaseStore) GetByID(ctx context.Context, id string) (domain.Case, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+caseSelectCols+` FROM cases WHERE id = $1`, id)
	c, err := scanCase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Case{}, domain.ErrNotFound
		}
		return domain.Case{}, fmt.Errorf("postgres: get case %s: %w", id, err)
	}
	return c, nil
}

// GetByNumber retrieves a case by its court case number.
func (s *CaseStore) GetByNumber(ctx context.Context, caseNumber string) (domain.Case, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+caseSelectCols+` FROM cases WHERE case_number = $1`, caseNumber)
	c, err := scanCase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Case{}, domain.ErrNotFound
		}
		return domain.Case{}, fmt.Errorf("postgres: get case by number %s: %w", caseNumber, err)
	}
	return c, nil
}

// List returns cases, optionally filtered by status, with pagination.
func (s *CaseStore) List(ctx context.Context, status domain.CaseStatus, opts domain.ListOpts) ([]domain.Case, error) {
	query := `SELECT ` + caseSelectCols + ` FROM cases WHERE 1=1`
	args := []any{}
	argIdx := 1

	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, string(status))
		argIdx++
	}
	if opts.Since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *opts.Until)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

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
		return nil, fmt.Errorf("postgres: list cases: %w", err)
	}
	defer rows.Close()

	var cases []domain.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan case: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// CountByStatus returns the number of cases in each status.
func (s *CaseStore) CountByStatus(ctx context.Context) (map[domain.CaseStatus]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM cases GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("postgres: count cases: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.CaseStatus]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("postgres: scan case count: %w", err)
		}
		counts[domain.CaseStatus(status)] = n
	}
	return counts, rows.Err()
}

func scanCase(scanner interface{ Scan(dest ...any) error }) (domain.Case, error) {
	var c domain.Case
	var status string
	err := scanner.Scan(
		&c.ID, &c.CaseNumber, &c.Court, &c.Title, &status,
		&c.CreditorID, &c.DebtorID, &c.AssigneeID,
		&c.CreatedAt, &c.UpdatedAt, &c.ClosedAt,
	)
	if err != nil {
		return domain.Case{}, err
	}
	c.Status = domain.CaseStatus(status)
	return c, nil
}
