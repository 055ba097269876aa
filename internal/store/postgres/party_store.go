package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haneulsoft/caseledger/internal/domain"
)

// PartyStore implements domain.PartyStore using PostgreSQL.
type PartyStore struct {
	pool *pgxpool.Pool
}

// NewPartyStore creates a new PartyStore.
func NewPartyStore(pool *pgxpool.Pool) *PartyStore {
	return &PartyStore{pool: pool}
}

// Create inserts a new party record.
func (s *PartyStore) Create(ctx context.Context, p domain.Party) error {
	const query = `
		INSERT INTO parties (id, role, name, phone, resident_no, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.pool.Exec(ctx, query,
		p.ID, string(p.Role), p.Name, p.Phone, p.ResidentNo, p.Address, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create party %s: %w", p.ID, err)
	}
	return nil
}

// Update replaces the mutable fields of an existing party.
func (s *PartyStore) Update(ctx context.Context, p domain.Party) error {
	const query = `
		UPDATE parties SET role = $2, name = $3, phone = $4, resident_no = $5, address = $6
		WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query,
		p.ID, string(p.Role), p.Name, p.Phone, p.ResidentNo, p.Address,
	)
	if err != nil {
		return fmt.Errorf("postgres: update party %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID retrieves a single party by ID.
func (s *PartyStore) GetByID(ctx context.Context, id string) (domain.Party, error) {
	const query = `
		SELECT id, role, name, phone, resident_no, address, created_at
		FROM parties WHERE id = $1`
	var p domain.Party
	var role string
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &role, &p.Name, &p.Phone, &p.ResidentNo, &p.Address, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Party{}, domain.ErrNotFound
		}
		return domain.Party{}, fmt.Errorf("postgres: get party %s: %w", id, err)
	}
	p.Role = domain.PartyRole(role)
	return p, nil
}

// List returns parties, optionally filtered by role, with pagination.
func (s *PartyStore) List(ctx context.Context, role domain.PartyRole, opts domain.ListOpts) ([]domain.Party, error) {
	query := `SELECT id, role, name, phone, resident_no, address, created_at FROM parties WHERE 1=1`
	args := []any{}
	argIdx := 1

	if role != "" {
		query += fmt.Sprintf(" AND role = $%d", argIdx)
		args = append(args, string(role))
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
		return nil, fmt.Errorf("postgres: list parties: %w", err)
	}
	defer rows.Close()

	var parties []domain.Party
	for rows.Next() {
		var p domain.Party
		var r string
		if err := rows.Scan(&p.ID, &r, &p.Name, &p.Phone, &p.ResidentNo, &p.Address, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan party: %w", err)
		}
		p.Role = domain.PartyRole(r)
		parties = append(parties, p)
	}
	return parties, rows.Err()
}
