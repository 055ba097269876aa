package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haneulsoft/caseledger/internal/domain"
)

// TimelineStore implements domain.TimelineStore using PostgreSQL.
type TimelineStore struct {
	pool *pgxpool.Pool
}

// NewTimelineStore creates a new TimelineStore.
func NewTimelineStore(pool *pgxpool.Pool) *TimelineStore {
	return &TimelineStore{pool: pool}
}

// Append adds a new event to a case's history.
func (s *TimelineStore) Append(ctx context.Context, ev domain.TimelineEvent) error {
	const query = `
		INSERT INTO timeline_events (id, case_id, kind, description, occurred_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := s.pool.Exec(ctx, query,
		ev.ID, ev.CaseID, ev.Kind, ev.Description, ev.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: append timeline event %s: %w", ev.ID, err)
	}
	return nil
}

// ListByCase returns a case's history, newest first.
func (s *TimelineStore) ListByCase(ctx context.Context, caseID string, opts domain.ListOpts) ([]domain.TimelineEvent, error) {
	query := `
		SELECT id, case_id, kind, description, occurred_at
		FROM timeline_events WHERE case_id = $1 ORDER BY occurred_at DESC`
	args := []any{caseID}
	argIdx := 2

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
		return nil, fmt.Errorf("postgres: list timeline for case %s: %w", caseID, err)
	}
	defer rows.Close()

	var events []domain.TimelineEvent
	for rows.Next() {
		var ev domain.TimelineEvent
		if err := rows.Scan(&ev.ID, &ev.CaseID, &ev.Kind, &ev.Description, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("postgres: scan timeline event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
