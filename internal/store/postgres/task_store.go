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

// TaskStore implements domain.TaskStore using PostgreSQL.
type TaskStore struct {
	pool *pgxpool.Pool
}

// NewTaskStore creates a new TaskStore.
func NewTaskStore(pool *pgxpool.Pool) *TaskStore {
	return &TaskStore{pool: pool}
}

const taskSelectCols = `id, case_id, kind, title, detail, status, assigned_to,
	due_date, created_at, completed_at`

// Create inserts a new task.
func (s *TaskStore) Create(ctx context.Context, t domain.Task) error {
	const query = `
		INSERT INTO tasks (id, case_id, kind, title, detail, status, assigned_to, due_date, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.pool.Exec(ctx, query,
		t.ID, t.CaseID, string(t.Kind), t.Title, t.Detail, string(t.Status),
		t.AssignedTo, t.DueDate, t.CreatedAt, t.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create task %s: %w", t.ID, err)
	}
	return nil
}

// Update replaces the mutable fields of an existing task.
func (s *TaskStore) Update(ctx context.Context, t domain.Task) error {
	const query = `
		UPDATE tasks SET
			kind = $2, title = $3, detail = $4, status = $5,
			assigned_to = $6, due_date = $7
		WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query,
		t.ID, string(t.Kind), t.Title, t.Detail, string(t.Status), t.AssignedTo, t.DueDate,
	)
	if err != nil {
		return fmt.Errorf("postgres: update task %s: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Complete marks a task done and records the completion time.
func (s *TaskStore) Complete(ctx context.Context, id string, completedAt time.Time) error {
	const query = `
		UPDATE tasks SET status = 'done', completed_at = $2 WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, id, completedAt)
	if err != nil {
		return fmt.Errorf("postgres: complete task %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID retrieves a single task by ID.
func (s *TaskStore) GetByID(ctx context.Context, id string) (domain.Task, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+taskSelectCols+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Task{}, domain.ErrNotFound
		}
		return domain.Task{}, fmt.Errorf("postgres: get task %s: %w", id, err)
	}
	return t, nil
}

// ListByCase returns tasks for a case, newest first.
func (s *TaskStore) ListByCase(ctx context.Context, caseID string, opts domain.ListOpts) ([]domain.Task, error) {
	query := `SELECT ` + taskSelectCols + ` FROM tasks WHERE case_id = $1 ORDER BY created_at DESC`
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
		return nil, fmt.Errorf("postgres: list tasks for case %s: %w", caseID, err)
	}
	defer rows.Close()

	return scanTaskRows(rows)
}

// ListOpenWithDueDate returns every unfinished task that has a due date,
// soonest deadline first. The deadline tracker scans this list.
func (s *TaskStore) ListOpenWithDueDate(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+taskSelectCols+` FROM tasks
		 WHERE status <> 'done' AND due_date IS NOT NULL
		 ORDER BY due_date`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list due tasks: %w", err)
	}
	defer rows.Close()

	return scanTaskRows(rows)
}

// CountOpen returns the number of unfinished tasks.
func (s *TaskStore) CountOpen(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE status <> 'done'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: count open tasks: %w", err)
	}
	return n, nil
}

func scanTask(scanner interface{ Scan(dest ...any) error }) (domain.Task, error) {
	var t domain.Task
	var kind, status string
	err := scanner.Scan(
		&t.ID, &t.CaseID, &kind, &t.Title, &t.Detail, &status,
		&t.AssignedTo, &t.DueDate, &t.CreatedAt, &t.CompletedAt,
	)
	if err != nil {
		return domain.Task{}, err
	}
	t.Kind = domain.TaskKind(kind)
	t.Status = domain.TaskStatus(status)
	return t, nil
}

func scanTaskRows(rows pgx.Rows) ([]domain.Task, error) {
	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
