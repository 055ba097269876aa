package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haneulsoft/caseledger/internal/domain"
)

// AttachmentStore implements domain.AttachmentStore using PostgreSQL.
type AttachmentStore struct {
	pool *pgxpool.Pool
}

// NewAttachmentStore creates a new AttachmentStore.
func NewAttachmentStore(pool *pgxpool.Pool) *AttachmentStore {
	return &AttachmentStore{pool: pool}
}

// Create inserts attachment metadata. The file bytes are written to blob
// storage by the caller before this row exists.
func (s *AttachmentStore) Create(ctx context.Context, a domain.Attachment) error {
	const query = `
		INSERT INTO attachments (id, case_id, file_name, path, content_type, size, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.pool.Exec(ctx, query,
		a.ID, a.CaseID, a.FileName, a.Path, a.ContentType, a.Size, a.UploadedBy, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create attachment %s: %w", a.ID, err)
	}
	return nil
}

// GetByID retrieves attachment metadata by ID.
func (s *AttachmentStore) GetByID(ctx context.Context, id string) (domain.Attachment, error) {
	const query = `
		SELECT id, case_id, file_name, path, content_type, size, uploaded_by, created_at
		FROM attachments WHERE id = $1`
	var a domain.Attachment
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.CaseID, &a.FileName, &a.Path, &a.ContentType, &a.Size, &a.UploadedBy, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Attachment{}, domain.ErrNotFound
		}
		return domain.Attachment{}, fmt.Errorf("postgres: get attachment %s: %w", id, err)
	}
	return a, nil
}

// ListByCase returns all attachments for a case, newest first.
func (s *AttachmentStore) ListByCase(ctx context.Context, caseID string) ([]domain.Attachment, error) {
	const query = `
		SELECT id, case_id, file_name, path, content_type, size, uploaded_by, created_at
		FROM attachments WHERE case_id = $1 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list attachments for case %s: %w", caseID, err)
	}
	defer rows.Close()

	var list []domain.Attachment
	for rows.Next() {
		var a domain.Attachment
		if err := rows.Scan(&a.ID, &a.CaseID, &a.FileName, &a.Path, &a.ContentType, &a.Size, &a.UploadedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan attachment: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Delete removes attachment metadata.
func (s *AttachmentStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete attachment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
