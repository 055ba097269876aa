package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/haneulsoft/caseledger/internal/domain"
)

// AttachmentService stores case documents: bytes in the blob store, metadata
// in Postgres.
type AttachmentService struct {
	attachments domain.AttachmentStore
	cases       domain.CaseStore
	timeline    domain.TimelineStore
	writer      domain.BlobWriter
	reader      domain.BlobReader
	deleter     domain.BlobDeleter
	now         func() time.Time
	logger      *slog.Logger
}

// NewAttachmentService creates an AttachmentService with all required
// dependencies.
func NewAttachmentService(
	attachments domain.AttachmentStore,
	cases domain.CaseStore,
	timeline domain.TimelineStore,
	writer domain.BlobWriter,
	reader domain.BlobReader,
	deleter domain.BlobDeleter,
	logger *slog.Logger,
) *AttachmentService {
	return &AttachmentService{
		attachments: attachments,
		cases:       cases,
		timeline:    timeline,
		writer:      writer,
		reader:      reader,
		deleter:     deleter,
		now:         time.Now,
		logger:      logger,
	}
}

// Upload stores a document for a case. The blob is written first so a failed
// upload never leaves dangling metadata. Empty uploads are rejected with
// domain.ErrEmptyAttachment.
func (s *AttachmentService) Upload(ctx context.Context, caseID, fileName, contentType string, size int64, data io.Reader) (domain.Attachment, error) {
	if size <= 0 {
		return domain.Attachment{}, domain.ErrEmptyAttachment
	}

	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return domain.Attachment{}, fmt.Errorf("attachment_service: get case %q: %w", caseID, err)
	}
	if c.Status == domain.CaseClosed {
		return domain.Attachment{}, domain.ErrCaseClosed
	}

	id := uuid.New().String()
	blobPath := path.Join("cases", caseID, "attachments", id, fileName)

	if err := s.writer.Put(ctx, blobPath, data, contentType); err != nil {
		return domain.Attachment{}, fmt.Errorf("attachment_service: upload blob: %w", err)
	}

	a := domain.Attachment{
		ID:          id,
		CaseID:      caseID,
		FileName:    fileName,
		Path:        blobPath,
		ContentType: contentType,
		Size:        size,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.attachments.Create(ctx, a); err != nil {
		// Best effort cleanup of the orphaned blob.
		if delErr := s.deleter.Delete(ctx, blobPath); delErr != nil {
			s.logger.WarnContext(ctx, "attachment_service: orphan blob cleanup failed",
				slog.String("path", blobPath),
				slog.String("error", delErr.Error()),
			)
		}
		return domain.Attachment{}, fmt.Errorf("attachment_service: create metadata: %w", err)
	}

	s.appendTimeline(ctx, caseID, "attachment_added", "document uploaded: "+fileName)

	s.logger.InfoContext(ctx, "attachment_service: uploaded",
		slog.String("attachment_id", id),
		slog.String("case_id", caseID),
		slog.Int64("size", size),
	)

	return a, nil
}

// Download returns the metadata and an open reader for an attachment. The
// caller must close the reader.
func (s *AttachmentService) Download(ctx context.Context, id string) (domain.Attachment, io.ReadCloser, error) {
	a, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		return domain.Attachment{}, nil, fmt.Errorf("attachment_service: get %q: %w", id, err)
	}

	body, err := s.reader.Get(ctx, a.Path)
	if err != nil {
		return domain.Attachment{}, nil, fmt.Errorf("attachment_service: read blob %q: %w", a.Path, err)
	}

	return a, body, nil
}

// ListByCase returns all attachment metadata for a case.
func (s *AttachmentService) ListByCase(ctx context.Context, caseID string) ([]domain.Attachment, error) {
	list, err := s.attachments.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("attachment_service: list case %q: %w", caseID, err)
	}
	return list, nil
}

// Delete removes an attachment's blob and metadata.
func (s *AttachmentService) Delete(ctx context.Context, id string) error {
	a, err := s.attachments.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("attachment_service: get %q: %w", id, err)
	}

	if err := s.deleter.Delete(ctx, a.Path); err != nil {
		return fmt.Errorf("attachment_service: delete blob %q: %w", a.Path, err)
	}

	if err := s.attachments.Delete(ctx, id); err != nil {
		return fmt.Errorf("attachment_service: delete metadata %q: %w", id, err)
	}

	return nil
}

func (s *AttachmentService) appendTimeline(ctx context.Context, caseID, kind, description string) {
	ev := domain.TimelineEvent{
		ID:          uuid.New().String(),
		CaseID:      caseID,
		Kind:        kind,
		Description: description,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.timeline.Append(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "attachment_service: timeline append failed",
			slog.String("case_id", caseID),
			slog.String("error", err.Error()),
		)
	}
}
