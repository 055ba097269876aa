package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/haneulsoft/caseledger/internal/domain"
)

// multipartThreshold is the export size above which the archiver switches
// from a single PutObject to a multipart upload.
const multipartThreshold = 2 * minPartSize

// AuditArchiveStore is the narrow view of the audit store required by the
// archiver: the time-ranged read plus the post-export purge. The Postgres
// AuditStore satisfies it.
type AuditArchiveStore interface {
	ListBefore(ctx context.Context, before time.Time) ([]domain.AuditEntry, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// ArchiveImpl implements domain.Archiver by exporting aged audit-log rows to
// JSONL objects in S3 and then purging them from the primary store. The
// purge runs only after the upload has succeeded, so a failed export never
// loses rows.
type ArchiveImpl struct {
	writer domain.BlobWriter
	audit  AuditArchiveStore
}

// NewArchiver creates a new ArchiveImpl.
func NewArchiver(writer domain.BlobWriter, audit AuditArchiveStore) *ArchiveImpl {
	return &ArchiveImpl{
		writer: writer,
		audit:  audit,
	}
}

// ArchiveAudit queries all audit entries before the cutoff, serializes them
// to JSONL, uploads the file to S3 at archive/audit/YYYY-MM.jsonl, and then
// deletes the exported rows. Exports past the multipart threshold go through
// the multipart uploader. It returns the number of rows archived.
func (a *ArchiveImpl) ArchiveAudit(ctx context.Context, before time.Time) (int64, error) {
	entries, err := a.audit.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive audit query: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(entries)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive audit marshal: %w", err)
	}

	path := archivePath("audit", before)
	if err := a.upload(ctx, path, buf); err != nil {
		return 0, fmt.Errorf("s3blob: archive audit upload: %w", err)
	}

	deleted, err := a.audit.DeleteBefore(ctx, before)
	if err != nil {
		return int64(len(entries)), fmt.Errorf("s3blob: archive audit purge: %w", err)
	}

	return deleted, nil
}

func (a *ArchiveImpl) upload(ctx context.Context, path string, buf []byte) error {
	if int64(len(buf)) > multipartThreshold {
		return a.writer.PutMultipart(ctx, path, bytes.NewReader(buf), minPartSize)
	}
	return a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson")
}

// archivePath builds the S3 key for an archive file, partitioned by the
// year-month of the cutoff time.
//
//	archive/audit/2025-01.jsonl
func archivePath(kind string, before time.Time) string {
	return fmt.Sprintf("archive/%s/%s.jsonl", kind, before.Format("2006-01"))
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.Archiver = (*ArchiveImpl)(nil)
