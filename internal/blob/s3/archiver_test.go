package s3blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haneulsoft/caseledger/internal/domain"
)

type fakeBlobWriter struct {
	puts       []string
	multiparts []string
	putErr     error
}

func (f *fakeBlobWriter) Put(_ context.Context, path string, data io.Reader, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	if _, err := io.Copy(io.Discard, data); err != nil {
		return err
	}
	f.puts = append(f.puts, path)
	return nil
}

func (f *fakeBlobWriter) PutMultipart(_ context.Context, path string, data io.Reader, _ int64) error {
	if _, err := io.Copy(io.Discard, data); err != nil {
		return err
	}
	f.multiparts = append(f.multiparts, path)
	return nil
}

type fakeAuditArchiveStore struct {
	entries []domain.AuditEntry
	deleted bool
}

func (f *fakeAuditArchiveStore) ListBefore(_ context.Context, _ time.Time) ([]domain.AuditEntry, error) {
	return f.entries, nil
}

func (f *fakeAuditArchiveStore) DeleteBefore(_ context.Context, _ time.Time) (int64, error) {
	f.deleted = true
	return int64(len(f.entries)), nil
}

func auditEntries(n, detailLen int) []domain.AuditEntry {
	out := make([]domain.AuditEntry, n)
	for i := range out {
		out[i] = domain.AuditEntry{
			ID:        int64(i + 1),
			Event:     "bond.save",
			Detail:    map[string]any{"blob": strings.Repeat("x", detailLen)},
			CreatedAt: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		}
	}
	return out
}

func TestArchiveAuditSmallExportUsesSinglePut(t *testing.T) {
	writer := &fakeBlobWriter{}
	audit := &fakeAuditArchiveStore{entries: auditEntries(3, 16)}
	archiver := NewArchiver(writer, audit)

	cutoff := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	n, err := archiver.ArchiveAudit(context.Background(), cutoff)
	require.NoError(t, err)

	assert.Equal(t, int64(3), n)
	assert.Equal(t, []string{"archive/audit/2025-02.jsonl"}, writer.puts)
	assert.Empty(t, writer.multiparts)
	assert.True(t, audit.deleted)
}

func TestArchiveAuditLargeExportUsesMultipart(t *testing.T) {
	writer := &fakeBlobWriter{}
	// 12 entries of ~1 MiB each clears the multipart threshold.
	audit := &fakeAuditArchiveStore{entries: auditEntries(12, 1<<20)}
	archiver := NewArchiver(writer, audit)

	cutoff := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := archiver.ArchiveAudit(context.Background(), cutoff)
	require.NoError(t, err)

	assert.Empty(t, writer.puts)
	assert.Equal(t, []string{"archive/audit/2025-02.jsonl"}, writer.multiparts)
	assert.True(t, audit.deleted)
}

func TestArchiveAuditKeepsRowsWhenUploadFails(t *testing.T) {
	writer := &fakeBlobWriter{putErr: errors.New("bucket unavailable")}
	audit := &fakeAuditArchiveStore{entries: auditEntries(2, 16)}
	archiver := NewArchiver(writer, audit)

	_, err := archiver.ArchiveAudit(context.Background(), time.Now())
	require.Error(t, err)
	assert.False(t, audit.deleted)
}

func TestArchiveAuditNothingToExport(t *testing.T) {
	writer := &fakeBlobWriter{}
	audit := &fakeAuditArchiveStore{}
	archiver := NewArchiver(writer, audit)

	n, err := archiver.ArchiveAudit(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, writer.puts)
	assert.Empty(t, writer.multiparts)
	assert.False(t, audit.deleted)
}
