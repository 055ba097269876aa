package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// CaseStore persists cases.
type CaseStore interface {
	Create(ctx context.Context, c Case) error
	Update(ctx context.Context, c Case) error
	Close(ctx context.Context, id string, closedAt time.Time) error
	GetByID(ctx context.Context, id string) (Case, error)
	GetByNumber(ctx context.Context, caseNumber string) (Case, error)
	List(ctx context.Context, status CaseStatus, opts ListOpts) ([]Case, error)
	CountByStatus(ctx context.Context) (map[CaseStatus]int64, error)
}

// PartyStore persists creditor/debtor records.
type PartyStore interface {
	Create(ctx context.Context, p Party) error
	Update(ctx context.Context, p Party) error
	GetByID(ctx context.Context, id string) (Party, error)
	List(ctx context.Context, role PartyRole, opts ListOpts) ([]Party, error)
}

// BondStore persists bond records. Upsert replaces the whole record for a
// case; there are no partial-field update semantics and no versioning.
type BondStore interface {
	Upsert(ctx context.Context, b BondRecord) error
	GetByCaseID(ctx context.Context, caseID string) (BondRecord, error)
	ListAll(ctx context.Context) ([]BondRecord, error)
	Delete(ctx context.Context, caseID string) error
}

// EnforcementStore persists collection activity.
type EnforcementStore interface {
	Create(ctx context.Context, e Enforcement) error
	ListByCase(ctx context.Context, caseID string, opts ListOpts) ([]Enforcement, error)
	SumRecovered(ctx context.Context, caseID string) (float64, error)
	SumRecoveredAll(ctx context.Context) (float64, error)
}

// TaskStore persists workflow tasks.
type TaskStore interface {
	Create(ctx context.Context, t Task) error
	Update(ctx context.Context, t Task) error
	Complete(ctx context.Context, id string, completedAt time.Time) error
	GetByID(ctx context.Context, id string) (Task, error)
	ListByCase(ctx context.Context, caseID string, opts ListOpts) ([]Task, error)
	ListOpenWithDueDate(ctx context.Context) ([]Task, error)
	CountOpen(ctx context.Context) (int64, error)
}

// TimelineStore persists per-case history events.
type TimelineStore interface {
	Append(ctx context.Context, ev TimelineEvent) error
	ListByCase(ctx context.Context, caseID string, opts ListOpts) ([]TimelineEvent, error)
}

// AttachmentStore persists file metadata.
type AttachmentStore interface {
	Create(ctx context.Context, a Attachment) error
	GetByID(ctx context.Context, id string) (Attachment, error)
	ListByCase(ctx context.Context, caseID string) ([]Attachment, error)
	Delete(ctx context.Context, id string) error
}

// AuditEntry is a single audit log row.
type AuditEntry struct {
	ID        int64
	Event     string
	Detail    map[string]any
	CreatedAt time.Time
}

// AuditStore persists an append-only audit log.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}
