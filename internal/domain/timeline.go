package domain

import "time"

// TimelineEvent is one entry in a case's append-only history: filings,
// status changes, bond edits, enforcement actions.
type TimelineEvent struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"case_id"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}
