package domain

import "time"

// EnforcementKind categorizes a collection activity.
type EnforcementKind string

const (
	EnforcementSeizure     EnforcementKind = "seizure"
	EnforcementGarnishment EnforcementKind = "garnishment"
	EnforcementAuction     EnforcementKind = "auction"
	EnforcementPayment     EnforcementKind = "payment"
	EnforcementOther       EnforcementKind = "other"
)

// Enforcement records one collection action against a case and the amount it
// recovered, if any. Recovered amounts feed the dashboard recovery totals.
type Enforcement struct {
	ID         string          `json:"id"`
	CaseID     string          `json:"case_id"`
	Kind       EnforcementKind `json:"kind"`
	Recovered  Amount          `json:"recovered"`
	Note       string          `json:"note"`
	OccurredAt time.Time       `json:"occurred_at"`
	CreatedAt  time.Time       `json:"created_at"`
}
