// Package domain defines the core entities of the case-management system and
// the store, cache, and blob interfaces their persistence layers implement.
package domain

import "time"

// CaseStatus is the lifecycle state of a case.
type CaseStatus string

const (
	CaseActive CaseStatus = "active"
	CaseOnHold CaseStatus = "on_hold"
	CaseClosed CaseStatus = "closed"
)

// Case is a single collection/legal assignment: one creditor pursuing one
// debtor, optionally with a court case number once filed.
type Case struct {
	ID         string     `json:"id"`
	CaseNumber string     `json:"case_number"`
	Court      string     `json:"court"`
	Title      string     `json:"title"`
	Status     CaseStatus `json:"status"`
	CreditorID string     `json:"creditor_id"`
	DebtorID   string     `json:"debtor_id"`
	AssigneeID string     `json:"assignee_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
}
