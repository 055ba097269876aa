package domain

import "time"

// TaskStatus tracks a workflow item through its lifecycle.
type TaskStatus string

const (
	TaskOpen       TaskStatus = "open"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// TaskKind distinguishes ordinary inquiries from court deadlines.
type TaskKind string

const (
	TaskInquiry TaskKind = "inquiry"
	// TaskCorrectionOrder is a court correction order with a hard response
	// deadline; missing it can void a filing.
	TaskCorrectionOrder TaskKind = "correction_order"
	TaskGeneral         TaskKind = "general"
)

// Task is a workflow item attached to a case. DueDate, when set, drives the
// D-day countdown and the deadline tracker.
type Task struct {
	ID          string     `json:"id"`
	CaseID      string     `json:"case_id"`
	Kind        TaskKind   `json:"kind"`
	Title       string     `json:"title"`
	Detail      string     `json:"detail"`
	Status      TaskStatus `json:"status"`
	AssignedTo  string     `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
