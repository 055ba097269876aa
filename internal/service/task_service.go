package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haneulsoft/caseledger/internal/deadline"
	"github.com/haneulsoft/caseledger/internal/domain"
)

// Deadline pairs an open task with its computed D-day countdown.
type Deadline struct {
	Task     domain.Task     `json:"task"`
	DaysLeft int             `json:"days_left"`
	Status   deadline.Status `json:"status"`
}

// TaskService manages workflow tasks and the D-day deadline list.
type TaskService struct {
	tasks    domain.TaskStore
	timeline domain.TimelineStore
	audit    domain.AuditStore
	cache    domain.DashboardCache
	now      func() time.Time
	logger   *slog.Logger
}

// NewTaskService creates a TaskService with all required dependencies.
func NewTaskService(
	tasks domain.TaskStore,
	timeline domain.TimelineStore,
	audit domain.AuditStore,
	cache domain.DashboardCache,
	logger *slog.Logger,
) *TaskService {
	return &TaskService{
		tasks:    tasks,
		timeline: timeline,
		audit:    audit,
		cache:    cache,
		now:      time.Now,
		logger:   logger,
	}
}

// CreateTask registers a new workflow task for a case.
func (s *TaskService) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	now := s.now().UTC()
	t.ID = uuid.New().String()
	t.CreatedAt = now
	if t.Status == "" {
		t.Status = domain.TaskOpen
	}
	if t.Kind == "" {
		t.Kind = domain.TaskGeneral
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return domain.Task{}, fmt.Errorf("task_service: create: %w", err)
	}

	s.appendTimeline(ctx, t.CaseID, "task_created", "task created: "+t.Title)
	s.auditLog(ctx, "task.create", map[string]any{
		"task_id": t.ID,
		"case_id": t.CaseID,
		"kind":    string(t.Kind),
	})
	s.invalidateDashboard(ctx)

	return t, nil
}

// UpdateTask replaces the mutable fields of an existing task.
func (s *TaskService) UpdateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	existing, err := s.tasks.GetByID(ctx, t.ID)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task_service: get %q: %w", t.ID, err)
	}

	t.CaseID = existing.CaseID
	t.CreatedAt = existing.CreatedAt
	t.CompletedAt = existing.CompletedAt
	if t.Status == "" {
		t.Status = existing.Status
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return domain.Task{}, fmt.Errorf("task_service: update %q: %w", t.ID, err)
	}

	s.auditLog(ctx, "task.update", map[string]any{"task_id": t.ID})
	return t, nil
}

// CompleteTask marks a task done and records the completion time.
func (s *TaskService) CompleteTask(ctx context.Context, id string) error {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("task_service: get %q: %w", id, err)
	}

	if err := s.tasks.Complete(ctx, id, s.now().UTC()); err != nil {
		return fmt.Errorf("task_service: complete %q: %w", id, err)
	}

	s.appendTimeline(ctx, t.CaseID, "task_completed", "task completed: "+t.Title)
	s.auditLog(ctx, "task.complete", map[string]any{"task_id": id})
	s.invalidateDashboard(ctx)

	return nil
}

// ListByCase returns all tasks attached to a case.
func (s *TaskService) ListByCase(ctx context.Context, caseID string, opts domain.ListOpts) ([]domain.Task, error) {
	tasks, err := s.tasks.ListByCase(ctx, caseID, opts)
	if err != nil {
		return nil, fmt.Errorf("task_service: list case %q: %w", caseID, err)
	}
	return tasks, nil
}

// Deadlines returns every open task with a due date, each annotated with its
// D-day countdown and urgency bucket, soonest first. The ordering comes from
// the store; the countdown is computed against the current time on every
// call.
func (s *TaskService) Deadlines(ctx context.Context) ([]Deadline, error) {
	tasks, err := s.tasks.ListOpenWithDueDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("task_service: list deadlines: %w", err)
	}

	now := s.now()
	deadlines := make([]Deadline, 0, len(tasks))
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		days := deadline.DaysUntil(*t.DueDate, now)
		deadlines = append(deadlines, Deadline{
			Task:     t,
			DaysLeft: days,
			Status:   deadline.Classify(days),
		})
	}
	return deadlines, nil
}

func (s *TaskService) appendTimeline(ctx context.Context, caseID, kind, description string) {
	ev := domain.TimelineEvent{
		ID:          uuid.New().String(),
		CaseID:      caseID,
		Kind:        kind,
		Description: description,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.timeline.Append(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "task_service: timeline append failed",
			slog.String("case_id", caseID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *TaskService) auditLog(ctx context.Context, event string, detail map[string]any) {
	if err := s.audit.Log(ctx, event, detail); err != nil {
		s.logger.WarnContext(ctx, "task_service: audit log failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

func (s *TaskService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "task_service: dashboard invalidate failed",
			slog.String("error", err.Error()),
		)
	}
}
