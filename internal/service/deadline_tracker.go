package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/haneulsoft/caseledger/internal/deadline"
	"github.com/haneulsoft/caseledger/internal/domain"
)

// Notifier is the narrow view of the notification dispatcher the tracker
// needs. The notify.Notifier satisfies it.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// DeadlineTracker periodically scans open tasks with due dates, classifies
// each against the current date, and raises alerts when a deadline turns
// urgent or expires. Each task is alerted at most once per urgency bucket,
// so an urgent task does not re-alert every scan but does alert again when
// it expires.
type DeadlineTracker struct {
	tasks    domain.TaskStore
	bus      domain.SignalBus
	notifier Notifier
	limiter  domain.RateLimiter
	scanDur  time.Duration
	now      func() time.Time
	logger   *slog.Logger

	alerted map[string]deadline.Status // task ID -> last alerted bucket
}

// NewDeadlineTracker creates a DeadlineTracker. scanInterval is how often
// open deadlines are re-examined. The limiter, when non-nil, paces outbound
// notifications so a large backlog of alerts does not trip the Telegram or
// Discord webhook limits.
func NewDeadlineTracker(
	tasks domain.TaskStore,
	bus domain.SignalBus,
	notifier Notifier,
	limiter domain.RateLimiter,
	scanInterval time.Duration,
	logger *slog.Logger,
) *DeadlineTracker {
	if scanInterval <= 0 {
		scanInterval = 10 * time.Minute
	}
	return &DeadlineTracker{
		tasks:    tasks,
		bus:      bus,
		notifier: notifier,
		limiter:  limiter,
		scanDur:  scanInterval,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "deadline_tracker")),
		alerted:  make(map[string]deadline.Status),
	}
}

// Run scans deadlines on a ticker until the context is cancelled. Call in a
// goroutine. The first scan happens immediately rather than one interval in.
func (t *DeadlineTracker) Run(ctx context.Context) error {
	if err := t.scan(ctx); err != nil {
		t.logger.ErrorContext(ctx, "deadline scan failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(t.scanDur)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := t.scan(ctx); err != nil {
				t.logger.ErrorContext(ctx, "deadline scan failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (t *DeadlineTracker) scan(ctx context.Context) error {
	tasks, err := t.tasks.ListOpenWithDueDate(ctx)
	if err != nil {
		return err
	}

	now := t.now()
	open := make(map[string]bool, len(tasks))

	for _, task := range tasks {
		if task.DueDate == nil {
			continue
		}
		open[task.ID] = true

		days := deadline.DaysUntil(*task.DueDate, now)
		status := deadline.Classify(days)
		if status == deadline.StatusNormal {
			continue
		}
		if t.alerted[task.ID] == status {
			continue
		}
		t.alerted[task.ID] = status

		t.alert(ctx, task, days, status)
	}

	// Forget completed or deleted tasks so the map does not grow unbounded.
	for id := range t.alerted {
		if !open[id] {
			delete(t.alerted, id)
		}
	}

	return nil
}

func (t *DeadlineTracker) alert(ctx context.Context, task domain.Task, days int, status deadline.Status) {
	event := "deadline_urgent"
	title := fmt.Sprintf("D-%d: %s", days, task.Title)
	if status == deadline.StatusExpired {
		event = "deadline_expired"
		title = fmt.Sprintf("D+%d overdue: %s", -days, task.Title)
	}

	message := fmt.Sprintf("case %s / task %s (%s) due %s",
		task.CaseID, task.ID, task.Kind, task.DueDate.Format("2006-01-02"))

	t.logger.InfoContext(ctx, "deadline alert",
		slog.String("task_id", task.ID),
		slog.String("case_id", task.CaseID),
		slog.Int("days_left", days),
		slog.String("status", string(status)),
	)

	if t.bus != nil {
		payload, _ := json.Marshal(map[string]any{
			"event":     event,
			"task_id":   task.ID,
			"case_id":   task.CaseID,
			"kind":      string(task.Kind),
			"days_left": days,
			"due_date":  task.DueDate.Format("2006-01-02"),
		})
		if err := t.bus.Publish(ctx, event, payload); err != nil {
			t.logger.WarnContext(ctx, "deadline publish failed",
				slog.String("task_id", task.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if t.notifier != nil {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx, "notify_deadline"); err != nil {
				t.logger.WarnContext(ctx, "deadline notify throttle failed",
					slog.String("task_id", task.ID),
					slog.String("error", err.Error()),
				)
				return
			}
		}
		if err := t.notifier.Notify(ctx, event, title, message); err != nil {
			t.logger.WarnContext(ctx, "deadline notify failed",
				slog.String("task_id", task.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}
