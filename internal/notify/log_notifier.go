package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogNotifier keeps reminders in memory and reports them through the logger
type LogNotifier struct {
	mu      sync.Mutex
	logger  *zap.Logger
	now     func() time.Time
	entries map[uuid.UUID]Scheduled
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{
		logger:  logger,
		now:     time.Now,
		entries: make(map[uuid.UUID]Scheduled),
	}
}

func (n *LogNotifier) RequestAuthorization(ctx context.Context) (bool, error) {
	n.logger.Info("Notification authorization granted", zap.String("notifier", "log"))
	return true, nil
}

func (n *LogNotifier) Schedule(ctx context.Context, reminder Reminder) error {
	next, ok := reminder.Trigger.Next(n.now())
	if !ok {
		n.logger.Debug("Reminder trigger already passed",
			zap.String("task_id", reminder.TaskID.String()),
		)
		return nil
	}

	n.mu.Lock()
	n.entries[reminder.TaskID] = Scheduled{Reminder: reminder, NextFire: next}
	n.mu.Unlock()

	n.logger.Info("Reminder scheduled",
		zap.String("task_id", reminder.TaskID.String()),
		zap.String("body", reminder.Body),
		zap.Bool("repeats", reminder.Repeats),
		zap.Time("next_fire", next),
	)
	return nil
}

func (n *LogNotifier) Cancel(ctx context.Context, taskID uuid.UUID) error {
	n.mu.Lock()
	delete(n.entries, taskID)
	n.mu.Unlock()

	n.logger.Info("Reminder cancelled", zap.String("task_id", taskID.String()))
	return nil
}

func (n *LogNotifier) CancelAll(ctx context.Context) error {
	n.mu.Lock()
	n.entries = make(map[uuid.UUID]Scheduled)
	n.mu.Unlock()

	n.logger.Info("All reminders cancelled")
	return nil
}

func (n *LogNotifier) Pending(ctx context.Context) ([]Scheduled, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Scheduled, 0, len(n.entries))
	for _, s := range n.entries {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].NextFire.Before(out[j].NextFire)
	})
	return out, nil
}

func (n *LogNotifier) Due(ctx context.Context, now time.Time) ([]Reminder, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var due []Reminder
	for id, s := range n.entries {
		if s.NextFire.After(now) {
			continue
		}
		due = append(due, s.Reminder)

		if next, ok := s.Trigger.Next(now); ok && s.Repeats {
			s.NextFire = next
			n.entries[id] = s
		} else {
			delete(n.entries, id)
		}
	}
	return due, nil
}
