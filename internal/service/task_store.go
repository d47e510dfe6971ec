package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"homekeeper/internal/domain"
	"homekeeper/internal/notify"
	"homekeeper/internal/repository"
)

// TaskStore owns the household task list and keeps the reminder service in
// step with it.
type TaskStore interface {
	All() []domain.Task
	Get(id uuid.UUID) (domain.Task, bool)
	Add(ctx context.Context, task domain.Task) (domain.Task, error)
	ToggleComplete(ctx context.Context, id uuid.UUID) (found bool, err error)
	Delete(ctx context.Context, ids []uuid.UUID) (removed int, err error)
	Pending() []domain.Task
	Completed() []domain.Task
	Overdue(now time.Time) []domain.Task
}

type taskStore struct {
	mu       sync.RWMutex
	tasks    []domain.Task
	coll     *repository.Collection[domain.Task]
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewTaskStore(
	ctx context.Context,
	coll *repository.Collection[domain.Task],
	notifier notify.Notifier,
	logger *zap.Logger,
) TaskStore {
	s := &taskStore{
		coll:     coll,
		notifier: notifier,
		logger:   logger.With(zap.String("store", "tasks")),
	}
	s.tasks = loadCollection(ctx, coll, s.logger)
	return s
}

func (s *taskStore) All() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Task(nil), s.tasks...)
}

func (s *taskStore) Get(id uuid.UUID) (domain.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

// Add appends the task and schedules its reminder when it wants one
func (s *taskStore) Add(ctx context.Context, task domain.Task) (domain.Task, error) {
	s.mu.Lock()
	task.ID = uuid.Nil
	task.Normalize()
	s.tasks = append(s.tasks, task)
	err := s.persist(ctx, "add")
	s.mu.Unlock()

	if task.WantsReminder() {
		s.schedule(ctx, task)
	}
	return task, err
}

func (s *taskStore) ToggleComplete(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].IsCompleted = !s.tasks[i].IsCompleted
			return true, s.persist(ctx, "toggle_complete")
		}
	}
	return false, nil
}

// Delete removes the given tasks and cancels their reminders
func (s *taskStore) Delete(ctx context.Context, ids []uuid.UUID) (int, error) {
	s.mu.Lock()
	wanted := idSet(ids)
	var removed []domain.Task
	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if _, ok := wanted[t.ID]; ok {
			removed = append(removed, t)
			continue
		}
		kept = append(kept, t)
	}

	if len(removed) == 0 {
		s.mu.Unlock()
		return 0, nil
	}

	s.tasks = kept
	err := s.persist(ctx, "delete")
	s.mu.Unlock()

	for _, t := range removed {
		s.cancel(ctx, t.ID)
	}
	return len(removed), err
}

func (s *taskStore) Pending() []domain.Task {
	return s.filter(func(t domain.Task) bool { return !t.IsCompleted })
}

func (s *taskStore) Completed() []domain.Task {
	return s.filter(func(t domain.Task) bool { return t.IsCompleted })
}

func (s *taskStore) Overdue(now time.Time) []domain.Task {
	return s.filter(func(t domain.Task) bool { return t.IsOverdue(now) })
}

func (s *taskStore) filter(keep func(domain.Task) bool) []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Task{}
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// persist must be called with the write lock held
func (s *taskStore) persist(ctx context.Context, op string) error {
	if err := s.coll.Save(ctx, s.tasks); err != nil {
		s.logger.Error("Failed to persist tasks",
			zap.String("op", op),
			zap.Int("count", len(s.tasks)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// schedule and cancel never report failure to the caller
func (s *taskStore) schedule(ctx context.Context, task domain.Task) {
	reminder, err := notify.NewReminder(task)
	if err != nil {
		if !errors.Is(err, notify.ErrNoReminder) {
			s.logger.Warn("Could not build reminder", zap.String("task_id", task.ID.String()), zap.Error(err))
		}
		return
	}
	if err := s.notifier.Schedule(ctx, reminder); err != nil {
		s.logger.Warn("Failed to schedule reminder",
			zap.String("task_id", task.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *taskStore) cancel(ctx context.Context, id uuid.UUID) {
	if err := s.notifier.Cancel(ctx, id); err != nil {
		s.logger.Warn("Failed to cancel reminder",
			zap.String("task_id", id.String()),
			zap.Error(err),
		)
	}
}
