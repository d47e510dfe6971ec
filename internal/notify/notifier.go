// Package notify schedules local reminders for household tasks that have a
// due date.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"homekeeper/internal/domain"
)

// ReminderTitle is the title every reminder carries
const ReminderTitle = "HomeKeeper"

var ErrNoReminder = errors.New("task does not want a reminder")

// Reminder is a scheduled notification for one task
type Reminder struct {
	TaskID  uuid.UUID `json:"taskId"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	Trigger Trigger   `json:"trigger"`
	Repeats bool      `json:"repeats"`
}

// Scheduled is a reminder together with its next fire time
type Scheduled struct {
	Reminder
	NextFire time.Time `json:"nextFire"`
}

// NewReminder builds the reminder for a task with notifications enabled and a due date
func NewReminder(task domain.Task) (Reminder, error) {
	if !task.WantsReminder() {
		return Reminder{}, ErrNoReminder
	}

	trigger := TriggerFor(task.Recurrence, *task.DueDate)
	return Reminder{
		TaskID:  task.ID,
		Title:   ReminderTitle,
		Body:    string(task.Category) + ": " + task.Title,
		Trigger: trigger,
		Repeats: trigger.Repeats(),
	}, nil
}

// Notifier is the reminder service the task store talks to. Callers treat
// every method as fire-and-forget.
type Notifier interface {
	RequestAuthorization(ctx context.Context) (bool, error)
	Schedule(ctx context.Context, reminder Reminder) error
	Cancel(ctx context.Context, taskID uuid.UUID) error
	CancelAll(ctx context.Context) error
}

// Scheduler is implemented by notifiers that keep their own schedule
type Scheduler interface {
	Notifier
	// Pending lists scheduled reminders ordered by next fire time
	Pending(ctx context.Context) ([]Scheduled, error)
	// Due returns reminders whose fire time is not after now, rescheduling
	// repeating ones and dropping one-shots.
	Due(ctx context.Context, now time.Time) ([]Reminder, error)
}

var (
	_ Scheduler = (*LogNotifier)(nil)
	_ Scheduler = (*RedisNotifier)(nil)
)
