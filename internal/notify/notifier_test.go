package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"homekeeper/internal/domain"
)

func dueTask(recurrence domain.Recurrence, due time.Time) domain.Task {
	return domain.Task{
		ID:                  uuid.New(),
		Title:               "風呂掃除",
		Category:            domain.TaskCategoryCleaning,
		DueDate:             &due,
		Recurrence:          recurrence,
		NotificationEnabled: true,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewReminder(t *testing.T) {
	task := dueTask(domain.RecurrenceWeekly, at(2025, 3, 10, 9, 30))

	reminder, err := NewReminder(task)
	if err != nil {
		t.Fatalf("NewReminder failed: %v", err)
	}

	if reminder.Title != "HomeKeeper" {
		t.Errorf("Expected title HomeKeeper, got %s", reminder.Title)
	}
	if reminder.Body != "掃除: 風呂掃除" {
		t.Errorf("Expected body '掃除: 風呂掃除', got %s", reminder.Body)
	}
	if !reminder.Repeats {
		t.Error("Expected weekly reminder to repeat")
	}
	if reminder.TaskID != task.ID {
		t.Error("Expected reminder to carry the task id")
	}
}

func TestNewReminderRequiresDueDateAndOptIn(t *testing.T) {
	task := dueTask(domain.RecurrenceDaily, at(2025, 3, 10, 9, 30))
	task.DueDate = nil
	if _, err := NewReminder(task); !errors.Is(err, ErrNoReminder) {
		t.Errorf("Expected ErrNoReminder without due date, got %v", err)
	}

	task = dueTask(domain.RecurrenceDaily, at(2025, 3, 10, 9, 30))
	task.NotificationEnabled = false
	if _, err := NewReminder(task); !errors.Is(err, ErrNoReminder) {
		t.Errorf("Expected ErrNoReminder when disabled, got %v", err)
	}
}

func TestLogNotifierScheduleAndDue(t *testing.T) {
	ctx := context.Background()
	n := NewLogNotifier(zap.NewNop())
	n.now = fixedClock(at(2025, 3, 1, 0, 0))

	once, _ := NewReminder(dueTask(domain.RecurrenceNone, at(2025, 3, 5, 8, 0)))
	daily, _ := NewReminder(dueTask(domain.RecurrenceDaily, at(2025, 3, 1, 7, 0)))
	past, _ := NewReminder(dueTask(domain.RecurrenceNone, at(2025, 2, 1, 8, 0)))

	for _, r := range []Reminder{once, daily, past} {
		if err := n.Schedule(ctx, r); err != nil {
			t.Fatalf("Schedule failed: %v", err)
		}
	}

	pending, _ := n.Pending(ctx)
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending reminders (past one-shot dropped), got %d", len(pending))
	}
	if pending[0].TaskID != daily.TaskID {
		t.Error("Expected pending reminders ordered by next fire time")
	}

	due, _ := n.Due(ctx, at(2025, 3, 6, 0, 0))
	if len(due) != 2 {
		t.Fatalf("Expected both reminders due, got %d", len(due))
	}

	pending, _ = n.Pending(ctx)
	if len(pending) != 1 || pending[0].TaskID != daily.TaskID {
		t.Fatalf("Expected only the daily reminder to remain, got %+v", pending)
	}
	if !pending[0].NextFire.Equal(at(2025, 3, 6, 7, 0)) {
		t.Errorf("Expected daily reminder rescheduled to 03-06 07:00, got %v", pending[0].NextFire)
	}

	if err := n.Cancel(ctx, daily.TaskID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	pending, _ = n.Pending(ctx)
	if len(pending) != 0 {
		t.Errorf("Expected no pending reminders after cancel, got %d", len(pending))
	}
}

func newRedisNotifier(t *testing.T) (*miniredis.Miniredis, *RedisNotifier) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, NewRedisNotifier(client, zap.NewNop())
}

func TestRedisNotifierSchedulePendingCancel(t *testing.T) {
	ctx := context.Background()
	mr, n := newRedisNotifier(t)
	n.now = fixedClock(at(2025, 3, 1, 0, 0))

	ok, err := n.RequestAuthorization(ctx)
	if err != nil || !ok {
		t.Fatalf("Expected authorization, got %v %v", ok, err)
	}

	weekly, _ := NewReminder(dueTask(domain.RecurrenceWeekly, at(2025, 3, 10, 9, 30)))
	monthly, _ := NewReminder(dueTask(domain.RecurrenceMonthly, at(2025, 3, 2, 6, 0)))

	for _, r := range []Reminder{weekly, monthly} {
		if err := n.Schedule(ctx, r); err != nil {
			t.Fatalf("Schedule failed: %v", err)
		}
	}

	if !mr.Exists("homekeeper:reminders") || !mr.Exists("homekeeper:reminders:schedule") {
		t.Fatal("Expected reminder hash and schedule to exist")
	}

	pending, err := n.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("Expected 2 pending reminders, got %d", len(pending))
	}
	if pending[0].TaskID != monthly.TaskID {
		t.Error("Expected monthly reminder (03-02) before weekly (03-03)")
	}
	if pending[1].Body != weekly.Body {
		t.Errorf("Expected body to round-trip, got %s", pending[1].Body)
	}

	if err := n.Cancel(ctx, monthly.TaskID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	pending, _ = n.Pending(ctx)
	if len(pending) != 1 || pending[0].TaskID != weekly.TaskID {
		t.Errorf("Expected only weekly reminder after cancel, got %+v", pending)
	}

	if err := n.CancelAll(ctx); err != nil {
		t.Fatalf("CancelAll failed: %v", err)
	}
	pending, _ = n.Pending(ctx)
	if len(pending) != 0 {
		t.Errorf("Expected no reminders after CancelAll, got %d", len(pending))
	}
}

func TestRedisNotifierDueReschedulesRepeating(t *testing.T) {
	ctx := context.Background()
	_, n := newRedisNotifier(t)
	n.now = fixedClock(at(2025, 3, 1, 0, 0))

	biweekly, _ := NewReminder(dueTask(domain.RecurrenceBiweekly, at(2025, 3, 10, 9, 30)))
	once, _ := NewReminder(dueTask(domain.RecurrenceNone, at(2025, 3, 3, 12, 0)))
	_ = n.Schedule(ctx, biweekly)
	_ = n.Schedule(ctx, once)

	due, err := n.Due(ctx, at(2025, 3, 10, 9, 30))
	if err != nil {
		t.Fatalf("Due failed: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("Expected 2 due reminders, got %d", len(due))
	}

	pending, _ := n.Pending(ctx)
	if len(pending) != 1 {
		t.Fatalf("Expected biweekly reminder to stay scheduled, got %d", len(pending))
	}
	if !pending[0].NextFire.Equal(at(2025, 3, 24, 9, 30)) {
		t.Errorf("Expected next biweekly fire 03-24 09:30, got %v", pending[0].NextFire)
	}
}

func TestRedisNotifierRescheduleKeepsDaylightSaving(t *testing.T) {
	ctx := context.Background()
	ny := newYork(t)
	_, n := newRedisNotifier(t)
	n.now = fixedClock(time.Date(2025, 3, 1, 0, 0, 0, 0, ny))

	weekly, _ := NewReminder(dueTask(domain.RecurrenceWeekly, time.Date(2025, 3, 3, 9, 0, 0, 0, ny)))
	if err := n.Schedule(ctx, weekly); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	if _, err := n.Due(ctx, time.Date(2025, 3, 3, 9, 0, 0, 0, ny)); err != nil {
		t.Fatalf("Due failed: %v", err)
	}

	pending, err := n.Pending(ctx)
	if err != nil || len(pending) != 1 {
		t.Fatalf("Expected one pending reminder, got %d (%v)", len(pending), err)
	}
	want := time.Date(2025, 3, 10, 9, 0, 0, 0, ny)
	if !pending[0].NextFire.Equal(want) {
		t.Errorf("Expected next fire %v after the DST change, got %v", want, pending[0].NextFire)
	}
	if pending[0].Trigger.Anchor.Location().String() != "America/New_York" {
		t.Errorf("Expected stored anchor zone, got %s", pending[0].Trigger.Anchor.Location())
	}
}

func TestRedisNotifierUnavailable(t *testing.T) {
	mr, n := newRedisNotifier(t)
	mr.Close()

	if ok, err := n.RequestAuthorization(context.Background()); ok || err == nil {
		t.Errorf("Expected authorization failure, got %v %v", ok, err)
	}
}

func TestDispatcherTickDelivers(t *testing.T) {
	ctx := context.Background()
	n := NewLogNotifier(zap.NewNop())
	n.now = fixedClock(at(2025, 3, 1, 0, 0))

	r, _ := NewReminder(dueTask(domain.RecurrenceNone, at(2025, 3, 2, 8, 0)))
	_ = n.Schedule(ctx, r)

	var delivered []Reminder
	d := NewDispatcher(n, func(ctx context.Context, reminder Reminder) {
		delivered = append(delivered, reminder)
	}, time.Minute, zap.NewNop())

	d.now = fixedClock(at(2025, 3, 1, 12, 0))
	if fired := d.Tick(ctx); fired != 0 {
		t.Errorf("Expected nothing due yet, got %d", fired)
	}

	d.now = fixedClock(at(2025, 3, 2, 8, 0))
	if fired := d.Tick(ctx); fired != 1 {
		t.Fatalf("Expected one reminder fired, got %d", fired)
	}
	if delivered[0].Body != "掃除: 風呂掃除" {
		t.Errorf("Unexpected delivered reminder %+v", delivered[0])
	}
}
