package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskCategory groups household chores
type TaskCategory string

const (
	TaskCategoryCleaning    TaskCategory = "掃除"
	TaskCategoryLaundry     TaskCategory = "洗濯"
	TaskCategoryCooking     TaskCategory = "料理"
	TaskCategoryShopping    TaskCategory = "買い物"
	TaskCategoryMaintenance TaskCategory = "メンテナンス"
	TaskCategoryOther       TaskCategory = "その他"
)

// TaskCategories lists the chore categories in picker order
func TaskCategories() []TaskCategory {
	return []TaskCategory{
		TaskCategoryCleaning,
		TaskCategoryLaundry,
		TaskCategoryCooking,
		TaskCategoryShopping,
		TaskCategoryMaintenance,
		TaskCategoryOther,
	}
}

// ParseTaskCategory maps unknown names to TaskCategoryOther
func ParseTaskCategory(s string) TaskCategory {
	for _, c := range TaskCategories() {
		if string(c) == s {
			return c
		}
	}
	return TaskCategoryOther
}

// Recurrence is the repeat schedule of a task reminder. The zero value means no repetition.
type Recurrence string

const (
	RecurrenceNone     Recurrence = ""
	RecurrenceDaily    Recurrence = "daily"
	RecurrenceWeekly   Recurrence = "weekly"
	RecurrenceBiweekly Recurrence = "biweekly"
	RecurrenceMonthly  Recurrence = "monthly"
)

var recurrenceLabels = map[Recurrence]string{
	RecurrenceDaily:    "毎日",
	RecurrenceWeekly:   "毎週",
	RecurrenceBiweekly: "隔週",
	RecurrenceMonthly:  "毎月",
}

// Label returns the display name of the recurrence
func (r Recurrence) Label() string {
	return recurrenceLabels[r]
}

// ParseRecurrence accepts either the code ("weekly") or the label ("毎週").
// The empty string parses to RecurrenceNone.
func ParseRecurrence(s string) (Recurrence, bool) {
	if s == "" {
		return RecurrenceNone, true
	}
	for r, label := range recurrenceLabels {
		if s == string(r) || s == label {
			return r, true
		}
	}
	return RecurrenceNone, false
}

// Task is a household chore with an optional schedule
type Task struct {
	ID                  uuid.UUID    `json:"id"`
	Title               string       `json:"title"`
	Category            TaskCategory `json:"category"`
	IsCompleted         bool         `json:"isCompleted"`
	DueDate             *time.Time   `json:"dueDate,omitempty"`
	Recurrence          Recurrence   `json:"recurrence,omitempty"`
	NotificationEnabled bool         `json:"notificationEnabled"`
}

// Normalize assigns an ID and coerces the category
func (t *Task) Normalize() {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.Category = ParseTaskCategory(string(t.Category))
}

// WantsReminder reports whether adding or removing the task involves the reminder service
func (t Task) WantsReminder() bool {
	return t.NotificationEnabled && t.DueDate != nil
}

// IsOverdue reports whether an open task is past its due date
func (t Task) IsOverdue(now time.Time) bool {
	return !t.IsCompleted && t.DueDate != nil && t.DueDate.Before(now)
}
