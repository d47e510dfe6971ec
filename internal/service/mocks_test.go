package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"homekeeper/internal/notify"
	"homekeeper/internal/repository"
)

var errWriteFailed = errors.New("disk full")

// memorySlot is an in-memory repository.Slot that counts writes
type memorySlot struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	failing bool
}

func newMemorySlot(initial string) *memorySlot {
	s := &memorySlot{}
	if initial != "" {
		s.data = []byte(initial)
	}
	return s
}

func (m *memorySlot) Name() string { return "memory" }

func (m *memorySlot) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, repository.ErrSlotNotFound
	}
	return m.data, nil
}

func (m *memorySlot) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errWriteFailed
	}
	m.saves++
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *memorySlot) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// recordingNotifier remembers every call made by the task store
type recordingNotifier struct {
	scheduled []notify.Reminder
	cancelled []uuid.UUID
	err       error
}

func (n *recordingNotifier) RequestAuthorization(ctx context.Context) (bool, error) {
	return true, nil
}

func (n *recordingNotifier) Schedule(ctx context.Context, reminder notify.Reminder) error {
	n.scheduled = append(n.scheduled, reminder)
	return n.err
}

func (n *recordingNotifier) Cancel(ctx context.Context, taskID uuid.UUID) error {
	n.cancelled = append(n.cancelled, taskID)
	return n.err
}

func (n *recordingNotifier) CancelAll(ctx context.Context) error {
	return n.err
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("file missing")
}

func fixedNow() time.Time {
	return time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
}
