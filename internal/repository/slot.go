package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("homekeeper/internal/repository")

var (
	ErrSlotNotFound = errors.New("slot not found")
	ErrCorruptSlot  = errors.New("slot contains invalid data")
)

// Slot stores one opaque document under a fixed key
type Slot interface {
	// Load returns ErrSlotNotFound when nothing has been saved yet
	Load(ctx context.Context) ([]byte, error)
	// Save overwrites the whole document
	Save(ctx context.Context, data []byte) error
	// Name identifies the slot in logs
	Name() string
}

// Collection persists a whole slice of records as a JSON array in a Slot
type Collection[T any] struct {
	slot Slot
}

// NewCollection wraps a slot
func NewCollection[T any](slot Slot) *Collection[T] {
	return &Collection[T]{slot: slot}
}

// Name returns the underlying slot name
func (c *Collection[T]) Name() string {
	return c.slot.Name()
}

// Load reads every record. A missing slot yields ErrSlotNotFound and a
// document that is not a JSON array of T yields ErrCorruptSlot.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	ctx, span := tracer.Start(ctx, "Collection.Load",
		trace.WithAttributes(attribute.String("slot.name", c.slot.Name())),
	)
	defer span.End()

	data, err := c.slot.Load(ctx)
	if err != nil {
		return nil, err
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSlot, c.slot.Name(), err)
	}

	span.SetAttributes(attribute.Int("slot.records", len(items)))
	return items, nil
}

// Save overwrites the slot with the given records
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	ctx, span := tracer.Start(ctx, "Collection.Save",
		trace.WithAttributes(
			attribute.String("slot.name", c.slot.Name()),
			attribute.Int("slot.records", len(items)),
		),
	)
	defer span.End()

	if items == nil {
		items = []T{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.slot.Name(), err)
	}

	if err := c.slot.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", c.slot.Name(), err)
	}
	return nil
}
