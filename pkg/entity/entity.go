// Package entity provides a domain.Object backed by a Record and a RecordStore.
package entity

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
)

// Entity adapts a stored Record to the engine's Object capability set.
// A nil store makes Persist and AppendHistory purely in-memory.
// Entity is not safe for concurrent use.
type Entity struct {
	record *domain.Record
	store  ports.RecordStore
	now    func() time.Time
}

var _ domain.Object = (*Entity)(nil)

// New wraps a record. The entity owns a copy of it.
func New(record *domain.Record, store ports.RecordStore) *Entity {
	if record == nil {
		record = domain.NewRecord("", nil)
	} else {
		record = record.Clone()
	}
	if record.Attributes == nil {
		record.Attributes = make(map[string]any)
	}
	return &Entity{
		record: record,
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Load reads a record from the store and wraps it.
func Load(ctx context.Context, store ports.RecordStore, id string) (*Entity, error) {
	rec, err := store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return New(rec, store), nil
}

// ID returns the record ID.
func (e *Entity) ID() string {
	return e.record.ID
}

// Attribute reads a single attribute.
func (e *Entity) Attribute(name string) any {
	return e.record.Attributes[name]
}

// SetAttribute writes an attribute in memory.
func (e *Entity) SetAttribute(name string, value any) {
	e.record.Attributes[name] = value
}

// RemoveAttribute deletes an attribute in memory.
func (e *Entity) RemoveAttribute(name string) {
	delete(e.record.Attributes, name)
}

// Attributes returns a copy of the attribute set.
func (e *Entity) Attributes() map[string]any {
	out := make(map[string]any, len(e.record.Attributes))
	for k, v := range e.record.Attributes {
		out[k] = v
	}
	return out
}

// Persist saves the record.
func (e *Entity) Persist(ctx context.Context) error {
	e.record.UpdatedAt = e.now()
	if e.store == nil {
		return nil
	}
	if err := e.store.Save(ctx, e.record); err != nil {
		return fmt.Errorf("failed to persist record %s: %w", e.record.ID, err)
	}
	return nil
}

// AppendHistory appends a history line and saves the record.
func (e *Entity) AppendHistory(ctx context.Context, rec domain.HistoryRecord) error {
	e.record.History = append(e.record.History, rec)
	return e.Persist(ctx)
}

// History returns a copy of the history.
func (e *Entity) History() []domain.HistoryRecord {
	return append([]domain.HistoryRecord(nil), e.record.History...)
}

// Record returns a copy of the underlying record.
func (e *Entity) Record() *domain.Record {
	return e.record.Clone()
}
