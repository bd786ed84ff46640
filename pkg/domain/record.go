package domain

import "time"

// HistoryRecord is one entry of an object's transition history.
type HistoryRecord struct {
	ID         string    `json:"id,omitempty"`
	Field      string    `json:"field"`
	Transition string    `json:"transition"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to"`
	At         time.Time `json:"at"`
}

// Record is a serializable business object: an identifier, a free-form
// attribute set and an append-only history.
type Record struct {
	ID         string          `json:"id"`
	Attributes map[string]any  `json:"attributes"`
	History    []HistoryRecord `json:"history,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewRecord creates a record with a copy of the given attributes.
func NewRecord(id string, attributes map[string]any) *Record {
	r := &Record{
		ID:         id,
		Attributes: make(map[string]any, len(attributes)),
	}
	for k, v := range attributes {
		r.Attributes[k] = v
	}
	return r
}

// Clone returns a copy whose attribute map and history can be mutated independently.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := NewRecord(r.ID, r.Attributes)
	out.UpdatedAt = r.UpdatedAt
	if r.History != nil {
		out.History = append(make([]HistoryRecord, 0, len(r.History)), r.History...)
	}
	return out
}
