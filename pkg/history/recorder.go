// Package history records transition history on the objects a machine drives.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/google/uuid"
)

// CallbackID is the identifier the recorder is registered under as a callback.
const CallbackID = "history"

// Recorder appends one HistoryRecord per committed transition.
// It serves both as a post-transition signal subscriber and as a named callback.
type Recorder struct {
	now   func() time.Time
	newID func() string
}

// Option configures the Recorder.
type Option func(*Recorder)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// WithIDGenerator overrides the record ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(r *Recorder) {
		r.newID = fn
	}
}

// NewRecorder creates a recorder stamping records with UUIDs and UTC times.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle appends {field, transition, to} to the event's object.
// It must run after the state mutation: "to" is read back from the object.
// An event already marked as recorded is skipped.
func (r *Recorder) Handle(ctx context.Context, event *domain.Event) error {
	if event == nil || event.Machine == nil {
		return fmt.Errorf("history: event has no machine")
	}
	if event.Recorded {
		return nil
	}
	sm := event.Machine

	err := sm.Object().AppendHistory(ctx, domain.HistoryRecord{
		ID:         r.newID(),
		Field:      sm.StateField(),
		Transition: event.Transition,
		From:       event.From,
		To:         sm.ActualStep(),
		At:         r.now(),
	})
	if err != nil {
		return err
	}
	event.Recorded = true
	return nil
}

// Receive implements signal.Subscriber for the post-transition signal.
func (r *Recorder) Receive(ctx context.Context, signal string, payload any) error {
	event, ok := payload.(*domain.Event)
	if !ok {
		return fmt.Errorf("history: unexpected payload %T for signal %s", payload, signal)
	}
	return r.Handle(ctx, event)
}
