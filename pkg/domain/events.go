package domain

import (
	"context"
	"time"
)

// Machine is the read-only view of a running machine handed to validators,
// callbacks and signal subscribers so they can reach back into the object.
type Machine interface {
	// Object returns the business object the machine drives.
	Object() Object

	// Config returns the machine configuration.
	Config() Config

	// StateField returns the attribute name holding the current state.
	StateField() string

	// ActualStep returns the current state of the object.
	ActualStep() string
}

// Event is the snapshot of a transition in flight.
// It is created at the start of an Apply call and must not be retained after it returns.
type Event struct {
	Transition string         `json:"transition"`
	From       string         `json:"from"`
	Spec       TransitionSpec `json:"spec"`
	Machine    Machine        `json:"-"`

	// Recorded is set once a history line was appended for this event, so a
	// recorder wired both as subscriber and as callback appends only once.
	Recorded bool `json:"-"`
}

// Outcome summarizes a finished Apply call for lifecycle hooks.
type Outcome struct {
	Machine    string        `json:"machine,omitempty"`
	Transition string        `json:"transition"`
	From       string        `json:"from"`
	To         string        `json:"to,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
	Err        error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnApplied  func(context.Context, *Outcome)
	OnRejected func(context.Context, *Outcome)
}
