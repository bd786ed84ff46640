package domain

// DefaultPropertyPath is the attribute holding the current state when a
// configuration does not name one.
const DefaultPropertyPath = "state"

// DefaultValidator is the registry identifier of the validator used for
// rule entries declared under a positional (numeric) key.
const DefaultValidator = "default"

// Signal names emitted by the engine.
const (
	SignalPreTransition  = "laraflow.pre_transition"
	SignalPostTransition = "laraflow.post_transition"
	SignalCanTransition  = "laraflow.can_transition"
)

// Phase identifies the two callback points of a transition.
type Phase string

const (
	PhasePre  Phase = "pre"
	PhasePost Phase = "post"
)
