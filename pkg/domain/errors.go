package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownTransition is returned when a transition name is absent from the configuration.
	ErrUnknownTransition = errors.New("unknown transition")

	// ErrIllegalTransition is returned when a transition does not leave the current state.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrTerminalState is returned by Apply when no transition leaves the current state.
	ErrTerminalState = fmt.Errorf("%w: no transitions leave the current state", ErrIllegalTransition)

	// ErrUnknownStep is returned when a transition targets a step that is not declared.
	ErrUnknownStep = errors.New("unknown step")

	// ErrValidationFailed is returned when the validator chain rejects a transition.
	ErrValidationFailed = errors.New("validation failed")

	// ErrMissingCallback reports a callback phase or handler that cannot be resolved.
	ErrMissingCallback = errors.New("missing callback")

	// ErrMissingValidator reports a validator identifier that cannot be resolved.
	ErrMissingValidator = errors.New("missing validator class")

	// ErrRecordNotFound is returned when a record ID cannot be found in the store.
	ErrRecordNotFound = errors.New("record not found")

	// ErrUnknownMachine is returned when a machine name is absent from the settings.
	ErrUnknownMachine = errors.New("unknown machine")
)

// TransitionError is a fatal guard or mutation failure for a named transition.
type TransitionError struct {
	Transition string
	State      string
	Err        error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %q from state %q: %v", e.Transition, e.State, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// FieldError is a single validation failure.
type FieldError struct {
	Validator string `json:"validator,omitempty"`
	Field     string `json:"field,omitempty"`
	Rule      string `json:"rule,omitempty"`
	Message   string `json:"message"`
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("field %q: %s", e.Field, e.Message)
}

// FieldErrors is the error list a validator returns.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Error())
	}
	return strings.Join(parts, "; ")
}

// ValidationError carries every failure accumulated by the validator chain.
type ValidationError struct {
	Transition string
	Errors     FieldErrors
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("transition %q: %v: %s", e.Transition, ErrValidationFailed, e.Errors[0].Error())
	}
	msg := fmt.Sprintf("transition %q: %v: %d errors:\n", e.Transition, ErrValidationFailed, len(e.Errors))
	for i, fe := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, fe.Error())
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// ValidationErrors returns the accumulated failures if err carries a ValidationError.
// Otherwise returns nil.
func ValidationErrors(err error) FieldErrors {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Errors
	}
	return nil
}

// MissingCallbackError is the non-fatal condition raised when a callback phase
// is not configured or a handler identifier cannot be resolved.
type MissingCallbackError struct {
	Transition string
	Phase      Phase
	Callback   string
}

func (e *MissingCallbackError) Error() string {
	if e.Callback == "" {
		return fmt.Sprintf("transition %q: %v: no %s callbacks configured", e.Transition, ErrMissingCallback, e.Phase)
	}
	return fmt.Sprintf("transition %q: %v: %s callback %q is not registered", e.Transition, ErrMissingCallback, e.Phase, e.Callback)
}

func (e *MissingCallbackError) Unwrap() error {
	return ErrMissingCallback
}

// CallbackError wraps an error returned by a callback handler.
type CallbackError struct {
	Transition string
	Phase      Phase
	Callback   string
	Err        error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("transition %q: %s callback %q failed: %v", e.Transition, e.Phase, e.Callback, e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// Reason classifies an Apply error into a short, stable label for metrics and APIs.
func Reason(err error) string {
	var cbErr *CallbackError
	switch {
	case err == nil:
		return "applied"
	case errors.Is(err, ErrUnknownTransition):
		return "unknown_transition"
	case errors.Is(err, ErrTerminalState):
		return "terminal_state"
	case errors.Is(err, ErrIllegalTransition):
		return "illegal_transition"
	case errors.Is(err, ErrValidationFailed):
		return "validation_failed"
	case errors.Is(err, ErrUnknownStep):
		return "unknown_step"
	case errors.As(err, &cbErr):
		return "callback_failed"
	case errors.Is(err, ErrRecordNotFound):
		return "record_not_found"
	case errors.Is(err, ErrUnknownMachine):
		return "unknown_machine"
	}
	return "error"
}
