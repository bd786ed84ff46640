package runtime

import (
	"context"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Can reports whether the named transition may be applied from the current state.
//
// It fails with ErrUnknownTransition for names absent from the configuration and with
// ErrIllegalTransition when the transition does not leave the current state. When no
// transition at all leaves the current state it returns false without an error.
// On success it emits the can-transition signal.
func (m *Machine) Can(ctx context.Context, name string) (bool, error) {
	current := m.ActualStep()

	spec, ok := m.config.Transitions[name]
	if !ok {
		return false, &domain.TransitionError{Transition: name, State: current, Err: domain.ErrUnknownTransition}
	}

	if len(m.config.From(current)) == 0 {
		return false, nil
	}

	if spec.From != current {
		return false, &domain.TransitionError{Transition: name, State: current, Err: domain.ErrIllegalTransition}
	}

	m.publisher.Publish(ctx, domain.SignalCanTransition, m)
	return true, nil
}
