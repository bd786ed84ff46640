package runtime

import (
	"context"

	"github.com/aretw0/stepwise/pkg/domain"
)

// runCallbacks invokes the handlers of a phase in configured order.
// Unconfigured phases and unresolvable handlers are reported to the warning hook
// and skipped. An error returned by a handler stops the chain.
func (m *Machine) runCallbacks(ctx context.Context, event *domain.Event, phase domain.Phase) error {
	ids, ok := event.Spec.Callbacks.Phase(phase)
	if !ok {
		m.warn(ctx, &domain.MissingCallbackError{Transition: event.Transition, Phase: phase})
		return nil
	}

	for _, id := range ids {
		cb, err := m.callbacks.Resolve(id)
		if err != nil {
			m.warn(ctx, &domain.MissingCallbackError{Transition: event.Transition, Phase: phase, Callback: id})
			continue
		}
		if err := cb.Handle(ctx, event); err != nil {
			return &domain.CallbackError{
				Transition: event.Transition,
				Phase:      phase,
				Callback:   id,
				Err:        err,
			}
		}
	}
	return nil
}
