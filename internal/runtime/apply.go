package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Apply runs the named transition: guard, pre signal, validation, pre callbacks,
// state mutation, post signal, post callbacks.
//
// Guard, validation and pre-callback failures leave the object untouched. A failed
// persist restores the previous state value on the object. Post-callback failures
// are returned after the new state has been persisted.
func (m *Machine) Apply(ctx context.Context, name string) error {
	start := time.Now()
	from := m.ActualStep()

	err := m.apply(ctx, name)

	outcome := &domain.Outcome{
		Machine:    m.name,
		Transition: name,
		From:       from,
		Elapsed:    time.Since(start),
		Err:        err,
	}
	if err == nil {
		outcome.To = m.ActualStep()
		m.logger.Debug("transition applied", "transition", name, "from", from, "to", outcome.To)
		if m.hooks.OnApplied != nil {
			m.hooks.OnApplied(ctx, outcome)
		}
		return nil
	}

	m.logger.Debug("transition rejected", "transition", name, "from", from, "reason", domain.Reason(err))
	if m.hooks.OnRejected != nil {
		m.hooks.OnRejected(ctx, outcome)
	}
	return err
}

func (m *Machine) apply(ctx context.Context, name string) error {
	from := m.ActualStep()

	ok, err := m.Can(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.TransitionError{Transition: name, State: from, Err: domain.ErrTerminalState}
	}

	event := &domain.Event{
		Transition: name,
		From:       from,
		Spec:       m.config.Transitions[name].Clone(),
		Machine:    m,
	}

	m.publisher.Publish(ctx, domain.SignalPreTransition, event)

	if err := m.validate(ctx, event); err != nil {
		return err
	}

	if err := m.runCallbacks(ctx, event, domain.PhasePre); err != nil {
		return err
	}

	if err := m.commit(ctx, event); err != nil {
		return err
	}

	m.publisher.Publish(ctx, domain.SignalPostTransition, event)

	return m.runCallbacks(ctx, event, domain.PhasePost)
}

// commit writes the target state and persists it.
func (m *Machine) commit(ctx context.Context, event *domain.Event) error {
	to := event.Spec.To
	if !m.config.Steps.Has(to) {
		return &domain.TransitionError{
			Transition: event.Transition,
			State:      event.From,
			Err:        fmt.Errorf("%w: %q", domain.ErrUnknownStep, to),
		}
	}

	field := m.config.PropertyPath
	previous := m.object.Attribute(field)
	_, had := m.object.Attributes()[field]

	m.object.SetAttribute(field, to)
	if err := m.object.Persist(ctx); err != nil {
		m.restore(field, previous, had)
		return &domain.TransitionError{
			Transition: event.Transition,
			State:      event.From,
			Err:        fmt.Errorf("persist: %w", err),
		}
	}
	return nil
}

// restore puts the state field back the way it was before commit.
func (m *Machine) restore(field string, previous any, had bool) {
	if !had {
		if r, ok := m.object.(domain.AttributeRemover); ok {
			r.RemoveAttribute(field)
			return
		}
	}
	m.object.SetAttribute(field, previous)
}
