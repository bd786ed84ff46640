package stepwise

import (
	"context"
	"log/slog"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/internal/runtime"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/history"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/aretw0/stepwise/pkg/signal"
	"github.com/aretw0/stepwise/pkg/validation"
)

// Machine is the high-level entry point for the Stepwise library.
// It wraps the internal runtime and wires the default validator, the history
// recorder and the signal bus.
type Machine struct {
	runtime *runtime.Machine

	name             string
	logger           *slog.Logger
	validators       *registry.Registry[ports.Validator]
	callbacks        *registry.Registry[ports.Callback]
	subscriptions    signal.Subscriptions
	publishers       []ports.Publisher
	runtimeOpts      []runtime.Option
	customValidators map[string]string
}

// Option defines a functional option for configuring the Machine.
type Option func(*Machine)

// WithName labels the machine in logs, outcomes and metrics.
func WithName(name string) Option {
	return func(m *Machine) {
		m.name = name
	}
}

// WithLogger sets a custom structured logger for the machine.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithValidator registers a validator under id. Registering DefaultValidator
// replaces the built-in rule validator.
func WithValidator(id string, v ports.Validator) Option {
	return func(m *Machine) {
		m.validators.RegisterInstance(id, v)
	}
}

// WithCallback registers a callback handler under id.
func WithCallback(id string, cb ports.Callback) Option {
	return func(m *Machine) {
		m.callbacks.RegisterInstance(id, cb)
	}
}

// WithCustomValidators redirects rules to registered validators by rule name.
func WithCustomValidators(rules map[string]string) Option {
	return func(m *Machine) {
		m.customValidators = rules
	}
}

// WithSubscriptions replaces the default signal subscription table.
// Without the history recorder in the table, list history.CallbackID in the
// post callbacks of the transitions that should be recorded.
func WithSubscriptions(subs signal.Subscriptions) Option {
	return func(m *Machine) {
		m.subscriptions = subs
	}
}

// WithPublisher adds a publisher that receives every signal after the in-process bus.
func WithPublisher(p ports.Publisher) Option {
	return func(m *Machine) {
		m.publishers = append(m.publishers, p)
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.runtimeOpts = append(m.runtimeOpts, runtime.WithLifecycleHooks(hooks))
	}
}

// WithWarningHook receives missing-callback conditions instead of the logger.
func WithWarningHook(fn func(context.Context, error)) Option {
	return func(m *Machine) {
		m.runtimeOpts = append(m.runtimeOpts, runtime.WithWarningHook(fn))
	}
}

// WithUnvalidatedTransitions lets transitions without a validators key pass validation.
func WithUnvalidatedTransitions() Option {
	return func(m *Machine) {
		m.runtimeOpts = append(m.runtimeOpts, runtime.WithUnvalidatedTransitions())
	}
}

// DefaultSubscriptions returns the subscription table used when none is given:
// the history recorder listens to the post-transition signal.
func DefaultSubscriptions() signal.Subscriptions {
	return signal.Subscriptions{}.Add(domain.SignalPostTransition, history.NewRecorder())
}

// New creates a machine driving object through cfg.
func New(object domain.Object, cfg domain.Config, opts ...Option) (*Machine, error) {
	m := &Machine{
		validators: registry.New[ports.Validator](),
		callbacks:  registry.New[ports.Callback](),
	}
	m.validators.RegisterInstance(domain.DefaultValidator, validation.New())
	m.callbacks.RegisterInstance(history.CallbackID, history.NewRecorder())

	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = logging.NewNop()
	}
	if m.subscriptions == nil {
		m.subscriptions = DefaultSubscriptions()
	}

	publisher := signal.Multi(append(
		[]ports.Publisher{signal.NewBus(m.subscriptions, signal.WithLogger(m.logger))},
		m.publishers...,
	))

	runtimeOpts := []runtime.Option{
		runtime.WithName(m.name),
		runtime.WithLogger(m.logger),
		runtime.WithPublisher(publisher),
		runtime.WithValidators(m.validators),
		runtime.WithCallbacks(m.callbacks),
		runtime.WithCustomValidators(m.customValidators),
	}
	runtimeOpts = append(runtimeOpts, m.runtimeOpts...)

	rt, err := runtime.NewMachine(object, cfg, runtimeOpts...)
	if err != nil {
		return nil, err
	}
	m.runtime = rt
	return m, nil
}

// Can reports whether the transition may be applied from the current state.
func (m *Machine) Can(ctx context.Context, transition string) (bool, error) {
	return m.runtime.Can(ctx, transition)
}

// Apply runs the named transition against the object.
func (m *Machine) Apply(ctx context.Context, transition string) error {
	return m.runtime.Apply(ctx, transition)
}

// PossibleTransitions lists the transitions leaving the current state.
func (m *Machine) PossibleTransitions() []domain.PossibleTransition {
	return m.runtime.PossibleTransitions()
}

// ActualStep returns the current state of the object.
func (m *Machine) ActualStep() string {
	return m.runtime.ActualStep()
}

// StateField returns the attribute holding the current state.
func (m *Machine) StateField() string {
	return m.runtime.StateField()
}

// Object returns the object the machine drives.
func (m *Machine) Object() domain.Object {
	return m.runtime.Object()
}

// Config returns a copy of the machine configuration.
func (m *Machine) Config() domain.Config {
	return m.runtime.Config()
}

// Name returns the machine label.
func (m *Machine) Name() string {
	return m.name
}
