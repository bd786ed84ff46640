package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/registry"
)

// Machine drives the state field of one object through the configured transitions.
//
// A Machine is not safe for concurrent Apply calls on the same object: at most one
// transition may be in flight per object, and serializing them is the caller's job
// (see pkg/session).
type Machine struct {
	name   string
	object domain.Object
	config domain.Config

	publisher        ports.Publisher
	validators       *registry.Registry[ports.Validator]
	callbacks        *registry.Registry[ports.Callback]
	defaultValidator string
	customValidators map[string]string
	allowUnvalidated bool

	hooks  domain.LifecycleHooks
	warn   func(context.Context, error)
	logger *slog.Logger
}

// Option configures the Machine.
type Option func(*Machine)

// WithName labels the machine in logs, outcomes and metrics.
func WithName(name string) Option {
	return func(m *Machine) {
		m.name = name
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithPublisher sets the destination of the lifecycle signals.
func WithPublisher(p ports.Publisher) Option {
	return func(m *Machine) {
		m.publisher = p
	}
}

// WithValidators sets the validator registry.
func WithValidators(reg *registry.Registry[ports.Validator]) Option {
	return func(m *Machine) {
		m.validators = reg
	}
}

// WithCallbacks sets the callback registry.
func WithCallbacks(reg *registry.Registry[ports.Callback]) Option {
	return func(m *Machine) {
		m.callbacks = reg
	}
}

// WithDefaultValidator changes the identifier used for positional rule entries.
func WithDefaultValidator(id string) Option {
	return func(m *Machine) {
		m.defaultValidator = id
	}
}

// WithCustomValidators redirects rules to validators by rule name.
// The map is keyed by rule name (or full rule expression) and holds validator identifiers.
func WithCustomValidators(rules map[string]string) Option {
	return func(m *Machine) {
		m.customValidators = make(map[string]string, len(rules))
		for rule, id := range rules {
			m.customValidators[rule] = id
		}
	}
}

// WithUnvalidatedTransitions lets transitions that declare no validators pass the
// validation phase. By default they are rejected.
func WithUnvalidatedTransitions() Option {
	return func(m *Machine) {
		m.allowUnvalidated = true
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = hooks
	}
}

// WithWarningHook receives every non-fatal condition (missing callbacks).
// It replaces the default, which logs at Warn.
func WithWarningHook(fn func(context.Context, error)) Option {
	return func(m *Machine) {
		m.warn = fn
	}
}

// NewMachine creates a machine over object. The configuration is copied;
// step references are not checked until a transition is attempted.
func NewMachine(object domain.Object, cfg domain.Config, opts ...Option) (*Machine, error) {
	if object == nil {
		return nil, errors.New("runtime: object is required")
	}

	m := &Machine{
		object:           object,
		config:           cfg.Clone().WithDefaults(),
		defaultValidator: domain.DefaultValidator,
		logger:           logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.publisher == nil {
		m.publisher = nopPublisher{}
	}
	if m.validators == nil {
		m.validators = registry.New[ports.Validator]()
	}
	if m.callbacks == nil {
		m.callbacks = registry.New[ports.Callback]()
	}
	if m.logger == nil {
		m.logger = logging.NewNop()
	}
	if m.name != "" {
		m.logger = m.logger.With("machine", m.name)
	}
	if m.warn == nil {
		m.warn = func(_ context.Context, err error) {
			m.logger.Warn("transition warning", "err", err)
		}
	}
	return m, nil
}

// Name returns the machine label, if any.
func (m *Machine) Name() string { return m.name }

// Object returns the object the machine drives.
func (m *Machine) Object() domain.Object { return m.object }

// Config returns a copy of the machine configuration.
func (m *Machine) Config() domain.Config { return m.config.Clone() }

// StateField returns the attribute holding the current state.
func (m *Machine) StateField() string { return m.config.PropertyPath }

// ActualStep returns the current state of the object.
func (m *Machine) ActualStep() string {
	return stepString(m.object.Attribute(m.config.PropertyPath))
}

// PossibleTransitions lists the transitions leaving the current state, sorted by name.
func (m *Machine) PossibleTransitions() []domain.PossibleTransition {
	names := m.config.From(m.ActualStep())
	out := make([]domain.PossibleTransition, 0, len(names))
	for _, name := range names {
		out = append(out, domain.PossibleTransition{
			Key:  name,
			Text: m.config.Transitions[name].Text,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func stepString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) {}
