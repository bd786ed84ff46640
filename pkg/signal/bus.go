package signal

import (
	"context"
	"log/slog"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/ports"
)

// Subscriber receives signals from a Bus.
type Subscriber interface {
	Receive(ctx context.Context, signal string, payload any) error
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(ctx context.Context, signal string, payload any) error

// Receive calls f.
func (f SubscriberFunc) Receive(ctx context.Context, signal string, payload any) error {
	return f(ctx, signal, payload)
}

// Subscriptions maps signal names to their subscribers, in delivery order.
type Subscriptions map[string][]Subscriber

// Add appends a subscriber for signal and returns the table for chaining.
func (s Subscriptions) Add(signal string, sub Subscriber) Subscriptions {
	s[signal] = append(s[signal], sub)
	return s
}

// Clone returns a copy of the table whose slices can be extended independently.
func (s Subscriptions) Clone() Subscriptions {
	out := make(Subscriptions, len(s))
	for name, subs := range s {
		out[name] = append([]Subscriber(nil), subs...)
	}
	return out
}

// Bus is a synchronous, in-process ports.Publisher.
type Bus struct {
	subs   Subscriptions
	logger *slog.Logger
}

// Option configures the Bus.
type Option func(*Bus)

// WithLogger configures a logger for subscriber failures.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// NewBus creates a bus over a copy of the subscription table.
func NewBus(subs Subscriptions, opts ...Option) *Bus {
	if subs == nil {
		subs = Subscriptions{}
	}
	b := &Bus{
		subs:   subs.Clone(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers the signal to every subscriber registered for it.
func (b *Bus) Publish(ctx context.Context, signal string, payload any) {
	for _, sub := range b.subs[signal] {
		if err := sub.Receive(ctx, signal, payload); err != nil {
			b.logger.Warn("signal subscriber failed",
				"signal", signal,
				"err", err,
			)
		}
	}
}

// Multi fans a signal out to several publishers, in order.
type Multi []ports.Publisher

// Publish calls every publisher in turn.
func (m Multi) Publish(ctx context.Context, signal string, payload any) {
	for _, p := range m {
		if p != nil {
			p.Publish(ctx, signal, payload)
		}
	}
}

// Nop discards every signal.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, string, any) {}
