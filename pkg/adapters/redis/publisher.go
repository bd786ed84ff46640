package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Message is the JSON document published for every signal.
type Message struct {
	Signal     string    `json:"signal"`
	Machine    string    `json:"machine,omitempty"`
	Transition string    `json:"transition,omitempty"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	State      string    `json:"state"`
	At         time.Time `json:"at"`
}

// Publisher forwards engine signals to Redis Pub/Sub, one channel per signal.
type Publisher struct {
	client  backend.UniversalClient
	prefix  string
	machine string
	logger  *slog.Logger
}

var _ ports.Publisher = (*Publisher)(nil)

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithChannelPrefix sets the channel prefix (default DefaultPrefix).
func WithChannelPrefix(prefix string) PublisherOption {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

// WithMachineName labels messages with the machine name.
func WithMachineName(name string) PublisherOption {
	return func(p *Publisher) {
		p.machine = name
	}
}

// WithPublisherLogger configures a logger for publish failures.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a publisher over client.
func NewPublisher(client backend.UniversalClient, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		client: client,
		prefix: DefaultPrefix,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Channel returns the channel a signal is published on.
func (p *Publisher) Channel(signal string) string {
	return p.prefix + signal
}

// Publish sends the signal. Failures are logged, never returned.
func (p *Publisher) Publish(ctx context.Context, signal string, payload any) {
	msg := Message{
		Signal:  signal,
		Machine: p.machine,
		At:      time.Now().UTC(),
	}
	switch v := payload.(type) {
	case *domain.Event:
		msg.Transition = v.Transition
		msg.From = v.From
		msg.To = v.Spec.To
		if v.Machine != nil {
			msg.State = v.Machine.ActualStep()
		}
	case domain.Machine:
		msg.State = v.ActualStep()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		p.logger.Warn("failed to encode signal", "signal", signal, "err", err)
		return
	}
	if err := p.client.Publish(ctx, p.Channel(signal), data).Err(); err != nil {
		p.logger.Warn("failed to publish signal", "signal", signal, "err", err)
	}
}
