package ports

import (
	"context"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Callback is a side effect run in the pre or post phase of a transition.
// Handlers run synchronously, in configured order, on the caller's goroutine.
type Callback interface {
	Handle(ctx context.Context, event *domain.Event) error
}

// CallbackFunc adapts a function to the Callback interface.
type CallbackFunc func(ctx context.Context, event *domain.Event) error

// Handle calls f.
func (f CallbackFunc) Handle(ctx context.Context, event *domain.Event) error {
	return f(ctx, event)
}
