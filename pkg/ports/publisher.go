package ports

import "context"

// Publisher emits a named signal. Delivery is fire-and-forget: a publisher
// never fails the transition that emitted the signal.
//
// The payload is a *domain.Event for the pre/post transition signals and a
// domain.Machine for the can-transition signal.
type Publisher interface {
	Publish(ctx context.Context, signal string, payload any)
}
