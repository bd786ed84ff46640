package ports

import (
	"context"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Applier drives named machines over stored records.
// This is the interface used by transport adapters (e.g. HTTP).
type Applier interface {
	// HasMachine reports whether a machine with that name is configured.
	HasMachine(name string) bool

	// Load returns the stored record.
	Load(ctx context.Context, recordID string) (*domain.Record, error)

	// Possible lists the transitions available from the record's current state.
	Possible(ctx context.Context, machine, recordID string) ([]domain.PossibleTransition, error)

	// Apply runs a transition against the record and returns the updated record.
	Apply(ctx context.Context, machine, recordID, transition string) (*domain.Record, error)
}
