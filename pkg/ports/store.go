package ports

import (
	"context"

	"github.com/aretw0/stepwise/pkg/domain"
)

// RecordStore defines the interface for persisting business records.
type RecordStore interface {
	// Save persists the record under its ID, replacing any previous version.
	Save(ctx context.Context, record *domain.Record) error

	// Load retrieves the record for a given ID.
	// Returns domain.ErrRecordNotFound if the record does not exist.
	Load(ctx context.Context, id string) (*domain.Record, error)

	// Delete removes the record for a given ID.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored records.
	List(ctx context.Context) ([]string, error)
}
