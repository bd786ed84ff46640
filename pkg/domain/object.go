package domain

import "context"

// Object is the capability set the engine needs from the business object it drives.
// The machine holds a non-owning reference; the caller owns the object's lifecycle.
type Object interface {
	// Attribute reads a single attribute. Missing attributes return nil.
	Attribute(name string) any

	// SetAttribute writes an attribute in memory; Persist makes it durable.
	SetAttribute(name string, value any)

	// Persist stores the pending attribute changes.
	Persist(ctx context.Context) error

	// Attributes returns the full attribute set, as seen by validators.
	Attributes() map[string]any

	// AppendHistory appends a record to the object's change history.
	AppendHistory(ctx context.Context, record HistoryRecord) error
}

// AttributeRemover is implemented by objects that can drop an attribute entirely.
// The engine uses it to restore an absent state field after a failed persist.
type AttributeRemover interface {
	RemoveAttribute(name string)
}
