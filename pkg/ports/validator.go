package ports

import "context"

// Validator checks an object's attributes against a transition's rule entry.
// It returns nil when the attributes pass. A domain.FieldErrors value is
// expanded into individual failures; any other error counts as one failure.
type Validator interface {
	Validate(ctx context.Context, attributes map[string]any, rules map[string]string) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, attributes map[string]any, rules map[string]string) error

// Validate calls f.
func (f ValidatorFunc) Validate(ctx context.Context, attributes map[string]any, rules map[string]string) error {
	return f(ctx, attributes, rules)
}
