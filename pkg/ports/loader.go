package ports

import "github.com/aretw0/stepwise/pkg/domain"

// ConfigSource resolves machine configurations by name.
type ConfigSource interface {
	// Machine returns the configuration registered under name.
	Machine(name string) (domain.Config, bool)

	// Machines returns the registered machine names.
	Machines() []string
}
