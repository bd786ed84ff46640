package memory

import (
	"sort"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Loader implements ports.ConfigSource using an in-memory map.
type Loader struct {
	machines map[string]domain.Config
}

// NewLoader creates a loader over copies of the given configurations.
func NewLoader(machines map[string]domain.Config) *Loader {
	l := &Loader{machines: make(map[string]domain.Config, len(machines))}
	for name, cfg := range machines {
		l.machines[name] = cfg.Clone()
	}
	return l
}

// Machine returns a copy of the named configuration.
func (l *Loader) Machine(name string) (domain.Config, bool) {
	cfg, ok := l.machines[name]
	if !ok {
		return domain.Config{}, false
	}
	return cfg.Clone(), true
}

// Machines returns the machine names in lexical order.
func (l *Loader) Machines() []string {
	names := make([]string, 0, len(l.machines))
	for name := range l.machines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
