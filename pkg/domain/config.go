package domain

import "sort"

// Steps is the set of valid states of a machine, mapped to an optional display label.
type Steps map[string]string

// NewSteps builds a label-less step set.
func NewSteps(ids ...string) Steps {
	steps := make(Steps, len(ids))
	for _, id := range ids {
		steps[id] = ""
	}
	return steps
}

// Has reports whether id is a declared step.
func (s Steps) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the declared step identifiers in lexical order.
func (s Steps) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Config is the static description of a machine.
// It is loaded once at construction and treated as immutable afterwards.
// Construction is permissive: step references are only checked when a
// transition is attempted.
type Config struct {
	PropertyPath string                    `json:"property_path,omitempty" yaml:"property_path,omitempty" mapstructure:"property_path"`
	Steps        Steps                     `json:"steps" yaml:"steps" mapstructure:"steps"`
	Transitions  map[string]TransitionSpec `json:"transitions" yaml:"transitions" mapstructure:"transitions"`
}

// WithDefaults returns a copy of the configuration with the default
// property path applied.
func (c Config) WithDefaults() Config {
	if c.PropertyPath == "" {
		c.PropertyPath = DefaultPropertyPath
	}
	return c
}

// Clone returns a deep copy so callers cannot mutate a running machine's configuration.
func (c Config) Clone() Config {
	out := Config{PropertyPath: c.PropertyPath}
	if c.Steps != nil {
		out.Steps = make(Steps, len(c.Steps))
		for k, v := range c.Steps {
			out.Steps[k] = v
		}
	}
	if c.Transitions != nil {
		out.Transitions = make(map[string]TransitionSpec, len(c.Transitions))
		for name, spec := range c.Transitions {
			out.Transitions[name] = spec.Clone()
		}
	}
	return out
}

// TransitionNames returns the configured transition names in lexical order.
func (c Config) TransitionNames() []string {
	names := make([]string, 0, len(c.Transitions))
	for name := range c.Transitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// From returns the names of the transitions leaving state, in lexical order.
func (c Config) From(state string) []string {
	var names []string
	for _, name := range c.TransitionNames() {
		if c.Transitions[name].From == state {
			names = append(names, name)
		}
	}
	return names
}

// PossibleTransition is a transition available from the current state.
type PossibleTransition struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}
