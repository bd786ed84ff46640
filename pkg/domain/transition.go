package domain

// TransitionSpec defines a named edge between two steps.
type TransitionSpec struct {
	From string `json:"from" yaml:"from" mapstructure:"from"`
	To   string `json:"to" yaml:"to" mapstructure:"to"`
	Text string `json:"text,omitempty" yaml:"text,omitempty" mapstructure:"text"`

	// Validators is nil when the transition declares no validators at all,
	// which differs from an empty, declared set.
	Validators ValidatorSet `json:"validators,omitempty" yaml:"validators,omitempty" mapstructure:"validators"`

	Callbacks Callbacks `json:"callbacks,omitempty" yaml:"callbacks,omitempty" mapstructure:"callbacks"`
}

// Clone returns a deep copy of the spec.
func (t TransitionSpec) Clone() TransitionSpec {
	out := t
	if t.Validators != nil {
		out.Validators = make(ValidatorSet, len(t.Validators))
		for i, rule := range t.Validators {
			out.Validators[i] = rule.Clone()
		}
	}
	out.Callbacks = Callbacks{
		Pre:  cloneStrings(t.Callbacks.Pre),
		Post: cloneStrings(t.Callbacks.Post),
	}
	return out
}

// ValidatorRule is one entry of a transition's validator set.
type ValidatorRule struct {
	// Key is the key the entry was declared under.
	Key string `json:"key" yaml:"key" mapstructure:"key"`

	// Validator is the registry identifier to use; empty selects the default validator.
	Validator string `json:"validator,omitempty" yaml:"validator,omitempty" mapstructure:"validator"`

	// Rules maps attribute names to rule expressions (e.g. "required|max:255").
	Rules map[string]string `json:"rules" yaml:"rules" mapstructure:"rules"`
}

// DefaultRules declares a rule entry handled by the default validator.
func DefaultRules(rules map[string]string) ValidatorRule {
	return ValidatorRule{Rules: rules}
}

// NamedRules declares a rule entry handled by the validator registered as id.
func NamedRules(id string, rules map[string]string) ValidatorRule {
	return ValidatorRule{Key: id, Validator: id, Rules: rules}
}

// ValidatorID returns the identifier of the validator the entry asks for.
func (r ValidatorRule) ValidatorID() string {
	if r.Validator == "" {
		return DefaultValidator
	}
	return r.Validator
}

// Clone returns a deep copy of the rule.
func (r ValidatorRule) Clone() ValidatorRule {
	out := r
	if r.Rules != nil {
		out.Rules = make(map[string]string, len(r.Rules))
		for k, v := range r.Rules {
			out.Rules[k] = v
		}
	}
	return out
}

// ValidatorSet is the ordered list of rule entries of a transition.
type ValidatorSet []ValidatorRule

// Callbacks lists the handler identifiers run around the state mutation.
// A nil phase means the phase is not configured.
type Callbacks struct {
	Pre  []string `json:"pre,omitempty" yaml:"pre,omitempty" mapstructure:"pre"`
	Post []string `json:"post,omitempty" yaml:"post,omitempty" mapstructure:"post"`
}

// Phase returns the handlers of a phase and whether the phase is configured.
func (c Callbacks) Phase(p Phase) ([]string, bool) {
	switch p {
	case PhasePre:
		return c.Pre, c.Pre != nil
	case PhasePost:
		return c.Post, c.Post != nil
	}
	return nil, false
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append(make([]string, 0, len(in)), in...)
}
