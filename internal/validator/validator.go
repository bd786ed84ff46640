package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
)

// Severity ranks a lint finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding about a machine configuration.
type Issue struct {
	Severity   Severity
	Transition string
	Message    string
}

func (i Issue) String() string {
	if i.Transition == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: transition %q: %s", i.Severity, i.Transition, i.Message)
}

// Known lists the identifiers registered at runtime. Nil slices skip the matching checks.
type Known struct {
	Validators []string
	Callbacks  []string
}

// ValidateConfig checks a machine configuration for references that would fail at
// transition time. The engine itself accepts such configurations; this is for tooling.
func ValidateConfig(cfg domain.Config, known Known) []Issue {
	var issues []Issue
	add := func(sev Severity, transition, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Transition: transition, Message: fmt.Sprintf(format, args...)})
	}

	if len(cfg.Steps) == 0 {
		add(SeverityError, "", "no steps declared")
	}

	touched := make(map[string]bool)
	for _, name := range cfg.TransitionNames() {
		t := cfg.Transitions[name]
		touched[t.From] = true
		touched[t.To] = true

		if !cfg.Steps.Has(t.From) {
			add(SeverityError, name, "from step %q is not declared", t.From)
		}
		if !cfg.Steps.Has(t.To) {
			add(SeverityError, name, "to step %q is not declared", t.To)
		}

		if t.Validators == nil {
			add(SeverityWarning, name, "no validators key: the transition is always rejected")
		}
		if known.Validators != nil {
			for _, rule := range t.Validators {
				if id := rule.ValidatorID(); !contains(known.Validators, id) {
					add(SeverityError, name, "validator %q is not registered", id)
				}
			}
		}

		if known.Callbacks != nil {
			for _, phase := range []domain.Phase{domain.PhasePre, domain.PhasePost} {
				ids, _ := t.Callbacks.Phase(phase)
				for _, id := range ids {
					if !contains(known.Callbacks, id) {
						add(SeverityWarning, name, "%s callback %q is not registered", phase, id)
					}
				}
			}
		}
	}

	for _, id := range cfg.Steps.IDs() {
		if !touched[id] {
			add(SeverityWarning, "", "step %q is not used by any transition", id)
		}
	}

	return issues
}

// Err folds the error-severity issues into a single error, or returns nil.
func Err(issues []Issue) error {
	var errs []string
	for _, i := range issues {
		if i.Severity == SeverityError {
			errs = append(errs, i.String())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(errs, "\n- "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
