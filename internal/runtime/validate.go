package runtime

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/validation"
)

// validate runs every rule entry of the transition and accumulates the failures.
func (m *Machine) validate(ctx context.Context, event *domain.Event) error {
	set := event.Spec.Validators
	if set == nil {
		if m.allowUnvalidated {
			return nil
		}
		return &domain.ValidationError{
			Transition: event.Transition,
			Errors:     domain.FieldErrors{{Message: "no validators configured"}},
		}
	}

	attributes := m.object.Attributes()

	var errs domain.FieldErrors
	for _, entry := range set {
		for _, b := range m.route(entry) {
			v, err := m.validators.Resolve(b.validator)
			if err != nil {
				errs = append(errs, domain.FieldError{
					Validator: b.validator,
					Message:   fmt.Sprintf("%v: %s", domain.ErrMissingValidator, b.validator),
				})
				continue
			}
			if err := v.Validate(ctx, attributes, b.rules); err != nil {
				errs = append(errs, fieldErrors(b.validator, err)...)
			}
		}
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Transition: event.Transition, Errors: errs}
	}
	return nil
}

type batch struct {
	validator string
	rules     map[string]string
}

// route splits a rule entry into per-validator batches. Rules whose name matches a
// custom validator go to that validator; the rest go to the entry's own validator.
func (m *Machine) route(entry domain.ValidatorRule) []batch {
	base := entry.Validator
	if base == "" {
		base = m.defaultValidator
	}

	byID := map[string]map[string]string{}
	add := func(id, field, expr string) {
		if byID[id] == nil {
			byID[id] = map[string]string{}
		}
		byID[id][field] = expr
	}

	for field, expr := range entry.Rules {
		add(m.customValidatorFor(expr, base), field, expr)
	}

	out := make([]batch, 0, len(byID)+1)
	if rules, ok := byID[base]; ok || len(byID) == 0 {
		out = append(out, batch{validator: base, rules: rules})
		delete(byID, base)
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		out = append(out, batch{validator: id, rules: byID[id]})
	}
	return out
}

func (m *Machine) customValidatorFor(expr, fallback string) string {
	if len(m.customValidators) == 0 {
		return fallback
	}
	if id, ok := m.customValidators[strings.TrimSpace(expr)]; ok {
		return id
	}
	for _, name := range validation.RuleNames(expr) {
		if id, ok := m.customValidators[name]; ok {
			return id
		}
	}
	return fallback
}

// fieldErrors normalizes whatever a validator returned into field errors.
func fieldErrors(validator string, err error) domain.FieldErrors {
	var list domain.FieldErrors
	var single domain.FieldError
	switch {
	case errors.As(err, &list):
	case errors.As(err, &single):
		list = domain.FieldErrors{single}
	default:
		return domain.FieldErrors{{Validator: validator, Message: err.Error()}}
	}

	out := make(domain.FieldErrors, len(list))
	for i, fe := range list {
		if fe.Validator == "" {
			fe.Validator = validator
		}
		out[i] = fe
	}
	return out
}
