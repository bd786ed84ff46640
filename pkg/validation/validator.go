package validation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/go-playground/validator/v10"
)

// RuleValidator is the default ports.Validator.
type RuleValidator struct {
	validate *validator.Validate
}

// New creates a rule validator.
func New() *RuleValidator {
	return &RuleValidator{validate: validator.New()}
}

// Validate checks every attribute named in rules and returns all failures as domain.FieldErrors.
func (v *RuleValidator) Validate(ctx context.Context, attributes map[string]any, rules map[string]string) error {
	fields := make([]string, 0, len(rules))
	for field := range rules {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var errs domain.FieldErrors
	for _, field := range fields {
		expr := rules[field]
		r, err := parseRule(expr)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: field, Rule: expr, Message: err.Error()})
			continue
		}

		value, present := attributes[field]
		if isEmpty(value, present) {
			if r.required {
				errs = append(errs, domain.FieldError{
					Field:   field,
					Rule:    "required",
					Message: fmt.Sprintf("The %s field is required.", field),
				})
			}
			continue
		}

		if r.isString {
			if _, ok := value.(string); !ok {
				errs = append(errs, domain.FieldError{
					Field:   field,
					Rule:    "string",
					Message: fmt.Sprintf("The %s field must be a string.", field),
				})
				continue
			}
		}

		for _, tag := range r.tags {
			errs = append(errs, v.check(field, value, tag)...)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// check runs a single validator tag against value. Values of a kind the tag cannot
// handle are reported as failures instead of reaching the validator library.
func (v *RuleValidator) check(field string, value any, tag string) domain.FieldErrors {
	name, param, _ := strings.Cut(tag, "=")

	prepared, ok := prepare(name, value)
	if !ok {
		return domain.FieldErrors{{
			Field:   field,
			Rule:    name,
			Message: unsupported(field, name, value),
		}}
	}

	err := v.safeVar(prepared, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.FieldErrors{{Field: field, Rule: name, Message: err.Error()}}
	}
	out := make(domain.FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, domain.FieldError{
			Field:   field,
			Rule:    fe.Tag(),
			Message: message(field, fe.Tag(), param),
		})
	}
	return out
}

// safeVar calls Var and turns a panic of the validator library into an error.
func (v *RuleValidator) safeVar(value any, tag string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("rule %q cannot check a %T value: %v", tag, value, p)
		}
	}()
	return v.validate.Var(value, tag)
}

func isEmpty(value any, present bool) bool {
	if !present || value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

func message(field, tag, param string) string {
	switch tag {
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "url":
		return fmt.Sprintf("The %s field must be a valid URL.", field)
	case "uuid":
		return fmt.Sprintf("The %s field must be a valid UUID.", field)
	case "numeric":
		return fmt.Sprintf("The %s field must be a number.", field)
	case "alpha":
		return fmt.Sprintf("The %s field must only contain letters.", field)
	case "alphanum":
		return fmt.Sprintf("The %s field must only contain letters and numbers.", field)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s.", field, param)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s.", field, param)
	case "len":
		return fmt.Sprintf("The %s field must be %s.", field, param)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	}
	return fmt.Sprintf("The %s field failed the %s rule.", field, tag)
}
