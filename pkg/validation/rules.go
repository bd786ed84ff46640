package validation

import (
	"fmt"
	"strconv"
	"strings"
)

// rule is a parsed rule expression.
type rule struct {
	required bool
	isString bool
	tags     []string
}

func (r rule) tag() string {
	return strings.Join(r.tags, ",")
}

// parseRule translates "required|max:255" into a validator tag list.
func parseRule(expr string) (rule, error) {
	var r rule
	for _, part := range strings.Split(expr, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, param, _ := strings.Cut(part, ":")
		switch name {
		case "required":
			r.required = true
		case "nullable", "sometimes":
			// absent values are already skipped
		case "string":
			r.isString = true
		case "email", "url", "uuid", "numeric", "alpha":
			r.tags = append(r.tags, name)
		case "alpha_num":
			r.tags = append(r.tags, "alphanum")
		case "min", "max":
			if err := numericParam(name, param); err != nil {
				return rule{}, err
			}
			r.tags = append(r.tags, name+"="+param)
		case "size":
			if err := numericParam(name, param); err != nil {
				return rule{}, err
			}
			r.tags = append(r.tags, "len="+param)
		case "in":
			if param == "" {
				return rule{}, fmt.Errorf("rule %q requires a parameter", name)
			}
			r.tags = append(r.tags, "oneof="+strings.ReplaceAll(param, ",", " "))
		default:
			return rule{}, fmt.Errorf("unknown rule %q", name)
		}
	}
	return r, nil
}

func numericParam(name, param string) error {
	if param == "" {
		return fmt.Errorf("rule %q requires a parameter", name)
	}
	if _, err := strconv.ParseFloat(param, 64); err != nil {
		return fmt.Errorf("rule %q requires a numeric parameter, got %q", name, param)
	}
	return nil
}

// RuleNames returns the names of the rules in an expression, in order.
// The engine matches them against custom validator registrations.
func RuleNames(expr string) []string {
	var names []string
	for _, part := range strings.Split(expr, "|") {
		name, _, _ := strings.Cut(strings.TrimSpace(part), ":")
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
