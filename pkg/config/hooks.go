package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/aretw0/stepwise/pkg/domain"
)

var (
	stepsType           = reflect.TypeOf(domain.Steps{})
	validatorSetType    = reflect.TypeOf(domain.ValidatorSet{})
	customValidatorType = reflect.TypeOf(CustomValidator{})
)

// stepsHook accepts steps as a list of identifiers or as an id: label mapping.
func stepsHook(from, to reflect.Type, data any) (any, error) {
	if to != stepsType {
		return data, nil
	}
	switch t := data.(type) {
	case []any:
		ids := make([]string, 0, len(t))
		for _, v := range t {
			ids = append(ids, fmt.Sprint(v))
		}
		return domain.NewSteps(ids...), nil
	case map[string]any:
		steps := make(domain.Steps, len(t))
		for id, label := range t {
			if label == nil {
				steps[id] = ""
				continue
			}
			steps[id] = fmt.Sprint(label)
		}
		return steps, nil
	}
	return data, nil
}

// validatorSetHook decodes the validators of a transition.
//
// As a mapping, numeric keys declare rules for the default validator and any other key
// names the validator to use; entries are ordered numerically, then lexically. As a list,
// each element is either a rules mapping for the default validator or a
// {validator, rules} pair.
func validatorSetHook(from, to reflect.Type, data any) (any, error) {
	if to != validatorSetType {
		return data, nil
	}
	switch t := data.(type) {
	case nil:
		return domain.ValidatorSet(nil), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })

		set := make(domain.ValidatorSet, 0, len(keys))
		for _, key := range keys {
			rules, err := ruleMap(key, t[key])
			if err != nil {
				return nil, err
			}
			rule := domain.ValidatorRule{Key: key, Rules: rules}
			if !isIndex(key) {
				rule.Validator = key
			}
			set = append(set, rule)
		}
		return set, nil
	case []any:
		set := make(domain.ValidatorSet, 0, len(t))
		for i, item := range t {
			key := strconv.Itoa(i)
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("validators[%d]: expected a mapping, got %T", i, item)
			}
			if id, named := m["validator"]; named {
				rules, err := ruleMap(key, m["rules"])
				if err != nil {
					return nil, err
				}
				set = append(set, domain.ValidatorRule{Key: key, Validator: fmt.Sprint(id), Rules: rules})
				continue
			}
			rules, err := ruleMap(key, m)
			if err != nil {
				return nil, err
			}
			set = append(set, domain.ValidatorRule{Key: key, Rules: rules})
		}
		return set, nil
	}
	return data, nil
}

// customValidatorHook accepts the short form `rule: validatorId`.
func customValidatorHook(from, to reflect.Type, data any) (any, error) {
	if to != customValidatorType {
		return data, nil
	}
	if s, ok := data.(string); ok {
		return CustomValidator{Validator: s}, nil
	}
	return data, nil
}

func ruleMap(key string, v any) (map[string]string, error) {
	if v == nil {
		return map[string]string{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("validators.%s: expected a field: rule mapping, got %T", key, v)
	}
	rules := make(map[string]string, len(m))
	for field, expr := range m {
		rules[field] = fmt.Sprint(expr)
	}
	return rules, nil
}

func isIndex(key string) bool {
	_, err := strconv.Atoi(key)
	return err == nil
}

func keyLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	return a < b
}
