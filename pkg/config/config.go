// Package config loads stepwise settings files.
//
// A settings file declares the global custom validators and any number of named
// machine configurations. YAML and JSON are supported; both are decoded into a
// generic map first and then into typed structs with mapstructure.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format identifies a settings encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// CustomValidator redirects a rule to a registered validator.
type CustomValidator struct {
	Validator string `json:"validator" yaml:"validator" mapstructure:"validator"`
}

// Settings is the decoded content of a settings file.
type Settings struct {
	LogLevel         string                     `json:"log_level,omitempty" yaml:"log_level,omitempty" mapstructure:"log_level"`
	CustomValidators map[string]CustomValidator `json:"custom_validators,omitempty" yaml:"custom_validators,omitempty" mapstructure:"custom_validators"`
	Definitions      map[string]domain.Config   `json:"machines" yaml:"machines" mapstructure:"machines"`
}

var _ ports.ConfigSource = (*Settings)(nil)

// Machine returns a copy of the named machine configuration, with defaults applied.
func (s *Settings) Machine(name string) (domain.Config, bool) {
	cfg, ok := s.Definitions[name]
	if !ok {
		return domain.Config{}, false
	}
	return cfg.Clone().WithDefaults(), true
}

// Machines returns the machine names in lexical order.
func (s *Settings) Machines() []string {
	names := make([]string, 0, len(s.Definitions))
	for name := range s.Definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CustomValidatorMap returns the rule name to validator identifier table.
func (s *Settings) CustomValidatorMap() map[string]string {
	out := make(map[string]string, len(s.CustomValidators))
	for rule, cv := range s.CustomValidators {
		out[rule] = cv.Validator
	}
	return out
}

// Load reads a settings file. The format is chosen by extension.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var format Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".json":
		format = FormatJSON
	default:
		return nil, fmt.Errorf("unsupported settings extension %q", filepath.Ext(path))
	}

	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes settings from raw bytes.
func Parse(data []byte, format Format) (*Settings, error) {
	var raw map[string]any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid yaml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return Decode(raw)
}

// Decode builds settings from a generic map, e.g. one assembled in code.
func Decode(raw map[string]any) (*Settings, error) {
	var s Settings
	if err := decode(normalize(raw), &s); err != nil {
		return nil, err
	}
	if s.Definitions == nil {
		s.Definitions = map[string]domain.Config{}
	}
	return &s, nil
}

// DecodeMachine builds a single machine configuration from a generic map.
func DecodeMachine(raw map[string]any) (domain.Config, error) {
	var cfg domain.Config
	if err := decode(normalize(raw), &cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg.WithDefaults(), nil
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stepsHook,
			validatorSetHook,
			customValidatorHook,
		),
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// normalize converts the map[any]any mappings produced by YAML (e.g. for
// numeric keys) into map[string]any, recursively.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	}
	return v
}
