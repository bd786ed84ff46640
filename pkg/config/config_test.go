package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/stepwise/pkg/config"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settingsYAML = `
log_level: debug
custom_validators:
  slug: { validator: slug-checker }
  isbn: isbn-checker
machines:
  posts:
    steps: [draft, review, published]
    transitions:
      submit:
        from: draft
        to: review
        text: Submit for review
        validators:
          1: { body: required }
          0: { title: "required|max:255" }
          moderation: { body: clean }
        callbacks:
          pre: [notify]
          post: [history]
      publish:
        from: review
        to: published
        validators: {}
      reject:
        from: review
        to: draft
  orders:
    property_path: status
    steps:
      new: New order
      paid: Paid
    transitions:
      pay:
        from: new
        to: paid
        validators:
          - { amount: "numeric|min:1" }
          - validator: fraud
            rules: { card: required }
`

func TestParse_YAML(t *testing.T) {
	s, err := config.Parse([]byte(settingsYAML), config.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, map[string]string{"slug": "slug-checker", "isbn": "isbn-checker"}, s.CustomValidatorMap())
	assert.Equal(t, []string{"orders", "posts"}, s.Machines())

	posts, ok := s.Machine("posts")
	require.True(t, ok)
	assert.Equal(t, domain.DefaultPropertyPath, posts.PropertyPath)
	assert.Equal(t, domain.NewSteps("draft", "review", "published"), posts.Steps)

	submit := posts.Transitions["submit"]
	assert.Equal(t, "Submit for review", submit.Text)
	assert.Equal(t, domain.ValidatorSet{
		{Key: "0", Rules: map[string]string{"title": "required|max:255"}},
		{Key: "1", Rules: map[string]string{"body": "required"}},
		{Key: "moderation", Validator: "moderation", Rules: map[string]string{"body": "clean"}},
	}, submit.Validators)
	assert.Equal(t, domain.Callbacks{Pre: []string{"notify"}, Post: []string{"history"}}, submit.Callbacks)

	publish := posts.Transitions["publish"]
	assert.NotNil(t, publish.Validators, "an empty validators key is declared")
	assert.Empty(t, publish.Validators)

	reject := posts.Transitions["reject"]
	assert.Nil(t, reject.Validators, "no validators key")
	_, configured := reject.Callbacks.Phase(domain.PhasePost)
	assert.False(t, configured)

	orders, ok := s.Machine("orders")
	require.True(t, ok)
	assert.Equal(t, "status", orders.PropertyPath)
	assert.Equal(t, domain.Steps{"new": "New order", "paid": "Paid"}, orders.Steps)
	assert.Equal(t, domain.ValidatorSet{
		{Key: "0", Rules: map[string]string{"amount": "numeric|min:1"}},
		{Key: "1", Validator: "fraud", Rules: map[string]string{"card": "required"}},
	}, orders.Transitions["pay"].Validators)

	_, ok = s.Machine("missing")
	assert.False(t, ok)
}

func TestParse_JSON(t *testing.T) {
	data := []byte(`{
		"machines": {
			"posts": {
				"steps": ["draft", "published"],
				"transitions": {
					"publish": {
						"from": "draft",
						"to": "published",
						"validators": {"0": {"title": "required"}}
					}
				}
			}
		}
	}`)

	s, err := config.Parse(data, config.FormatJSON)
	require.NoError(t, err)

	posts, ok := s.Machine("posts")
	require.True(t, ok)
	assert.Equal(t, domain.ValidatorSet{
		{Key: "0", Rules: map[string]string{"title": "required"}},
	}, posts.Transitions["publish"].Validators)
	assert.Empty(t, s.CustomValidatorMap())
}

func TestParse_Errors(t *testing.T) {
	_, err := config.Parse([]byte("machines: [oops"), config.FormatYAML)
	assert.Error(t, err)

	_, err = config.Parse([]byte(`{"machines": {"a": {"stepz": []}}}`), config.FormatJSON)
	assert.Error(t, err, "unknown keys are rejected")

	_, err = config.Parse([]byte(`{"machines": {"a": {"transitions": {"t": {"validators": {"0": "required"}}}}}}`), config.FormatJSON)
	assert.Error(t, err)

	_, err = config.Parse([]byte(`{}`), config.Format("toml"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "stepwise.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(settingsYAML), 0o644))
	s, err := config.Load(yamlPath)
	require.NoError(t, err)
	assert.Len(t, s.Machines(), 2)

	txtPath := filepath.Join(dir, "stepwise.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte(settingsYAML), 0o644))
	_, err = config.Load(txtPath)
	assert.Error(t, err)

	_, err = config.Load(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}

func TestDecodeMachine(t *testing.T) {
	cfg, err := config.DecodeMachine(map[string]any{
		"steps": []any{"draft", "published"},
		"transitions": map[string]any{
			"publish": map[string]any{
				"from": "draft",
				"to":   "published",
				"validators": map[any]any{
					0: map[any]any{"title": "required"},
				},
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultPropertyPath, cfg.PropertyPath)
	assert.Equal(t, domain.ValidatorSet{
		{Key: "0", Rules: map[string]string{"title": "required"}},
	}, cfg.Transitions["publish"].Validators)
}

func TestMachine_ReturnsCopy(t *testing.T) {
	s, err := config.Parse([]byte(settingsYAML), config.FormatYAML)
	require.NoError(t, err)

	a, _ := s.Machine("posts")
	delete(a.Transitions, "submit")

	b, _ := s.Machine("posts")
	assert.Contains(t, b.Transitions, "submit")
}
