package domain_test

import (
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func articleConfig() domain.Config {
	return domain.Config{
		Steps: domain.NewSteps("draft", "review", "published"),
		Transitions: map[string]domain.TransitionSpec{
			"submit":  {From: "draft", To: "review", Text: "Submit"},
			"reject":  {From: "review", To: "draft", Text: "Reject"},
			"publish": {From: "review", To: "published", Text: "Publish"},
		},
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := articleConfig().WithDefaults()
	assert.Equal(t, domain.DefaultPropertyPath, cfg.PropertyPath)

	custom := domain.Config{PropertyPath: "status"}.WithDefaults()
	assert.Equal(t, "status", custom.PropertyPath)
}

func TestConfig_From(t *testing.T) {
	cfg := articleConfig()

	assert.Equal(t, []string{"publish", "reject"}, cfg.From("review"))
	assert.Equal(t, []string{"submit"}, cfg.From("draft"))
	assert.Empty(t, cfg.From("published"))
}

func TestConfig_CloneIsIndependent(t *testing.T) {
	cfg := articleConfig()
	spec := cfg.Transitions["submit"]
	spec.Validators = domain.ValidatorSet{domain.DefaultRules(map[string]string{"title": "required"})}
	spec.Callbacks.Post = []string{"notify"}
	cfg.Transitions["submit"] = spec

	clone := cfg.Clone()
	clone.Steps["archived"] = ""
	clone.Transitions["submit"].Validators[0].Rules["title"] = "max:3"
	clone.Transitions["submit"].Callbacks.Post[0] = "other"

	assert.False(t, cfg.Steps.Has("archived"))
	assert.Equal(t, "required", cfg.Transitions["submit"].Validators[0].Rules["title"])
	assert.Equal(t, "notify", cfg.Transitions["submit"].Callbacks.Post[0])
}

func TestCallbacks_Phase(t *testing.T) {
	cb := domain.Callbacks{Pre: []string{}}

	pre, ok := cb.Phase(domain.PhasePre)
	assert.True(t, ok, "declared empty phase is configured")
	assert.Empty(t, pre)

	_, ok = cb.Phase(domain.PhasePost)
	assert.False(t, ok)
}

func TestValidatorRule_ValidatorID(t *testing.T) {
	assert.Equal(t, domain.DefaultValidator, domain.DefaultRules(nil).ValidatorID())
	assert.Equal(t, "strict", domain.NamedRules("strict", nil).ValidatorID())
}

func TestRecord_Clone(t *testing.T) {
	rec := domain.NewRecord("1", map[string]any{"state": "draft"})
	rec.History = []domain.HistoryRecord{{Field: "state", Transition: "submit", To: "review"}}

	clone := rec.Clone()
	clone.Attributes["state"] = "review"
	clone.History[0].To = "published"

	assert.Equal(t, "draft", rec.Attributes["state"])
	assert.Equal(t, "review", rec.History[0].To)
}
