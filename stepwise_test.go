package stepwise_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/entity"
	"github.com/aretw0/stepwise/pkg/history"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/signal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func articleConfig() domain.Config {
	return domain.Config{
		Steps: domain.NewSteps("draft", "published"),
		Transitions: map[string]domain.TransitionSpec{
			"publish": {
				From: "draft",
				To:   "published",
				Text: "Publish",
				Validators: domain.ValidatorSet{
					domain.DefaultRules(map[string]string{"title": "required"}),
				},
			},
		},
	}
}

func TestMachine_PublishRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	rec := domain.NewRecord("a-1", map[string]any{"state": "draft", "title": "X"})
	require.NoError(t, store.Save(ctx, rec))

	obj, err := entity.Load(ctx, store, "a-1")
	require.NoError(t, err)

	m, err := stepwise.New(obj, articleConfig(), stepwise.WithName("articles"))
	require.NoError(t, err)
	assert.Equal(t, "articles", m.Name())
	assert.Equal(t, []domain.PossibleTransition{{Key: "publish", Text: "Publish"}}, m.PossibleTransitions())

	require.NoError(t, m.Apply(ctx, "publish"))
	assert.Equal(t, "published", m.ActualStep())
	assert.Empty(t, m.PossibleTransitions())

	stored, err := store.Load(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "published", stored.Attributes["state"])
	require.Len(t, stored.History, 1, "the default subscription records exactly one history line")
	assert.Equal(t, domain.HistoryRecord{
		ID:         stored.History[0].ID,
		Field:      "state",
		Transition: "publish",
		From:       "draft",
		To:         "published",
		At:         stored.History[0].At,
	}, stored.History[0])
	assert.NotEmpty(t, stored.History[0].ID)
}

func TestMachine_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("No validators key fails closed", func(t *testing.T) {
		cfg := articleConfig()
		spec := cfg.Transitions["publish"]
		spec.Validators = nil
		cfg.Transitions["publish"] = spec

		obj := entity.New(domain.NewRecord("a", map[string]any{"state": "draft"}), nil)
		m, err := stepwise.New(obj, cfg)
		require.NoError(t, err)

		assert.ErrorIs(t, m.Apply(ctx, "publish"), domain.ErrValidationFailed)
		assert.Equal(t, "draft", m.ActualStep())
		assert.Empty(t, obj.History())
	})

	t.Run("Unvalidated transitions opt-in", func(t *testing.T) {
		cfg := articleConfig()
		spec := cfg.Transitions["publish"]
		spec.Validators = nil
		cfg.Transitions["publish"] = spec

		obj := entity.New(domain.NewRecord("a", map[string]any{"state": "draft"}), nil)
		m, err := stepwise.New(obj, cfg, stepwise.WithUnvalidatedTransitions())
		require.NoError(t, err)

		require.NoError(t, m.Apply(ctx, "publish"))
		assert.Len(t, obj.History(), 1)
	})

	t.Run("Unknown transition", func(t *testing.T) {
		obj := entity.New(domain.NewRecord("a", map[string]any{"state": "draft"}), nil)
		m, err := stepwise.New(obj, articleConfig())
		require.NoError(t, err)

		ok, err := m.Can(ctx, "archive")
		assert.False(t, ok)
		assert.ErrorIs(t, err, domain.ErrUnknownTransition)
		assert.ErrorIs(t, m.Apply(ctx, "archive"), domain.ErrUnknownTransition)
	})

	t.Run("Wrong source state", func(t *testing.T) {
		cfg := articleConfig()
		cfg.Transitions["unpublish"] = domain.TransitionSpec{From: "published", To: "draft"}

		obj := entity.New(domain.NewRecord("a", map[string]any{"state": "published", "title": "X"}), nil)
		m, err := stepwise.New(obj, cfg)
		require.NoError(t, err)

		assert.ErrorIs(t, m.Apply(ctx, "publish"), domain.ErrIllegalTransition)
		assert.Equal(t, "published", m.ActualStep())
	})
}

func TestMachine_CustomValidatorAndCallbacks(t *testing.T) {
	ctx := context.Background()

	var calls []string
	cfg := articleConfig()
	spec := cfg.Transitions["publish"]
	spec.Validators = domain.ValidatorSet{
		domain.DefaultRules(map[string]string{"title": "required", "isbn": "isbn"}),
	}
	spec.Callbacks = domain.Callbacks{
		Pre:  []string{"audit"},
		Post: []string{"audit"},
	}
	cfg.Transitions["publish"] = spec

	isbn := ports.ValidatorFunc(func(_ context.Context, attrs map[string]any, rules map[string]string) error {
		if attrs["isbn"] != "978-3-16-148410-0" {
			return domain.FieldError{Field: "isbn", Rule: "isbn", Message: "The isbn field is invalid."}
		}
		return nil
	})
	audit := ports.CallbackFunc(func(_ context.Context, e *domain.Event) error {
		calls = append(calls, e.Machine.ActualStep())
		return nil
	})

	obj := entity.New(domain.NewRecord("b", map[string]any{"state": "draft", "title": "Book", "isbn": "bad"}), nil)
	m, err := stepwise.New(obj, cfg,
		stepwise.WithValidator("isbn-checker", isbn),
		stepwise.WithCustomValidators(map[string]string{"isbn": "isbn-checker"}),
		stepwise.WithCallback("audit", audit),
	)
	require.NoError(t, err)

	err = m.Apply(ctx, "publish")
	errs := domain.ValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "isbn-checker", errs[0].Validator)

	obj.SetAttribute("isbn", "978-3-16-148410-0")
	require.NoError(t, m.Apply(ctx, "publish"))
	assert.Equal(t, []string{"draft", "published"}, calls)
}

func TestMachine_SignalsReachExtraPublishers(t *testing.T) {
	var signals []string
	pub := signal.SubscriberFunc(func(_ context.Context, name string, _ any) error {
		signals = append(signals, name)
		return nil
	})
	extra := signal.NewBus(signal.Subscriptions{}.
		Add(domain.SignalCanTransition, pub).
		Add(domain.SignalPreTransition, pub).
		Add(domain.SignalPostTransition, pub))

	obj := entity.New(domain.NewRecord("a", map[string]any{"state": "draft", "title": "X"}), nil)
	m, err := stepwise.New(obj, articleConfig(), stepwise.WithPublisher(extra))
	require.NoError(t, err)

	require.NoError(t, m.Apply(context.Background(), "publish"))
	assert.Equal(t, []string{
		domain.SignalCanTransition,
		domain.SignalPreTransition,
		domain.SignalPostTransition,
	}, signals)
	assert.Len(t, obj.History(), 1)
}

func TestMachine_ReplacedSubscriptionsUseHistoryCallback(t *testing.T) {
	cfg := articleConfig()
	spec := cfg.Transitions["publish"]
	spec.Callbacks = domain.Callbacks{Post: []string{history.CallbackID}}
	cfg.Transitions["publish"] = spec

	obj := entity.New(domain.NewRecord("a", map[string]any{"state": "draft", "title": "X"}), nil)
	m, err := stepwise.New(obj, cfg, stepwise.WithSubscriptions(signal.Subscriptions{}))
	require.NoError(t, err)

	require.NoError(t, m.Apply(context.Background(), "publish"))
	assert.Len(t, obj.History(), 1)
}

func TestMachine_HistoryCallbackWithDefaultSubscriptions(t *testing.T) {
	cfg := articleConfig()
	spec := cfg.Transitions["publish"]
	spec.Callbacks = domain.Callbacks{Post: []string{history.CallbackID}}
	cfg.Transitions["publish"] = spec

	obj := entity.New(domain.NewRecord("a", map[string]any{"state": "draft", "title": "X"}), nil)
	m, err := stepwise.New(obj, cfg)
	require.NoError(t, err)

	require.NoError(t, m.Apply(context.Background(), "publish"))
	assert.Len(t, obj.History(), 1, "subscriber and callback record the transition once")
}

func TestMachine_WarningHook(t *testing.T) {
	var warnings []error
	obj := entity.New(domain.NewRecord("a", map[string]any{"state": "draft", "title": "X"}), nil)
	m, err := stepwise.New(obj, articleConfig(), stepwise.WithWarningHook(func(_ context.Context, err error) {
		warnings = append(warnings, err)
	}))
	require.NoError(t, err)

	require.NoError(t, m.Apply(context.Background(), "publish"))
	require.Len(t, warnings, 2, "neither phase has callbacks configured")
	for _, w := range warnings {
		assert.True(t, errors.Is(w, domain.ErrMissingCallback))
	}
}

func TestMachine_LifecycleHooks(t *testing.T) {
	var outcomes []string
	hooks := domain.LifecycleHooks{
		OnApplied:  func(_ context.Context, o *domain.Outcome) { outcomes = append(outcomes, "applied:"+o.To) },
		OnRejected: func(_ context.Context, o *domain.Outcome) { outcomes = append(outcomes, "rejected:"+domain.Reason(o.Err)) },
	}

	obj := entity.New(domain.NewRecord("a", map[string]any{"state": "draft"}), nil)
	m, err := stepwise.New(obj, articleConfig(), stepwise.WithLifecycleHooks(hooks))
	require.NoError(t, err)

	ctx := context.Background()
	_ = m.Apply(ctx, "publish")
	obj.SetAttribute("title", "X")
	require.NoError(t, m.Apply(ctx, "publish"))

	assert.Equal(t, []string{"rejected:validation_failed", "applied:published"}, outcomes)
}

func TestNew_RequiresObject(t *testing.T) {
	_, err := stepwise.New(nil, articleConfig())
	assert.Error(t, err)
}

func TestMachine_RulesOnDecodedNumbers(t *testing.T) {
	ctx := context.Background()
	cfg := articleConfig()
	spec := cfg.Transitions["publish"]
	spec.Validators = domain.ValidatorSet{
		domain.DefaultRules(map[string]string{"priority": "in:1,2,3", "flag": "max:1"}),
	}
	cfg.Transitions["publish"] = spec

	t.Run("whole float matches the in list", func(t *testing.T) {
		obj := entity.New(domain.NewRecord("a", map[string]any{"state": "draft", "priority": 2.0}), nil)
		m, err := stepwise.New(obj, cfg)
		require.NoError(t, err)

		require.NotPanics(t, func() { err = m.Apply(ctx, "publish") })
		require.NoError(t, err)
		assert.Equal(t, "published", m.ActualStep())
	})

	t.Run("unsupported kinds fail validation", func(t *testing.T) {
		obj := entity.New(domain.NewRecord("b", map[string]any{"state": "draft", "priority": 7.0, "flag": true}), nil)
		m, err := stepwise.New(obj, cfg)
		require.NoError(t, err)

		require.NotPanics(t, func() { err = m.Apply(ctx, "publish") })
		require.ErrorIs(t, err, domain.ErrValidationFailed)
		assert.Equal(t, "draft", m.ActualStep())

		fields := make([]string, 0, 2)
		for _, fe := range domain.ValidationErrors(err) {
			fields = append(fields, fe.Field)
		}
		assert.ElementsMatch(t, []string{"flag", "priority"}, fields)
	})
}
