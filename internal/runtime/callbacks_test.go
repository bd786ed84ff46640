package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/stepwise/internal/runtime"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_PipelineOrder(t *testing.T) {
	rec := &recorder{}
	callbacks := defaultCallbacks()
	callbacks.RegisterInstance("a", rec.callback("a", nil))
	callbacks.RegisterInstance("b", rec.callback("b", nil))

	cfg := publishConfig()
	spec := cfg.Transitions["publish"]
	spec.Callbacks = domain.Callbacks{Pre: []string{"a", "b"}, Post: []string{"b", "a"}}
	cfg.Transitions["publish"] = spec

	m, err := newMachine(newObject("draft", map[string]any{"title": "X"}), cfg,
		runtime.WithCallbacks(callbacks),
		runtime.WithPublisher(rec),
	)
	require.NoError(t, err)

	require.NoError(t, m.Apply(context.Background(), "publish"))
	assert.Equal(t, []string{
		"signal:" + domain.SignalCanTransition,
		"signal:" + domain.SignalPreTransition,
		"callback:a:draft",
		"callback:b:draft",
		"signal:" + domain.SignalPostTransition,
		"callback:b:published",
		"callback:a:published",
	}, rec.Trace())
}

func TestApply_MissingCallbacksAreWarnings(t *testing.T) {
	rec := &recorder{}
	callbacks := defaultCallbacks()
	callbacks.RegisterInstance("b", rec.callback("b", nil))

	cfg := publishConfig()
	spec := cfg.Transitions["publish"]
	spec.Callbacks = domain.Callbacks{Post: []string{"ghost", "b"}}
	cfg.Transitions["publish"] = spec

	var warnings []error
	m, err := newMachine(newObject("draft", map[string]any{"title": "X"}), cfg,
		runtime.WithCallbacks(callbacks),
		runtime.WithWarningHook(func(_ context.Context, err error) { warnings = append(warnings, err) }),
	)
	require.NoError(t, err)

	require.NoError(t, m.Apply(context.Background(), "publish"))
	assert.Equal(t, "published", m.ActualStep())
	assert.Equal(t, []string{"callback:b:published"}, rec.Trace(), "one bad handler does not block the others")

	require.Len(t, warnings, 2)

	var missing *domain.MissingCallbackError
	require.ErrorAs(t, warnings[0], &missing)
	assert.Equal(t, domain.PhasePre, missing.Phase)
	assert.Empty(t, missing.Callback, "pre phase is not configured")

	require.ErrorAs(t, warnings[1], &missing)
	assert.Equal(t, domain.PhasePost, missing.Phase)
	assert.Equal(t, "ghost", missing.Callback)
	assert.ErrorIs(t, warnings[1], domain.ErrMissingCallback)
}

func TestApply_PreCallbackErrorAbortsBeforeMutation(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{}
	callbacks := defaultCallbacks()
	callbacks.RegisterInstance("guard", rec.callback("guard", boom))

	cfg := publishConfig()
	spec := cfg.Transitions["publish"]
	spec.Callbacks = domain.Callbacks{Pre: []string{"guard"}, Post: []string{"history"}}
	cfg.Transitions["publish"] = spec

	obj := newObject("draft", map[string]any{"title": "X"})
	m, err := newMachine(obj, cfg, runtime.WithCallbacks(callbacks))
	require.NoError(t, err)

	err = m.Apply(context.Background(), "publish")
	assert.ErrorIs(t, err, boom)

	var cbErr *domain.CallbackError
	require.ErrorAs(t, err, &cbErr)
	assert.Equal(t, domain.PhasePre, cbErr.Phase)
	assert.Equal(t, "guard", cbErr.Callback)

	assert.Equal(t, "draft", m.ActualStep())
	assert.Empty(t, obj.History())
}

func TestApply_PostCallbackErrorAfterCommit(t *testing.T) {
	boom := errors.New("mailer down")
	rec := &recorder{}
	callbacks := defaultCallbacks()
	callbacks.RegisterInstance("mail", rec.callback("mail", boom))

	cfg := publishConfig()
	spec := cfg.Transitions["publish"]
	spec.Callbacks = domain.Callbacks{Post: []string{"history", "mail"}}
	cfg.Transitions["publish"] = spec

	obj := newObject("draft", map[string]any{"title": "X"})
	m, err := newMachine(obj, cfg, runtime.WithCallbacks(callbacks))
	require.NoError(t, err)

	err = m.Apply(context.Background(), "publish")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "published", m.ActualStep(), "the new state is already persisted")
	assert.Len(t, obj.History(), 1)
}

func TestApply_LifecycleHooks(t *testing.T) {
	var applied, rejected []*domain.Outcome
	hooks := domain.LifecycleHooks{
		OnApplied:  func(_ context.Context, o *domain.Outcome) { applied = append(applied, o) },
		OnRejected: func(_ context.Context, o *domain.Outcome) { rejected = append(rejected, o) },
	}

	obj := newObject("draft", nil)
	m, err := newMachine(obj, publishConfig(), runtime.WithName("posts"), runtime.WithLifecycleHooks(hooks))
	require.NoError(t, err)

	ctx := context.Background()
	require.Error(t, m.Apply(ctx, "publish"))

	obj.SetAttribute("title", "X")
	require.NoError(t, m.Apply(ctx, "publish"))

	require.Len(t, rejected, 1)
	assert.Equal(t, "posts", rejected[0].Machine)
	assert.Equal(t, "draft", rejected[0].From)
	assert.Empty(t, rejected[0].To)
	assert.ErrorIs(t, rejected[0].Err, domain.ErrValidationFailed)

	require.Len(t, applied, 1)
	assert.Equal(t, "publish", applied[0].Transition)
	assert.Equal(t, "draft", applied[0].From)
	assert.Equal(t, "published", applied[0].To)
	assert.NoError(t, applied[0].Err)
}

func TestApply_EventExposesMachine(t *testing.T) {
	var got *domain.Event
	callbacks := defaultCallbacks()
	callbacks.RegisterInstance("inspect", callbackFunc(func(_ context.Context, e *domain.Event) error {
		got = e
		return nil
	}))

	cfg := publishConfig()
	spec := cfg.Transitions["publish"]
	spec.Callbacks = domain.Callbacks{Pre: []string{"inspect"}}
	cfg.Transitions["publish"] = spec

	m, err := newMachine(newObject("draft", map[string]any{"title": "X"}), cfg, runtime.WithCallbacks(callbacks))
	require.NoError(t, err)
	require.NoError(t, m.Apply(context.Background(), "publish"))

	require.NotNil(t, got)
	assert.Equal(t, "publish", got.Transition)
	assert.Equal(t, "draft", got.From)
	assert.Equal(t, "published", got.Spec.To)
	assert.Equal(t, "published", got.Machine.ActualStep())
	assert.Equal(t, "X", got.Machine.Object().Attribute("title"))
}
