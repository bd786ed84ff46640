package runtime_test

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/stepwise/internal/runtime"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/entity"
	"github.com/aretw0/stepwise/pkg/history"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/aretw0/stepwise/pkg/validation"
)

// publishConfig is the draft/published machine used throughout the tests.
func publishConfig() domain.Config {
	return domain.Config{
		Steps: domain.NewSteps("draft", "published", "archived"),
		Transitions: map[string]domain.TransitionSpec{
			"publish": {
				From: "draft",
				To:   "published",
				Text: "Publish",
				Validators: domain.ValidatorSet{
					domain.DefaultRules(map[string]string{"title": "required"}),
				},
				Callbacks: domain.Callbacks{Post: []string{history.CallbackID}},
			},
			"archive": {
				From:       "published",
				To:         "archived",
				Text:       "Archive",
				Validators: domain.ValidatorSet{},
			},
		},
	}
}

func newObject(state string, attrs map[string]any) *entity.Entity {
	rec := domain.NewRecord("post-1", attrs)
	rec.Attributes["state"] = state
	return entity.New(rec, nil)
}

func defaultValidators() *registry.Registry[ports.Validator] {
	reg := registry.New[ports.Validator]()
	reg.RegisterInstance(domain.DefaultValidator, validation.New())
	return reg
}

func defaultCallbacks() *registry.Registry[ports.Callback] {
	reg := registry.New[ports.Callback]()
	reg.RegisterInstance(history.CallbackID, history.NewRecorder())
	return reg
}

func newMachine(obj domain.Object, cfg domain.Config, opts ...runtime.Option) (*runtime.Machine, error) {
	base := []runtime.Option{
		runtime.WithValidators(defaultValidators()),
		runtime.WithCallbacks(defaultCallbacks()),
	}
	return runtime.NewMachine(obj, cfg, append(base, opts...)...)
}

// recorder collects signals and callback invocations in order.
type recorder struct {
	mu    sync.Mutex
	trace []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trace = append(r.trace, s)
}

func (r *recorder) Trace() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.trace...)
}

func (r *recorder) Publish(_ context.Context, signal string, _ any) {
	r.add("signal:" + signal)
}

func (r *recorder) callback(id string, err error) ports.Callback {
	return ports.CallbackFunc(func(ctx context.Context, e *domain.Event) error {
		r.add("callback:" + id + ":" + e.Machine.ActualStep())
		return err
	})
}

// failingObject refuses to persist.
type failingObject struct {
	*entity.Entity
}

var errDiskFull = errors.New("disk full")

func (failingObject) Persist(context.Context) error { return errDiskFull }

type callbackFunc = ports.CallbackFunc
