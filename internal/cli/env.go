// Package cli wires configuration, storage and machines for the stepwise command.
package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/adapters/file"
	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/adapters/redis"
	"github.com/aretw0/stepwise/pkg/adapters/sqlstore"
	"github.com/aretw0/stepwise/pkg/config"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/history"
	"github.com/aretw0/stepwise/pkg/observability"
	"github.com/aretw0/stepwise/pkg/persistence/middleware"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/session"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
)

// Store kinds accepted by Options.Store.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Options collects the command line settings.
type Options struct {
	ConfigPath string
	LogLevel   string
	Store      string
	Dir        string
	RedisAddr  string
	DB         string

	// EncryptionKey enables AES-256 encryption at rest when set. Must be 32 bytes.
	EncryptionKey []byte

	// Validators and Callbacks are registered on every machine in addition to
	// the built-in "default" validator and "history" callback.
	Validators map[string]ports.Validator
	Callbacks  map[string]ports.Callback

	// Registerer receives the transition metrics. Nil disables them.
	Registerer prometheus.Registerer

	// LogOutput defaults to stderr.
	LogOutput io.Writer
}

// Env holds everything a command needs.
type Env struct {
	Settings *config.Settings
	Store    ports.RecordStore
	Manager  *session.Manager
	Logger   *slog.Logger
	Metrics  *observability.Metrics

	opts    Options
	redis   backend.UniversalClient
	closers []func() error
}

// Open loads the configuration and builds the store and session manager.
func Open(ctx context.Context, opts Options) (*Env, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	return OpenSettings(ctx, settings, opts)
}

// OpenSettings is Open for settings that are already parsed.
func OpenSettings(ctx context.Context, settings *config.Settings, opts Options) (*Env, error) {
	level := opts.LogLevel
	if level == "" {
		level = settings.LogLevel
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	env := &Env{Settings: settings, opts: opts}
	if opts.LogOutput != nil {
		env.Logger = logging.NewWithWriter(opts.LogOutput, lvl)
	} else {
		env.Logger = logging.New(lvl)
	}
	if opts.Registerer != nil {
		env.Metrics = observability.NewMetrics(opts.Registerer)
	}

	store, err := env.openStore(ctx)
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	if len(opts.EncryptionKey) > 0 {
		if len(opts.EncryptionKey) != 32 {
			_ = env.Close()
			return nil, errors.New("encryption key must be 32 bytes")
		}
		store = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: opts.EncryptionKey})(store)
	}
	env.Store = store

	managerOpts := []session.Option{session.WithLogger(env.Logger)}
	if env.redis != nil {
		managerOpts = append(managerOpts, session.WithLocker(redis.NewLocker(env.redis, redis.DefaultPrefix)))
	}
	env.Manager = session.NewManager(store, settings, env.NewMachine, managerOpts...)

	return env, nil
}

func (e *Env) openStore(ctx context.Context) (ports.RecordStore, error) {
	switch e.opts.Store {
	case "", StoreMemory:
		return memory.NewStore(), nil
	case StoreFile:
		dir := e.opts.Dir
		if dir == "" {
			dir = ".stepwise/records"
		}
		return file.New(dir), nil
	case StoreRedis:
		addr := e.opts.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		client := backend.NewClient(&backend.Options{Addr: addr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
		}
		e.redis = client
		e.closers = append(e.closers, client.Close)
		return redis.NewFromClient(client), nil
	case StoreSQLite:
		dsn := e.opts.DB
		if dsn == "" {
			dsn = "stepwise.db"
		}
		db, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		e.closers = append(e.closers, db.Close)
		store := sqlstore.New(db)
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown store %q (want memory, file, redis or sqlite)", e.opts.Store)
}

// NewMachine builds the named machine over object. It is the session.Factory
// of the environment.
func (e *Env) NewMachine(name string, object domain.Object, cfg domain.Config) (session.Machine, error) {
	hooks := []domain.LifecycleHooks{createDebugHooks(e.Logger)}
	opts := []stepwise.Option{
		stepwise.WithName(name),
		stepwise.WithLogger(e.Logger),
		stepwise.WithCustomValidators(e.Settings.CustomValidatorMap()),
	}
	for id, v := range e.opts.Validators {
		opts = append(opts, stepwise.WithValidator(id, v))
	}
	for id, cb := range e.opts.Callbacks {
		opts = append(opts, stepwise.WithCallback(id, cb))
	}
	if e.Metrics != nil {
		hooks = append(hooks, e.Metrics.Hooks())
		opts = append(opts, stepwise.WithPublisher(e.Metrics))
	}
	if e.redis != nil {
		opts = append(opts, stepwise.WithPublisher(redis.NewPublisher(e.redis,
			redis.WithMachineName(name),
			redis.WithPublisherLogger(e.Logger),
		)))
	}
	opts = append(opts, stepwise.WithLifecycleHooks(chainHooks(hooks...)))

	m, err := stepwise.New(object, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// KnownValidators lists the validator ids every machine has registered.
func (e *Env) KnownValidators() []string {
	ids := []string{domain.DefaultValidator}
	for id := range e.opts.Validators {
		if id != domain.DefaultValidator {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// KnownCallbacks lists the callback ids every machine has registered.
func (e *Env) KnownCallbacks() []string {
	ids := []string{history.CallbackID}
	for id := range e.opts.Callbacks {
		if id != history.CallbackID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Close releases connections opened for the store.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
