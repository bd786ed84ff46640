package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/entity"
	"github.com/aretw0/stepwise/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// Machine is the part of a state machine the Manager drives.
type Machine interface {
	Apply(ctx context.Context, transition string) error
	PossibleTransitions() []domain.PossibleTransition
}

// Factory builds a machine named name over object.
type Factory func(name string, object domain.Object, cfg domain.Config) (Machine, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates record access, serializing transitions per record.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store   ports.RecordStore
	configs ports.ConfigSource
	factory Factory

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

var _ ports.Applier = (*Manager)(nil)

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over a record store and a set of machine configurations.
func NewManager(store ports.RecordStore, configs ports.ConfigSource, factory Factory, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		configs: configs,
		factory: factory,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(recordID) after unlocking.
func (m *Manager) acquire(recordID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[recordID]
	if !exists {
		entry = &lockEntry{}
		m.locks[recordID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(recordID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[recordID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, recordID)
	}
}

// Load retrieves an existing record from the store.
func (m *Manager) Load(ctx context.Context, recordID string) (*domain.Record, error) {
	var rec *domain.Record
	err := m.WithLock(ctx, recordID, func(ctx context.Context) error {
		var err error
		rec, err = m.store.Load(ctx, recordID)
		return err
	})
	return rec, err
}

// LoadOrCreate tries to load a record. If not found, it stores a new one with the given attributes.
func (m *Manager) LoadOrCreate(ctx context.Context, recordID string, attributes map[string]any) (*domain.Record, error) {
	var rec *domain.Record
	err := m.WithLock(ctx, recordID, func(ctx context.Context) error {
		var err error
		rec, err = m.store.Load(ctx, recordID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrRecordNotFound) {
			return fmt.Errorf("failed to check record existence: %w", err)
		}

		rec = domain.NewRecord(recordID, attributes)
		rec.UpdatedAt = time.Now().UTC()
		if err := m.store.Save(ctx, rec); err != nil {
			return fmt.Errorf("failed to create record: %w", err)
		}
		return nil
	})
	return rec, err
}

// Save persists the record.
func (m *Manager) Save(ctx context.Context, rec *domain.Record) error {
	return m.WithLock(ctx, rec.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, rec)
	})
}

// Delete removes the record from the store.
func (m *Manager) Delete(ctx context.Context, recordID string) error {
	return m.WithLock(ctx, recordID, func(ctx context.Context) error {
		return m.store.Delete(ctx, recordID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying record store.
func (m *Manager) Store() ports.RecordStore {
	return m.store
}

// HasMachine reports whether the config source knows the named machine.
func (m *Manager) HasMachine(name string) bool {
	_, ok := m.configs.Machine(name)
	return ok
}

// Possible lists the transitions available to the record under the named machine.
func (m *Manager) Possible(ctx context.Context, machine, recordID string) ([]domain.PossibleTransition, error) {
	var out []domain.PossibleTransition
	err := m.WithLock(ctx, recordID, func(ctx context.Context) error {
		sm, _, err := m.open(ctx, machine, recordID)
		if err != nil {
			return err
		}
		out = sm.PossibleTransitions()
		return nil
	})
	return out, err
}

// Apply runs a transition against a stored record while holding its lock and
// returns the record as persisted. When a post callback fails after the state was
// committed, the updated record is returned together with the error.
func (m *Manager) Apply(ctx context.Context, machine, recordID, transition string) (*domain.Record, error) {
	var rec *domain.Record
	err := m.WithLock(ctx, recordID, func(ctx context.Context) error {
		sm, obj, err := m.open(ctx, machine, recordID)
		if err != nil {
			return err
		}

		applyErr := sm.Apply(ctx, transition)
		rec = obj.Record()
		if applyErr != nil {
			m.logger.Debug("transition failed",
				"machine", machine,
				"record_id", recordID,
				"transition", transition,
				"reason", domain.Reason(applyErr),
			)
		}
		return applyErr
	})
	return rec, err
}

func (m *Manager) open(ctx context.Context, machine, recordID string) (Machine, *entity.Entity, error) {
	cfg, ok := m.configs.Machine(machine)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrUnknownMachine, machine)
	}

	obj, err := entity.Load(ctx, m.store, recordID)
	if err != nil {
		return nil, nil, err
	}

	sm, err := m.factory(machine, obj, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build machine %s: %w", machine, err)
	}
	return sm, obj, nil
}

// WithLock executes a function while holding the lock for the record.
func (m *Manager) WithLock(ctx context.Context, recordID string, fn func(context.Context) error) error {
	entry := m.acquire(recordID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(recordID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, recordID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"record_id", recordID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
