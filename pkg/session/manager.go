package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/dialog"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// Factory builds dialog sessions over the current tree. *arbor.Engine implements it.
type Factory interface {
	NewSession(id string, opts ...dialog.Option) *dialog.Session
	Restore(snap *domain.Snapshot, opts ...dialog.Option) *dialog.Session
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	factory Factory
	store   ports.SessionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

var _ ports.DialogHost = (*Manager)(nil)

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
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager that builds sessions with factory and keeps them in store.
func NewManager(factory Factory, store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		factory: factory,
		store:   store,
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
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Open seeds a fresh dialog at the root. Reopening an existing ID resets it.
// An empty sessionID gets a random one.
func (m *Manager) Open(ctx context.Context, sessionID string) (dialog.View, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var view dialog.View
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s := m.factory.NewSession(sessionID)
		if err := m.store.Save(ctx, sessionID, s.Snapshot()); err != nil {
			return fmt.Errorf("failed to open session: %w", err)
		}
		view = s.View()
		return nil
	})
	if err == nil {
		m.logger.Debug("session opened", "session_id", sessionID)
	}
	return view, err
}

// View returns the current read model without changing the dialog.
func (m *Manager) View(ctx context.Context, sessionID string) (dialog.View, error) {
	var view dialog.View
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := m.load(ctx, sessionID)
		if err != nil {
			return err
		}
		view = s.View()
		return nil
	})
	return view, err
}

// SetPendingInput stores the text the user is composing.
func (m *Manager) SetPendingInput(ctx context.Context, sessionID, text string) (dialog.View, error) {
	return m.apply(ctx, sessionID, func(s *dialog.Session) {
		s.SetPendingInput(text)
	})
}

// Submit resolves the pending input against the current options.
func (m *Manager) Submit(ctx context.Context, sessionID string) (dialog.Outcome, dialog.View, error) {
	var outcome dialog.Outcome
	view, err := m.apply(ctx, sessionID, func(s *dialog.Session) {
		outcome = s.Submit()
	})
	return outcome, view, err
}

// SubmitText sets text as the pending input and submits it under one lock,
// so no other call on the session can run between the two steps.
func (m *Manager) SubmitText(ctx context.Context, sessionID, text string) (dialog.Outcome, dialog.View, error) {
	var outcome dialog.Outcome
	view, err := m.apply(ctx, sessionID, func(s *dialog.Session) {
		s.SetPendingInput(text)
		outcome = s.Submit()
	})
	return outcome, view, err
}

// Reset re-seeds an existing dialog.
func (m *Manager) Reset(ctx context.Context, sessionID string) (dialog.View, error) {
	return m.apply(ctx, sessionID, func(s *dialog.Session) {
		s.Reset()
	})
}

// Close discards the dialog. Unknown IDs report domain.ErrSessionNotFound.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if _, err := m.store.Load(ctx, sessionID); err != nil {
			return err
		}
		if err := m.store.Delete(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to close session: %w", err)
		}
		m.logger.Debug("session closed", "session_id", sessionID)
		return nil
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

func (m *Manager) load(ctx context.Context, sessionID string) (*dialog.Session, error) {
	snap, err := m.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return m.factory.Restore(snap), nil
}

func (m *Manager) apply(ctx context.Context, sessionID string, fn func(*dialog.Session)) (dialog.View, error) {
	var view dialog.View
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := m.load(ctx, sessionID)
		if err != nil {
			return err
		}

		fn(s)

		if err := m.store.Save(ctx, sessionID, s.Snapshot()); err != nil {
			return fmt.Errorf("failed to save session %s: %w", sessionID, err)
		}
		view = s.View()
		return nil
	})
	return view, err
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
