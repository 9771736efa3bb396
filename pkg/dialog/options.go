package dialog

import (
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets a structured logger for transition diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.DialogHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithSessionID labels the session in logs, events and snapshots.
func WithSessionID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithClock overrides the time source used for events and snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

func defaults() *Session {
	return &Session{
		logger: logging.NewNop(),
		now:    time.Now,
	}
}
