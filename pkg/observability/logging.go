package observability

import (
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
)

// LoggingHooks writes one structured line per dialog event.
// Unmatched input is logged at debug level; the rest at info.
func LoggingHooks(logger *slog.Logger) domain.DialogHooks {
	attrs := func(e *domain.DialogEvent) []any {
		return []any{
			"session_id", e.SessionID,
			"from", nodeLabel(e.From),
			"to", string(e.To),
			"input", e.Input,
		}
	}

	return domain.DialogHooks{
		OnReset: func(e *domain.DialogEvent) {
			logger.Info("dialog_reset", "session_id", e.SessionID)
		},
		OnTransition: func(e *domain.DialogEvent) {
			logger.Info("dialog_transition", attrs(e)...)
		},
		OnDangling: func(e *domain.DialogEvent) {
			logger.Warn("dialog_dangling", attrs(e)...)
		},
		OnUnmatched: func(e *domain.DialogEvent) {
			logger.Debug("dialog_unmatched", "session_id", e.SessionID, "from", nodeLabel(e.From), "input", e.Input)
		},
	}
}
