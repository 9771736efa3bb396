package domain

import "time"

// EventType defines the category of the event.
type EventType string

const (
	EventReset      EventType = "reset"
	EventTransition EventType = "transition"
	EventDangling   EventType = "dangling"
	EventUnmatched  EventType = "unmatched"
)

// DialogEvent describes one observable step of a session.
type DialogEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	From      NodeKey   `json:"from"`
	To        NodeKey   `json:"to,omitempty"`
	Input     string    `json:"input,omitempty"`
}

// DialogHooks defines callbacks for session observability.
// They run synchronously inside the session operation that produced them.
type DialogHooks struct {
	OnReset      func(*DialogEvent)
	OnTransition func(*DialogEvent)
	OnDangling   func(*DialogEvent)
	OnUnmatched  func(*DialogEvent)
}

// ComposeHooks fans every event out to all given hook sets, in order.
func ComposeHooks(sets ...DialogHooks) DialogHooks {
	fan := func(pick func(DialogHooks) func(*DialogEvent)) func(*DialogEvent) {
		var fns []func(*DialogEvent)
		for _, s := range sets {
			if fn := pick(s); fn != nil {
				fns = append(fns, fn)
			}
		}
		if len(fns) == 0 {
			return nil
		}
		return func(e *DialogEvent) {
			for _, fn := range fns {
				fn(e)
			}
		}
	}
	return DialogHooks{
		OnReset:      fan(func(h DialogHooks) func(*DialogEvent) { return h.OnReset }),
		OnTransition: fan(func(h DialogHooks) func(*DialogEvent) { return h.OnTransition }),
		OnDangling:   fan(func(h DialogHooks) func(*DialogEvent) { return h.OnDangling }),
		OnUnmatched:  fan(func(h DialogHooks) func(*DialogEvent) { return h.OnUnmatched }),
	}
}
