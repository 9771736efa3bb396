package http

import (
	"log/slog"
	"sync"

	"github.com/aretw0/arbor/pkg/dialog"
)

// streamEvent is one update pushed to a session subscriber.
type streamEvent struct {
	view   dialog.View
	closed bool
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan streamEvent]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan streamEvent]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a listener for sessionID. The returned func unregisters it.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan streamEvent, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan streamEvent, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan streamEvent]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Broadcast pushes the latest view of a session to its subscribers.
func (sm *StreamManager) Broadcast(view dialog.View) {
	sm.publish(view.SessionID, streamEvent{view: view})
}

// Closed tells subscribers the session is gone.
func (sm *StreamManager) Closed(sessionID string) {
	sm.publish(sessionID, streamEvent{view: dialog.View{SessionID: sessionID}, closed: true})
}

func (sm *StreamManager) publish(sessionID string, ev streamEvent) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- ev:
		default:
			// Slow client
			sm.logger.Warn("sse client buffer full, dropping update", "session_id", sessionID)
		}
	}
}

// Subscribers returns the number of listeners for sessionID.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}
