package domain

import "time"

// Snapshot is the serializable form of a live dialog session.
// Current options are not stored: they are derived from NodeKey and the tree.
type Snapshot struct {
	SessionID    string    `json:"session_id"`
	NodeKey      NodeKey   `json:"node_key"`
	Messages     []Message `json:"messages"`
	PendingInput string    `json:"pending_input"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Sealed carries an opaque payload written by store middleware (e.g. encryption).
	Sealed string `json:"sealed,omitempty"`
}

// Clone returns a copy that shares no slices with the receiver.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	if s.Messages != nil {
		out.Messages = make([]Message, len(s.Messages))
		copy(out.Messages, s.Messages)
	}
	return &out
}
