package domain

// SnapshotDiff represents the changes between two snapshots of one dialog.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	NodeKey      *NodeKey      `json:"node_key,omitempty"`
	Messages     *MessageDelta `json:"messages,omitempty"`
	PendingInput *string       `json:"pending_input,omitempty"`
}

// MessageDelta carries transcript changes.
// Transcripts only grow, except on reset, where Replaced is set and
// Appended holds the whole new transcript.
type MessageDelta struct {
	Appended []Message `json:"appended"`
	Replaced bool      `json:"replaced,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{SessionID: newSnap.SessionID}

	if oldSnap == nil || oldSnap.NodeKey != newSnap.NodeKey {
		key := newSnap.NodeKey
		diff.NodeKey = &key
	}
	if oldSnap == nil || oldSnap.PendingInput != newSnap.PendingInput {
		pending := newSnap.PendingInput
		diff.PendingInput = &pending
	}
	diff.Messages = diffMessages(oldSnap, newSnap)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffMessages(old, new *Snapshot) *MessageDelta {
	if old == nil {
		if len(new.Messages) == 0 {
			return nil
		}
		return &MessageDelta{Appended: cloneMessages(new.Messages)}
	}

	oldLen, newLen := len(old.Messages), len(new.Messages)
	if newLen < oldLen || !samePrefix(old.Messages, new.Messages) {
		return &MessageDelta{Appended: cloneMessages(new.Messages), Replaced: true}
	}
	if newLen > oldLen {
		return &MessageDelta{Appended: cloneMessages(new.Messages[oldLen:])}
	}
	return nil
}

func samePrefix(old, new []Message) bool {
	for i := range old {
		if old[i] != new[i] {
			return false
		}
	}
	return true
}

func cloneMessages(src []Message) []Message {
	dst := make([]Message, len(src))
	copy(dst, src)
	return dst
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.NodeKey == nil &&
		d.Messages == nil &&
		d.PendingInput == nil
}
