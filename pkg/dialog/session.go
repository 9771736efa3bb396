package dialog

import (
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/aretw0/arbor/pkg/domain"
)

// InvalidNextNodeMessage is the bot reply appended when an option points at
// a node that does not exist in the tree.
const InvalidNextNodeMessage = "Error: Invalid next node"

// Session is one conversation walking a Tree.
type Session struct {
	tree *domain.Tree
	id   string

	current  domain.NodeKey
	messages []domain.Message
	options  []domain.Option
	pending  string

	logger *slog.Logger
	hooks  domain.DialogHooks
	now    func() time.Time
}

// New creates a session seeded with the tree's root message and options.
// The tree is read, never written.
func New(tree *domain.Tree, opts ...Option) *Session {
	s := defaults()
	s.tree = tree
	if s.tree == nil {
		s.tree = &domain.Tree{}
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// Restore rebuilds a session from a snapshot.
// If the snapshot's node no longer exists in the tree, the session keeps its
// transcript but falls back to the root options.
func Restore(tree *domain.Tree, snap *domain.Snapshot, opts ...Option) *Session {
	s := defaults()
	s.tree = tree
	if s.tree == nil {
		s.tree = &domain.Tree{}
	}
	for _, opt := range opts {
		opt(s)
	}
	if snap == nil {
		s.Reset()
		return s
	}
	if s.id == "" {
		s.id = snap.SessionID
	}

	s.messages = make([]domain.Message, len(snap.Messages))
	copy(s.messages, snap.Messages)
	s.pending = snap.PendingInput
	s.current = domain.RootKey
	s.options = s.tree.RootOptions

	if snap.NodeKey != domain.RootKey {
		if node, ok := s.tree.Lookup(snap.NodeKey); ok {
			s.current = snap.NodeKey
			s.options = node.Options
		} else {
			s.logger.Warn("snapshot node missing from tree, restoring at root",
				"session_id", s.id,
				"node", snap.NodeKey,
			)
		}
	}
	return s
}

// Reset re-seeds the session: the transcript becomes the root message alone,
// the options become the root options and the pending input is cleared.
func (s *Session) Reset() {
	s.current = domain.RootKey
	s.messages = []domain.Message{domain.BotMessage(s.tree.RootMessage)}
	s.options = s.tree.RootOptions
	s.pending = ""

	if s.hooks.OnReset != nil {
		s.hooks.OnReset(s.event(domain.EventReset, domain.RootKey, ""))
	}
}

// SetPendingInput stores the text the user is composing. No validation.
func (s *Session) SetPendingInput(text string) {
	s.pending = text
}

// Submit resolves the pending input against the current options and applies
// at most one transition.
func (s *Session) Submit() Outcome {
	opt, ok := s.match(TrimInput(s.pending))
	if !ok {
		s.logger.Debug("input matched no option", "session_id", s.id, "node", s.current)
		if s.hooks.OnUnmatched != nil {
			s.hooks.OnUnmatched(s.event(domain.EventUnmatched, "", s.pending))
		}
		return OutcomeNoMatch
	}

	input := s.pending
	s.messages = append(s.messages, domain.UserMessage(input))
	s.pending = ""

	node, ok := s.tree.Lookup(opt.Next)
	if !ok {
		s.messages = append(s.messages, domain.BotMessage(InvalidNextNodeMessage))
		s.logger.Warn("option points at missing node",
			"session_id", s.id,
			"node", s.current,
			"option", opt.Text,
			"next", opt.Next,
		)
		if s.hooks.OnDangling != nil {
			s.hooks.OnDangling(s.event(domain.EventDangling, opt.Next, input))
		}
		return OutcomeDangling
	}

	s.messages = append(s.messages, domain.BotMessage(node.Message))
	from := s.current
	s.current = opt.Next
	s.options = node.Options

	s.logger.Debug("transition", "session_id", s.id, "from", from, "to", s.current, "option", opt.Text)
	if s.hooks.OnTransition != nil {
		e := s.event(domain.EventTransition, s.current, input)
		e.From = from
		s.hooks.OnTransition(e)
	}
	return OutcomeAdvanced
}

// Matches reports whether text would select one of the current options.
// It does not change the session.
func (s *Session) Matches(text string) bool {
	_, ok := s.match(TrimInput(text))
	return ok
}

// TrimInput strips the surrounding whitespace Submit ignores: Unicode
// spaces and the byte order mark some clipboards prepend.
func TrimInput(text string) string {
	return strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// match is a linear scan; the first exact match wins.
func (s *Session) match(input string) (domain.Option, bool) {
	for _, opt := range s.options {
		if opt.Text == input {
			return opt, true
		}
	}
	return domain.Option{}, false
}

func (s *Session) event(t domain.EventType, to domain.NodeKey, input string) *domain.DialogEvent {
	return &domain.DialogEvent{
		Timestamp: s.now(),
		Type:      t,
		SessionID: s.id,
		From:      s.current,
		To:        to,
		Input:     input,
	}
}

// ID returns the session label (may be empty).
func (s *Session) ID() string {
	return s.id
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []domain.Message {
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// CurrentOptions returns a copy of the options valid for the next turn.
func (s *Session) CurrentOptions() []domain.Option {
	return domain.CloneOptions(s.options)
}

// PendingInput returns the not-yet-submitted text.
func (s *Session) PendingInput() string {
	return s.pending
}

// CurrentNode returns the key of the current state (RootKey at the greeting).
func (s *Session) CurrentNode() domain.NodeKey {
	return s.current
}

// IsTerminal reports whether no further input can ever match.
func (s *Session) IsTerminal() bool {
	return len(s.options) == 0
}

// Snapshot captures the session for storage.
func (s *Session) Snapshot() *domain.Snapshot {
	return &domain.Snapshot{
		SessionID:    s.id,
		NodeKey:      s.current,
		Messages:     s.Messages(),
		PendingInput: s.pending,
		UpdatedAt:    s.now(),
	}
}

// View is the read model handed to presentation adapters.
type View struct {
	SessionID    string           `json:"session_id"`
	Node         domain.NodeKey   `json:"node"`
	Messages     []domain.Message `json:"messages"`
	Options      []domain.Option  `json:"options"`
	PendingInput string           `json:"pending_input"`
	Terminal     bool             `json:"terminal"`
}

// View returns the current read model.
func (s *Session) View() View {
	return View{
		SessionID:    s.id,
		Node:         s.current,
		Messages:     s.Messages(),
		Options:      s.CurrentOptions(),
		PendingInput: s.pending,
		Terminal:     s.IsTerminal(),
	}
}
