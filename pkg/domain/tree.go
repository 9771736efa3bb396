package domain

import "sort"

// NodeKey identifies a node inside a Tree.
type NodeKey string

// RootKey is the key of the implicit greeting state. Authored nodes never use it.
const RootKey NodeKey = ""

// Option is a labeled edge out of a node.
// It is selected when the submitted text equals Text exactly.
type Option struct {
	Text string  `json:"text" yaml:"text" mapstructure:"text"`
	Next NodeKey `json:"next" yaml:"next" mapstructure:"next"`
}

// Node is a single point in the dialog tree.
// A node with no options is terminal.
type Node struct {
	Message string   `json:"message" yaml:"message" mapstructure:"message"`
	Options []Option `json:"options" yaml:"options" mapstructure:"options"`
}

// IsTerminal reports whether the node has no outgoing options.
func (n Node) IsTerminal() bool {
	return len(n.Options) == 0
}

// Tree is the static, read-only conversation graph.
// The root (greeting) is kept apart from Nodes, which holds every non-root node.
type Tree struct {
	RootMessage string           `json:"root_message" yaml:"root_message"`
	RootOptions []Option         `json:"root_options" yaml:"root_options"`
	Nodes       map[NodeKey]Node `json:"nodes" yaml:"nodes"`
}

// Root returns the greeting state as a Node.
func (t *Tree) Root() Node {
	return Node{Message: t.RootMessage, Options: t.RootOptions}
}

// Lookup resolves a key against the non-root nodes.
// RootKey never resolves: options cannot point back at the greeting.
func (t *Tree) Lookup(key NodeKey) (Node, bool) {
	if t == nil || t.Nodes == nil || key == RootKey {
		return Node{}, false
	}
	n, ok := t.Nodes[key]
	return n, ok
}

// Keys returns the node keys in lexical order.
func (t *Tree) Keys() []NodeKey {
	keys := make([]NodeKey, 0, len(t.Nodes))
	for k := range t.Nodes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Clone returns a deep copy so callers can hand out trees without sharing slices.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	out := &Tree{
		RootMessage: t.RootMessage,
		RootOptions: cloneOptions(t.RootOptions),
		Nodes:       make(map[NodeKey]Node, len(t.Nodes)),
	}
	for k, n := range t.Nodes {
		out.Nodes[k] = Node{Message: n.Message, Options: cloneOptions(n.Options)}
	}
	return out
}

func cloneOptions(src []Option) []Option {
	if src == nil {
		return nil
	}
	dst := make([]Option, len(src))
	copy(dst, src)
	return dst
}

// CloneOptions copies an option slice. Always non-nil.
func CloneOptions(src []Option) []Option {
	dst := make([]Option, len(src))
	copy(dst, src)
	return dst
}
