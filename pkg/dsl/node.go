package dsl

import "github.com/aretw0/arbor/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	key     domain.NodeKey
	node    domain.Node
	builder *Builder
}

// Say sets the bot message of the node.
func (n *NodeBuilder) Say(message string) *NodeBuilder {
	n.node.Message = message
	return n
}

// Option adds a reply labeled text that leads to the next node.
func (n *NodeBuilder) Option(text, next string) *NodeBuilder {
	n.node.Options = append(n.node.Options, domain.Option{
		Text: text,
		Next: domain.NodeKey(next),
	})
	return n
}

// Terminal removes every option, making the node an end of the conversation.
func (n *NodeBuilder) Terminal() *NodeBuilder {
	n.node.Options = nil
	return n
}

// Key returns the node key (RootKey for the greeting).
func (n *NodeBuilder) Key() domain.NodeKey {
	return n.key
}

// Build returns the underlying domain.Node.
func (n *NodeBuilder) Build() domain.Node {
	return n.node
}
