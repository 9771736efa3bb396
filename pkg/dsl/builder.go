package dsl

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
)

// Builder manages the tree construction.
type Builder struct {
	root  *NodeBuilder
	nodes map[domain.NodeKey]*NodeBuilder
	order []domain.NodeKey
}

// New creates a new tree builder with the given greeting.
func New(greeting string) *Builder {
	b := &Builder{
		nodes: make(map[domain.NodeKey]*NodeBuilder),
	}
	b.root = &NodeBuilder{node: domain.Node{Message: greeting}, builder: b}
	return b
}

// Root returns the builder of the greeting state.
func (b *Builder) Root() *NodeBuilder {
	return b.root
}

// Add creates a new node in the tree.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(key string) *NodeBuilder {
	k := domain.NodeKey(key)
	if nb, ok := b.nodes[k]; ok {
		return nb
	}
	nb := &NodeBuilder{key: k, builder: b}
	b.nodes[k] = nb
	b.order = append(b.order, k)
	return nb
}

// Build compiles the builder into an immutable tree.
// Dangling option targets are allowed; sessions report them at runtime.
func (b *Builder) Build() (*domain.Tree, error) {
	tree := &domain.Tree{
		RootMessage: b.root.node.Message,
		RootOptions: domain.CloneOptions(b.root.node.Options),
		Nodes:       make(map[domain.NodeKey]domain.Node, len(b.nodes)),
	}
	for _, k := range b.order {
		if k == domain.RootKey {
			return nil, fmt.Errorf("%w: node key cannot be empty", domain.ErrInvalidTree)
		}
		nb := b.nodes[k]
		tree.Nodes[k] = domain.Node{
			Message: nb.node.Message,
			Options: domain.CloneOptions(nb.node.Options),
		}
	}
	return tree, nil
}

// Loader compiles the tree into an in-memory loader.
func (b *Builder) Loader() (*memory.Loader, error) {
	tree, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return memory.NewLoader(tree), nil
}

// MustBuild is like Build but panics on error. Intended for tests and fixtures.
func (b *Builder) MustBuild() *domain.Tree {
	tree, err := b.Build()
	if err != nil {
		panic(err)
	}
	return tree
}
