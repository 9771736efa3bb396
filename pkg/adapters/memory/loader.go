package memory

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// Loader implements ports.TreeLoader over a tree held in memory.
type Loader struct {
	tree *domain.Tree
}

// NewLoader creates a loader serving a private copy of tree.
func NewLoader(tree *domain.Tree) *Loader {
	t := tree.Clone()
	if t == nil {
		t = &domain.Tree{}
	}
	if t.Nodes == nil {
		t.Nodes = make(map[domain.NodeKey]domain.Node)
	}
	return &Loader{tree: t}
}

// Load returns a fresh copy of the tree.
func (l *Loader) Load(ctx context.Context) (*domain.Tree, error) {
	return l.tree.Clone(), nil
}
