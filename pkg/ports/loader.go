package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// TreeLoader defines how the engine retrieves the authored conversation tree.
// This allows the authoring format (YAML, Markdown, Go DSL) to be decoupled.
type TreeLoader interface {
	// Load reads the whole tree. The returned value is owned by the caller
	// and must be treated as immutable once handed to sessions.
	Load(ctx context.Context) (*domain.Tree, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload in development.
type Watchable interface {
	// Watch returns a channel that is signaled with the changed document ID
	// whenever the underlying tree changes.
	Watch(ctx context.Context) (<-chan string, error)
}
