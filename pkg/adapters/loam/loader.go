package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/loam"
)

// DefaultRootID is the document that holds the greeting.
const DefaultRootID = "start"

// Loader adapts a Loam repository (one document per node) to ports.TreeLoader.
type Loader struct {
	Repo   *loam.TypedRepository[NodeMetadata]
	RootID string
}

// New creates a new Loam adapter reading the greeting from DefaultRootID.
func New(repo *loam.TypedRepository[NodeMetadata]) *Loader {
	return &Loader{
		Repo:   repo,
		RootID: DefaultRootID,
	}
}

// Load assembles the whole tree from the repository documents.
func (l *Loader) Load(ctx context.Context) (*domain.Tree, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	rootID := l.RootID
	if rootID == "" {
		rootID = DefaultRootID
	}

	tree := &domain.Tree{Nodes: make(map[domain.NodeKey]domain.Node, len(docs))}
	seen := make(map[string]string, len(docs))
	hasRoot := false

	for _, entry := range docs {
		// Use the ID from metadata if available, otherwise filename ID
		rawID := entry.Data.ID
		if rawID == "" {
			rawID = entry.ID
		}
		id := trimExtension(rawID)
		if id == "" {
			return nil, fmt.Errorf("%w: document %q has an empty id", domain.ErrInvalidTree, entry.ID)
		}

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: id '%s' is defined in both '%s' and '%s'", domain.ErrInvalidTree, id, existingPath, entry.ID)
		}
		seen[id] = entry.ID

		doc, err := l.Repo.Get(ctx, entry.ID)
		if err != nil {
			return nil, fmt.Errorf("loam get failed for %s: %w", entry.ID, err)
		}

		node := buildNode(doc.Data, doc.Content)
		if id == rootID {
			hasRoot = true
			tree.RootMessage = node.Message
			tree.RootOptions = node.Options
			continue
		}
		tree.Nodes[domain.NodeKey(id)] = node
	}

	if !hasRoot {
		return nil, fmt.Errorf("%w: root document %q not found", domain.ErrInvalidTree, rootID)
	}

	return tree, nil
}

func buildNode(meta NodeMetadata, content string) domain.Node {
	message := strings.TrimSpace(content)
	if message == "" {
		message = meta.Message
	}

	var options []domain.Option
	for _, opt := range meta.Options {
		options = append(options, domain.Option{
			Text: opt.Text,
			Next: domain.NodeKey(opt.target()),
		})
	}

	return domain.Node{Message: message, Options: options}
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
