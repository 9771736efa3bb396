package arbor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/arbor/pkg/adapters/file"
	loamAdapter "github.com/aretw0/arbor/pkg/adapters/loam"
	"github.com/aretw0/arbor/pkg/dialog"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/loam"
)

// Engine is the high-level entry point for the Arbor library.
// It owns the loaded tree and hands out independent dialog sessions over it.
type Engine struct {
	mu     sync.RWMutex
	tree   *domain.Tree
	loader ports.TreeLoader
	hooks  domain.DialogHooks
	logger *slog.Logger
	strict bool
	Name   string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom TreeLoader, bypassing path-based loader selection.
func WithLoader(l ports.TreeLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLogger sets a custom structured logger for the engine and its sessions.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers observability hooks on every session the engine creates.
func WithHooks(hooks domain.DialogHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithStrictValidation refuses trees with broken links or empty messages,
// at construction and on every Reload.
func WithStrictValidation() Option {
	return func(e *Engine) {
		e.strict = true
	}
}

// New loads the tree and initializes an Engine.
// A .yaml, .yml or .json path uses the file loader; any other path is opened
// as a Loam repository with one document per node.
// If WithLoader option is provided, treePath can be empty.
func New(treePath string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if treePath == "" {
			return nil, fmt.Errorf("treePath is required when no custom loader is provided")
		}

		loader, err := LoaderFor(treePath)
		if err != nil {
			return nil, err
		}
		eng.loader = loader
	}

	if treePath != "" {
		eng.Name = strings.TrimSuffix(filepath.Base(treePath), filepath.Ext(treePath))
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("tree", eng.Name)
	}

	if err := eng.Reload(context.Background()); err != nil {
		return nil, err
	}

	return eng, nil
}

// LoaderFor picks the TreeLoader for a path on disk.
func LoaderFor(treePath string) (ports.TreeLoader, error) {
	switch strings.ToLower(filepath.Ext(treePath)) {
	case ".yaml", ".yml", ".json":
		return file.NewLoader(treePath), nil
	}

	absPath, err := filepath.Abs(treePath)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("tree path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("unsupported tree file %q (want .yaml, .yml, .json or a directory)", treePath)
	}

	// The engine never modifies the tree, only reads it.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	typedRepo := loam.NewTypedRepository[loamAdapter.NodeMetadata](repo)
	return loamAdapter.New(typedRepo), nil
}

// Reload reads the tree again from the loader. Sessions already created keep
// the tree they were built with; new sessions see the reloaded one.
// On failure the previous tree stays in place.
func (e *Engine) Reload(ctx context.Context) error {
	tree, err := e.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tree: %w", err)
	}
	if tree == nil {
		return fmt.Errorf("%w: loader returned no tree", domain.ErrInvalidTree)
	}

	if e.strict {
		if err := validator.ValidateTree(tree); err != nil {
			return err
		}
	} else {
		for _, issue := range validator.Errors(validator.Check(tree)) {
			e.logger.Warn("tree issue", "node", string(issue.Node), "issue", issue.Message)
		}
	}

	e.mu.Lock()
	e.tree = tree
	e.mu.Unlock()

	e.logger.Debug("tree loaded", "nodes", len(tree.Nodes))
	return nil
}

// Tree returns the tree currently served. Callers must not mutate it.
func (e *Engine) Tree() *domain.Tree {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree
}

func (e *Engine) sessionOptions(id string, opts []dialog.Option) []dialog.Option {
	base := []dialog.Option{
		dialog.WithLogger(e.logger),
		dialog.WithHooks(e.hooks),
		dialog.WithSessionID(id),
	}
	return append(base, opts...)
}

// NewSession starts a dialog at the root of the current tree.
func (e *Engine) NewSession(id string, opts ...dialog.Option) *dialog.Session {
	return dialog.New(e.Tree(), e.sessionOptions(id, opts)...)
}

// Restore rebuilds a dialog from a snapshot against the current tree.
func (e *Engine) Restore(snap *domain.Snapshot, opts ...dialog.Option) *dialog.Session {
	var id string
	if snap != nil {
		id = snap.SessionID
	}
	return dialog.Restore(e.Tree(), snap, e.sessionOptions(id, opts)...)
}

// Watch returns a channel that signals when the underlying tree changes.
// Returns error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}

// WatchAndReload reloads the tree on every change until ctx is done.
// Reload failures are logged and the previous tree keeps serving.
func (e *Engine) WatchAndReload(ctx context.Context) error {
	changes, err := e.Watch(ctx)
	if err != nil {
		return err
	}

	go func() {
		for id := range changes {
			if err := e.Reload(ctx); err != nil {
				e.logger.Error("reload failed", "document", id, "err", err)
				continue
			}
			e.logger.Info("tree reloaded", "document", id)
		}
	}()

	return nil
}

// Loader returns the underlying TreeLoader used by the engine.
func (e *Engine) Loader() ports.TreeLoader {
	return e.loader
}
