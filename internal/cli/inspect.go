package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/arbor/pkg/domain"
)

// Validate loads the tree without the runtime's leniency and prints every
// issue to out. Warnings alone do not fail validation.
func Validate(ctx context.Context, treePath string, out io.Writer) error {
	loader, err := arbor.LoaderFor(treePath)
	if err != nil {
		return err
	}
	tree, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tree: %w", err)
	}

	issues := validator.Check(tree)
	for _, issue := range issues {
		fmt.Fprintln(out, issue.String())
	}

	if errs := validator.Errors(issues); len(errs) > 0 {
		return fmt.Errorf("%w: %d errors", domain.ErrInvalidTree, len(errs))
	}
	fmt.Fprintf(out, "Tree is valid: %d nodes.\n", len(tree.Nodes))
	return nil
}

// Graph writes the Mermaid flowchart of the tree. When sessionID is set,
// the stored dialog's path is highlighted.
func Graph(ctx context.Context, cfg *config.Config, sessionID string, out io.Writer) error {
	logger := createLogger(cfg.Debug, true)

	engine, err := createEngine(engineConfig{tree: cfg.Tree}, logger)
	if err != nil {
		return err
	}

	var overlay *graph.GraphOverlay
	if sessionID != "" {
		snap, err := loadSnapshot(ctx, cfg, sessionID)
		if err != nil {
			return err
		}
		overlay = graph.OverlayFromSnapshot(engine.Tree(), snap)
	}

	_, err = io.WriteString(out, graph.GenerateMermaid(engine.Tree(), overlay))
	return err
}

// ListSessions prints the IDs of the live dialogs in the configured store.
func ListSessions(ctx context.Context, cfg *config.Config, out io.Writer) error {
	store, _, closeFn, err := createStore(ctx, cfg, createLogger(cfg.Debug, true))
	if err != nil {
		return err
	}
	defer closeFn()

	ids, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No active sessions found.")
		return nil
	}
	fmt.Fprintln(out, "Active Sessions:")
	for _, id := range ids {
		fmt.Fprintln(out, "- "+id)
	}
	return nil
}

// InspectSession prints the stored snapshot as indented JSON.
func InspectSession(ctx context.Context, cfg *config.Config, sessionID string, out io.Writer) error {
	snap, err := loadSnapshot(ctx, cfg, sessionID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// RemoveSessions deletes every listed dialog, reporting each one.
func RemoveSessions(ctx context.Context, cfg *config.Config, ids []string, out io.Writer) error {
	store, _, closeFn, err := createStore(ctx, cfg, createLogger(cfg.Debug, true))
	if err != nil {
		return err
	}
	defer closeFn()

	failed := 0
	for _, id := range ids {
		if err := store.Delete(ctx, id); err != nil {
			fmt.Fprintf(out, "Error removing '%s': %v\n", id, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "Removed session '%s'\n", id)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sessions could not be removed", failed, len(ids))
	}
	return nil
}

func loadSnapshot(ctx context.Context, cfg *config.Config, sessionID string) (*domain.Snapshot, error) {
	store, _, closeFn, err := createStore(ctx, cfg, createLogger(cfg.Debug, true))
	if err != nil {
		return nil, err
	}
	defer closeFn()

	snap, err := store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session '%s': %w", sessionID, err)
	}
	return snap, nil
}
