package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/dialog"
	"github.com/aretw0/arbor/pkg/domain"
)

// DialogHost is the set of operations outer adapters (HTTP, MCP) drive.
// Every call applies at most one dialog operation to one session.
type DialogHost interface {
	Open(ctx context.Context, sessionID string) (dialog.View, error)
	View(ctx context.Context, sessionID string) (dialog.View, error)
	SetPendingInput(ctx context.Context, sessionID, text string) (dialog.View, error)
	Submit(ctx context.Context, sessionID string) (dialog.Outcome, dialog.View, error)
	// SubmitText sets the pending input and submits it as one operation.
	SubmitText(ctx context.Context, sessionID, text string) (dialog.Outcome, dialog.View, error)
	Reset(ctx context.Context, sessionID string) (dialog.View, error)
	Close(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}

// TreeSource exposes the tree currently served, for introspection endpoints.
type TreeSource interface {
	Tree() *domain.Tree
}
