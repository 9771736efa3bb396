package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/dialog"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	// TreeURI is the resource holding the tree as JSON.
	TreeURI = "arbor://tree"
	// TreeMermaidURI is the resource holding the tree as a Mermaid flowchart.
	TreeMermaidURI = "arbor://tree/mermaid"
)

// DialogResponse is the structured result of every dialog tool.
type DialogResponse struct {
	Outcome string      `json:"outcome,omitempty" jsonschema_description:"What submit did: advanced, dangling or no_match"`
	View    dialog.View `json:"view" jsonschema_description:"The dialog after the call"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type submitArgs struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// Server exposes a DialogHost as an MCP server.
type Server struct {
	host      ports.DialogHost
	tree      ports.TreeSource
	mcpServer *server.MCPServer
	input     runner.InputPolicy
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxInputSize caps submit_reply text in bytes.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.input = runner.NewInputPolicy(n)
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(host ports.DialogHost, tree ports.TreeSource, opts ...Option) *Server {
	s := &Server{
		host:      host,
		tree:      tree,
		mcpServer: server.NewMCPServer("arbor-mcp", strings.TrimSpace(arbor.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (sse)", "addr", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down mcp server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("open_dialog",
		mcp.WithDescription("Start a dialog at the greeting. Reopening an existing session_id restarts it."),
		mcp.WithString("session_id", mcp.Description("Dialog ID (optional, generated when omitted)")),
		mcp.WithOutputSchema[DialogResponse](),
	), mcp.NewStructuredToolHandler(s.handleOpen))

	s.mcpServer.AddTool(mcp.NewTool("submit_reply",
		mcp.WithDescription("Reply to the dialog. The text must equal one of the offered options; anything else changes nothing."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Dialog ID")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Reply text, matched exactly after trimming")),
		mcp.WithOutputSchema[DialogResponse](),
	), mcp.NewStructuredToolHandler(s.handleSubmit))

	s.mcpServer.AddTool(mcp.NewTool("view_dialog",
		mcp.WithDescription("Show the transcript and the options currently offered."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Dialog ID")),
		mcp.WithOutputSchema[DialogResponse](),
	), mcp.NewStructuredToolHandler(s.handleView))

	s.mcpServer.AddTool(mcp.NewTool("reset_dialog",
		mcp.WithDescription("Restart the dialog from the greeting."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Dialog ID")),
		mcp.WithOutputSchema[DialogResponse](),
	), mcp.NewStructuredToolHandler(s.handleReset))

	s.mcpServer.AddTool(mcp.NewTool("close_dialog",
		mcp.WithDescription("Discard the dialog."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Dialog ID")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := request.GetString("session_id", "")
		if err := s.host.Close(ctx, id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("close failed: %v", err)), nil
		}
		return mcp.NewToolResultText("closed " + id), nil
	})
}

func (s *Server) handleOpen(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (DialogResponse, error) {
	view, err := s.host.Open(ctx, strings.TrimSpace(args.SessionID))
	if err != nil {
		return DialogResponse{}, fmt.Errorf("open failed: %w", err)
	}
	return DialogResponse{View: view}, nil
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest, args submitArgs) (DialogResponse, error) {
	clean, err := s.input.Clean(args.Text)
	if err != nil {
		s.logger.Warn("mcp submit: input rejected", "session_id", args.SessionID, "err", err, "size", len(args.Text))
		return DialogResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	outcome, view, err := s.host.SubmitText(ctx, args.SessionID, clean)
	if err != nil {
		return DialogResponse{}, fmt.Errorf("submit failed: %w", err)
	}
	return DialogResponse{Outcome: outcome.String(), View: view}, nil
}

func (s *Server) handleView(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (DialogResponse, error) {
	view, err := s.host.View(ctx, args.SessionID)
	if err != nil {
		return DialogResponse{}, fmt.Errorf("view failed: %w", err)
	}
	return DialogResponse{View: view}, nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (DialogResponse, error) {
	view, err := s.host.Reset(ctx, args.SessionID)
	if err != nil {
		return DialogResponse{}, fmt.Errorf("reset failed: %w", err)
	}
	return DialogResponse{View: view}, nil
}

func (s *Server) registerResources() {
	if s.tree == nil {
		return
	}

	s.mcpServer.AddResource(mcp.NewResource(TreeURI, "Dialog Tree",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.tree.Tree())
		if err != nil {
			return nil, fmt.Errorf("failed to encode tree: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      TreeURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(TreeMermaidURI, "Dialog Tree (Mermaid)",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      TreeMermaidURI,
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(s.tree.Tree(), nil),
			},
		}, nil
	})
}
