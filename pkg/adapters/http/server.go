package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/dialog"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Watcher reports tree changes. *arbor.Engine implements it.
type Watcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// Server exposes a DialogHost over HTTP.
type Server struct {
	Host    ports.DialogHost
	Tree    ports.TreeSource
	Streams *StreamManager

	watcher  Watcher
	gatherer prometheus.Gatherer
	input    runner.InputPolicy
	version  string
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithWatcher enables GET /events for tree reload notifications.
func WithWatcher(w Watcher) Option {
	return func(s *Server) {
		s.watcher = w
	}
}

// WithMetrics serves the gatherer on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithMaxInputSize caps the "text" of input and submit requests in bytes.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.input = runner.NewInputPolicy(n)
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = strings.TrimSpace(v)
	}
}

// WithLogger configures the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a Server around host. tree may be nil.
func NewServer(host ports.DialogHost, tree ports.TreeSource, opts ...Option) *Server {
	s := &Server{
		Host:    host,
		Tree:    tree,
		version: "dev",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates a new HTTP handler for the dialog host.
func NewHandler(host ports.DialogHost, tree ports.TreeSource, opts ...Option) http.Handler {
	return NewServer(host, tree, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/tree", s.GetTree)
	r.Get("/tree/mermaid", s.GetTreeMermaid)
	r.Get("/events", s.SubscribeTreeEvents)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.OpenSession)
		r.Get("/", s.ListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.CloseSession)
			r.Put("/input", s.SetInput)
			r.Post("/submit", s.Submit)
			r.Post("/reset", s.ResetSession)
			r.Get("/events", s.SubscribeSessionEvents)
		})
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type openRequest struct {
	SessionID string `json:"session_id"`
}

type inputRequest struct {
	Text *string `json:"text"`
}

// SubmitResponse is the body of POST /sessions/{id}/submit.
type SubmitResponse struct {
	Outcome dialog.Outcome `json:"outcome"`
	View    dialog.View    `json:"view"`
}

// OpenSession handles POST /sessions.
func (s *Server) OpenSession(w http.ResponseWriter, r *http.Request) {
	var body openRequest
	if err := decodeOptional(r, &body); err != nil {
		s.badRequest(w, "invalid request body", err)
		return
	}

	view, err := s.Host.Open(r.Context(), strings.TrimSpace(body.SessionID))
	if err != nil {
		s.fail(w, "open", err)
		return
	}
	s.Streams.Broadcast(view)
	s.writeJSON(w, http.StatusCreated, view)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Host.List(r.Context())
	if err != nil {
		s.fail(w, "list", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.Host.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "view", err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// SetInput handles PUT /sessions/{id}/input.
func (s *Server) SetInput(w http.ResponseWriter, r *http.Request) {
	var body inputRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == nil {
		s.badRequest(w, "body must be {\"text\": string}", err)
		return
	}
	text, err := s.input.Clean(*body.Text)
	if err != nil {
		s.badRequest(w, fmt.Sprintf("invalid input: %v", err), err)
		return
	}

	view, err := s.Host.SetPendingInput(r.Context(), chi.URLParam(r, "id"), text)
	if err != nil {
		s.fail(w, "set input", err)
		return
	}
	s.Streams.Broadcast(view)
	s.writeJSON(w, http.StatusOK, view)
}

// Submit handles POST /sessions/{id}/submit. A "text" field, when present,
// replaces the pending input and is submitted in the same locked step.
func (s *Server) Submit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body inputRequest
	if err := decodeOptional(r, &body); err != nil {
		s.badRequest(w, "invalid request body", err)
		return
	}

	var (
		outcome dialog.Outcome
		view    dialog.View
		err     error
	)
	if body.Text != nil {
		text, cerr := s.input.Clean(*body.Text)
		if cerr != nil {
			s.badRequest(w, fmt.Sprintf("invalid input: %v", cerr), cerr)
			return
		}
		outcome, view, err = s.Host.SubmitText(r.Context(), id, text)
	} else {
		outcome, view, err = s.Host.Submit(r.Context(), id)
	}
	if err != nil {
		s.fail(w, "submit", err)
		return
	}
	s.Streams.Broadcast(view)
	s.writeJSON(w, http.StatusOK, SubmitResponse{Outcome: outcome, View: view})
}

// ResetSession handles POST /sessions/{id}/reset.
func (s *Server) ResetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.Host.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "reset", err)
		return
	}
	s.Streams.Broadcast(view)
	s.writeJSON(w, http.StatusOK, view)
}

// CloseSession handles DELETE /sessions/{id}.
func (s *Server) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Host.Close(r.Context(), id); err != nil {
		s.fail(w, "close", err)
		return
	}
	s.Streams.Closed(id)
	w.WriteHeader(http.StatusNoContent)
}

// GetTree handles GET /tree.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	if s.Tree == nil {
		http.Error(w, "tree introspection not available", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Tree.Tree())
}

// GetTreeMermaid handles GET /tree/mermaid. ?session={id} overlays that dialog's path.
func (s *Server) GetTreeMermaid(w http.ResponseWriter, r *http.Request) {
	if s.Tree == nil {
		http.Error(w, "tree introspection not available", http.StatusNotFound)
		return
	}
	tree := s.Tree.Tree()

	var overlay *graph.GraphOverlay
	if id := r.URL.Query().Get("session"); id != "" {
		view, err := s.Host.View(r.Context(), id)
		if err != nil {
			s.fail(w, "view", err)
			return
		}
		overlay = graph.OverlayFromSnapshot(tree, viewSnapshot(view))
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(tree, overlay))
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "arbor-http",
		"version": s.version,
	})
}

// SubscribeTreeEvents handles GET /events: one "data:" line per tree change.
func (s *Server) SubscribeTreeEvents(w http.ResponseWriter, r *http.Request) {
	if s.watcher == nil {
		http.Error(w, "tree watching not enabled", http.StatusNotFound)
		return
	}
	flusher, ok := startStream(w)
	if !ok {
		return
	}

	events, err := s.watcher.Watch(r.Context())
	if err != nil {
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", err)
		flusher.Flush()
		return
	}
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: reload\ndata: %s\n\n", event)
			flusher.Flush()
		}
	}
}

// SubscribeSessionEvents handles GET /sessions/{id}/events.
// The first "diff" event carries the whole dialog; later ones carry only what changed.
func (s *Server) SubscribeSessionEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	view, err := s.Host.View(r.Context(), id)
	if err != nil {
		s.fail(w, "view", err)
		return
	}

	flusher, ok := startStream(w)
	if !ok {
		return
	}
	s.logger.Debug("sse subscriber connected", "session_id", id)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	last := viewSnapshot(view)
	s.writeDiff(w, domain.Diff(nil, last))
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("sse subscriber disconnected", "session_id", id)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.closed {
				fmt.Fprintf(w, "event: closed\ndata: {\"session_id\":%q}\n\n", id)
				flusher.Flush()
				return
			}
			next := viewSnapshot(ev.view)
			if diff := domain.Diff(last, next); diff != nil {
				s.writeDiff(w, diff)
				flusher.Flush()
			}
			last = next
		}
	}
}

func (s *Server) writeDiff(w io.Writer, diff *domain.SnapshotDiff) {
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("encode diff", "session_id", diff.SessionID, "err", err)
		return
	}
	fmt.Fprintf(w, "event: diff\ndata: %s\n\n", data)
}

func startStream(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	return flusher, true
}

// viewSnapshot lifts a view into a snapshot so views can be diffed.
func viewSnapshot(v dialog.View) *domain.Snapshot {
	return &domain.Snapshot{
		SessionID:    v.SessionID,
		NodeKey:      v.Node,
		Messages:     v.Messages,
		PendingInput: v.PendingInput,
	}
}

// decodeOptional decodes a JSON body, treating an empty body as zero value.
func decodeOptional(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) badRequest(w http.ResponseWriter, msg string, err error) {
	s.logger.Warn("bad request", "msg", msg, "err", err)
	http.Error(w, msg, http.StatusBadRequest)
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.logger.Error(op+" failed", "err", err)
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
}
