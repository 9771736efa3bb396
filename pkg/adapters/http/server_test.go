package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/arbor"
	arborhttp "github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/dialog"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/dsl"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	engine  *arbor.Engine
	manager *session.Manager
	handler http.Handler
}

func newFixture(t *testing.T, opts ...arborhttp.Option) *fixture {
	t.Helper()
	b := dsl.New("Hi, how can I help?")
	b.Root().Option("Pricing", "n1").Option("Broken", "missing")
	b.Add("n1").Say("Our plans start at $10")

	loader, err := b.Loader()
	require.NoError(t, err)
	engine, err := arbor.New("", arbor.WithLoader(loader))
	require.NoError(t, err)

	mgr := session.NewManager(engine, memory.NewStore())
	return &fixture{
		engine:  engine,
		manager: mgr,
		handler: arborhttp.NewHandler(mgr, engine, opts...),
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestServer_DialogLifecycle(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/sessions", `{"session_id":"s1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	view := decode[dialog.View](t, w)
	assert.Equal(t, "s1", view.SessionID)
	assert.Equal(t, []domain.Message{domain.BotMessage("Hi, how can I help?")}, view.Messages)
	assert.Len(t, view.Options, 2)

	w = f.do(t, http.MethodPut, "/sessions/s1/input", `{"text":"pricing"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pricing", decode[dialog.View](t, w).PendingInput)

	w = f.do(t, http.MethodPost, "/sessions/s1/submit", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[map[string]json.RawMessage](t, w)
	assert.JSONEq(t, `"no_match"`, string(resp["outcome"]))

	w = f.do(t, http.MethodPost, "/sessions/s1/submit", `{"text":" Pricing "}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[map[string]json.RawMessage](t, w)
	assert.JSONEq(t, `"advanced"`, string(resp["outcome"]))

	var after dialog.View
	require.NoError(t, json.Unmarshal(resp["view"], &after))
	assert.True(t, after.Terminal)
	assert.Empty(t, after.PendingInput)
	assert.Equal(t, []domain.Message{
		domain.BotMessage("Hi, how can I help?"),
		domain.UserMessage(" Pricing "),
		domain.BotMessage("Our plans start at $10"),
	}, after.Messages)

	w = f.do(t, http.MethodGet, "/sessions/s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, after, decode[dialog.View](t, w))

	w = f.do(t, http.MethodPost, "/sessions/s1/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[dialog.View](t, w).Messages, 1)

	w = f.do(t, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string][]string{"sessions": {"s1"}}, decode[map[string][]string](t, w))

	w = f.do(t, http.MethodDelete, "/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/sessions/s1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_DanglingOption(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/sessions", `{"session_id":"s1"}`).Code)

	w := f.do(t, http.MethodPost, "/sessions/s1/submit", `{"text":"Broken"}`)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[arborhttp.SubmitResponse](t, w)
	assert.Equal(t, dialog.OutcomeDangling, resp.Outcome)
	assert.Equal(t, domain.BotMessage(dialog.InvalidNextNodeMessage), resp.View.Messages[len(resp.View.Messages)-1])
	assert.Len(t, resp.View.Options, 2)
}

func TestServer_OpenGeneratesID(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, decode[dialog.View](t, w).SessionID)
}

func TestServer_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"view unknown", http.MethodGet, "/sessions/nope", "", http.StatusNotFound},
		{"submit unknown", http.MethodPost, "/sessions/nope/submit", "", http.StatusNotFound},
		{"reset unknown", http.MethodPost, "/sessions/nope/reset", "", http.StatusNotFound},
		{"close unknown", http.MethodDelete, "/sessions/nope", "", http.StatusNotFound},
		{"input without text", http.MethodPut, "/sessions/nope/input", `{}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/sessions", `{`, http.StatusBadRequest},
		{"oversized input", http.MethodPut, "/sessions/nope/input", `{"text":"` + strings.Repeat("a", 5000) + `"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.do(t, tt.method, tt.path, tt.body).Code)
		})
	}
}

func TestServer_MaxInputSize(t *testing.T) {
	f := newFixture(t, arborhttp.WithMaxInputSize(7))
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/sessions", `{"session_id":"s1"}`).Code)

	w := f.do(t, http.MethodPost, "/sessions/s1/submit", `{"text":"Pricing!"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/sessions/s1/submit", `{"text":"Pricing"}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[arborhttp.SubmitResponse](t, w)
	assert.Equal(t, dialog.OutcomeAdvanced, resp.Outcome)
	assert.Equal(t, domain.UserMessage("Pricing"), resp.View.Messages[1])
}

func TestServer_InputIsSanitized(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/sessions", `{"session_id":"s1"}`).Code)

	w := f.do(t, http.MethodPut, "/sessions/s1/input", `{"text":"Pri\u001bcing"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pricing", decode[dialog.View](t, w).PendingInput)
}

func TestServer_Introspection(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "arbor_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	f := newFixture(t, arborhttp.WithMetrics(reg), arborhttp.WithVersion(" 1.0.0\n"))

	w := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/info", "")
	assert.JSONEq(t, `{"app":"arbor-http","version":"1.0.0"}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/tree", "")
	require.Equal(t, http.StatusOK, w.Code)
	tree := decode[domain.Tree](t, w)
	assert.Equal(t, "Hi, how can I help?", tree.RootMessage)

	w = f.do(t, http.MethodGet, "/tree/mermaid", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "graph TD")
	assert.Contains(t, w.Body.String(), "missing_missing")

	w = f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "arbor_test_total 1")

	w = f.do(t, http.MethodOptions, "/sessions", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_MermaidOverlay(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/sessions", `{"session_id":"s1"}`).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/sessions/s1/submit", `{"text":"Pricing"}`).Code)

	w := f.do(t, http.MethodGet, "/tree/mermaid?session=s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "class n1 current;")

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/tree/mermaid?session=nope", "").Code)
}

func TestServer_NoMetricsOrWatcherByDefault(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/metrics", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/events", "").Code)
}

type stubWatcher struct {
	events []string
}

func (s stubWatcher) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, len(s.events))
	for _, e := range s.events {
		ch <- e
	}
	close(ch)
	return ch, nil
}

func TestSubscribeTreeEvents(t *testing.T) {
	f := newFixture(t, arborhttp.WithWatcher(stubWatcher{events: []string{"n1.md"}}))

	w := f.do(t, http.MethodGet, "/events", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "event: ping")
	assert.Contains(t, body, "event: reload\ndata: n1.md")
}

// readEvents collects SSE "data:" payloads until n are seen or the deadline passes.
func readEvents(t *testing.T, scanner *bufio.Scanner, n int) []string {
	t.Helper()
	var out []string
	for len(out) < n && scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: ") {
			out = append(out, strings.TrimPrefix(line, "data: "))
		}
	}
	require.Len(t, out, n, "stream ended early: %v", scanner.Err())
	return out
}

func TestSubscribeSessionEvents(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := f.manager.Open(ctx, "s1")
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sessions/s1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	scanner := bufio.NewScanner(resp.Body)
	initial := readEvents(t, scanner, 2)
	assert.Equal(t, "connected", initial[0])
	assert.Contains(t, initial[1], `"appended":[{"text":"Hi, how can I help?","sender":"bot"}]`)

	post, err := http.Post(srv.URL+"/sessions/s1/submit", "application/json", strings.NewReader(`{"text":"Pricing"}`))
	require.NoError(t, err)
	post.Body.Close()

	updates := readEvents(t, scanner, 1)
	var diff domain.SnapshotDiff
	require.NoError(t, json.Unmarshal([]byte(updates[0]), &diff))
	require.NotNil(t, diff.NodeKey)
	assert.Equal(t, domain.NodeKey("n1"), *diff.NodeKey)
	require.NotNil(t, diff.Messages)
	assert.False(t, diff.Messages.Replaced)
	assert.Nil(t, diff.PendingInput)
	assert.Equal(t, []domain.Message{
		domain.UserMessage("Pricing"),
		domain.BotMessage("Our plans start at $10"),
	}, diff.Messages.Appended)

	del, err := http.NewRequest(http.MethodDelete, srv.URL+"/sessions/s1", nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(del)
	require.NoError(t, err)
	delResp.Body.Close()

	closed := readEvents(t, scanner, 1)
	assert.JSONEq(t, `{"session_id":"s1"}`, closed[0])
}

func TestSubscribeSessionEvents_Unknown(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/sessions/nope/events", "").Code)
}
