package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/config"
	arborhttp "github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/aretw0/arbor/pkg/adapters/mcp"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 5 * time.Second

// NewHandler builds the HTTP API for cfg: engine, store, metrics and, when
// the tree source supports it, hot reload. cleanup releases the store.
func NewHandler(ctx context.Context, cfg *config.Config) (handler http.Handler, cleanup func() error, err error) {
	logger, err := loggerFor(cfg.Debug, false, cfg.RedactPatterns)
	if err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	engine, err := createEngine(engineConfig{tree: cfg.Tree, debug: cfg.Debug, strict: cfg.Strict, metrics: metrics}, logger)
	if err != nil {
		return nil, nil, err
	}

	manager, cleanup, err := createManager(ctx, cfg, engine, logger)
	if err != nil {
		return nil, nil, err
	}

	opts := []arborhttp.Option{
		arborhttp.WithLogger(logger),
		arborhttp.WithMetrics(reg),
		arborhttp.WithVersion(arbor.Version),
		arborhttp.WithMaxInputSize(cfg.MaxInputSize),
	}
	if _, ok := engine.Loader().(ports.Watchable); ok {
		if err := engine.WatchAndReload(ctx); err != nil {
			logger.Warn("hot reload disabled", "err", err)
		} else {
			opts = append(opts, arborhttp.WithWatcher(engine))
		}
	}

	return arborhttp.NewHandler(manager, engine, opts...), cleanup, nil
}

// Serve runs the HTTP API on cfg.Addr until ctx is done, then drains
// in-flight requests.
func Serve(ctx context.Context, cfg *config.Config) error {
	logger, err := loggerFor(cfg.Debug, false, cfg.RedactPatterns)
	if err != nil {
		return err
	}

	handler, cleanup, err := NewHandler(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("arbor server listening", "addr", cfg.Addr, "tree", cfg.Tree, "store", cfg.Store)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// SSE streams never finish on their own; Close cuts them after the deadline.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("arbor server stopped gracefully")
		return nil
	}
}

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// ServeMCP runs the MCP server over transport until ctx is done or stdin closes.
func ServeMCP(ctx context.Context, cfg *config.Config, transport string) error {
	// stdout carries JSON-RPC under stdio; logs stay on stderr.
	logger, err := loggerFor(cfg.Debug, false, cfg.RedactPatterns)
	if err != nil {
		return err
	}

	engine, err := createEngine(engineConfig{tree: cfg.Tree, debug: cfg.Debug, strict: cfg.Strict}, logger)
	if err != nil {
		return err
	}
	manager, cleanup, err := createManager(ctx, cfg, engine, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := engine.WatchAndReload(ctx); err != nil {
		logger.Debug("hot reload disabled", "err", err)
	}

	srv := mcp.NewServer(manager, engine,
		mcp.WithLogger(logger),
		mcp.WithMaxInputSize(cfg.MaxInputSize),
	)

	switch transport {
	case TransportStdio:
		logger.Info("starting arbor mcp server (stdio)")
		return srv.ServeStdio()
	case TransportSSE:
		return srv.ServeSSE(ctx, cfg.Addr)
	default:
		return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
	}
}
