// ABOUTME: HTTP server assembly for prep-gateway
// ABOUTME: Wires the store and relay into routes and manages graceful shutdown

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prepaccel/prep-gateway/internal/relay"
	"github.com/prepaccel/prep-gateway/internal/store"
)

// Config holds the dependencies and settings for the HTTP server.
type Config struct {
	HTTPAddr string
	Store    store.Store
	Relay    *relay.Service
	Logger   *slog.Logger
}

// Gateway is the HTTP boundary for the conversation relay.
type Gateway struct {
	store      store.Store
	relay      *relay.Service
	logger     *slog.Logger
	httpServer *http.Server
}

// New creates a Gateway with its routes registered.
func New(cfg Config) *Gateway {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gateway{
		store:  cfg.Store,
		relay:  cfg.Relay,
		logger: logger.With("component", "gateway"),
	}

	mux := http.NewServeMux()
	g.registerRoutes(mux)

	g.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return g
}

func (g *Gateway) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", g.handleHealth)

	mux.HandleFunc("GET /api/conversations", g.handleListConversations)
	mux.HandleFunc("POST /api/conversations", g.handleStartSession)
	mux.HandleFunc("GET /api/conversations/{id}", g.handleGetConversation)
	mux.HandleFunc("DELETE /api/conversations/{id}", g.handleDeleteConversation)
	mux.HandleFunc("POST /api/conversations/{id}/messages", g.handleSubmitMessage)
	mux.HandleFunc("POST /api/conversations/{id}/stop", g.handleStopTurn)

	mux.HandleFunc("GET /conversations/{id}/view", g.handleTranscript)
}

// Handler exposes the route tree, mainly for tests.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	g.logger.Info("HTTP server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- g.httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		g.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return g.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server failed: %w", err)
	}
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
