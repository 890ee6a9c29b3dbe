// Package server exposes a registry of agents over the OpenAI
// chat-completions wire protocol. It serves POST /v1/chat/completions
// (buffered or SSE-streamed) and GET /v1/models, translating agent replies
// and stream events into OpenAI completion envelopes and chunk frames.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hupe1980/agentgate/logging"
	"github.com/hupe1980/agentgate/registry"
)

// systemFingerprint is the static fingerprint stamped on every completion.
const systemFingerprint = "fp_06737a9306"

// shutdownTimeout bounds graceful shutdown once the serve context is done.
const shutdownTimeout = 10 * time.Second

// Options configures the server.
type Options struct {
	// Logger receives request and dispatch logs. Defaults to a no-op logger.
	Logger logging.Logger
}

// Server dispatches chat completion requests to registered agents.
type Server struct {
	registry *registry.Registry
	logger   logging.Logger
	mux      *http.ServeMux
}

// New creates a server backed by the given registry.
func New(reg *registry.Registry, optFns ...func(o *Options)) *Server {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		registry: reg,
		logger:   opts.Logger,
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /v1/chat/completions", s.handleChatCompletions)
	s.mux.HandleFunc("GET /v1/models", s.handleListModels)

	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until the context is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.Info("server listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}

		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case err := <-errCh:
		return err
	}
}

// handleListModels serves GET /v1/models with one entry per registered
// agent, in registration order.
func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	names := s.registry.Names()

	list := ModelList{
		Object: "list",
		Data:   make([]ModelInfo, 0, len(names)),
	}

	for _, name := range names {
		list.Data = append(list.Data, ModelInfo{
			ID:      name,
			Object:  "model",
			OwnedBy: "agent",
		})
	}

	s.writeJSON(w, http.StatusOK, list)
}

// writeJSON writes v as a JSON body with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
