// Package agentgate provides a high-level façade over the agent registry and
// the OpenAI-compatible gateway server. Most applications interact with this
// package by:
//  1. Creating an AgentGate via New() with a set of registry plugins
//  2. Serving it over HTTP (ListenAndServe) or embedding its Handler()
//  3. Optionally invoking agents directly (Complete, Stream) without HTTP
//
// The façade delegates request dispatch to server.Server while keeping setup
// ergonomics concise. Defaults are safe for local development; production
// deployments typically supply a structured logger.
package agentgate

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hupe1980/agentgate/core"
	"github.com/hupe1980/agentgate/logging"
	"github.com/hupe1980/agentgate/registry"
	"github.com/hupe1980/agentgate/server"
)

// Options configures the AgentGate instance.
type Options struct {
	// Plugins register the agents served by the gateway. Registration order
	// determines the order of the models listing.
	Plugins []registry.Plugin

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// AgentGate is the high-level façade aggregating the agent registry and the
// gateway server.
type AgentGate struct {
	registry *registry.Registry
	server   *server.Server
	logger   logging.Logger
}

// New creates a new AgentGate instance and loads the configured plugins.
// Plugin loading is fail-fast: the first plugin error aborts construction.
func New(optFns ...func(o *Options)) (*AgentGate, error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	reg := registry.New()
	if err := reg.Load(opts.Plugins...); err != nil {
		return nil, err
	}

	srv := server.New(reg, func(o *server.Options) {
		o.Logger = opts.Logger
	})

	return &AgentGate{
		registry: reg,
		server:   srv,
		logger:   opts.Logger,
	}, nil
}

// Registry exposes the underlying agent registry.
func (g *AgentGate) Registry() *registry.Registry { return g.registry }

// Handler returns the gateway's HTTP handler for embedding in an existing
// server.
func (g *AgentGate) Handler() http.Handler { return g.server.Handler() }

// ListenAndServe serves the gateway on addr until the context is canceled.
func (g *AgentGate) ListenAndServe(ctx context.Context, addr string) error {
	return g.server.ListenAndServe(ctx, addr)
}

// Complete invokes the named agent once, without going through HTTP, and
// returns its final reply.
func (g *AgentGate) Complete(ctx context.Context, modelName, message string, history []core.HistoryEntry) (*core.Reply, error) {
	agent, err := g.construct(modelName, message, history)
	if err != nil {
		return nil, err
	}

	return agent.Run(ctx, message)
}

// Stream invokes the named agent in streaming mode, returning its event and
// error channels.
func (g *AgentGate) Stream(ctx context.Context, modelName, message string, history []core.HistoryEntry) (<-chan core.StreamEvent, <-chan error, error) {
	agent, err := g.construct(modelName, message, history)
	if err != nil {
		return nil, nil, err
	}

	events, errs := agent.RunStream(ctx, message)

	return events, errs, nil
}

func (g *AgentGate) construct(modelName, message string, history []core.HistoryEntry) (core.Agent, error) {
	construct, ok := g.registry.Lookup(modelName)
	if !ok {
		return nil, fmt.Errorf("model %q not supported", modelName)
	}

	agent, err := construct(message, core.BuildContext(history, modelName))
	if err != nil {
		return nil, fmt.Errorf("failed to construct agent %q: %w", modelName, err)
	}

	return agent, nil
}
