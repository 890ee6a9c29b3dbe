// Command agentgate serves registered agents over the OpenAI-compatible
// chat-completions protocol. Configuration comes from the environment (and an
// optional .env file in the working directory).
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"

	"github.com/hupe1980/agentgate"
	"github.com/hupe1980/agentgate/agents"
	"github.com/hupe1980/agentgate/config"
	"github.com/hupe1980/agentgate/logging"
	"github.com/hupe1980/agentgate/model"
	antmodel "github.com/hupe1980/agentgate/model/anthropic"
	oaimodel "github.com/hupe1980/agentgate/model/openai"
	"github.com/hupe1980/agentgate/registry"
)

func main() {
	// A missing .env file is fine; the environment alone may be complete.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := newLogger(cfg)
	cfg.LogConfig(logger)

	gate, err := agentgate.New(func(o *agentgate.Options) {
		o.Logger = logger
		o.Plugins = []registry.Plugin{
			agents.Passthrough(newModelProvider(cfg), logger),
			agents.Password(newModelProvider(cfg), logger),
		}
	})
	if err != nil {
		log.Fatalf("failed to initialize gateway: %v", err)
	}

	logger.Info("agents registered", "models", gate.Registry().Names())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := gate.ListenAndServe(ctx, cfg.Addr()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func newLogger(cfg *config.Config) logging.Logger {
	level := logging.LogLevelInfo
	if cfg.DebugLog {
		level = logging.LogLevelDebug
	}

	return logging.New(&logging.Config{
		Level:  level,
		Format: "text",
		Output: os.Stdout,
	})
}

// newModelProvider returns the backend used by the LLM-backed agents. Models
// named like Anthropic's go through the Messages API; everything else goes
// through the OpenAI-compatible chat-completions backend.
func newModelProvider(cfg *config.Config) agents.ModelProvider {
	if strings.HasPrefix(cfg.DefaultLLM, "claude") {
		return func() model.Model {
			return antmodel.NewModel(func(o *antmodel.Options) {
				o.Model = anthropic.Model(cfg.DefaultLLM)
				o.APIKey = cfg.AnthropicAPIKey
			})
		}
	}

	return func() model.Model {
		return oaimodel.NewModel(func(o *oaimodel.Options) {
			o.Model = cfg.DefaultLLM
			o.APIKey = cfg.OpenAIAPIKey
			o.BaseURL = cfg.BackendURL
			o.RequestTimeout = cfg.BackendRequestTimeout
		})
	}
}
