package agentgate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentgate/core"
	"github.com/hupe1980/agentgate/registry"
)

type echoAgent struct {
	message string
}

func (a *echoAgent) Name() string { return "echo" }

func (a *echoAgent) Run(_ context.Context, message string) (*core.Reply, error) {
	return &core.Reply{Content: "echo: " + message}, nil
}

func (a *echoAgent) RunStream(_ context.Context, message string) (<-chan core.StreamEvent, <-chan error) {
	events := make(chan core.StreamEvent, 2)
	errs := make(chan error, 1)

	events <- core.TextChunk{Content: "echo: "}
	events <- core.FinalResponse{Content: "echo: " + message}
	close(events)
	close(errs)

	return events, errs
}

func echoPlugin() registry.Plugin {
	return func(r *registry.Registry) error {
		r.Register("echo", func(userMessage string, _ *core.ConversationContext) (core.Agent, error) {
			return &echoAgent{message: userMessage}, nil
		})

		return nil
	}
}

func TestNewLoadsPlugins(t *testing.T) {
	gate, err := New(func(o *Options) {
		o.Plugins = []registry.Plugin{echoPlugin()}
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"echo"}, gate.Registry().Names())
}

func TestNewFailsFastOnPluginError(t *testing.T) {
	_, err := New(func(o *Options) {
		o.Plugins = []registry.Plugin{
			func(*registry.Registry) error { return errors.New("boom") },
		}
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestComplete(t *testing.T) {
	gate, err := New(func(o *Options) {
		o.Plugins = []registry.Plugin{echoPlugin()}
	})
	require.NoError(t, err)

	reply, err := gate.Complete(context.Background(), "echo", "Hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "echo: Hi", reply.Content)

	_, err = gate.Complete(context.Background(), "ghost", "Hi", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestStream(t *testing.T) {
	gate, err := New(func(o *Options) {
		o.Plugins = []registry.Plugin{echoPlugin()}
	})
	require.NoError(t, err)

	events, errs, err := gate.Stream(context.Background(), "echo", "Hi", nil)
	require.NoError(t, err)

	var collected []core.StreamEvent
	for ev := range events {
		collected = append(collected, ev)
	}

	require.NoError(t, <-errs)
	require.Len(t, collected, 2)
	assert.Equal(t, core.FinalResponse{Content: "echo: Hi"}, collected[1])
}
