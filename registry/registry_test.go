package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/agentgate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// namedAgent is a minimal core.Agent used to distinguish constructors in tests.
type namedAgent struct{ name string }

func (a *namedAgent) Name() string { return a.name }

func (a *namedAgent) Run(context.Context, string) (*core.Reply, error) {
	return &core.Reply{Content: a.name}, nil
}

func (a *namedAgent) RunStream(context.Context, string) (<-chan core.StreamEvent, <-chan error) {
	events := make(chan core.StreamEvent)
	errs := make(chan error, 1)
	close(events)
	close(errs)
	return events, errs
}

func constructorFor(name string) Constructor {
	return func(string, *core.ConversationContext) (core.Agent, error) {
		return &namedAgent{name: name}, nil
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := New()
	r.Register("passthrough", constructorFor("passthrough"))

	c, ok := r.Lookup("passthrough")
	require.True(t, ok)

	agent, err := c("", core.NewConversationContext())
	require.NoError(t, err)
	assert.Equal(t, "passthrough", agent.Name())

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistry_ReRegistrationOverwrites(t *testing.T) {
	r := New()
	r.Register("demo", constructorFor("first"))
	r.Register("other", constructorFor("other"))
	r.Register("demo", constructorFor("second"))

	c, ok := r.Lookup("demo")
	require.True(t, ok)

	agent, err := c("", core.NewConversationContext())
	require.NoError(t, err)
	assert.Equal(t, "second", agent.Name())

	// Overwriting keeps the original listing position.
	assert.Equal(t, []string{"demo", "other"}, r.Names())
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_NamesInRegistrationOrder(t *testing.T) {
	r := New()
	for _, name := range []string{"c", "a", "b"} {
		r.Register(name, constructorFor(name))
	}
	assert.Equal(t, []string{"c", "a", "b"}, r.Names())
}

func TestRegistry_LoadRunsPlugins(t *testing.T) {
	r := New()
	err := r.Load(
		func(r *Registry) error { r.Register("one", constructorFor("one")); return nil },
		func(r *Registry) error { r.Register("two", constructorFor("two")); return nil },
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, r.Names())
}

func TestRegistry_LoadFailsFast(t *testing.T) {
	r := New()
	boom := errors.New("bad plugin")

	err := r.Load(
		func(r *Registry) error { r.Register("one", constructorFor("one")); return nil },
		func(r *Registry) error { return boom },
		func(r *Registry) error { r.Register("never", constructorFor("never")); return nil },
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	// The failing plugin aborts loading; later plugins never run.
	assert.Equal(t, []string{"one"}, r.Names())
}

func TestRegistry_LoadRejectsNilPlugin(t *testing.T) {
	r := New()
	err := r.Load(nil)
	assert.Error(t, err)
}
