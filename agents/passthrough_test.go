package agents

import (
	"context"
	"testing"

	"github.com/hupe1980/agentgate/core"
	"github.com/hupe1980/agentgate/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassthroughPlugin_Registers(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Load(Passthrough(mockProvider(), nil)))

	c, ok := r.Lookup(PassthroughName)
	require.True(t, ok)

	agent, err := c("hi", core.NewConversationContext())
	require.NoError(t, err)
	assert.Equal(t, PassthroughName, agent.Name())

	llmAgent, ok := agent.(*LLMAgent)
	require.True(t, ok)
	assert.Equal(t, passthroughSystemMessage, llmAgent.systemMessage)
	assert.Empty(t, llmAgent.tools)
}

func TestPassthroughPlugin_RequiresModelProvider(t *testing.T) {
	r := registry.New()
	err := r.Load(Passthrough(nil, nil))
	require.Error(t, err)
}

func TestPassthroughAgent_RunWithMockModel(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Load(Passthrough(mockProvider(), nil)))

	c, _ := r.Lookup(PassthroughName)
	agent, err := c("hi", core.NewConversationContext())
	require.NoError(t, err)

	reply, err := agent.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: hi", reply.Content)
}
