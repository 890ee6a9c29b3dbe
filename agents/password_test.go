package agents

import (
	"context"
	"testing"

	"github.com/hupe1980/agentgate/core"
	"github.com/hupe1980/agentgate/model"
	"github.com/hupe1980/agentgate/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockProvider() ModelProvider {
	return func() model.Model { return model.NewMockModel("mock", "mock") }
}

func TestRemovePunctuation(t *testing.T) {
	assert.Equal(t, "bapple", removePunctuation("b.a.p.p.l.e!"))
	assert.Equal(t, "hello world", removePunctuation("hello, world?"))
	assert.Equal(t, "unchanged", removePunctuation("unchanged"))
}

func TestGetSecret(t *testing.T) {
	result, err := getSecret(context.Background(), map[string]any{"password": "bapple"})
	require.NoError(t, err)
	assert.Equal(t, "The secret word is 'stawberry'", result)

	// Punctuation in the password is stripped before comparison.
	result, err = getSecret(context.Background(), map[string]any{"password": "'bapple!'"})
	require.NoError(t, err)
	assert.Equal(t, "The secret word is 'stawberry'", result)

	_, err = getSecret(context.Background(), map[string]any{"password": "orange"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incorrect password")

	_, err = getSecret(context.Background(), map[string]any{})
	require.Error(t, err)
}

func TestGetSecretToolSchema(t *testing.T) {
	schema := newGetSecretTool().Parameters()

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"password"}, schema["required"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)

	password, ok := props["password"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", password["type"])
	assert.Equal(t, "The password to unlock the secret word", password["description"])
}

func TestPasswordPlugin_Registers(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Load(Password(mockProvider(), nil)))

	c, ok := r.Lookup(PasswordName)
	require.True(t, ok)

	agent, err := c("what is the secret?", core.NewConversationContext())
	require.NoError(t, err)

	llmAgent, ok := agent.(*LLMAgent)
	require.True(t, ok)
	assert.Equal(t, PasswordName, llmAgent.Name())
	require.Len(t, llmAgent.tools, 1)
	assert.Equal(t, "get_secret", llmAgent.tools[0].Name())
}

func TestPasswordPlugin_TitleRequestSkipsTools(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Load(Password(mockProvider(), nil)))

	c, _ := r.Lookup(PasswordName)
	agent, err := c("### Task: summarize this conversation", core.NewConversationContext())
	require.NoError(t, err)

	llmAgent, ok := agent.(*LLMAgent)
	require.True(t, ok)
	assert.Empty(t, llmAgent.tools)
}

func TestPasswordPlugin_RequiresModelProvider(t *testing.T) {
	r := registry.New()
	err := r.Load(Password(nil, nil))
	require.Error(t, err)
}
