package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildContext_Empty(t *testing.T) {
	ctx := BuildContext(nil, "passthrough")
	assert.NotNil(t, ctx)
	assert.Equal(t, 0, ctx.Len())
	assert.Empty(t, ctx.Messages())

	ctx = BuildContext([]HistoryEntry{}, "passthrough")
	assert.Equal(t, 0, ctx.Len())
}

func TestBuildContext_RoleMapping(t *testing.T) {
	history := []HistoryEntry{
		{Role: "system", Content: "be terse"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}

	ctx := BuildContext(history, "passthrough")
	msgs := ctx.Messages()

	assert.Len(t, msgs, 3)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.Equal(t, RoleAssistant, msgs[2].Role)
	for _, m := range msgs {
		assert.Equal(t, "passthrough", m.Source)
	}
}

func TestBuildContext_DropsUnknownRoles(t *testing.T) {
	history := []HistoryEntry{
		{Role: "user", Content: "first"},
		{Role: "tool", Content: "dropped"},
		{Role: "function", Content: "dropped"},
		{Role: "", Content: "dropped"},
		{Role: "assistant", Content: "second"},
	}

	ctx := BuildContext(history, "demo")
	msgs := ctx.Messages()

	assert.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content)
}

func TestBuildContext_PreservesOrder(t *testing.T) {
	history := []HistoryEntry{
		{Role: "user", Content: "a"},
		{Role: "assistant", Content: "b"},
		{Role: "user", Content: "c"},
		{Role: "assistant", Content: "d"},
	}

	ctx := BuildContext(history, "demo")
	contents := make([]string, 0, ctx.Len())
	for _, m := range ctx.Messages() {
		contents = append(contents, m.Content)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, contents)
}

func TestConversationContext_MessagesIsCopy(t *testing.T) {
	ctx := NewConversationContext()
	ctx.Add(Message{Role: RoleUser, Content: "original"})

	msgs := ctx.Messages()
	msgs[0].Content = "mutated"

	assert.Equal(t, "original", ctx.Messages()[0].Content)
}

func TestTokenUsage_Add(t *testing.T) {
	u := TokenUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5}
	u.Add(TokenUsage{PromptTokens: 1, CompletionTokens: 4})

	assert.Equal(t, 4, u.PromptTokens)
	assert.Equal(t, 6, u.CompletionTokens)
	assert.Equal(t, 10, u.TotalTokens)
}
