package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Compile-time assertions that the event set is closed over exactly these types.
var (
	_ StreamEvent = TextChunk{}
	_ StreamEvent = FinalResponse{}
)

func TestStreamEvent_TypeSwitch(t *testing.T) {
	events := []StreamEvent{
		TextChunk{Content: "par"},
		TextChunk{Content: "tial"},
		FinalResponse{Content: "partial", Usage: &TokenUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5}},
	}

	var chunks int
	var final *FinalResponse
	for _, ev := range events {
		switch e := ev.(type) {
		case TextChunk:
			chunks++
		case FinalResponse:
			final = &e
		}
	}

	assert.Equal(t, 2, chunks)
	if assert.NotNil(t, final) {
		assert.Equal(t, "partial", final.Content)
		assert.Equal(t, 5, final.Usage.TotalTokens)
	}
}
