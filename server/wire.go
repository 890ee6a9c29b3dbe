package server

import "github.com/hupe1980/agentgate/core"

// ChatCompletionRequest is the inbound body of POST /v1/chat/completions.
// Unknown fields are ignored; absent messages are tolerated.
type ChatCompletionRequest struct {
	Model    string              `json:"model"`
	Messages []core.HistoryEntry `json:"messages"`
	Stream   bool                `json:"stream"`
}

// ChatMessage is the assistant message of a non-streaming completion choice.
type ChatMessage struct {
	Role    string  `json:"role"`
	Content string  `json:"content"`
	Refusal *string `json:"refusal"` // always null
}

// Choice is one completion choice; the gateway always emits exactly one.
type Choice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	Logprobs     any         `json:"logprobs"` // always null
	FinishReason string      `json:"finish_reason"`
}

// Usage is the OpenAI-shaped token usage block.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletion is the non-streaming completion envelope.
type ChatCompletion struct {
	ID                string   `json:"id"`
	Object            string   `json:"object"` // "chat.completion"
	Created           int64    `json:"created"`
	Model             string   `json:"model"`
	Choices           []Choice `json:"choices"`
	Usage             Usage    `json:"usage"`
	SystemFingerprint string   `json:"system_fingerprint"`
}

// ChunkDelta carries the incremental payload of one streaming chunk. An empty
// struct (stop frame) serializes as {}.
type ChunkDelta struct {
	Content *string `json:"content,omitempty"`
}

// ChunkChoice is one choice of a streaming chunk. FinishReason stays null
// until the stop frame.
type ChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

// ChatCompletionChunk is one unit of the streaming wire format.
type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"` // "chat.completion.chunk"
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

// ErrorResponse is the client-visible error body. Internal detail never
// travels through it.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ModelInfo describes one served model in the models listing.
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`   // "model"
	OwnedBy string `json:"owned_by"` // "agent"
}

// ModelList is the body of GET /v1/models.
type ModelList struct {
	Object string      `json:"object"` // "list"
	Data   []ModelInfo `json:"data"`
}
