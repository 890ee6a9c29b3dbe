package core

import "context"

// Agent is the per-request processing unit constructed by a registry
// constructor. An Agent is bound to one conversation context and one pending
// user message; it exists only for the duration of a single request and is
// never shared across requests or goroutines.
//
// Implementations must:
//   - Respect context cancellation for graceful shutdown
//   - Treat the streaming event sequence as finite and non-restartable
//   - Close both channels returned by RunStream when production ends
type Agent interface {
	// Name returns the external identifier the agent was registered under.
	Name() string

	// Run executes the agent once against the pending user message and
	// returns the final reply. It may take arbitrarily long and must honor
	// ctx cancellation.
	Run(ctx context.Context, message string) (*Reply, error)

	// RunStream executes the agent in streaming mode. It returns:
	//   eventsCh - ordered stream of events (closed on completion)
	//   errorsCh - terminal error channel (size 1, closed after send/none)
	//
	// Events are delivered in production order and the sequence is consumed
	// exactly once. A FinalResponse event, if emitted, is the last meaningful
	// event; consumers stop reading after it.
	RunStream(ctx context.Context, message string) (<-chan StreamEvent, <-chan error)
}

// Reply is the terminal output of a run-once invocation.
type Reply struct {
	Content string      `json:"content"`
	Usage   *TokenUsage `json:"usage,omitempty"`
}

// TokenUsage captures token accounting for one model round trip. A missing
// usage block is treated as all zeros by consumers.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates counters from another usage block, recomputing the total.
func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens = u.PromptTokens + u.CompletionTokens
}
