package core

// StreamEvent represents one unit of a streaming agent run. Concrete event
// types implement the unexported isStreamEvent marker enabling a closed set,
// so new event kinds are a compile-time decision for every consumer rather
// than a silently ignored runtime case.
type StreamEvent interface{ isStreamEvent() }

// TextChunk is an incremental fragment of the assistant's reply. Zero or more
// chunks precede a FinalResponse; their concatenation equals the final text
// for well-behaved producers, but consumers must not rely on that.
type TextChunk struct {
	Content string
}

// isStreamEvent implements the StreamEvent interface for TextChunk.
func (TextChunk) isStreamEvent() {}

// FinalResponse terminates a streaming run. Content carries the complete
// reply so that producers emitting no incremental chunks still deliver the
// answer exactly once. Usage is optional.
type FinalResponse struct {
	Content string
	Usage   *TokenUsage
}

// isStreamEvent implements the StreamEvent interface for FinalResponse.
func (FinalResponse) isStreamEvent() {}
