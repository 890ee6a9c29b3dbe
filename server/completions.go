package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/agentgate/core"
)

const (
	errInternal          = "Internal server error."
	errInternalStreaming = "Internal server error (streaming)."
)

// newCompletionID returns a fresh "chatcmpl-" identifier with a 32-hex tail.
func newCompletionID() string {
	return "chatcmpl-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// handleChatCompletions serves POST /v1/chat/completions. The model field
// selects the agent; the trailing user message becomes the agent input and
// the remaining messages become its conversation history.
func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Error("failed to decode request body", "error", err)
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body."})

		return
	}

	userMessage, history := splitConversation(req.Messages)

	s.logger.Info("chat completion requested", "model", req.Model, "stream", req.Stream, "history", len(history))

	construct, ok := s.registry.Lookup(req.Model)
	if !ok {
		s.logger.Error("model not supported", "model", req.Model)
		s.writeJSON(w, http.StatusOK, ErrorResponse{Error: fmt.Sprintf("Model '%s' not supported.", req.Model)})

		return
	}

	agent, err := construct(userMessage, core.BuildContext(history, req.Model))
	if err != nil {
		s.logger.Error("failed to construct agent", "model", req.Model, "error", err)
		s.writeJSON(w, http.StatusOK, ErrorResponse{Error: errInternal})

		return
	}

	if req.Stream {
		s.streamResponse(w, r, agent, userMessage, req.Model)
		return
	}

	s.completeResponse(w, r, agent, userMessage, req.Model)
}

// splitConversation pops the trailing user message off the history. Requests
// whose last message is not a user turn keep their history intact and run
// with an empty input.
func splitConversation(messages []core.HistoryEntry) (string, []core.HistoryEntry) {
	if n := len(messages); n > 0 && messages[n-1].Role == string(core.RoleUser) {
		return messages[n-1].Content, messages[:n-1]
	}

	return "", messages
}

// completeResponse runs the agent to completion and writes a single
// chat.completion envelope.
func (s *Server) completeResponse(w http.ResponseWriter, r *http.Request, agent core.Agent, message, modelName string) {
	reply, err := agent.Run(r.Context(), message)
	if err != nil {
		s.logger.Error("agent run failed", "agent", agent.Name(), "error", err)
		s.writeJSON(w, http.StatusOK, ErrorResponse{Error: errInternal})

		return
	}

	usage := Usage{}
	if reply.Usage != nil {
		usage = Usage{
			PromptTokens:     reply.Usage.PromptTokens,
			CompletionTokens: reply.Usage.CompletionTokens,
			TotalTokens:      reply.Usage.TotalTokens,
		}
	}

	completion := ChatCompletion{
		ID:      newCompletionID(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   modelName,
		Choices: []Choice{{
			Index: 0,
			Message: ChatMessage{
				Role:    string(core.RoleAssistant),
				Content: reply.Content,
			},
			FinishReason: "stop",
		}},
		Usage:             usage,
		SystemFingerprint: systemFingerprint,
	}

	s.writeJSON(w, http.StatusOK, completion)
}

// streamResponse runs the agent's event stream and writes SSE chunk frames.
// Every response ends with a data: [DONE] sentinel, including error paths.
func (s *Server) streamResponse(w http.ResponseWriter, r *http.Request, agent core.Agent, message, modelName string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger.Error("response writer does not support flushing")
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: errInternal})

		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	completionID := newCompletionID()
	events, errs := agent.RunStream(r.Context(), message)

	gotChunk := false

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("client disconnected", "agent", agent.Name())
			return
		case event, open := <-events:
			if !open {
				if err := <-errs; err != nil {
					s.logger.Error("agent stream failed", "agent", agent.Name(), "error", err)
					s.writeFrame(w, flusher, ErrorResponse{Error: errInternalStreaming})
					s.writeDone(w, flusher)
				}

				// An agent that ends its stream without a FinalResponse and
				// without an error leaves the response truncated: no stop
				// frame, no sentinel. Conforming agents never do this.
				return
			}

			switch e := event.(type) {
			case core.TextChunk:
				s.writeFrame(w, flusher, contentChunk(completionID, modelName, e.Content))
				gotChunk = true
			case core.FinalResponse:
				content := e.Content
				if gotChunk {
					content = ""
				}

				s.writeFrame(w, flusher, contentChunk(completionID, modelName, content))
				s.writeFrame(w, flusher, stopChunk(completionID, modelName))
				s.writeDone(w, flusher)

				return
			}
		}
	}
}

// contentChunk builds a chunk frame carrying a content delta.
func contentChunk(id, modelName, content string) ChatCompletionChunk {
	return ChatCompletionChunk{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Model:   modelName,
		Choices: []ChunkChoice{{
			Index: 0,
			Delta: ChunkDelta{Content: &content},
		}},
	}
}

// stopChunk builds the terminal chunk frame with an empty delta and a stop
// finish reason.
func stopChunk(id, modelName string) ChatCompletionChunk {
	finishReason := "stop"

	return ChatCompletionChunk{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Model:   modelName,
		Choices: []ChunkChoice{{
			Index:        0,
			Delta:        ChunkDelta{},
			FinishReason: &finishReason,
		}},
	}
}

// writeFrame writes one SSE data frame and flushes it to the client.
func (s *Server) writeFrame(w http.ResponseWriter, flusher http.Flusher, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to marshal stream frame", "error", err)
		return
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		s.logger.Error("failed to write stream frame", "error", err)
		return
	}

	flusher.Flush()
}

// writeDone writes the [DONE] sentinel that terminates every SSE response.
func (s *Server) writeDone(w http.ResponseWriter, flusher http.Flusher) {
	if _, err := io.WriteString(w, "data: [DONE]\n\n"); err != nil {
		s.logger.Error("failed to write stream sentinel", "error", err)
		return
	}

	flusher.Flush()
}
