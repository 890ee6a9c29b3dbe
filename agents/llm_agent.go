package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hupe1980/agentgate/core"
	"github.com/hupe1980/agentgate/logging"
	"github.com/hupe1980/agentgate/model"
	"github.com/hupe1980/agentgate/tool"
)

// eventBufferSize bounds the hand-off between the agent goroutine and the
// consumer so a slow client throttles production instead of growing a backlog.
const eventBufferSize = 32

// ModelProvider constructs the backend model client for a new agent instance.
// Constructors call it once per request so agents never share client state.
type ModelProvider func() model.Model

// LLMAgentOptions configures an LLMAgent instance.
//
// Use functional options with NewLLMAgent to override defaults.
type LLMAgentOptions struct {
	// SystemMessage is prepended to the conversation; empty means none.
	SystemMessage string
	// Tools exposed to the model for function calling.
	Tools []tool.Tool
	// MaxToolRounds bounds the generate / execute-tools loop.
	MaxToolRounds int
	// Logger for model and tool call diagnostics.
	Logger logging.Logger
}

// LLMAgent is a model-backed core.Agent bound to one conversation context and
// one pending user message. It supports:
//   - Plain conversation through an optional system prompt
//   - Function calling with registered tools, with a reflection round so the
//     model sees tool results before answering
//   - Streaming partial text for real-time responses
//
// An LLMAgent lives for a single request and is not safe for reuse.
type LLMAgent struct {
	name          string
	llm           model.Model
	history       *core.ConversationContext
	systemMessage string
	tools         []tool.Tool
	maxToolRounds int
	logger        logging.Logger
}

// NewLLMAgent creates a model-backed agent for one request.
//
// Defaults: no system message, no tools, 8 tool rounds, no-op logger.
func NewLLMAgent(name string, llm model.Model, history *core.ConversationContext, optFns ...func(o *LLMAgentOptions)) *LLMAgent {
	opts := LLMAgentOptions{
		MaxToolRounds: 8,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &LLMAgent{
		name:          name,
		llm:           llm,
		history:       history,
		systemMessage: opts.SystemMessage,
		tools:         opts.Tools,
		maxToolRounds: opts.MaxToolRounds,
		logger:        opts.Logger,
	}
}

// Name returns the agent's registered name.
func (a *LLMAgent) Name() string { return a.name }

// Run executes the agent once and returns the final reply with accumulated
// token usage across all model rounds.
func (a *LLMAgent) Run(ctx context.Context, message string) (*core.Reply, error) {
	return a.loop(ctx, message, false, nil)
}

// RunStream executes the agent in streaming mode. Partial model text is
// forwarded as TextChunk events; the terminal FinalResponse carries the full
// reply text and accumulated usage. Both channels are closed when production
// ends; the error channel receives at most one terminal error.
func (a *LLMAgent) RunStream(ctx context.Context, message string) (<-chan core.StreamEvent, <-chan error) {
	events := make(chan core.StreamEvent, eventBufferSize)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errs)

		emit := func(ev core.StreamEvent) bool {
			select {
			case <-ctx.Done():
				return false
			case events <- ev:
				return true
			}
		}

		reply, err := a.loop(ctx, message, true, emit)
		if err != nil {
			errs <- err
			return
		}
		emit(core.FinalResponse{Content: reply.Content, Usage: reply.Usage})
	}()

	return events, errs
}

// loop drives the generate / execute-tools cycle until the model returns a
// response without tool calls or the round limit is reached.
func (a *LLMAgent) loop(
	ctx context.Context,
	message string,
	stream bool,
	emit func(core.StreamEvent) bool,
) (*core.Reply, error) {
	messages := a.seedMessages(message)
	usage := &core.TokenUsage{}

	for round := 0; round <= a.maxToolRounds; round++ {
		final, err := a.generate(ctx, messages, stream, emit)
		if err != nil {
			return nil, err
		}
		if final.Usage != nil {
			usage.Add(*final.Usage)
		}

		if len(final.ToolCalls) == 0 {
			return &core.Reply{Content: final.Content, Usage: usage}, nil
		}

		messages = append(messages, model.Message{
			Role:      "assistant",
			Content:   final.Content,
			ToolCalls: final.ToolCalls,
		})
		for _, tc := range final.ToolCalls {
			messages = append(messages, a.executeToolCall(ctx, tc))
		}
	}

	return nil, fmt.Errorf("agent %q exceeded %d tool rounds", a.name, a.maxToolRounds)
}

// generate performs one model round, forwarding partial text when streaming,
// and returns the round's final response.
func (a *LLMAgent) generate(
	ctx context.Context,
	messages []model.Message,
	stream bool,
	emit func(core.StreamEvent) bool,
) (*model.Response, error) {
	req := model.Request{
		Messages: messages,
		Tools:    a.toolDefinitions(),
		Stream:   stream,
	}

	start := time.Now()
	respCh, errCh := a.llm.Generate(ctx, req)

	var final *model.Response
	for resp := range respCh {
		if resp.Partial {
			if resp.Content != "" && emit != nil {
				if !emit(core.TextChunk{Content: resp.Content}) {
					// Unblock the producer; adapters stop once they observe
					// the canceled context.
					for range respCh {
					}
					return nil, ctx.Err()
				}
			}
			continue
		}
		r := resp
		final = &r
	}
	if err := <-errCh; err != nil {
		a.logger.Error("agent.model.error", "agent", a.name, "model", a.llm.Info().Name, "error", err.Error())
		return nil, fmt.Errorf("model call failed: %w", err)
	}
	if final == nil {
		return nil, fmt.Errorf("model %q produced no final response", a.llm.Info().Name)
	}

	a.logger.Debug("agent.model.round",
		"agent", a.name,
		"model", a.llm.Info().Name,
		"tool_calls", len(final.ToolCalls),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return final, nil
}

// executeToolCall runs one requested tool and converts its result (or error)
// into a tool message. Execution errors are reported back to the model rather
// than failing the run, so it can recover or explain within the conversation.
func (a *LLMAgent) executeToolCall(ctx context.Context, tc model.ToolCall) model.Message {
	msg := model.Message{Role: "tool", ToolCallID: tc.ID}

	target := a.findTool(tc.Function.Name)
	if target == nil {
		a.logger.Warn("tool.call.unknown", "agent", a.name, "tool", tc.Function.Name)
		msg.Content = fmt.Sprintf("Error: tool %q is not available", tc.Function.Name)
		return msg
	}

	var args map[string]any
	if len(tc.Function.Arguments) > 0 {
		if err := json.Unmarshal(tc.Function.Arguments, &args); err != nil {
			a.logger.Warn("tool.call.bad_arguments", "agent", a.name, "tool", tc.Function.Name, "error", err.Error())
			msg.Content = fmt.Sprintf("Error: invalid tool arguments: %v", err)
			return msg
		}
	}

	a.logger.Debug("tool.call.start", "agent", a.name, "tool", tc.Function.Name, "fc_id", tc.ID)
	start := time.Now()
	result, err := target.Call(ctx, args)
	if err != nil {
		a.logger.Error("tool.call.error", "agent", a.name, "tool", tc.Function.Name, "error", err.Error())
		msg.Content = fmt.Sprintf("Error: %v", err)
		return msg
	}
	a.logger.Info("tool.call.success", "agent", a.name, "tool", tc.Function.Name, "duration_ms", time.Since(start).Milliseconds())

	msg.Content = stringifyResult(result)
	return msg
}

func (a *LLMAgent) findTool(name string) tool.Tool {
	for _, t := range a.tools {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// toolDefinitions exposes the registered tools to the model provider.
func (a *LLMAgent) toolDefinitions() []model.ToolDefinition {
	if len(a.tools) == 0 {
		return nil
	}
	defs := make([]model.ToolDefinition, len(a.tools))
	for i, t := range a.tools {
		defs[i] = model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		}
	}
	return defs
}

// seedMessages assembles the provider-bound conversation: optional system
// prompt, prior history, then the pending user turn. The user turn is always
// appended, even when empty, mirroring the inbound protocol.
func (a *LLMAgent) seedMessages(message string) []model.Message {
	history := a.history.Messages()
	messages := make([]model.Message, 0, len(history)+2)

	if a.systemMessage != "" {
		messages = append(messages, model.Message{Role: "system", Content: a.systemMessage})
	}
	for _, m := range history {
		messages = append(messages, model.Message{Role: string(m.Role), Content: m.Content})
	}
	return append(messages, model.Message{Role: "user", Content: message})
}

func stringifyResult(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
