package core

// Role identifies the author of a conversation message. Only the three
// OpenAI-compatible roles are representable; history entries with any other
// role are dropped during context construction.
type Role string

const (
	// RoleSystem marks instructions injected by the operator or client.
	RoleSystem Role = "system"
	// RoleUser marks end-user turns.
	RoleUser Role = "user"
	// RoleAssistant marks prior model/agent replies.
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry of a conversation context. Source records
// which agent the context was assembled for, mirroring the message attribution
// the agents themselves use when emitting replies.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

// ConversationContext is the ordered prior-turn history handed to an agent
// constructor. Insertion order equals the chronological order of the input
// history. It is built fresh per request, owned exclusively by that request
// and discarded when the agent call completes.
type ConversationContext struct {
	messages []Message
}

// NewConversationContext creates an empty context.
func NewConversationContext() *ConversationContext {
	return &ConversationContext{}
}

// Add appends a message preserving insertion order.
func (c *ConversationContext) Add(msg Message) {
	c.messages = append(c.messages, msg)
}

// Messages returns a copy of the ordered history.
func (c *ConversationContext) Messages() []Message {
	msgs := c.messagesOrNil()
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Len returns the number of messages in the context.
func (c *ConversationContext) Len() int { return len(c.messagesOrNil()) }

func (c *ConversationContext) messagesOrNil() []Message {
	if c == nil {
		return nil
	}
	return c.messages
}

// HistoryEntry is the raw shape of one inbound history message before role
// filtering. Unknown fields in the transport payload are ignored upstream.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// roleTable is the fixed three-way mapping applied during context
// construction. Entries outside it are skipped, never rejected.
var roleTable = map[string]Role{
	"system":    RoleSystem,
	"user":      RoleUser,
	"assistant": RoleAssistant,
}

// BuildContext converts a client-supplied message history into an ordered
// conversation context for the named agent. An empty or nil history yields an
// empty context (not an error). Entries with an unrecognized role are silently
// dropped. No deduplication and no size limit are applied; unbounded history
// is the caller's responsibility.
func BuildContext(history []HistoryEntry, source string) *ConversationContext {
	ctx := NewConversationContext()
	for _, entry := range history {
		role, ok := roleTable[entry.Role]
		if !ok {
			continue
		}
		ctx.Add(Message{Role: role, Content: entry.Content, Source: source})
	}
	return ctx
}
