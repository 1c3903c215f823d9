package llm

import "encoding/json"

// Conversation roles understood by the provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleDeveloper = "developer"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // The message content

	// Raw holds the message exactly as the caller sent it. Decoded messages
	// are forwarded as Raw; Role and Content are a best-effort view of it.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the caller's message verbatim. It never fails on the
// message's shape: non-object values, extra fields and non-string content
// are the provider's to accept or reject.
func (m *Message) UnmarshalJSON(data []byte) error {
	*m = Message{Raw: append(json.RawMessage(nil), data...)}

	var fields struct {
		Role    json.RawMessage `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	m.Role = text(fields.Role)
	m.Content = text(fields.Content)
	return nil
}

// text returns raw as a string if it is a JSON string, else the JSON itself.
func text(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// WithSystemDirective returns a new conversation made of one system message
// carrying directive followed by messages in their original order.
// The messages slice is never modified.
func WithSystemDirective(directive string, messages []Message) []Message {
	out := make([]Message, 0, len(messages)+1)
	out = append(out, Message{Role: RoleSystem, Content: directive})
	return append(out, messages...)
}
