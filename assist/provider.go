// Package assist is the chat-completion layer: the Provider abstraction, an
// OpenAI-compatible implementation and a rate-limiting wrapper.
//
// Providers are stateless with respect to the conversation. Callers send the
// full ordered message history on every request.
package assist

import "context"

// Role identifies the sender of a message in the chat conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the chat conversation sent to the LLM.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is one chat completion call: the model to use, the full ordered
// conversation and the sampling temperature.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
}

// Response holds the LLM's reply along with token usage metadata for that
// single call. Message is returned exactly as the backend produced it.
type Response struct {
	Message          Message
	PromptTokens     int
	CompletionTokens int
}

// Provider is the interface for LLM backends.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}
