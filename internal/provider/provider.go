// Package provider defines the unified interface and shared types for all LLM providers.
// Each provider adapter (openai.go, anthropic.go) implements the Provider interface,
// normalizing vendor-specific streaming responses into a unified Event sequence.
package provider

import "context"

// ── Message types ────────────────────────────────────────────────────────────

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ValidRole reports whether r is one of the three conversation roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is a single message in the conversation history.
type Message struct {
	Role    Role
	Content string
}

// ── Request types ────────────────────────────────────────────────────────────

// ChatRequest is the unified request format sent to a provider.
// System-role messages travel inline in Messages; adapters that require a
// separate system field (Anthropic) hoist them out.
type ChatRequest struct {
	Model     string
	Messages  []Message
	MaxTokens int
}

// ── Event types (streaming output) ───────────────────────────────────────────

type EventType int

const (
	// EventTextDelta: incremental text output from the LLM, rendered in real time.
	EventTextDelta EventType = iota

	// EventDone: end of this message turn, includes token usage.
	EventDone

	// EventError: an error occurred.
	EventError
)

// Event is the unified streaming event emitted by a provider.
type Event struct {
	Type EventType

	// EventTextDelta
	TextDelta string

	// EventDone
	Usage *Usage

	// EventError
	Error error
}

// Usage records token consumption for an API call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// ── Provider interface ───────────────────────────────────────────────────────

// Provider is the unified interface for all LLM providers.
// Implementors are responsible for:
// 1. Converting the unified ChatRequest into the provider's API request format
// 2. Converting the provider's streaming response into a unified Event sequence
// 3. Handling provider-specific error codes
type Provider interface {
	// Chat initiates a streaming conversation.
	// The returned channel emits Events until EventDone or EventError, then closes.
	// The caller must fully consume the channel to avoid goroutine leaks.
	Chat(ctx context.Context, req *ChatRequest) (<-chan Event, error)

	// Name returns the provider identifier, e.g. "anthropic", "openai", "deepseek".
	Name() string

	// DefaultModel returns the default model.
	DefaultModel() string
}
