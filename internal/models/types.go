// Package models normalizes "generate text with optional tools" requests
// across the wire protocols exposed by an OpenAI/Anthropic-compatible
// gateway. Every protocol is reduced to the same Request and Response shape.
package models

import "context"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single conversation entry sent to a provider.
type Message struct {
	Role    Role
	Content string
}

// Tool is a function the model may call. InputSchema is a JSON object schema
// with "type", "properties" and "required" keys.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]any
}

// Request is a provider-neutral generation request.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	Tools       []Tool
	MaxTokens   int
	Temperature float64
}

// Response is the normalized result of one provider round-trip.
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// Generator produces a single response for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}
