package models

import "strings"

// Protocol is the wire format used to reach a model.
type Protocol string

const (
	ProtocolMessages        Protocol = "messages"
	ProtocolResponses       Protocol = "responses"
	ProtocolGemini          Protocol = "gemini"
	ProtocolChatCompletions Protocol = "chat_completions"
)

// Classify selects the protocol for a model identifier. It is total: unknown
// identifiers use chat completions.
func Classify(model string) Protocol {
	id := strings.ToLower(model)
	switch {
	case strings.HasPrefix(id, "claude-"):
		return ProtocolMessages
	case strings.HasPrefix(id, "gpt-"):
		return ProtocolResponses
	case strings.HasPrefix(id, "gemini-"):
		return ProtocolGemini
	default:
		return ProtocolChatCompletions
	}
}

// Wire returns the protocol actually spoken on the wire. The responses
// protocol is served through chat completions, which the gateway accepts for
// every gpt- model.
func (p Protocol) Wire() Protocol {
	if p == ProtocolResponses {
		return ProtocolChatCompletions
	}
	return p
}
