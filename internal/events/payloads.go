package events

import "time"

// Payload is the interface all typed payloads implement.
type Payload interface {
	EventType() EventType
}

// =============================================================================
// TURN EVENTS
// =============================================================================

type TurnStartedPayload struct {
	Model   string `json:"model"`
	Content string `json:"content"`
}

func (TurnStartedPayload) EventType() EventType { return EventTurnStarted }

type TurnCompletedPayload struct {
	Model     string        `json:"model"`
	Reply     string        `json:"reply"`
	ToolCalls int           `json:"tool_calls"`
	Duration  time.Duration `json:"duration"`
}

func (TurnCompletedPayload) EventType() EventType { return EventTurnCompleted }

type TurnFailedPayload struct {
	Model string `json:"model"`
	Error string `json:"error"`
}

func (TurnFailedPayload) EventType() EventType { return EventTurnFailed }

// =============================================================================
// TOOL EVENTS
// =============================================================================

type ToolCalledPayload struct {
	CallID    string         `json:"call_id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (ToolCalledPayload) EventType() EventType { return EventToolCalled }

type ToolCompletedPayload struct {
	CallID   string        `json:"call_id"`
	Name     string        `json:"name"`
	Success  bool          `json:"success"`
	Output   string        `json:"output"`
	Error    string        `json:"error"`
	Duration time.Duration `json:"duration"`
}

func (ToolCompletedPayload) EventType() EventType { return EventToolCompleted }

type ToolRecoveredPayload struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

func (ToolRecoveredPayload) EventType() EventType { return EventToolRecovered }
