// Package memory provides the conversation log and long-term fact store.
package memory

import (
	"context"
	"time"
)

// Role identifies who authored a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is an immutable conversation log entry.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Fact is a stored piece of long-term knowledge.
type Fact struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Context is the view of memory assembled for one turn.
type Context struct {
	RecentMessages []Message
	RelevantFacts  []Fact
}

// Store defines the interface for memory persistence.
type Store interface {
	SaveMessage(ctx context.Context, msg Message) error
	GetContext(ctx context.Context, query string) (*Context, error)
	SaveFact(ctx context.Context, content string) (bool, error)
}

const (
	// DefaultWindow is the number of recent messages included in a context.
	DefaultWindow = 20
	// DefaultFactLimit is the number of facts included in a context.
	DefaultFactLimit = 10
)
