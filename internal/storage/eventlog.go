// Package storage persists agent activity outside the memory database.
package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dohr-michael/wrench/internal/events"
)

// record is the JSONL shape of one event.
type record struct {
	Seq       uint64           `json:"seq"`
	Type      events.EventType `json:"type"`
	Timestamp time.Time        `json:"ts"`
	Payload   events.Payload   `json:"payload"`
}

// EventLogger appends bus events to one JSONL file per day in dir.
type EventLogger struct {
	dir         string
	mu          sync.Mutex
	unsubscribe func()
}

// NewEventLogger creates an EventLogger subscribed to all bus events.
func NewEventLogger(dir string, bus *events.Bus) *EventLogger {
	el := &EventLogger{dir: dir}
	el.unsubscribe = bus.Subscribe(el.handleEvent)
	return el
}

// Close unsubscribes the logger from the event bus.
func (el *EventLogger) Close() {
	if el.unsubscribe != nil {
		el.unsubscribe()
	}
}

func (el *EventLogger) handleEvent(e events.Event) {
	if err := el.writeEvent(e); err != nil {
		slog.Debug("eventlog: write failed", "type", e.Type, "error", err)
	}
}

func (el *EventLogger) writeEvent(e events.Event) error {
	data, err := json.Marshal(record{
		Seq:       e.Seq,
		Type:      e.Type,
		Timestamp: e.Timestamp,
		Payload:   e.Payload,
	})
	if err != nil {
		return err
	}
	data = append(data, '\n')

	el.mu.Lock()
	defer el.mu.Unlock()

	if err := os.MkdirAll(el.dir, 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(el.LogPath(e.Timestamp), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(data)
	return err
}

// LogPath returns the file that holds events published at t.
func (el *EventLogger) LogPath(t time.Time) string {
	return filepath.Join(el.dir, t.Local().Format("2006-01-02")+".jsonl")
}
