// Package agent runs the per-turn reasoning loop: persist the user message,
// assemble context, call the model, execute tool calls and persist the reply.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dohr-michael/wrench/internal/events"
	"github.com/dohr-michael/wrench/internal/memory"
	"github.com/dohr-michael/wrench/internal/models"
	"github.com/dohr-michael/wrench/internal/skills"
)

const (
	DefaultMaxTokens   = 4096
	DefaultTemperature = 0.7
)

// Config holds the generation settings. The model may change between turns.
type Config struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the default generation settings.
func DefaultConfig() Config {
	return Config{
		Model:       models.DefaultModel,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}
}

// Memory is the conversation store used by the agent.
type Memory interface {
	SaveMessage(ctx context.Context, msg memory.Message) error
	GetContext(ctx context.Context, query string) (*memory.Context, error)
}

// Options configures an Agent.
type Options struct {
	Generator   models.Generator
	Skills      *skills.Registry
	Memory      Memory
	Config      Config
	Persona     string
	Environment []string
	Bus         *events.Bus
}

// Agent processes one user turn at a time.
type Agent struct {
	gen         models.Generator
	skills      *skills.Registry
	memory      Memory
	persona     string
	environment []string
	bus         *events.Bus

	turnMu sync.Mutex

	cfgMu sync.RWMutex
	cfg   Config
}

// New creates an agent.
func New(opts Options) (*Agent, error) {
	if opts.Generator == nil {
		return nil, errors.New("agent: generator is required")
	}
	if opts.Skills == nil {
		return nil, errors.New("agent: skill registry is required")
	}
	if opts.Memory == nil {
		return nil, errors.New("agent: memory is required")
	}

	cfg := opts.Config
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}

	return &Agent{
		gen:         opts.Generator,
		skills:      opts.Skills,
		memory:      opts.Memory,
		persona:     opts.Persona,
		environment: opts.Environment,
		bus:         opts.Bus,
		cfg:         cfg,
	}, nil
}

// Config returns the current generation settings.
func (a *Agent) Config() Config {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.cfg
}

// SetModel switches the model used by subsequent turns.
func (a *Agent) SetModel(model string) {
	a.cfgMu.Lock()
	defer a.cfgMu.Unlock()
	a.cfg.Model = model
}

// Process runs one turn and returns the reply. Provider errors are returned
// unchanged; in that case only the user message has been persisted. Skill
// failures never abort the turn and are rendered inline.
func (a *Agent) Process(ctx context.Context, userText string) (string, error) {
	a.turnMu.Lock()
	defer a.turnMu.Unlock()

	cfg := a.Config()
	start := time.Now()
	a.bus.Publish(events.TurnStartedPayload{Model: cfg.Model, Content: userText})

	if err := a.memory.SaveMessage(ctx, memory.Message{
		Role:      memory.RoleUser,
		Content:   userText,
		Timestamp: time.Now(),
	}); err != nil {
		return "", a.fail(cfg.Model, fmt.Errorf("save user message: %w", err))
	}

	mctx, err := a.memory.GetContext(ctx, userText)
	if err != nil {
		return "", a.fail(cfg.Model, fmt.Errorf("load context: %w", err))
	}

	req := models.Request{
		Model: cfg.Model,
		System: BuildSystemPrompt(PromptContext{
			Persona:     a.persona,
			Environment: a.environment,
			Skills:      a.skills.All(),
			Facts:       mctx.RelevantFacts,
		}),
		Messages:    toModelMessages(mctx.RecentMessages),
		Tools:       a.tools(),
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}

	resp, err := a.gen.Generate(ctx, req)
	if err != nil {
		slog.Warn("agent: generate failed", "model", cfg.Model, "error", err)
		return "", a.fail(cfg.Model, err)
	}

	calls := resp.ToolCalls
	structured := len(calls) > 0
	if !structured && HasToolCallMarkers(resp.Text) {
		if call, ok := ParseTextToolCall(resp.Text); ok {
			slog.Debug("agent: recovered tool call from text", "tool", call.Name)
			a.bus.Publish(events.ToolRecoveredPayload{Name: call.Name, Text: resp.Text})
			calls = []models.ToolCall{call}
		}
	}

	reply := resp.Text
	if len(calls) > 0 {
		reply = strings.Join(a.runTools(ctx, calls), "\n\n")
		if narration := strings.TrimSpace(resp.Text); structured && narration != "" {
			reply = narration + "\n\n" + reply
		}
	}

	if err := a.memory.SaveMessage(ctx, memory.Message{
		Role:      memory.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now(),
	}); err != nil {
		return "", a.fail(cfg.Model, fmt.Errorf("save assistant message: %w", err))
	}

	slog.Debug("agent: turn completed",
		"model", cfg.Model,
		"tool_calls", len(calls),
		"duration", time.Since(start),
	)
	a.bus.Publish(events.TurnCompletedPayload{
		Model:     cfg.Model,
		Reply:     reply,
		ToolCalls: len(calls),
		Duration:  time.Since(start),
	})
	return reply, nil
}

// fail publishes the terminal event of a turn that did not complete.
func (a *Agent) fail(model string, err error) error {
	a.bus.Publish(events.TurnFailedPayload{Model: model, Error: err.Error()})
	return err
}

// runTools executes calls sequentially, in order, and renders each result.
func (a *Agent) runTools(ctx context.Context, calls []models.ToolCall) []string {
	outputs := make([]string, 0, len(calls))
	for _, call := range calls {
		a.bus.Publish(events.ToolCalledPayload{CallID: call.ID, Name: call.Name, Arguments: call.Input})

		start := time.Now()
		res := a.skills.Execute(ctx, call.Name, call.Input)
		slog.Debug("agent: tool executed",
			"tool", call.Name,
			"success", res.Success,
			"duration", time.Since(start),
		)
		a.bus.Publish(events.ToolCompletedPayload{
			CallID:   call.ID,
			Name:     call.Name,
			Success:  res.Success,
			Output:   res.Output,
			Error:    res.Error,
			Duration: time.Since(start),
		})

		outputs = append(outputs, renderResult(res))
	}
	return outputs
}

func renderResult(res skills.Result) string {
	if !res.Success {
		return "Error: " + res.Error
	}
	if res.Output == "" {
		return "(no output)"
	}
	return res.Output
}

func (a *Agent) tools() []models.Tool {
	defs := a.skills.ToolDefinitions()
	tools := make([]models.Tool, 0, len(defs))
	for _, d := range defs {
		tools = append(tools, models.Tool{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema.AsMap(),
		})
	}
	return tools
}

func toModelMessages(msgs []memory.Message) []models.Message {
	out := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		role := models.RoleUser
		if m.Role == memory.RoleAssistant {
			role = models.RoleAssistant
		}
		out = append(out, models.Message{Role: role, Content: m.Content})
	}
	return out
}
