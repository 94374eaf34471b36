package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/wrench/internal/agent"
	"github.com/dohr-michael/wrench/internal/config"
	"github.com/dohr-michael/wrench/internal/events"
	"github.com/dohr-michael/wrench/internal/memory"
	"github.com/dohr-michael/wrench/internal/models"
	"github.com/dohr-michael/wrench/internal/plugins"
	"github.com/dohr-michael/wrench/internal/skills"
	"github.com/dohr-michael/wrench/internal/storage"
)

// app holds the components shared by the agent commands.
type app struct {
	configPath string
	cfg        *config.Config
	store      *memory.SQLiteStore
	registry   *skills.Registry
	agent      *agent.Agent
	eventLog   *storage.EventLogger
}

// loadConfig reads the config selected by the global --config flag.
func loadConfig(cmd *cli.Command) (string, *config.Config, error) {
	path := cmd.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		return path, nil, err
	}
	return path, cfg, nil
}

// selectedModel is the --model flag when given, else agent.model.
func selectedModel(cmd *cli.Command, cfg *config.Config) string {
	if model := cmd.String("model"); model != "" {
		return model
	}
	return cfg.Agent.Model
}

// openStore opens the memory database configured in cfg.
func openStore(cfg *config.Config) (*memory.SQLiteStore, error) {
	store, err := memory.Open(cfg.Memory.Path, memory.Options{
		Window:    cfg.Memory.Window,
		FactLimit: cfg.Memory.FactLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("open memory: %w", err)
	}
	return store, nil
}

// newApp wires config, memory, skills, gateway and agent.
func newApp(_ context.Context, cmd *cli.Command) (*app, error) {
	path, cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	registry, err := plugins.SetupRegistry(cfg, store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("setup skills: %w", err)
	}

	gw := models.NewGateway(gatewayConfig(cfg))
	bus := events.NewBus(256)
	bus.Subscribe(logEvent, events.EventToolCalled, events.EventToolCompleted, events.EventToolRecovered)
	var eventLog *storage.EventLogger
	if cfg.Log.Events {
		eventLog = storage.NewEventLogger(config.LogsDir(), bus)
	}

	a, err := agent.New(agent.Options{
		Generator:   gw,
		Skills:      registry,
		Memory:      store,
		Config:      agentConfig(cfg, selectedModel(cmd, cfg)),
		Persona:     agent.LoadPersona(config.PersonaPath()),
		Environment: cfg.Agent.Environment,
		Bus:         bus,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	slog.Debug("app: ready",
		"model", a.Config().Model,
		"skills", len(registry.Names()),
		"memory", cfg.Memory.Path,
	)

	return &app{
		configPath: path,
		cfg:        cfg,
		store:      store,
		registry:   registry,
		agent:      a,
		eventLog:   eventLog,
	}, nil
}

func (a *app) Close() error {
	if a.eventLog != nil {
		a.eventLog.Close()
	}
	return a.store.Close()
}

func gatewayConfig(cfg *config.Config) models.Config {
	return models.Config{
		BaseURL: cfg.Provider.BaseURL,
		Auth: models.Auth{
			APIKey:    cfg.Provider.APIKey,
			APIKeyEnv: cfg.Provider.APIKeyEnv,
		},
		Timeout: cfg.Provider.Timeout,
	}
}

func agentConfig(cfg *config.Config, model string) agent.Config {
	return agent.Config{
		Model:       model,
		MaxTokens:   cfg.Agent.MaxTokens,
		Temperature: cfg.Agent.Temperature,
	}
}

// logEvent mirrors tool activity to the debug log.
func logEvent(e events.Event) {
	switch p := e.Payload.(type) {
	case events.ToolCalledPayload:
		slog.Debug("tool: called", "name", p.Name, "call_id", p.CallID)
	case events.ToolCompletedPayload:
		slog.Debug("tool: completed", "name", p.Name, "success", p.Success, "duration", p.Duration)
	case events.ToolRecoveredPayload:
		slog.Debug("tool: recovered from text", "name", p.Name)
	}
}
