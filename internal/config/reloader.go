package config

import (
	"fmt"
	"log/slog"
	"sync"
)

// Reloader re-reads .env and the config file on demand and hands the new
// config to registered listeners.
type Reloader struct {
	configPath string
	dotenvPath string

	mu        sync.RWMutex
	current   *Config
	listeners []func(*Config)
}

// NewReloader creates a Reloader with the given initial config.
func NewReloader(configPath, dotenvPath string, initial *Config) *Reloader {
	return &Reloader{
		configPath: configPath,
		dotenvPath: dotenvPath,
		current:    initial,
	}
}

// Current returns the config in effect.
func (r *Reloader) Current() *Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// OnReload registers a callback invoked after each successful reload.
func (r *Reloader) OnReload(fn func(*Config)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Reload re-reads .env (overriding variables it defines) and the config
// file, then notifies listeners. It returns the settings that changed. On
// error the current config is kept and no listener runs.
func (r *Reloader) Reload() ([]string, error) {
	if err := ReloadDotenv(r.dotenvPath); err != nil {
		return nil, fmt.Errorf("reload dotenv: %w", err)
	}
	cfg, err := Load(r.configPath)
	if err != nil {
		return nil, fmt.Errorf("reload config: %w", err)
	}

	r.mu.Lock()
	changes := Diff(r.current, cfg)
	r.current = cfg
	listeners := append(([]func(*Config))(nil), r.listeners...)
	r.mu.Unlock()

	slog.Info("config: reloaded", "path", r.configPath, "changes", len(changes))
	for _, fn := range listeners {
		fn(cfg)
	}
	return changes, nil
}

// Diff lists the user-visible settings that differ between two configs, as
// "key: old -> new" lines.
func Diff(prev, next *Config) []string {
	if prev == nil {
		prev = &Config{}
	}
	fields := []struct {
		key        string
		prev, next any
	}{
		{"provider.base_url", prev.Provider.BaseURL, next.Provider.BaseURL},
		{"provider.api_key_env", prev.Provider.APIKeyEnv, next.Provider.APIKeyEnv},
		{"provider.timeout", prev.Provider.Timeout, next.Provider.Timeout},
		{"agent.model", prev.Agent.Model, next.Agent.Model},
		{"agent.max_tokens", prev.Agent.MaxTokens, next.Agent.MaxTokens},
		{"agent.temperature", prev.Agent.Temperature, next.Agent.Temperature},
		{"memory.window", prev.Memory.Window, next.Memory.Window},
		{"memory.fact_limit", prev.Memory.FactLimit, next.Memory.FactLimit},
		{"log.level", prev.Log.Level, next.Log.Level},
	}

	var out []string
	for _, f := range fields {
		if f.prev != f.next {
			out = append(out, fmt.Sprintf("%s: %v -> %v", f.key, f.prev, f.next))
		}
	}
	if prev.Provider.APIKey != next.Provider.APIKey {
		out = append(out, "provider.api_key: changed")
	}
	return out
}
