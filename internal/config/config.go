// Package config loads wrench settings from the home directory: a JSONC or
// YAML config file, a .env file and WRENCH_* environment overrides.
package config

import "time"

// Config is the root configuration for wrench.
type Config struct {
	Provider ProviderConfig `koanf:"provider"`
	Agent    AgentConfig    `koanf:"agent"`
	Memory   MemoryConfig   `koanf:"memory"`
	Skills   SkillsConfig   `koanf:"skills"`
	Log      LogConfig      `koanf:"log"`
}

// ProviderConfig configures the model gateway.
type ProviderConfig struct {
	BaseURL   string        `koanf:"base_url"`
	APIKey    string        `koanf:"api_key"`     // direct key or ${VAR}
	APIKeyEnv string        `koanf:"api_key_env"` // default: OPENCODE_ZEN_API_KEY
	Timeout   time.Duration `koanf:"timeout"`
}

// AgentConfig holds generation settings.
type AgentConfig struct {
	Model       string   `koanf:"model"`
	MaxTokens   int      `koanf:"max_tokens"`
	Temperature float64  `koanf:"temperature"`
	Environment []string `koanf:"environment"` // workstation lines shown in the prompt
}

// MemoryConfig configures the conversation store.
type MemoryConfig struct {
	Path      string `koanf:"path"` // default: $WRENCH_PATH/memory.db
	Window    int    `koanf:"window"`
	FactLimit int    `koanf:"fact_limit"`
}

// SkillsConfig configures the skill registry.
type SkillsConfig struct {
	Enabled       []string            `koanf:"enabled"` // enabled skill names (empty = all)
	Dir           string              `koanf:"dir"`     // command skills (default: $WRENCH_PATH/skills)
	WorkDir       string              `koanf:"work_dir"`
	ShellTimeout  time.Duration       `koanf:"shell_timeout"`
	HomeAssistant HomeAssistantConfig `koanf:"home_assistant"`
}

// HomeAssistantConfig configures the Home Assistant skills.
type HomeAssistantConfig struct {
	URL      string        `koanf:"url"`
	URLEnv   string        `koanf:"url_env"`
	TokenEnv string        `koanf:"token_env"`
	Timeout  time.Duration `koanf:"timeout"`
}

// LogConfig configures the console logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Events bool   `koanf:"events"` // append agent events to $WRENCH_PATH/logs
}

// IsEnabled reports whether the named skill is enabled.
func (c SkillsConfig) IsEnabled(name string) bool {
	if len(c.Enabled) == 0 {
		return true
	}
	for _, n := range c.Enabled {
		if n == name {
			return true
		}
	}
	return false
}
