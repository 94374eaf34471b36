package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides. A double underscore
// separates nested keys: WRENCH_AGENT__MODEL sets agent.model.
const EnvPrefix = "WRENCH_"

// Load reads the config file at path (JSONC or YAML by extension), applies
// WRENCH_* overrides and fills defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	setDefaults(k)

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
				return nil, fmt.Errorf("load config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return JSONCParser()
	}
}

// envKey maps WRENCH_AGENT__MAX_TOKENS to agent.max_tokens. WRENCH_PATH is
// the home directory, not a config key.
func envKey(s string) string {
	if s == "WRENCH_PATH" {
		return ""
	}
	key := strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(key, "__", "."))
}

func setDefaults(k *koanf.Koanf) {
	k.Set("provider.base_url", "https://opencode.ai/zen")
	k.Set("provider.api_key_env", "OPENCODE_ZEN_API_KEY")
	k.Set("provider.timeout", "120s")

	k.Set("agent.model", "big-pickle")
	k.Set("agent.max_tokens", 4096)
	k.Set("agent.temperature", 0.7)

	k.Set("memory.window", 20)
	k.Set("memory.fact_limit", 10)

	k.Set("skills.shell_timeout", "30s")
	k.Set("skills.home_assistant.url_env", "HA_URL")
	k.Set("skills.home_assistant.token_env", "HA_TOKEN")
	k.Set("skills.home_assistant.timeout", "15s")

	k.Set("log.level", "info")
	k.Set("log.events", true)
}

// applyDefaults fills paths that depend on WRENCH_PATH and repairs values
// that were explicitly zeroed.
func applyDefaults(cfg *Config) {
	if cfg.Memory.Path == "" {
		cfg.Memory.Path = MemoryPath()
	}
	if cfg.Skills.Dir == "" {
		cfg.Skills.Dir = SkillsDir()
	}
	if cfg.Agent.MaxTokens <= 0 {
		cfg.Agent.MaxTokens = 4096
	}
	if cfg.Memory.Window <= 0 {
		cfg.Memory.Window = 20
	}
	if cfg.Memory.FactLimit <= 0 {
		cfg.Memory.FactLimit = 10
	}
	if cfg.Skills.HomeAssistant.URL == "" {
		if v := os.Getenv(cfg.Skills.HomeAssistant.URLEnv); cfg.Skills.HomeAssistant.URLEnv != "" && v != "" {
			cfg.Skills.HomeAssistant.URL = v
		} else {
			cfg.Skills.HomeAssistant.URL = "http://homeassistant.local:8123"
		}
	}
}
