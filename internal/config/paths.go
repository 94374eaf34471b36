package config

import (
	"os"
	"path/filepath"
)

// WrenchPath returns the root directory for wrench data.
// It uses $WRENCH_PATH if set, otherwise defaults to ~/.wrench.
func WrenchPath() string {
	if v := os.Getenv("WRENCH_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".wrench")
	}
	return filepath.Join(home, ".wrench")
}

// ConfigPath returns the path to the config file. A YAML file is used when
// present and no JSONC file exists.
func ConfigPath() string {
	jsonc := filepath.Join(WrenchPath(), "config.jsonc")
	if _, err := os.Stat(jsonc); err == nil {
		return jsonc
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		p := filepath.Join(WrenchPath(), name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return jsonc
}

// DotenvPath returns the path to the .env file.
func DotenvPath() string {
	return filepath.Join(WrenchPath(), ".env")
}

// MemoryPath returns the default path of the memory database.
func MemoryPath() string {
	return filepath.Join(WrenchPath(), "memory.db")
}

// SkillsDir returns the default directory of command skills.
func SkillsDir() string {
	return filepath.Join(WrenchPath(), "skills")
}

// LogsDir returns the directory of the agent event logs.
func LogsDir() string {
	return filepath.Join(WrenchPath(), "logs")
}

// PersonaPath returns the path of the optional persona override.
func PersonaPath() string {
	return filepath.Join(WrenchPath(), "PERSONA.md")
}
