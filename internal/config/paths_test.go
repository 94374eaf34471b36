package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWrenchPath_Default(t *testing.T) {
	t.Setenv("WRENCH_PATH", "")

	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatal(err)
	}

	got := WrenchPath()
	want := filepath.Join(home, ".wrench")
	if got != want {
		t.Errorf("WrenchPath() = %q, want %q", got, want)
	}
}

func TestWrenchPath_EnvOverride(t *testing.T) {
	t.Setenv("WRENCH_PATH", "/tmp/custom-wrench")

	if got := WrenchPath(); got != "/tmp/custom-wrench" {
		t.Errorf("WrenchPath() = %q, want /tmp/custom-wrench", got)
	}
}

func TestDerivedPaths(t *testing.T) {
	t.Setenv("WRENCH_PATH", "/tmp/test-wrench")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"dotenv", DotenvPath(), "/tmp/test-wrench/.env"},
		{"logs", LogsDir(), "/tmp/test-wrench/logs"},
		{"memory", MemoryPath(), "/tmp/test-wrench/memory.db"},
		{"skills", SkillsDir(), "/tmp/test-wrench/skills"},
		{"persona", PersonaPath(), "/tmp/test-wrench/PERSONA.md"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WRENCH_PATH", dir)

	if got, want := ConfigPath(), filepath.Join(dir, "config.jsonc"); got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}

	yml := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(yml, []byte("agent: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := ConfigPath(); got != yml {
		t.Errorf("ConfigPath() = %q, want %q", got, yml)
	}

	jsonc := filepath.Join(dir, "config.jsonc")
	if err := os.WriteFile(jsonc, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := ConfigPath(); got != jsonc {
		t.Errorf("jsonc should win, got %q", got)
	}
}
