package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dohr-michael/wrench/internal/config"
)

func TestInitHome(t *testing.T) {
	root := filepath.Join(t.TempDir(), ".wrench")

	created, err := initHome(root)
	if err != nil {
		t.Fatalf("initHome: %v", err)
	}
	if len(created) != 4 {
		t.Errorf("expected 4 created paths, got %v", created)
	}

	info, err := os.Stat(filepath.Join(root, ".env"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf(".env mode = %v, want 0600", info.Mode().Perm())
	}

	created, err = initHome(root)
	if err != nil {
		t.Fatalf("second initHome: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("second run should create nothing, got %v", created)
	}
}

func TestInitHome_DefaultConfigLoads(t *testing.T) {
	root := t.TempDir()
	if _, err := initHome(root); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(filepath.Join(root, "config.jsonc"))
	if err != nil {
		t.Fatalf("default config does not load: %v", err)
	}
	if cfg.Agent.Model != "big-pickle" {
		t.Errorf("model = %q, want big-pickle", cfg.Agent.Model)
	}
	if cfg.Skills.HomeAssistant.TokenEnv != "HA_TOKEN" {
		t.Errorf("token env = %q, want HA_TOKEN", cfg.Skills.HomeAssistant.TokenEnv)
	}
}
