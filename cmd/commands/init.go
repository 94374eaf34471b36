package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/wrench/internal/config"
)

// NewInitCommand returns the onboarding subcommand.
func NewInitCommand() *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Initialize the wrench home directory (~/.wrench)",
		Action: runInit,
	}
}

func runInit(_ context.Context, _ *cli.Command) error {
	created, err := initHome(config.WrenchPath())
	if err != nil {
		return err
	}
	if len(created) == 0 {
		fmt.Printf("%s is already set up. Nothing to do.\n", config.WrenchPath())
		return nil
	}
	for _, p := range created {
		fmt.Printf("  Created %s\n", p)
	}
	fmt.Println(initMessage(config.WrenchPath()))
	return nil
}

// initHome creates the home layout under root and returns the paths it
// created. Existing files are left untouched.
func initHome(root string) ([]string, error) {
	var created []string

	for _, d := range []string{root, filepath.Join(root, "skills")} {
		if _, err := os.Stat(d); err == nil {
			continue
		}
		if err := os.MkdirAll(d, 0o755); err != nil {
			return created, fmt.Errorf("create dir %s: %w", d, err)
		}
		created = append(created, d)
	}

	files := []struct {
		path    string
		content string
		mode    os.FileMode
	}{
		{filepath.Join(root, "config.jsonc"), defaultConfig, 0o644},
		{filepath.Join(root, ".env"), defaultDotenv, 0o600},
	}
	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil {
			continue
		}
		if err := os.WriteFile(f.path, []byte(f.content), f.mode); err != nil {
			return created, fmt.Errorf("write %s: %w", f.path, err)
		}
		created = append(created, f.path)
	}
	return created, nil
}

const defaultConfig = `{
	// wrench configuration
	// Environment overrides: WRENCH_AGENT__MODEL=claude-sonnet-4-5

	"provider": {
		"base_url": "https://opencode.ai/zen",
		"api_key_env": "OPENCODE_ZEN_API_KEY",
		"timeout": "120s"
	},

	"agent": {
		"model": "big-pickle",
		"max_tokens": 4096,
		"temperature": 0.7
		// "environment": ["Arduino Uno on /dev/ttyACM0"]
	},

	"memory": {
		"window": 20,
		"fact_limit": 10
	},

	"skills": {
		// "enabled": ["shell", "read_file", "git_status"],
		"shell_timeout": "30s",
		"home_assistant": {
			"url_env": "HA_URL",
			"token_env": "HA_TOKEN"
		}
	},

	"log": {
		"level": "info",
		"events": true
	}
}
`

const defaultDotenv = `# wrench environment variables
# Existing environment variables are never overridden.

# OPENCODE_ZEN_API_KEY=
# HA_URL=http://homeassistant.local:8123
# HA_TOKEN=
`

func initMessage(root string) string {
	return fmt.Sprintf(`
  Home set up at %s

  Next steps:
    1. Put your OPENCODE_ZEN_API_KEY in %s/.env
    2. Adjust %s/config.jsonc if needed
    3. Drop command skills (*.jsonc) in %s/skills
    4. Run: wrench
`, root, root, root, root)
}
