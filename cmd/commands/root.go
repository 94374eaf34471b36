package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/wrench/internal/config"
	"github.com/dohr-michael/wrench/internal/logging"
)

// Version is set at build time.
var Version = "dev"

// NewRootCommand returns the top-level CLI command. Without a subcommand it
// starts an interactive chat.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "wrench",
		Usage:   "Terse technical assistant for electronics and home automation",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "Model id (overrides agent.model)",
			},
		},
		Before: setupLogging,
		Action: runChat,
		Commands: []*cli.Command{
			NewChatCommand(),
			NewAskCommand(),
			NewSkillsCommand(),
			NewModelsCommand(),
			NewMemoryCommand(),
			NewMCPServeCommand(),
			NewInitCommand(),
		},
	}
}

// setupLogging installs the console logger. The level comes from --debug,
// then from log.level in the config.
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		logging.Setup(logging.ParseLevel("debug"))
		return ctx, nil
	}
	level := "info"
	if cfg, err := config.Load(cmd.String("config")); err == nil && cfg.Log.Level != "" {
		level = cfg.Log.Level
	}
	logging.Setup(logging.ParseLevel(level))
	return ctx, nil
}
