package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/wrench/internal/agent"
	"github.com/dohr-michael/wrench/internal/config"
	"github.com/dohr-michael/wrench/internal/logging"
	"github.com/dohr-michael/wrench/internal/models"
	"github.com/dohr-michael/wrench/internal/skills"
)

// NewChatCommand returns the chat subcommand.
func NewChatCommand() *cli.Command {
	return &cli.Command{
		Name:   "chat",
		Usage:  "Start an interactive session (default)",
		Action: runChat,
	}
}

func runChat(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	reloader := config.NewReloader(a.configPath, config.DotenvPath(), a.cfg)
	configured := a.cfg.Agent.Model
	reloader.OnReload(func(cfg *config.Config) {
		// A model picked with --model or /model survives reloads that leave
		// agent.model alone.
		if cfg.Agent.Model != configured {
			configured = cfg.Agent.Model
			a.agent.SetModel(cfg.Agent.Model)
		}
		if !cmd.Bool("debug") {
			logging.Setup(logging.ParseLevel(cfg.Log.Level))
		}
	})

	r := newRenderer(os.Stdout)
	s := &chatSession{
		agent:    a.agent,
		registry: a.registry,
		reload:   reloader.Reload,
		in:       os.Stdin,
		out:      os.Stdout,
		render:   r.Print,
	}
	return s.run(ctx)
}

// chatAgent is the part of the agent used by the REPL.
type chatAgent interface {
	Process(ctx context.Context, text string) (string, error)
	Config() agent.Config
	SetModel(model string)
}

// chatSession is a line-oriented REPL. Lines starting with "/" are local
// commands; everything else is one agent turn.
type chatSession struct {
	agent    chatAgent
	registry *skills.Registry
	reload   func() ([]string, error)
	in       io.Reader
	out      io.Writer
	render   func(string)
}

const chatHelp = `Commands:
  /model [id]   show or switch the model
  /models       list known models
  /skills       list available skills
  /reload       reload .env and config
  /help         show this help
  /exit, /quit  leave`

func (s *chatSession) run(ctx context.Context) error {
	fmt.Fprintf(s.out, "wrench %s (model %s). Type /help for commands.\n", Version, s.agent.Config().Model)

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(s.out, "\n> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := s.command(line); quit {
				return nil
			}
			continue
		}

		reply, err := s.agent.Process(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			msg := models.Describe(err)
			if models.IsRetryable(err) {
				msg += " (temporary, try again)"
			}
			fmt.Fprintf(s.out, "error: %s\n", msg)
			continue
		}
		s.render(reply)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	fmt.Fprintln(s.out)
	return nil
}

// command handles a slash command and reports whether the REPL should exit.
func (s *chatSession) command(line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/exit", "/quit":
		return true

	case "/help":
		fmt.Fprintln(s.out, chatHelp)

	case "/model":
		if arg == "" {
			fmt.Fprintf(s.out, "model: %s (%s)\n", s.agent.Config().Model, models.Classify(s.agent.Config().Model))
			return false
		}
		if _, ok := models.Lookup(arg); !ok {
			fmt.Fprintf(s.out, "warning: %s is not in the catalogue, using it anyway\n", arg)
		}
		s.agent.SetModel(arg)
		fmt.Fprintf(s.out, "model: %s (%s)\n", arg, models.Classify(arg))

	case "/models":
		if err := writeModels(s.out, s.agent.Config().Model); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}

	case "/skills":
		if err := writeSkills(s.out, s.registry); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}

	case "/reload":
		if s.reload == nil {
			fmt.Fprintln(s.out, "reload not available")
			return false
		}
		changes, err := s.reload()
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			return false
		}
		fmt.Fprintf(s.out, "reloaded (model %s)\n", s.agent.Config().Model)
		for _, c := range changes {
			if !liveSetting(c) {
				c += " (restart to apply)"
			}
			fmt.Fprintf(s.out, "  %s\n", c)
		}

	default:
		fmt.Fprintf(s.out, "unknown command %s, type /help\n", name)
	}
	return false
}

// liveSetting reports whether a reload change applies to the running
// session. Variables from .env always apply: credentials are read per call.
func liveSetting(change string) bool {
	return strings.HasPrefix(change, "agent.model:") || strings.HasPrefix(change, "log.level:")
}
