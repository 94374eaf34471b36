package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/wrench/internal/plugins"
	"github.com/dohr-michael/wrench/internal/skills"
)

// NewSkillsCommand returns the skills subcommand.
func NewSkillsCommand() *cli.Command {
	return &cli.Command{
		Name:  "skills",
		Usage: "List available skills",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the tool definitions sent to the model",
			},
		},
		Action: runSkills,
	}
}

func runSkills(_ context.Context, cmd *cli.Command) error {
	_, cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	registry, err := plugins.SetupRegistry(cfg, store)
	if err != nil {
		return fmt.Errorf("setup skills: %w", err)
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(registry.ToolDefinitions())
	}
	return writeSkills(os.Stdout, registry)
}

// writeSkills prints one line per skill in registration order.
func writeSkills(out io.Writer, registry *skills.Registry) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPARAMS\tDESCRIPTION")
	for _, s := range registry.All() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, paramSummary(s.Params), s.Description)
	}
	return w.Flush()
}

func paramSummary(params []skills.Param) string {
	if len(params) == 0 {
		return "-"
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
		if p.Optional {
			names[i] += "?"
		}
	}
	return strings.Join(names, ", ")
}
