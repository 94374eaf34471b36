package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/wrench/internal/models"
)

// NewModelsCommand returns the models subcommand.
func NewModelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "models",
		Usage: "List known gateway models",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return writeModels(os.Stdout, selectedModel(cmd, cfg))
		},
	}
}

// writeModels prints the catalogue, marking the current model with "*".
func writeModels(out io.Writer, current string) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tCATEGORY\tPROTOCOL")
	for _, m := range models.Catalog() {
		marker := " "
		if strings.EqualFold(m.ID, current) {
			marker = "*"
		}
		name := m.Name
		if m.Free {
			name += " (free)"
		}
		fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\n", marker, m.ID, name, m.Category, m.Protocol())
	}
	return w.Flush()
}
