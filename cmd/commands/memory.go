package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/wrench/internal/memory"
)

// NewMemoryCommand returns the memory subcommand.
func NewMemoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "memory",
		Usage: "Inspect the conversation log and stored facts",
		Commands: []*cli.Command{
			{
				Name:   "recent",
				Usage:  "Show recent conversation messages",
				Flags:  []cli.Flag{limitFlag()},
				Action: withStore(runMemoryRecent),
			},
			{
				Name:   "facts",
				Usage:  "List stored facts, most recent first",
				Flags:  []cli.Flag{limitFlag()},
				Action: withStore(runMemoryFacts),
			},
			{
				Name:      "search",
				Usage:     "Search stored facts",
				ArgsUsage: "<query>",
				Flags:     []cli.Flag{limitFlag()},
				Action:    withStore(runMemorySearch),
			},
			{
				Name:      "remember",
				Usage:     "Store a fact",
				ArgsUsage: "<fact>",
				Action:    withStore(runMemoryRemember),
			},
			{
				Name:      "forget",
				Usage:     "Delete a fact",
				ArgsUsage: "<id>",
				Action:    withStore(runMemoryForget),
			},
		},
		DefaultCommand: "recent",
	}
}

func limitFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Usage:   "Maximum number of entries",
		Value:   20,
	}
}

type storeAction func(ctx context.Context, cmd *cli.Command, store *memory.SQLiteStore) error

// withStore opens the configured memory store around a subcommand.
func withStore(fn storeAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		_, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(ctx, cmd, store)
	}
}

func runMemoryRecent(ctx context.Context, cmd *cli.Command, store *memory.SQLiteStore) error {
	msgs, err := store.RecentMessages(ctx, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("recent messages: %w", err)
	}

	if len(msgs) == 0 {
		fmt.Println("No messages stored.")
		return nil
	}

	for _, m := range msgs {
		fmt.Printf("[%s] %s: %s\n", m.Timestamp.Local().Format("2006-01-02 15:04:05"), m.Role, m.Content)
	}
	return nil
}

func runMemoryFacts(ctx context.Context, cmd *cli.Command, store *memory.SQLiteStore) error {
	facts, err := store.RecentFacts(ctx, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("list facts: %w", err)
	}
	return printFacts(facts, "No facts stored.")
}

func runMemorySearch(ctx context.Context, cmd *cli.Command, store *memory.SQLiteStore) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("usage: wrench memory search <query>")
	}

	facts, err := store.SearchFacts(ctx, query, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return printFacts(facts, "No matching facts found.")
}

func runMemoryRemember(ctx context.Context, cmd *cli.Command, store *memory.SQLiteStore) error {
	fact := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if fact == "" {
		return fmt.Errorf("usage: wrench memory remember <fact>")
	}

	added, err := store.SaveFact(ctx, fact)
	if err != nil {
		return fmt.Errorf("remember: %w", err)
	}
	if !added {
		fmt.Println("Already known.")
		return nil
	}
	fmt.Println("Remembered.")
	return nil
}

func runMemoryForget(ctx context.Context, cmd *cli.Command, store *memory.SQLiteStore) error {
	arg := cmd.Args().First()
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("usage: wrench memory forget <id>")
	}

	if err := store.DeleteFact(ctx, id); err != nil {
		return fmt.Errorf("forget: %w", err)
	}

	fmt.Printf("Fact %d deleted.\n", id)
	return nil
}

func printFacts(facts []memory.Fact, empty string) error {
	if len(facts) == 0 {
		fmt.Println(empty)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTORED\tFACT")
	for _, f := range facts {
		fmt.Fprintf(w, "%d\t%s\t%s\n", f.ID, f.Timestamp.Local().Format("2006-01-02 15:04"), f.Content)
	}
	return w.Flush()
}
