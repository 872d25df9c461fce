package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/depositplan"
	"github.com/etnz/depositplan/renderer"
	"github.com/etnz/depositplan/store"
	"github.com/google/subcommands"
)

type historyCmd struct{}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display saved allocation runs" }
func (*historyCmd) Usage() string {
	return `dpa history [<run-id>]

  Lists the allocation runs saved with 'dpa allocate -save', most recent first.
  With a run id, displays the allocations of that run.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "at most one run id can be provided")
		return subcommands.ExitUsageError
	}

	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	s, err := store.Open(ctx, cfg.Database, Logger(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer s.Close()

	// the book only provides names and currency, runs can be rendered without it.
	b, err := DecodeBook(cfg)
	if err != nil {
		b = &depositplan.Book{Currency: cfg.Currency}
	}

	if f.NArg() == 0 {
		runs, err := s.Runs(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.RunsMarkdown(runs, b.Currency))
		return subcommands.ExitSuccess
	}

	allocations, err := s.RunAllocations(ctx, f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RunMarkdown(b, f.Arg(0), allocations))
	return subcommands.ExitSuccess
}
