package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/depositplan"
	"github.com/etnz/depositplan/renderer"
	"github.com/etnz/depositplan/store"
	"github.com/google/subcommands"
)

type allocateCmd struct {
	json  bool
	trace bool
	save  bool
}

func (*allocateCmd) Name() string     { return "allocate" }
func (*allocateCmd) Synopsis() string { return "allocate deposits across portfolios" }
func (*allocateCmd) Usage() string {
	return `dpa allocate [-json] [-trace] [-save]

  Runs every deposit of the deposits file, in file order, through the deposit
  plans of the book and reports the amount allocated to each portfolio.

  The one-time plan is funded first, then the monthly plan takes the rest.

Usage Examples:
# Show the allocation with the detail of each deposit.
$ dpa allocate -trace

# Record the run in the history database.
$ dpa allocate -save
`
}

func (c *allocateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Output the allocation as JSON")
	f.BoolVar(&c.trace, "trace", false, "Include the detail of every deposit")
	f.BoolVar(&c.save, "save", false, "Save deposits and allocations into the history database")
}

func (c *allocateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, b, deposits, status := loadInputs()
	if status != subcommands.ExitSuccess {
		return status
	}
	log := Logger(cfg)

	res := depositplan.NewAllocator(log).Run(b.Portfolios, b.Plans, deposits)

	if c.save {
		s, err := store.Open(ctx, cfg.Database, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		defer s.Close()
		if _, err := s.SaveDeposits(ctx, deposits); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		run, err := s.SaveRun(ctx, res, len(deposits), time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Saved run %s\n", run.ID)
	}

	if !c.trace {
		res.Steps = nil
	}

	if c.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.AllocationMarkdown(b, res))
	return subcommands.ExitSuccess
}
