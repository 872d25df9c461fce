package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/depositplan"
	"github.com/google/subcommands"
)

type validateCmd struct {
	strict bool
}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "check the book and the deposits" }
func (*validateCmd) Usage() string {
	return `dpa validate [-strict]

  Checks the book and the deposits file and reports every error found.
  Warnings point at inputs the allocation tolerates but that are likely mistakes,
  with -strict they are reported as a failure too.
`
}

func (c *validateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.strict, "strict", false, "Fail on warnings")
}

func (c *validateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	b, err := DecodeBook(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load book: %v\n", err)
		return subcommands.ExitFailure
	}
	deposits, err := DecodeDeposits(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load deposits: %v\n", err)
		return subcommands.ExitFailure
	}

	warnings, err := depositplan.Validate(b, deposits)
	for _, w := range warnings {
		fmt.Fprintf(stdout, "Warning: %s\n", w)
	}
	if err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Fprintf(stdout, "Error: %s\n", line)
		}
		return subcommands.ExitFailure
	}
	if c.strict && len(warnings) > 0 {
		return subcommands.ExitFailure
	}

	fmt.Fprintf(stdout, "✅ %d portfolios, %d plans and %d deposits are valid.\n", len(b.Portfolios), len(b.Plans), len(deposits))
	return subcommands.ExitSuccess
}
