package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/depositplan"
	"github.com/google/subcommands"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "formats the book and the deposits file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `dpa fmt

  Reads the book and the deposits file, and writes them back in-place in a
  canonical form. Deposits keep their order: it is the allocation order.

Usage Examples:
$ dpa fmt
`
}

func (p *fmtCmd) SetFlags(f *flag.FlagSet) {}

func (p *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	b, err := depositplan.LoadBook(cfg.Book)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load book: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := depositplan.SaveBook(cfg.Book, b); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving formatted book %q: %v\n", cfg.Book, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Formatted book %q.\n", cfg.Book)

	deposits, err := DecodeDeposits(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load deposits: %v\n", err)
		return subcommands.ExitFailure
	}
	if deposits == nil {
		return subcommands.ExitSuccess
	}
	var buf bytes.Buffer
	if err := depositplan.EncodeDeposits(&buf, deposits); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := os.WriteFile(cfg.Deposits, buf.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving formatted deposits %q: %v\n", cfg.Deposits, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Formatted %d deposits in %q.\n", len(deposits), cfg.Deposits)
	return subcommands.ExitSuccess
}
