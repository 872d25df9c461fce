package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/depositplan"
	"github.com/google/subcommands"
)

type importCmd struct {
	spec   depositplan.ImportSpec
	dryRun bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import deposits from a bank JSON export" }
func (*importCmd) Usage() string {
	return `dpa import [-list <jsonpath>] [-id <jsonpath>] [-amount <jsonpath>] [-reference <jsonpath>] [-date <jsonpath>] <file.json>

  Reads a JSON export, extracts deposits with JSONPath expressions, and appends
  them to the deposits file. Deposits already in the file (same id) are skipped,
  and so are transactions with a non positive amount.

  Use "-" to read the export from the standard input.

Usage Examples:
$ dpa import -list '$.transactions[*]' -amount '$.credit' -date '$.bookingDate' export.json
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	def := depositplan.DefaultImportSpec()
	f.StringVar(&c.spec.List, "list", def.List, "JSONPath selecting the list of transactions")
	f.StringVar(&c.spec.ID, "id", def.ID, "JSONPath of the transaction id")
	f.StringVar(&c.spec.Amount, "amount", def.Amount, "JSONPath of the transaction amount")
	f.StringVar(&c.spec.Reference, "reference", def.Reference, "JSONPath of the transaction reference")
	f.StringVar(&c.spec.Date, "date", def.Date, "JSONPath of the transaction date")
	f.BoolVar(&c.dryRun, "n", false, "Dry run: print the deposits instead of appending them")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one file to import is required")
		return subcommands.ExitUsageError
	}

	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var r io.Reader = os.Stdin
	if name := f.Arg(0); name != "-" {
		file, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		r = file
	}

	imported, skipped, err := depositplan.ImportDeposits(r, c.spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not import deposits: %v\n", err)
		return subcommands.ExitFailure
	}

	existing, err := DecodeDeposits(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load deposits: %v\n", err)
		return subcommands.ExitFailure
	}
	known := make(map[string]bool, len(existing))
	for _, d := range existing {
		known[d.ID] = true
	}

	var added []depositplan.Deposit
	for _, d := range imported {
		if known[d.ID] {
			skipped++
			continue
		}
		known[d.ID] = true
		added = append(added, d)
	}

	if c.dryRun {
		if err := depositplan.EncodeDeposits(stdout, added); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	if err := AppendDeposits(cfg, added); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(stdout, "Imported %d deposits (%s) into %s, skipped %d.\n",
		len(added), depositplan.TotalDeposited(added).StringFixed(2), cfg.Deposits, skipped)
	return subcommands.ExitSuccess
}
