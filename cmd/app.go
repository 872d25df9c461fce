// Package cmd implements the dpa CLI application to allocate deposits across portfolios.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/etnz/depositplan"
	"github.com/etnz/depositplan/config"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// commands lists the subcommands and their group.
func commands() []struct {
	cmd   subcommands.Command
	group string
} {
	return []struct {
		cmd   subcommands.Command
		group string
	}{
		{&allocateCmd{}, "allocation"},
		{&forecastCmd{}, "allocation"},
		{&historyCmd{}, "allocation"},
		{&validateCmd{}, "files"},
		{&importCmd{}, "files"},
		{&fmtCmd{}, "files"},
		{&serveCmd{}, "server"},
		{&topicCmd{}, "help"},
	}
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "help")
	c.Register(c.FlagsCommand(), "help")
	c.Register(c.CommandsCommand(), "help")
	for _, e := range commands() {
		c.Register(e.cmd, e.group)
	}
}

// IsCommand reports whether name is a builtin subcommand.
func IsCommand(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	for _, e := range commands() {
		if e.cmd.Name() == name {
			return true
		}
	}
	return false
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", config.DefaultPath, "Path to the configuration file")
var bookFile = flag.String("book", "", "Path to the book file holding portfolios and plans (.yaml or .json)")
var depositsFile = flag.String("deposits", "", "Path to the deposits file (JSONL format)")
var dbFile = flag.String("db", "", "Path to the SQLite database keeping the allocation history")
var currency = flag.String("currency", "", "Currency used to display amounts, overrides the book currency")
var Verbose = flag.Bool("v", false, "Enable verbose output")

// stdout is where commands write their reports.
var stdout io.Writer = os.Stdout

// LoadConfig reads the configuration file and applies the global flags on top of it.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *bookFile != "" {
		cfg.Book = *bookFile
	}
	if *depositsFile != "" {
		cfg.Deposits = *depositsFile
	}
	if *dbFile != "" {
		cfg.Database = *dbFile
	}
	if *currency != "" {
		cfg.Currency = *currency
	}
	if *Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Logger returns the application logger, writing to stderr.
func Logger(cfg *config.Config) zerolog.Logger {
	return cfg.Logger(os.Stderr)
}

// DecodeBook loads the book file, the configured currency overrides the book one.
func DecodeBook(cfg *config.Config) (*depositplan.Book, error) {
	b, err := depositplan.LoadBook(cfg.Book)
	if err != nil {
		return nil, err
	}
	if cfg.Currency != "" {
		b.Currency = cfg.Currency
	}
	return b, nil
}

// DecodeDeposits loads the deposits file, a missing file means no deposits.
func DecodeDeposits(cfg *config.Config) ([]depositplan.Deposit, error) {
	f, err := os.Open(cfg.Deposits)
	if errors.Is(err, fs.ErrNotExist) {
		log.Println("warning, deposits file does not exist, starting without deposits")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	deposits, err := depositplan.DecodeDeposits(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Deposits, err)
	}
	return deposits, nil
}

// AppendDeposits appends deposits into the deposits file.
func AppendDeposits(cfg *config.Config, deposits []depositplan.Deposit) error {
	// Open the file in append mode, creating it if it doesn't exist.
	f, err := os.OpenFile(cfg.Deposits, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error opening deposits file %q: %w", cfg.Deposits, err)
	}
	defer f.Close()

	if err := depositplan.EncodeDeposits(f, deposits); err != nil {
		return fmt.Errorf("error writing to deposits file %q: %w", cfg.Deposits, err)
	}
	return nil
}

// loadInputs loads the configuration, the book and the deposits, and validates them.
// Warnings are printed on stderr.
func loadInputs() (*config.Config, *depositplan.Book, []depositplan.Deposit, subcommands.ExitStatus) {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, nil, nil, subcommands.ExitFailure
	}
	b, err := DecodeBook(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load book: %v\n", err)
		return nil, nil, nil, subcommands.ExitFailure
	}
	deposits, err := DecodeDeposits(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load deposits: %v\n", err)
		return nil, nil, nil, subcommands.ExitFailure
	}

	warnings, err := depositplan.Validate(b, deposits)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid input:\n%v\n", err)
		return nil, nil, nil, subcommands.ExitFailure
	}
	return cfg, b, deposits, subcommands.ExitSuccess
}
