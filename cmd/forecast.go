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
	"github.com/google/subcommands"
)

type forecastCmd struct {
	months int
	json   bool
}

func (*forecastCmd) Name() string     { return "forecast" }
func (*forecastCmd) Synopsis() string { return "project future monthly deposits" }
func (*forecastCmd) Usage() string {
	return `dpa forecast [-n <months>] [-json]

  Projects the next deposits of the active monthly plan, each of the plan total,
  on the plan schedule (the first day of each month by default), and reports
  the allocation including those future deposits.
`
}

func (c *forecastCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.months, "n", 0, "Number of deposits to project, defaults to the configured forecast months")
	f.BoolVar(&c.json, "json", false, "Output the projected deposits and allocation as JSON")
}

func (c *forecastCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, b, deposits, status := loadInputs()
	if status != subcommands.ExitSuccess {
		return status
	}
	n := c.months
	if n <= 0 {
		n = cfg.Forecast.Months
	}

	res, projected, err := b.Forecast(deposits, time.Now(), n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		err := enc.Encode(struct {
			Projected   []depositplan.Deposit             `json:"projected"`
			Allocations []depositplan.PortfolioAllocation `json:"allocations"`
		}{projected, res.Allocations})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.ForecastMarkdown(b, res, projected))
	return subcommands.ExitSuccess
}
