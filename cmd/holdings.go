package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/cryptotax/renderer"
	"github.com/google/subcommands"
)

type holdingsCmd struct {
	year int
	json bool
}

func (*holdingsCmd) Name() string { return "holdings" }
func (*holdingsCmd) Synopsis() string {
	return "open positions per coin and source at the end of a year"
}
func (*holdingsCmd) Usage() string {
	return `ctax holdings [-y <year>] [-json]

  Lists the quantity and cost basis held on every source at the end of the
  year, wash sale adjustments included.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", time.Now().Year()-1, "Tax year")
	f.BoolVar(&c.json, "json", false, "Print the holdings as JSON")
}

func (c *holdingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, closer, err := openEngine(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closer()

	holdings, err := e.Holdings(ctx, c.year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing holdings: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.json {
		return printJSON(holdings)
	}
	printMarkdown(renderer.HoldingsMarkdown(c.year, holdings))
	return subcommands.ExitSuccess
}
