package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/cryptotax"
	"github.com/etnz/cryptotax/renderer"
	"github.com/google/subcommands"
)

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	year    int
	json    bool
	carryST float64
	carryLT float64
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "capital gains and income of a tax year" }
func (*gainsCmd) Usage() string {
	return `ctax gains [-y <year>] [-json] [-carry-st <usd>] [-carry-lt <usd>]

  Computes the disposals, income, wash sales and totals of a tax year, netted
  with the capital loss carried over from the previous year.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", time.Now().Year()-1, "Tax year")
	f.BoolVar(&c.json, "json", false, "Print the report as JSON")
	f.Float64Var(&c.carryST, "carry-st", 0, "Short-term capital loss carried into the year")
	f.Float64Var(&c.carryLT, "carry-lt", 0, "Long-term capital loss carried into the year")
}

func (c *gainsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, closer, err := openEngine(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closer()

	prior := cryptotax.Carryover{ShortTerm: cryptotax.USD(c.carryST), LongTerm: cryptotax.USD(c.carryLT)}
	r, err := e.Run(ctx, c.year, prior)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing %d: %v\n", c.year, err)
		return subcommands.ExitFailure
	}

	if c.json {
		return printJSON(r)
	}
	printMarkdown(renderer.GainsMarkdown(r))
	return subcommands.ExitSuccess
}

func printJSON(v any) subcommands.ExitStatus {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
