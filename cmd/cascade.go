package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/cryptotax"
	"github.com/etnz/cryptotax/renderer"
	"github.com/google/subcommands"
)

type cascadeCmd struct {
	from, to int
	json     bool
}

func (*cascadeCmd) Name() string     { return "cascade" }
func (*cascadeCmd) Synopsis() string { return "consecutive tax years with their carryover chain" }
func (*cascadeCmd) Usage() string {
	return `ctax cascade -from <year> [-to <year>] [-json]

  Computes every year from -from to -to, carrying the unused capital loss of
  each year into the next.
`
}

func (c *cascadeCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.from, "from", 0, "First tax year")
	f.IntVar(&c.to, "to", time.Now().Year()-1, "Last tax year")
	f.BoolVar(&c.json, "json", false, "Print the reports as JSON")
}

func (c *cascadeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == 0 {
		fmt.Fprintln(os.Stderr, "-from is required")
		return subcommands.ExitUsageError
	}
	e, closer, err := openEngine(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closer()

	reports, err := e.Cascade(ctx, c.from, c.to, cryptotax.Carryover{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing %d-%d: %v\n", c.from, c.to, err)
		return subcommands.ExitFailure
	}
	if c.json {
		return printJSON(reports)
	}
	printMarkdown(renderer.CascadeMarkdown(reports))
	return subcommands.ExitSuccess
}
