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

type reconcileCmd struct {
	year int
	json bool
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "disposals totals per source and coin" }
func (*reconcileCmd) Usage() string {
	return `ctax reconcile [-y <year>] [-json]

  Groups the disposals of a year by source and coin, to compare with the
  forms issued by each exchange.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", time.Now().Year()-1, "Tax year")
	f.BoolVar(&c.json, "json", false, "Print the rows as JSON")
}

func (c *reconcileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, closer, err := openEngine(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closer()

	r, err := e.Run(ctx, c.year, cryptotax.Carryover{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing %d: %v\n", c.year, err)
		return subcommands.ExitFailure
	}
	if c.json {
		return printJSON(r.Reconciliation)
	}
	printMarkdown(renderer.ReconcileMarkdown(r.Year, r.Reconciliation))
	return subcommands.ExitSuccess
}
