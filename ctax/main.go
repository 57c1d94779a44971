// Command ctax computes crypto capital gains from a transaction ledger.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/cryptotax/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	completion().Complete("ctax")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// completion describes the command line for shell completion.
func completion() *complete.Command {
	year := predict.Something
	report := func(extra map[string]complete.Predictor) *complete.Command {
		flags := map[string]complete.Predictor{"y": year, "json": predict.Nothing}
		for k, v := range extra {
			flags[k] = v
		}
		return &complete.Command{Flags: flags}
	}
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"gains":     report(map[string]complete.Predictor{"carry-st": predict.Something, "carry-lt": predict.Something}),
			"holdings":  report(nil),
			"reconcile": report(nil),
			"cascade": {Flags: map[string]complete.Predictor{
				"from": year,
				"to":   year,
				"json": predict.Nothing,
			}},
			"import": {Flags: map[string]complete.Predictor{
				"from": predict.Files("*.json*"),
				"map":  predict.Files("*.json"),
			}},
		},
		Flags: map[string]complete.Predictor{
			"env-file":        predict.Files("*"),
			"ledger-file":     predict.Files("*.jsonl"),
			"db":              predict.Files("*.db"),
			"method":          predict.Set{"fifo", "hifo"},
			"wash":            predict.Nothing,
			"strict":          predict.Nothing,
			"brokers":         predict.Something,
			"staking-taxable": predict.Nothing,
			"collectibles":    predict.Something,
			"deduction-limit": predict.Something,
			"log-level":       predict.Set{"debug", "info", "warn", "error"},
		},
	}
}
