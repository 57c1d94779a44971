// Package cmd implements the ctax command line application.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/cryptotax"
	"github.com/etnz/cryptotax/store"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&gainsCmd{}, "reports")
	c.Register(&cascadeCmd{}, "reports")
	c.Register(&holdingsCmd{}, "reports")
	c.Register(&reconcileCmd{}, "reports")

	c.Register(&importCmd{}, "transactions")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var envFile = flag.String("env-file", ".env", "Path to an optional file of CTAX_* variables")

// flagValues holds the options set on the command line.
var flagValues = registerOptions(flag.CommandLine)

// settings is everything a command needs to build an engine.
type settings struct {
	cfg        cryptotax.Config
	ledgerFile string
	db         string
	logLevel   string
}

func defaultSettings() settings {
	return settings{
		cfg:        cryptotax.DefaultConfig(),
		ledgerFile: "transactions.jsonl",
		logLevel:   "warn",
	}
}

// option is a setting that can be given as an environment variable or as a
// flag, the flag taking precedence.
type option struct {
	flag, env, usage string
	isBool           bool
	apply            func(s *settings, v string) error
}

var options = []option{
	{flag: "ledger-file", env: "CTAX_LEDGER_FILE", usage: "Path to the ledger file (JSONL format)", apply: func(s *settings, v string) error {
		s.ledgerFile = v
		return nil
	}},
	{flag: "db", env: "CTAX_DB", usage: "Path to a SQLite transaction store, used instead of the ledger file", apply: func(s *settings, v string) error {
		s.db = v
		return nil
	}},
	{flag: "method", env: "CTAX_METHOD", usage: "Cost basis method (fifo, hifo)", apply: func(s *settings, v string) (err error) {
		s.cfg.Method, err = cryptotax.ParseCostBasisMethod(v)
		return err
	}},
	{flag: "wash", env: "CTAX_WASH_SALE", usage: "Apply the wash sale rule", isBool: true, apply: func(s *settings, v string) (err error) {
		s.cfg.WashSale, err = strconv.ParseBool(v)
		return err
	}},
	{flag: "strict", env: "CTAX_STRICT_BROKER", usage: "Isolate the basis of broker sources", isBool: true, apply: func(s *settings, v string) (err error) {
		s.cfg.StrictBroker, err = strconv.ParseBool(v)
		return err
	}},
	{flag: "brokers", env: "CTAX_BROKER_SOURCES", usage: "Comma separated list of broker sources", apply: func(s *settings, v string) error {
		s.cfg.BrokerSources = splitList(v)
		return nil
	}},
	{flag: "staking-taxable", env: "CTAX_STAKING_TAXABLE", usage: "Tax staking rewards as income on receipt", isBool: true, apply: func(s *settings, v string) (err error) {
		s.cfg.StakingTaxableOnReceipt, err = strconv.ParseBool(v)
		return err
	}},
	{flag: "collectibles", env: "CTAX_COLLECTIBLES", usage: "Comma separated list of coins taxed as collectibles", apply: func(s *settings, v string) error {
		s.cfg.Collectibles = splitList(v)
		return nil
	}},
	{flag: "deduction-limit", env: "CTAX_DEDUCTION_LIMIT", usage: "Yearly net capital loss deduction limit in USD", apply: func(s *settings, v string) error {
		d, err := cryptotax.ParseDecimal(v)
		if err != nil {
			return err
		}
		s.cfg.DeductionLimit = cryptotax.USD(d)
		return nil
	}},
	{flag: "log-level", env: "CTAX_LOG_LEVEL", usage: "Log level (debug, info, warn, error)", apply: func(s *settings, v string) error {
		s.logLevel = v
		return nil
	}},
}

// registerOptions defines a flag per option on fs and returns the values
// given on the command line, by flag name.
func registerOptions(fs *flag.FlagSet) map[string]string {
	set := make(map[string]string)
	for _, o := range options {
		record := func(v string) error {
			set[o.flag] = v
			return nil
		}
		if o.isBool {
			fs.BoolFunc(o.flag, o.usage, record)
		} else {
			fs.Func(o.flag, o.usage, record)
		}
	}
	return set
}

// loadSettings applies the environment then the flags over the defaults.
func loadSettings(getenv func(string) string, flags map[string]string) (settings, error) {
	s := defaultSettings()
	for _, o := range options {
		if v := getenv(o.env); v != "" {
			if err := o.apply(&s, v); err != nil {
				return s, fmt.Errorf("invalid %s %q: %w", o.env, v, err)
			}
		}
	}
	for _, o := range options {
		if v, ok := flags[o.flag]; ok {
			if err := o.apply(&s, v); err != nil {
				return s, fmt.Errorf("invalid -%s %q: %w", o.flag, v, err)
			}
		}
	}
	return s, s.cfg.Validate()
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// currentSettings loads the optional env file, then the settings.
func currentSettings() (settings, error) {
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return settings{}, fmt.Errorf("could not load %s: %w", *envFile, err)
	}
	return loadSettings(os.Getenv, flagValues)
}

// openEngine builds the engine over the configured transaction source. The
// returned function releases the source.
func openEngine(ctx context.Context) (*cryptotax.Engine, func(), error) {
	s, err := currentSettings()
	if err != nil {
		return nil, nil, err
	}
	logger := NewLogger(s.logLevel)
	closer := func() { logger.Sync() }

	var src cryptotax.TransactionSource
	if s.db != "" {
		st, err := store.Open(ctx, s.db)
		if err != nil {
			return nil, nil, err
		}
		src = st
		closer = func() {
			st.Close()
			logger.Sync()
		}
	} else {
		ledger, err := decodeLedgerFile(s.ledgerFile)
		if err != nil {
			return nil, nil, err
		}
		src = ledger
	}
	logger.Debug("engine configured",
		zap.Stringer("method", s.cfg.Method),
		zap.Bool("wash_sale", s.cfg.WashSale),
		zap.Bool("strict_broker", s.cfg.StrictBroker))

	e, err := cryptotax.NewEngine(s.cfg, src, cryptotax.WithLogger(logger))
	if err != nil {
		closer()
		return nil, nil, err
	}
	return e, closer, nil
}

// decodeLedgerFile reads a JSONL ledger file.
func decodeLedgerFile(name string) (*cryptotax.Ledger, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open ledger: %w", err)
	}
	defer f.Close()
	ledger, err := cryptotax.DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode ledger %q: %w", name, err)
	}
	return ledger, nil
}

// printMarkdown renders md for the terminal, or prints it raw when it
// cannot be rendered.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Println(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}
