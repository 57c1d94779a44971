package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/cryptotax"
	"github.com/etnz/cryptotax/store"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type importCmd struct {
	from    string
	mapping string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "load transactions into the SQLite store" }
func (*importCmd) Usage() string {
	return `ctax -db <file> import -from <file> [-map <mapping.json>]

  Appends transactions to the store. A .jsonl file is read as a ledger; a
  JSON export is read with a mapping of jsonpath expressions, or with the
  ledger field names when no mapping is given.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "File to import (.jsonl ledger or .json export)")
	f.StringVar(&c.mapping, "map", "", "JSON mapping describing the export fields")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" {
		fmt.Fprintln(os.Stderr, "-from is required")
		return subcommands.ExitUsageError
	}
	s, err := currentSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if s.db == "" {
		fmt.Fprintln(os.Stderr, "import needs a store, use -db or CTAX_DB")
		return subcommands.ExitUsageError
	}
	logger := NewLogger(s.logLevel)
	defer logger.Sync()

	txs, err := readTransactions(c.from, c.mapping)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			logger.Warn("imported transaction will be skipped", zap.String("file", c.from), zap.Error(err))
		}
	}

	st, err := store.Open(ctx, s.db)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer st.Close()
	if err := st.Append(ctx, txs...); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Imported %d transactions from %s into %s\n", len(txs), c.from, s.db)
	return subcommands.ExitSuccess
}

// readTransactions reads a ledger or an exchange export.
func readTransactions(name, mappingFile string) ([]cryptotax.Transaction, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", name, err)
	}
	defer f.Close()

	if mappingFile == "" && strings.EqualFold(filepath.Ext(name), ".jsonl") {
		ledger, err := cryptotax.DecodeLedger(f)
		if err != nil {
			return nil, fmt.Errorf("could not decode ledger %q: %w", name, err)
		}
		return ledger.Transactions(context.Background())
	}

	m := cryptotax.LedgerMapping
	if mappingFile != "" {
		mf, err := os.Open(mappingFile)
		if err != nil {
			return nil, fmt.Errorf("could not open mapping: %w", err)
		}
		defer mf.Close()
		if m, err = cryptotax.DecodeMapping(mf); err != nil {
			return nil, err
		}
	}
	txs, err := cryptotax.ImportJSON(f, m)
	if err != nil {
		return nil, fmt.Errorf("could not import %q: %w", name, err)
	}
	return txs, nil
}
