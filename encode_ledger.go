package cryptotax

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DecodeLedger decodes transactions from a stream of JSONL data from an io.Reader,
// one transaction per line, and returns a sorted Ledger.
//
// Only JSON syntax errors fail the decoding. Field level problems are left for
// Transaction.Validate so that the engine can skip and report them.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var txs []Transaction
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}
		var tx Transaction
		if err := json.Unmarshal(lineBytes, &tx); err != nil {
			return nil, fmt.Errorf("line %d: could not decode transaction %q: %w", line, string(lineBytes), err)
		}
		txs = append(txs, tx)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	ledger.Append(txs...)
	return ledger, nil
}

// EncodeTransaction writes a single transaction as a JSON line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction %q: %w", tx.ID, err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write transaction %q: %w", tx.ID, err)
	}
	return nil
}

// EncodeLedger writes the ledger in chronological order as JSONL.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	for _, tx := range ledger.transactions {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}
