package cryptotax

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Mapping describes how to read transactions out of an exchange JSON export.
// Every field holds a jsonpath expression evaluated on a record, for instance
// "$.amount". Empty expressions leave the field empty.
type Mapping struct {
	Records     string `json:"records"` // selects the records in the document, e.g. "$.data[*]".
	ID          string `json:"id"`
	Date        string `json:"date"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Action      string `json:"action"`
	Coin        string `json:"coin"`
	Amount      string `json:"amount"`
	PriceUSD    string `json:"price_usd"`
	Fee         string `json:"fee"`
	FeeCoin     string `json:"fee_coin"`
	FeePriceUSD string `json:"fee_price_usd"`
	BatchID     string `json:"batch_id"`

	// DefaultSource is used when Source is empty or yields nothing.
	DefaultSource string `json:"default_source"`
	// Actions translates exchange labels (e.g. "Staking Reward") into
	// actions. Labels are compared ignoring case.
	Actions map[string]Action `json:"actions"`
}

// LedgerMapping reads the ledger's own field names from a JSON array.
var LedgerMapping = Mapping{
	Records:     "$[*]",
	ID:          "$.id",
	Date:        "$.date",
	Source:      "$.source",
	Destination: "$.destination",
	Action:      "$.action",
	Coin:        "$.coin",
	Amount:      "$.amount",
	PriceUSD:    "$.price_usd",
	Fee:         "$.fee",
	FeeCoin:     "$.fee_coin",
	FeePriceUSD: "$.fee_price_usd",
	BatchID:     "$.batch_id",
}

// DecodeMapping reads a Mapping from JSON.
func DecodeMapping(r io.Reader) (Mapping, error) {
	var m Mapping
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return m, fmt.Errorf("could not decode mapping: %w", err)
	}
	if m.Records == "" {
		return m, fmt.Errorf("mapping has no records expression")
	}
	return m, nil
}

// ImportJSON reads the transactions of an exchange export. Like DecodeLedger
// it is lenient with field values: transactions are returned as found and
// Validate reports the malformed ones.
func ImportJSON(r io.Reader, m Mapping) ([]Transaction, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("could not decode export: %w", err)
	}
	jval, err := jsonpath.Get(m.Records, doc)
	if err != nil {
		return nil, fmt.Errorf("error selecting records with %q: %w", m.Records, err)
	}
	records, ok := jval.([]any)
	if !ok {
		records = []any{jval}
	}

	txs := make([]Transaction, 0, len(records))
	for _, rec := range records {
		get := func(path string) any { return lookup(path, rec) }
		var n numberFields
		tx := Transaction{
			ID:          str(get(m.ID)),
			Date:        timeOrZero(get(m.Date)),
			Source:      str(get(m.Source)),
			Destination: str(get(m.Destination)),
			Action:      m.action(str(get(m.Action))),
			Coin:        str(get(m.Coin)),
			Amount:      Q(n.read("amount", get(m.Amount))),
			PriceUSD:    USD(n.read("price_usd", get(m.PriceUSD))),
			Fee:         Q(n.read("fee", get(m.Fee))),
			FeeCoin:     str(get(m.FeeCoin)),
			FeePriceUSD: USD(n.read("fee_price_usd", get(m.FeePriceUSD))),
			BatchID:     str(get(m.BatchID)),
		}
		tx.Unparsed = n.unparsed
		if tx.Source == "" {
			tx.Source = m.DefaultSource
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// action translates an exchange label. Unknown labels are kept upper-cased
// for Validate to reject.
func (m Mapping) action(label string) Action {
	if a, ok := m.Actions[label]; ok {
		return a
	}
	for _, k := range slices.Sorted(maps.Keys(m.Actions)) {
		if strings.EqualFold(k, label) {
			return m.Actions[k]
		}
	}
	return Action(strings.ToUpper(strings.TrimSpace(label)))
}

// lookup evaluates path on a record, nil when absent.
func lookup(path string, rec any) any {
	if path == "" {
		return nil
	}
	jval, err := jsonpath.Get(path, rec)
	if err != nil {
		return nil
	}
	// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil
		}
		jval = jlist[0]
	}
	return jval
}
