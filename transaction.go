package cryptotax

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Action is a typed string for identifying what a transaction does.
type Action string

// Actions recognized by the engine.
const (
	Buy        Action = "BUY"
	Sell       Action = "SELL"
	Trade      Action = "TRADE" // receive leg of a coin-to-coin trade; the sold leg is a SELL of the same batch.
	Transfer   Action = "TRANSFER"
	Income     Action = "INCOME"
	Spend      Action = "SPEND"
	Deposit    Action = "DEPOSIT"
	Withdrawal Action = "WITHDRAWAL"
	GiftIn     Action = "GIFT_IN"
	Loss       Action = "LOSS"
	Refund     Action = "REFUND"
)

var actions = []Action{Buy, Sell, Trade, Transfer, Income, Spend, Deposit, Withdrawal, GiftIn, Loss, Refund}

// ParseAction parses a string into an Action, ignoring case.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range actions {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// isReplacement reports whether an acquisition by this action can replace
// units sold at a loss.
func (a Action) isReplacement() bool { return a == Buy || a == Income || a == Trade }

// Transaction is a single immutable input record.
type Transaction struct {
	ID          string
	Date        time.Time
	Source      string
	Destination string // optional, TRANSFER and routed DEPOSIT/WITHDRAWAL only.
	Action      Action
	Coin        string
	Amount      Quantity
	PriceUSD    Money    // unit price of Coin.
	Fee         Quantity // in FeeCoin.
	FeeCoin     string   // defaults to Coin.
	FeePriceUSD Money    // unit price of FeeCoin when it is neither Coin nor fiat.
	BatchID     string

	// Unparsed holds the raw text of numeric fields that were present but
	// could not be read, keyed by their ledger name ("price_usd").
	Unparsed map[string]string
}

// FeeCurrency returns the coin the fee is paid in.
func (t Transaction) FeeCurrency() string {
	if t.FeeCoin == "" {
		return t.Coin
	}
	return t.FeeCoin
}

// feeIsFiat reports whether the fee is expressed in the proceeds currency.
func (t Transaction) feeIsFiat() bool { return strings.EqualFold(t.FeeCurrency(), usd) }

// feeValue returns the USD fair value of the fee.
func (t Transaction) feeValue() Money {
	switch {
	case t.feeIsFiat():
		return USD(t.Fee.value)
	case t.FeeCurrency() == t.Coin:
		return t.PriceUSD.Mul(t.Fee)
	default:
		return t.FeePriceUSD.Mul(t.Fee)
	}
}

// normalized returns a copy with canonical coin symbols.
func (t Transaction) normalized() Transaction {
	t.Coin = strings.ToUpper(strings.TrimSpace(t.Coin))
	t.FeeCoin = strings.ToUpper(strings.TrimSpace(t.FeeCoin))
	t.Source = strings.TrimSpace(t.Source)
	t.Destination = strings.TrimSpace(t.Destination)
	if t.PriceUSD.cur == "" {
		t.PriceUSD.cur = usd
	}
	if t.FeePriceUSD.cur == "" {
		t.FeePriceUSD.cur = usd
	}
	return t
}

var numericFields = []string{"amount", "price_usd", "fee", "fee_price_usd"}

// Validate checks the fields required by the transaction's action. The
// returned error is a *MalformedError.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return malformed(t, "date", "missing or unparsable date")
	}
	if _, err := ParseAction(string(t.Action)); err != nil {
		return malformed(t, "action", "%v", err)
	}
	if t.Coin == "" {
		return malformed(t, "coin", "missing coin")
	}
	for _, field := range numericFields {
		if raw, ok := t.Unparsed[field]; ok {
			return malformed(t, field, "unparsable number %q", raw)
		}
	}
	if t.Action == Refund {
		if t.Amount.IsZero() {
			return malformed(t, "amount", "refund amount must not be zero")
		}
	} else if !t.Amount.IsPositive() {
		return malformed(t, "amount", "amount must be positive, got %s", t.Amount)
	}
	if t.PriceUSD.IsNegative() {
		return malformed(t, "price_usd", "negative price %s", t.PriceUSD.value)
	}
	if t.Fee.IsNegative() {
		return malformed(t, "fee", "negative fee %s", t.Fee)
	}
	if t.FeePriceUSD.IsNegative() {
		return malformed(t, "fee_price_usd", "negative price %s", t.FeePriceUSD.value)
	}
	if t.Action == Transfer && t.Destination == "" {
		return malformed(t, "destination", "transfer without destination")
	}
	if t.Action == Transfer && IsFiat(t.Coin) {
		return malformed(t, "coin", "transfer of fiat %s", t.Coin)
	}
	return nil
}

// MarshalJSON writes the transaction in its ledger form, omitting empty
// optional fields.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("id", t.ID)
	w.Append("date", t.Date.UTC().Format(time.RFC3339Nano))
	w.Append("action", t.Action)
	w.Append("source", t.Source)
	w.Optional("destination", t.Destination)
	w.Append("coin", t.Coin)
	w.Append("amount", t.raw("amount", t.Amount))
	w.Append("price_usd", t.raw("price_usd", t.PriceUSD.exact()))
	w.Optional("fee", t.raw("fee", t.Fee))
	w.Optional("fee_coin", t.FeeCoin)
	w.Optional("fee_price_usd", t.raw("fee_price_usd", t.FeePriceUSD.exact()))
	w.Optional("batch_id", t.BatchID)
	return w.MarshalJSON()
}

// raw returns the unparsed text of field if any, so that a ledger keeps what
// it was given, or v.
func (t Transaction) raw(field string, v any) any {
	if s, ok := t.Unparsed[field]; ok {
		return s
	}
	return v
}

// UnmarshalJSON decodes a ledger record leniently: numbers may be JSON
// numbers or strings and absent numbers are zero. An unparsable date is left
// zero and an unparsable number is kept in Unparsed, for Validate to report.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          any    `json:"id"`
		Date        any    `json:"date"`
		Source      string `json:"source"`
		Destination string `json:"destination"`
		Action      string `json:"action"`
		Coin        string `json:"coin"`
		Amount      any    `json:"amount"`
		PriceUSD    any    `json:"price_usd"`
		Fee         any    `json:"fee"`
		FeeCoin     string `json:"fee_coin"`
		FeePriceUSD any    `json:"fee_price_usd"`
		BatchID     any    `json:"batch_id"`
	}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	var n numberFields
	*t = Transaction{
		ID:          str(raw.ID),
		Date:        timeOrZero(raw.Date),
		Source:      raw.Source,
		Destination: raw.Destination,
		Action:      Action(strings.ToUpper(strings.TrimSpace(raw.Action))),
		Coin:        raw.Coin,
		Amount:      Q(n.read("amount", raw.Amount)),
		PriceUSD:    USD(n.read("price_usd", raw.PriceUSD)),
		Fee:         Q(n.read("fee", raw.Fee)),
		FeeCoin:     raw.FeeCoin,
		FeePriceUSD: USD(n.read("fee_price_usd", raw.FeePriceUSD)),
		BatchID:     str(raw.BatchID),
	}
	t.Unparsed = n.unparsed
	return nil
}

// str formats identifiers that exports sometimes write as numbers.
func str(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// timeOrZero reads a timestamp string or a unix time in seconds.
func timeOrZero(v any) time.Time {
	switch x := v.(type) {
	case string:
		t, err := ParseTime(x)
		if err != nil {
			return time.Time{}
		}
		return t
	case json.Number:
		sec, err := x.Int64()
		if err != nil {
			return time.Time{}
		}
		return time.Unix(sec, 0).UTC()
	case float64:
		return time.Unix(int64(x), 0).UTC()
	default:
		return time.Time{}
	}
}
