package cryptotax

import (
	"fmt"
	"time"

	"github.com/etnz/cryptotax/date"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// longTermDays is the holding period, in calendar days, that a lot must
// exceed to produce a long-term gain.
const longTermDays = 365

// Term is the holding period class of a disposal.
type Term int

const (
	ShortTerm Term = iota
	LongTerm
)

func (t Term) String() string {
	if t == LongTerm {
		return "long"
	}
	return "short"
}

func (t Term) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// termOf returns the term of units acquired on acquired and disposed on disposed.
// Exactly 365 days held is still short term.
func termOf(acquired, disposed time.Time) Term {
	if date.Of(acquired).DaysUntil(date.Of(disposed)) > longTermDays {
		return LongTerm
	}
	return ShortTerm
}

// DisposalKind tells what caused a disposal.
type DisposalKind string

const (
	KindSale        DisposalKind = "sale"
	KindSpend       DisposalKind = "spend"
	KindLoss        DisposalKind = "loss"
	KindFee         DisposalKind = "fee"
	KindTransferFee DisposalKind = "transfer-fee"
)

// disposalNamespace seeds the name-based disposal identifiers.
var disposalNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/etnz/cryptotax/disposal"))

// Disposal is the result of matching a disposal against the lot ledger.
type Disposal struct {
	ID          string
	TxID        string
	Kind        DisposalKind
	Date        time.Time
	Coin        string
	Source      string
	Amount      Quantity
	Proceeds    Money
	CostBasis   Money
	Term        Term
	Acquired    time.Time // oldest consumed lot.
	Description string
	// Unmatched is set when strict broker mode found no local basis for part
	// of the amount. That part has a zero basis.
	Unmatched bool
	// Shortfall is the quantity no lot could cover.
	Shortfall      Quantity
	WashDisallowed Money
	Collectible    bool
}

// Gain returns the realized gain, negative for a loss.
func (d Disposal) Gain() Money { return d.Proceeds.Sub(d.CostBasis) }

// MarshalJSON implements the json.Marshaler interface for Disposal.
func (d Disposal) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", d.ID)
	w.Append("tx_id", d.TxID)
	w.Append("kind", d.Kind)
	w.Append("date", d.Date.UTC().Format(time.RFC3339Nano))
	w.Append("acquired", d.Acquired.UTC().Format(time.RFC3339Nano))
	w.Append("coin", d.Coin)
	w.Append("source", d.Source)
	w.Append("amount", d.Amount)
	w.Append("proceeds", d.Proceeds)
	w.Append("cost_basis", d.CostBasis)
	w.Append("gain", d.Gain())
	w.Append("term", d.Term)
	w.Append("description", d.Description)
	w.Optional("unmatched", d.Unmatched)
	w.Optional("shortfall", d.Shortfall)
	w.Optional("wash_disallowed", d.WashDisallowed)
	w.Optional("collectible", d.Collectible)
	return w.MarshalJSON()
}

// matcher consumes disposals against the lot ledger and keeps them in
// chronological order.
type matcher struct {
	cfg       Config
	lots      *LotLedger
	logger    *zap.Logger
	disposals []*Disposal
}

// dispose matches amount of coin disposed by tx for proceeds.
func (m *matcher) dispose(tx Transaction, kind DisposalKind, coin string, amount Quantity, proceeds Money) *Disposal {
	pooled := !m.cfg.isolated(tx.Source)
	takes, shortfall := m.lots.Consume(coin, tx.Source, amount, m.cfg.Method, pooled)

	d := &Disposal{
		ID:          uuid.NewSHA1(disposalNamespace, fmt.Appendf(nil, "%s/%s/%d", tx.ID, kind, len(m.disposals))).String(),
		TxID:        tx.ID,
		Kind:        kind,
		Date:        tx.Date,
		Coin:        coin,
		Source:      tx.Source,
		Amount:      amount,
		Proceeds:    proceeds,
		CostBasis:   USD(0),
		Acquired:    tx.Date,
		Shortfall:   shortfall,
		Collectible: m.cfg.isCollectible(coin),
	}
	for i, tk := range takes {
		d.CostBasis = d.CostBasis.Add(tk.Cost())
		if i == 0 || tk.Lot.Acquired.Before(d.Acquired) {
			d.Acquired = tk.Lot.Acquired
		}
	}
	d.Term = termOf(d.Acquired, d.Date)
	d.Description = describe(kind, coin, amount, tx.Source)

	if shortfall.IsPositive() {
		d.Unmatched = !pooled
		m.logger.Info("disposal without enough basis",
			zap.String("tx", tx.ID),
			zap.String("coin", coin),
			zap.String("source", tx.Source),
			zap.Stringer("shortfall", shortfall),
			zap.Bool("unmatched", d.Unmatched))
	}
	m.lots.record(d, takes)
	m.disposals = append(m.disposals, d)
	return d
}

// sell handles SELL, SPEND and LOSS.
func (m *matcher) sell(tx Transaction) {
	kind, proceeds := KindSale, tx.PriceUSD.Mul(tx.Amount)
	switch tx.Action {
	case Spend:
		kind = KindSpend
	case Loss:
		kind, proceeds = KindLoss, USD(0)
	}
	if tx.Fee.IsPositive() {
		if tx.feeIsFiat() {
			proceeds = proceeds.Sub(tx.feeValue())
		} else {
			// the fee leaves the wallet before the principal.
			m.fee(tx, KindFee)
		}
	}
	m.dispose(tx, kind, tx.Coin, tx.Amount, proceeds)
}

// fee disposes a fee paid in a coin at its fair value.
func (m *matcher) fee(tx Transaction, kind DisposalKind) {
	if !tx.Fee.IsPositive() || tx.feeIsFiat() || IsFiat(tx.FeeCurrency()) {
		return
	}
	m.dispose(tx, kind, tx.FeeCurrency(), tx.Fee, tx.feeValue())
}

func describe(kind DisposalKind, coin string, amount Quantity, source string) string {
	switch kind {
	case KindFee, KindTransferFee:
		return fmt.Sprintf("%s of %s %s on %s", kind, amount, coin, source)
	case KindSpend:
		return fmt.Sprintf("Spent %s %s on %s", amount, coin, source)
	case KindLoss:
		return fmt.Sprintf("Lost %s %s on %s", amount, coin, source)
	default:
		return fmt.Sprintf("Sold %s %s on %s", amount, coin, source)
	}
}
