package cryptotax

import (
	"context"
	"testing"
	"time"

	"github.com/etnz/cryptotax/date"
)

// day returns midnight UTC of a "2006-01-02" date.
func day(s string) time.Time { return date.MustParse(s).Time() }

// newTx is a helper for test to create transactions from consts.
func newTx(id, on string, action Action, source, coin string, amount, price float64) Transaction {
	return Transaction{
		ID:       id,
		Date:     day(on),
		Action:   action,
		Source:   source,
		Coin:     coin,
		Amount:   Q(amount),
		PriceUSD: USD(price),
	}
}

// runYear computes year over txs with cfg.
func runYear(t *testing.T, cfg Config, year int, txs ...Transaction) *Report {
	t.Helper()
	e, err := NewEngine(cfg, NewLedger(txs...))
	if err != nil {
		t.Fatalf("NewEngine() unexpected error: %v", err)
	}
	r, err := e.Run(context.Background(), year, Carryover{})
	if err != nil {
		t.Fatalf("Run(%d) unexpected error: %v", year, err)
	}
	return r
}

func assertMoney(t *testing.T, name string, got, want Money) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", name, got.Decimal(), want.Decimal())
	}
}

func assertQuantity(t *testing.T, name string, got, want Quantity) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

// disposalOf returns the first disposal of kind for tx.
func disposalOf(t *testing.T, r *Report, txID string, kind DisposalKind) Disposal {
	t.Helper()
	for _, d := range r.Disposals {
		if d.TxID == txID && d.Kind == kind {
			return d
		}
	}
	t.Fatalf("no %s disposal for transaction %q in %d", kind, txID, r.Year)
	return Disposal{}
}
