package cryptotax

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func openTestLots(t *testing.T) *LotLedger {
	t.Helper()
	l := NewLotLedger()
	l.Open("BTC", "coinbase", Q(1), USD(30000), day("2024-02-01"), false, "b2", Buy)
	l.Open("BTC", "coinbase", Q(1), USD(10000), day("2024-01-01"), false, "b1", Buy)
	l.Open("BTC", "kraken", Q(1), USD(50000), day("2024-01-01"), false, "b3", Buy)
	return l
}

// costs lists the cost per unit of lots, in order.
func costs(lots []*Lot) []string {
	var out []string
	for _, l := range lots {
		out = append(out, l.CostPerUnit.Decimal().String())
	}
	return out
}

func TestLotLedger_PeekOrder(t *testing.T) {
	testCases := []struct {
		name   string
		source string
		method CostBasisMethod
		pooled bool
		want   []string
	}{
		{name: "fifo pooled, same day by insertion", source: "coinbase", method: FIFO, pooled: true, want: []string{"10000", "50000", "30000"}},
		{name: "fifo isolated", source: "coinbase", method: FIFO, want: []string{"10000", "30000"}},
		{name: "hifo pooled", source: "coinbase", method: HIFO, pooled: true, want: []string{"50000", "30000", "10000"}},
		{name: "hifo isolated", source: "coinbase", method: HIFO, want: []string{"30000", "10000"}},
		{name: "unknown source isolated", source: "binance", method: FIFO, want: nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := openTestLots(t)
			got := costs(l.PeekOrder("BTC", tc.source, tc.method, tc.pooled))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("PeekOrder() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLotLedger_HIFOResorts(t *testing.T) {
	l := openTestLots(t)
	first := l.PeekOrder("BTC", "coinbase", HIFO, false)[0]
	if !first.CostPerUnit.Equal(USD(30000)) {
		t.Fatalf("first HIFO lot costs %s, want 30000", first.CostPerUnit.Decimal())
	}
	// a basis adjustment between two disposals changes the order.
	low := l.PeekOrder("BTC", "coinbase", HIFO, false)[1]
	low.CostPerUnit = USD(40000)

	takes, shortfall := l.Consume("BTC", "coinbase", Q(0.5), HIFO, false)
	if len(takes) != 1 || takes[0].Lot != low {
		t.Fatalf("Consume() did not take from the adjusted lot: %+v", takes)
	}
	assertQuantity(t, "shortfall", shortfall, Q(0))
	assertMoney(t, "cost", takes[0].Cost(), USD(20000))
}

func TestLotLedger_Consume(t *testing.T) {
	l := openTestLots(t)

	takes, shortfall := l.Consume("BTC", "coinbase", Q(1.5), FIFO, false)
	if len(takes) != 2 {
		t.Fatalf("Consume() returned %d takes, want 2", len(takes))
	}
	assertQuantity(t, "first take", takes[0].Amount, Q(1))
	assertQuantity(t, "second take", takes[1].Amount, Q(0.5))
	assertMoney(t, "first cost", takes[0].Cost(), USD(10000))
	assertMoney(t, "second cost", takes[1].Cost(), USD(15000))
	assertQuantity(t, "shortfall", shortfall, Q(0))
	assertQuantity(t, "coinbase balance", l.Balance("BTC", "coinbase"), Q(0.5))

	// the isolated bucket cannot borrow from kraken.
	_, shortfall = l.Consume("BTC", "coinbase", Q(2), FIFO, false)
	assertQuantity(t, "isolated shortfall", shortfall, Q(1.5))
	assertQuantity(t, "kraken balance", l.Balance("BTC", "kraken"), Q(1))

	// the pool can.
	_, shortfall = l.Consume("BTC", "coinbase", Q(2), FIFO, true)
	assertQuantity(t, "pooled shortfall", shortfall, Q(1))
	if got := l.Snapshot(); len(got) != 0 {
		t.Errorf("Snapshot() = %v, want no holdings", got)
	}
}

func TestLotLedger_Move(t *testing.T) {
	l := openTestLots(t)

	moved := l.Move("BTC", "coinbase", "ledger", Q(3), FIFO)
	assertQuantity(t, "moved", moved, Q(2))

	lots := l.PeekOrder("BTC", "ledger", FIFO, false)
	if len(lots) != 2 {
		t.Fatalf("destination has %d lots, want 2", len(lots))
	}
	if !lots[0].Acquired.Equal(day("2024-01-01")) || !lots[0].CostPerUnit.Equal(USD(10000)) {
		t.Errorf("first moved lot = %v %s, want 2024-01-01 10000", lots[0].Acquired, lots[0].CostPerUnit.Decimal())
	}
	if !lots[1].Acquired.Equal(day("2024-02-01")) || !lots[1].CostPerUnit.Equal(USD(30000)) {
		t.Errorf("second moved lot = %v %s, want 2024-02-01 30000", lots[1].Acquired, lots[1].CostPerUnit.Decimal())
	}
	if lots[0].origin != l.lineagesOf("BTC")[1] {
		t.Error("moved lot lost its lineage")
	}
}

func TestLotLedger_Snapshot(t *testing.T) {
	l := openTestLots(t)
	l.Open("ETH", "coinbase", Q(2), USD(1500), day("2024-01-03"), true, "i1", Income)
	l.Open("ETH", "coinbase", Q(0), USD(1500), day("2024-01-03"), true, "i2", Income)

	want := []Holding{
		{Coin: "BTC", Source: "coinbase", Amount: Q(2), CostBasis: USD(40000), Lots: 2},
		{Coin: "BTC", Source: "kraken", Amount: Q(1), CostBasis: USD(50000), Lots: 1},
		{Coin: "ETH", Source: "coinbase", Amount: Q(2), CostBasis: USD(3000), Lots: 1},
	}
	if diff := cmp.Diff(want, l.Snapshot()); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
}
