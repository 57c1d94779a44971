package cryptotax

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func washConfig() Config {
	cfg := DefaultConfig()
	cfg.WashSale = true
	return cfg
}

func TestWashSale_SmallReplacement(t *testing.T) {
	r := runYear(t, washConfig(), 2024,
		newTx("b1", "2024-01-02", Buy, "coinbase", "BTC", 10, 20000),
		newTx("s1", "2024-03-01", Sell, "coinbase", "BTC", 10, 15000),
		newTx("b2", "2024-03-15", Buy, "coinbase", "BTC", 0.0001, 15000),
	)
	if len(r.WashSales) != 1 {
		t.Fatalf("got %d wash sales, want 1", len(r.WashSales))
	}
	w := r.WashSales[0]
	assertMoney(t, "loss", w.Loss, USD(50000))
	assertQuantity(t, "replacement", w.ReplacementQty, Q(0.0001))
	assertQuantity(t, "sold", w.SoldQty, Q(10))
	assertMoney(t, "disallowed", w.Disallowed, USD(0.5))
	if diff := cmp.Diff([]string{"2024-03-15"}, dates(w)); diff != "" {
		t.Errorf("replacement dates mismatch (-want +got):\n%s", diff)
	}

	d := disposalOf(t, r, "s1", KindSale)
	assertMoney(t, "gain", d.Gain(), USD(-49999.5))
	assertMoney(t, "wash disallowed", d.WashDisallowed, USD(0.5))
	assertMoney(t, "summary disallowed", r.Summary.WashDisallowed, USD(0.5))

	// the disallowed loss moved into the replacement lot.
	want := []Holding{{Coin: "BTC", Source: "coinbase", Amount: Q(0.0001), CostBasis: USD(2), Lots: 1}}
	if diff := cmp.Diff(want, r.Holdings); diff != "" {
		t.Errorf("holdings mismatch (-want +got):\n%s", diff)
	}
}

func dates(w WashSale) []string {
	var out []string
	for _, d := range w.ReplacementDates {
		out = append(out, d.Format("2006-01-02"))
	}
	return out
}

func TestWashSale_FullReplacement(t *testing.T) {
	r := runYear(t, washConfig(), 2024,
		newTx("b1", "2024-01-02", Buy, "coinbase", "BTC", 1, 100),
		newTx("s1", "2024-02-01", Sell, "coinbase", "BTC", 1, 80),
		newTx("b2", "2024-02-10", Buy, "coinbase", "BTC", 1, 80),
		newTx("s2", "2024-06-01", Sell, "coinbase", "BTC", 1, 90),
	)
	s1 := disposalOf(t, r, "s1", KindSale)
	if !s1.Gain().IsZero() {
		t.Errorf("fully replaced loss realized %s, want exactly 0", s1.Gain().Decimal())
	}
	assertMoney(t, "disallowed", s1.WashDisallowed, USD(20))

	// the deferred loss is realized with the replacement.
	s2 := disposalOf(t, r, "s2", KindSale)
	assertMoney(t, "replacement basis", s2.CostBasis, USD(100))
	assertMoney(t, "replacement gain", s2.Gain(), USD(-10))
	if len(r.WashSales) != 1 {
		t.Errorf("got %d wash sales, want 1", len(r.WashSales))
	}
}

func TestWashSale_Window(t *testing.T) {
	testCases := []struct {
		name       string
		repurchase string
		want       bool
	}{
		{name: "30 days after", repurchase: "2024-03-31", want: true},
		{name: "31 days after", repurchase: "2024-04-01", want: false},
		{name: "30 days before", repurchase: "2024-01-31", want: true},
		{name: "31 days before", repurchase: "2024-01-30", want: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := runYear(t, washConfig(), 2024,
				newTx("b1", "2023-12-01", Buy, "coinbase", "BTC", 1, 100),
				newTx("b2", tc.repurchase, Buy, "kraken", "BTC", 1, 60),
				newTx("s1", "2024-03-01", Sell, "coinbase", "BTC", 1, 50),
			)
			if got := len(r.WashSales) == 1; got != tc.want {
				t.Errorf("wash sale = %v, want %v", got, tc.want)
			}
			if !tc.want {
				assertMoney(t, "realized", disposalOf(t, r, "s1", KindSale).Gain(), USD(-50))
			}
		})
	}
}

func TestWashSale_SameInstantIsNotAReplacement(t *testing.T) {
	r := runYear(t, washConfig(), 2024,
		newTx("b1", "2024-01-01", Buy, "coinbase", "BTC", 1, 100),
		newTx("s1", "2024-03-01", Sell, "coinbase", "BTC", 1, 50),
		newTx("b2", "2024-03-01", Buy, "kraken", "BTC", 1, 50),
	)
	if len(r.WashSales) != 0 {
		t.Errorf("got %d wash sales, want none", len(r.WashSales))
	}
}

func TestWashSale_ProportionalSplit(t *testing.T) {
	// pre-buy of 1 and post-buy of 3 replace 2 units sold at a loss of 100.
	r := runYear(t, washConfig(), 2024,
		newTx("b1", "2024-01-01", Buy, "coinbase", "BTC", 2, 100),
		newTx("pre", "2024-02-20", Buy, "kraken", "BTC", 1, 50),
		newTx("s1", "2024-03-01", Sell, "coinbase", "BTC", 2, 50),
		newTx("post", "2024-03-10", Buy, "coinbase", "BTC", 3, 50),
	)
	if len(r.WashSales) != 1 {
		t.Fatalf("got %d wash sales, want 1", len(r.WashSales))
	}
	w := r.WashSales[0]
	assertQuantity(t, "replacement", w.ReplacementQty, Q(2))
	assertMoney(t, "disallowed", w.Disallowed, USD(100))
	if diff := cmp.Diff([]string{"2024-02-20", "2024-03-10"}, dates(w)); diff != "" {
		t.Errorf("replacement dates mismatch (-want +got):\n%s", diff)
	}

	// 1/4 of the disallowed loss goes to the pre-buy, 3/4 to the post-buy.
	want := []Holding{
		{Coin: "BTC", Source: "coinbase", Amount: Q(3), CostBasis: USD(225), Lots: 1},
		{Coin: "BTC", Source: "kraken", Amount: Q(1), CostBasis: USD(75), Lots: 1},
	}
	if diff := cmp.Diff(want, r.Holdings); diff != "" {
		t.Errorf("holdings mismatch (-want +got):\n%s", diff)
	}
}

func TestWashSale_ReplacementUsedOnce(t *testing.T) {
	// one replacement unit cannot absorb two losses.
	r := runYear(t, washConfig(), 2024,
		newTx("b1", "2024-01-01", Buy, "coinbase", "BTC", 2, 100),
		newTx("s1", "2024-03-01", Sell, "coinbase", "BTC", 1, 50),
		newTx("b2", "2024-03-05", Buy, "kraken", "BTC", 1, 50),
		newTx("s2", "2024-03-08", Sell, "coinbase", "BTC", 1, 50),
	)
	if len(r.WashSales) != 1 {
		t.Fatalf("got %d wash sales, want 1", len(r.WashSales))
	}
	if r.WashSales[0].TxID != "s1" {
		t.Errorf("wash sale on %s, want s1", r.WashSales[0].TxID)
	}
	assertMoney(t, "second loss", disposalOf(t, r, "s2", KindSale).Gain(), USD(-50))
}

func TestWashSale_ReplacementSoldThenReused(t *testing.T) {
	// b2 replaces s1, then s2 sells one of its units: the other unit is still
	// held and replaces part of the s2 loss.
	r := runYear(t, washConfig(), 2024,
		newTx("b1", "2024-01-01", Buy, "coinbase", "BTC", 2, 100),
		newTx("s1", "2024-03-01", Sell, "coinbase", "BTC", 1, 50),
		newTx("b2", "2024-03-05", Buy, "coinbase", "BTC", 2, 50),
		newTx("s2", "2024-03-10", Sell, "coinbase", "BTC", 2, 60),
	)
	if len(r.WashSales) != 2 {
		t.Fatalf("got %d wash sales, want 2", len(r.WashSales))
	}
	first, second := r.WashSales[0], r.WashSales[1]
	assertQuantity(t, "s1 replacement", first.ReplacementQty, Q(1))
	assertMoney(t, "s1 disallowed", first.Disallowed, USD(50))

	if second.TxID != "s2" {
		t.Errorf("second wash sale on %s, want s2", second.TxID)
	}
	assertMoney(t, "s2 loss", second.Loss, USD(55))
	assertQuantity(t, "s2 replacement", second.ReplacementQty, Q(1))
	assertMoney(t, "s2 disallowed", second.Disallowed, USD(27.5))
	if diff := cmp.Diff([]string{"2024-03-05"}, dates(second)); diff != "" {
		t.Errorf("replacement dates mismatch (-want +got):\n%s", diff)
	}

	s2 := disposalOf(t, r, "s2", KindSale)
	assertMoney(t, "s2 basis", s2.CostBasis, USD(147.5))
	assertMoney(t, "s2 gain", s2.Gain(), USD(-27.5))

	want := []Holding{{Coin: "BTC", Source: "coinbase", Amount: Q(1), CostBasis: USD(102.5), Lots: 1}}
	if diff := cmp.Diff(want, r.Holdings); diff != "" {
		t.Errorf("holdings mismatch (-want +got):\n%s", diff)
	}
}

func TestWashSale_AcrossYearEnd(t *testing.T) {
	txs := []Transaction{
		newTx("b1", "2024-06-01", Buy, "coinbase", "BTC", 1, 100),
		newTx("s1", "2024-12-20", Sell, "coinbase", "BTC", 1, 40),
		newTx("b2", "2025-01-05", Buy, "coinbase", "BTC", 1, 45),
		newTx("s2", "2025-03-01", Sell, "coinbase", "BTC", 1, 50),
	}
	r2024 := runYear(t, washConfig(), 2024, txs...)
	if len(r2024.WashSales) != 1 {
		t.Fatalf("2024: got %d wash sales, want 1", len(r2024.WashSales))
	}
	assertMoney(t, "2024 realized", r2024.Summary.ShortTerm, USD(0))

	r2025 := runYear(t, washConfig(), 2025, txs...)
	if len(r2025.WashSales) != 0 {
		t.Errorf("2025: got %d wash sales, want none", len(r2025.WashSales))
	}
	assertMoney(t, "2025 basis", disposalOf(t, r2025, "s2", KindSale).CostBasis, USD(105))
}

func TestWashSale_Disabled(t *testing.T) {
	r := runYear(t, DefaultConfig(), 2024,
		newTx("b1", "2024-01-02", Buy, "coinbase", "BTC", 1, 100),
		newTx("s1", "2024-02-01", Sell, "coinbase", "BTC", 1, 80),
		newTx("b2", "2024-02-10", Buy, "coinbase", "BTC", 1, 80),
	)
	if len(r.WashSales) != 0 {
		t.Errorf("got %d wash sales, want none", len(r.WashSales))
	}
	assertMoney(t, "realized", r.Summary.ShortTerm, USD(-20))
}

func TestWashSale_GainIgnored(t *testing.T) {
	r := runYear(t, washConfig(), 2024,
		newTx("b1", "2024-01-02", Buy, "coinbase", "BTC", 1, 100),
		newTx("s1", "2024-02-01", Sell, "coinbase", "BTC", 1, 120),
		newTx("b2", "2024-02-10", Buy, "coinbase", "BTC", 1, 120),
	)
	if len(r.WashSales) != 0 {
		t.Errorf("got %d wash sales, want none", len(r.WashSales))
	}
}
