package cryptotax

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApplyCarryover(t *testing.T) {
	testCases := []struct {
		name      string
		summary   Summary
		prior     Carryover
		netGain   Money
		deduction Money
		next      Carryover
	}{
		{
			name:      "gain",
			summary:   Summary{ShortTerm: USD(5000), LongTerm: USD(0)},
			netGain:   USD(5000),
			deduction: USD(0),
			next:      Carryover{ShortTerm: USD(0), LongTerm: USD(0)},
		},
		{
			name:      "loss under the limit",
			summary:   Summary{ShortTerm: USD(-2000), LongTerm: USD(0)},
			netGain:   USD(0),
			deduction: USD(2000),
			next:      Carryover{ShortTerm: USD(0), LongTerm: USD(0)},
		},
		{
			name:      "short-term absorbs the deduction first",
			summary:   Summary{ShortTerm: USD(-5000), LongTerm: USD(-2000)},
			netGain:   USD(0),
			deduction: USD(3000),
			next:      Carryover{ShortTerm: USD(-2000), LongTerm: USD(-2000)},
		},
		{
			name:      "short-term loss offsets long-term gain",
			summary:   Summary{ShortTerm: USD(-5000), LongTerm: USD(8000)},
			netGain:   USD(3000),
			deduction: USD(0),
			next:      Carryover{ShortTerm: USD(0), LongTerm: USD(0)},
		},
		{
			name:      "long-term loss keeps its character",
			summary:   Summary{ShortTerm: USD(1000), LongTerm: USD(-6000)},
			netGain:   USD(0),
			deduction: USD(3000),
			next:      Carryover{ShortTerm: USD(0), LongTerm: USD(-2000)},
		},
		{
			name:      "prior sign is ignored",
			summary:   Summary{ShortTerm: USD(1000), LongTerm: USD(0)},
			prior:     Carryover{ShortTerm: USD(4000), LongTerm: USD(0)},
			netGain:   USD(0),
			deduction: USD(3000),
			next:      Carryover{ShortTerm: USD(0), LongTerm: USD(0)},
		},
		{
			name:      "collectibles are long-term",
			summary:   Summary{ShortTerm: USD(0), LongTerm: USD(0), Collectibles: USD(500)},
			netGain:   USD(500),
			deduction: USD(0),
			next:      Carryover{ShortTerm: USD(0), LongTerm: USD(0)},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ApplyCarryover(tc.summary, tc.prior, USD(3000))
			assertMoney(t, "net gain", got.NetGain, tc.netGain)
			assertMoney(t, "deduction", got.Deduction, tc.deduction)
			if diff := cmp.Diff(tc.next, got.Next); diff != "" {
				t.Errorf("next carryover mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCarryoverLedger(t *testing.T) {
	book := NewCarryoverLedger(USD(3000))
	book.Set(2023, Carryover{ShortTerm: USD(-1000), LongTerm: USD(0)})

	r := book.Apply(2023, Summary{ShortTerm: USD(-9000), LongTerm: USD(0)})
	assertMoney(t, "deduction", r.Deduction, USD(3000))
	assertMoney(t, "prior", r.Prior.ShortTerm, USD(-1000))

	if diff := cmp.Diff([]int{2023, 2024}, book.Years()); diff != "" {
		t.Errorf("Years() mismatch (-want +got):\n%s", diff)
	}
	assertMoney(t, "2024 carryover", book.Get(2024).ShortTerm, USD(-7000))
	if !book.Get(2030).IsZero() {
		t.Errorf("Get(2030) = %v, want zero", book.Get(2030))
	}
}

// A 2023 loss of 10000 with a 3000 deduction leaves 7000 against 2024.
func TestCarryover_AcrossYears(t *testing.T) {
	e, err := NewEngine(DefaultConfig(), NewLedger(
		newTx("b1", "2023-01-10", Buy, "coinbase", "BTC", 1, 30000),
		newTx("s1", "2023-06-10", Sell, "coinbase", "BTC", 1, 20000),
		newTx("b2", "2024-01-10", Buy, "coinbase", "BTC", 1, 20000),
		newTx("s2", "2024-06-10", Sell, "coinbase", "BTC", 1, 30000),
	))
	if err != nil {
		t.Fatalf("NewEngine() unexpected error: %v", err)
	}
	ctx := context.Background()

	r2023, err := e.Run(ctx, 2023, Carryover{})
	if err != nil {
		t.Fatalf("Run(2023) unexpected error: %v", err)
	}
	assertMoney(t, "2023 deduction", r2023.Carryover.Deduction, USD(3000))
	assertMoney(t, "2023 next", r2023.Carryover.Next.ShortTerm, USD(-7000))

	r2024, err := e.Run(ctx, 2024, r2023.Carryover.Next)
	if err != nil {
		t.Fatalf("Run(2024) unexpected error: %v", err)
	}
	assertMoney(t, "2024 net gain", r2024.Carryover.NetGain, USD(3000))
	if !r2024.Carryover.Next.IsZero() {
		t.Errorf("2024 next = %v, want zero", r2024.Carryover.Next)
	}
}
