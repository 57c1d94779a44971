package cryptotax

import "time"

// IncomeRecord is ordinary income recognized on receipt of a reward.
type IncomeRecord struct {
	TxID     string    `json:"tx_id"`
	Date     time.Time `json:"date"`
	Coin     string    `json:"coin"`
	Source   string    `json:"source"`
	Amount   Quantity  `json:"amount"`
	ValueUSD Money     `json:"value_usd"`
}

// Skipped is a malformed transaction left out of a computation.
type Skipped struct {
	TxID   string `json:"tx_id"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Summary holds the yearly totals.
type Summary struct {
	ShortTerm Money `json:"short_term"`
	// LongTerm excludes collectible coins, whose long-term gains are reported
	// in Collectibles.
	LongTerm       Money `json:"long_term"`
	Collectibles   Money `json:"collectibles"`
	Income         Money `json:"income"`
	Proceeds       Money `json:"proceeds"`
	CostBasis      Money `json:"cost_basis"`
	WashDisallowed Money `json:"wash_disallowed"`
	Unmatched      int   `json:"unmatched"`
}

// Net returns the total realized gain of the year.
func (s Summary) Net() Money { return s.ShortTerm.Add(s.LongTerm).Add(s.Collectibles) }

func summarize(disposals []Disposal, income []IncomeRecord) Summary {
	s := Summary{
		ShortTerm:      USD(0),
		LongTerm:       USD(0),
		Collectibles:   USD(0),
		Income:         USD(0),
		Proceeds:       USD(0),
		CostBasis:      USD(0),
		WashDisallowed: USD(0),
	}
	for _, d := range disposals {
		gain := d.Gain()
		switch {
		case d.Term == ShortTerm:
			s.ShortTerm = s.ShortTerm.Add(gain)
		case d.Collectible:
			s.Collectibles = s.Collectibles.Add(gain)
		default:
			s.LongTerm = s.LongTerm.Add(gain)
		}
		s.Proceeds = s.Proceeds.Add(d.Proceeds)
		s.CostBasis = s.CostBasis.Add(d.CostBasis)
		s.WashDisallowed = s.WashDisallowed.Add(d.WashDisallowed)
		if d.Unmatched {
			s.Unmatched++
		}
	}
	for _, i := range income {
		s.Income = s.Income.Add(i.ValueUSD)
	}
	return s
}

// Report is the result of a tax year computation.
type Report struct {
	Year           int
	Method         CostBasisMethod
	Disposals      []Disposal
	Income         []IncomeRecord
	WashSales      []WashSale
	Holdings       []Holding // at the end of the year.
	Summary        Summary
	Carryover      CarryoverResult
	Reconciliation []ReconciliationRow
	Skipped        []Skipped
}

// MarshalJSON implements the json.Marshaler interface for Report.
func (r Report) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("year", r.Year)
	w.Append("method", r.Method)
	w.Append("summary", r.Summary)
	w.Append("carryover", r.Carryover)
	w.Append("disposals", nonNil(r.Disposals))
	w.Append("income", nonNil(r.Income))
	w.Append("wash_sales", nonNil(r.WashSales))
	w.Append("holdings", nonNil(r.Holdings))
	w.Append("reconciliation", nonNil(r.Reconciliation))
	w.Optional("skipped", r.Skipped)
	return w.MarshalJSON()
}

// nonNil makes empty lists marshal as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
