package cryptotax

import (
	"cmp"
	"slices"
)

// ReconciliationRow aggregates the disposals of a coin on a source, the way a
// custodian reports them on a 1099.
type ReconciliationRow struct {
	Source    string   `json:"source"`
	Coin      string   `json:"coin"`
	Count     int      `json:"count"`
	Unmatched int      `json:"unmatched"`
	Amount    Quantity `json:"amount"`
	Proceeds  Money    `json:"proceeds"`
	CostBasis Money    `json:"cost_basis"`
	Gain      Money    `json:"gain"`
}

// Reconcile groups disposals by (source, coin), sorted by source then coin.
func Reconcile(disposals []Disposal) []ReconciliationRow {
	type key struct{ source, coin string }
	rows := make(map[key]*ReconciliationRow)
	for _, d := range disposals {
		k := key{d.Source, d.Coin}
		row, ok := rows[k]
		if !ok {
			row = &ReconciliationRow{Source: d.Source, Coin: d.Coin, Proceeds: USD(0), CostBasis: USD(0), Gain: USD(0)}
			rows[k] = row
		}
		row.Count++
		if d.Unmatched {
			row.Unmatched++
		}
		row.Amount = row.Amount.Add(d.Amount)
		row.Proceeds = row.Proceeds.Add(d.Proceeds)
		row.CostBasis = row.CostBasis.Add(d.CostBasis)
		row.Gain = row.Gain.Add(d.Gain())
	}

	out := make([]ReconciliationRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	slices.SortFunc(out, func(a, b ReconciliationRow) int {
		if c := cmp.Compare(a.Source, b.Source); c != 0 {
			return c
		}
		return cmp.Compare(a.Coin, b.Coin)
	})
	return out
}
