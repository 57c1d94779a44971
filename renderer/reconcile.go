package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/cryptotax"
	md "github.com/nao1215/markdown"
)

// ReconcileMarkdown renders the disposals of a year grouped by source and
// coin, to compare with the forms issued by each custodian.
func ReconcileMarkdown(year int, rows []cryptotax.ReconciliationRow) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Reconciliation %d", year))

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Source", "Coin", "Disposals", "Unmatched", "Amount", "Proceeds", "Cost Basis", "Gain"},
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.Source,
			r.Coin,
			strconv.Itoa(r.Count),
			strconv.Itoa(r.Unmatched),
			r.Amount.String(),
			r.Proceeds.String(),
			r.CostBasis.String(),
			r.Gain.SignedString(),
		})
	}
	doc.Table(table)
	return doc.String()
}
