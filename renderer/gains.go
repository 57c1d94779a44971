package renderer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/etnz/cryptotax"
	md "github.com/nao1215/markdown"
)

const dateLayout = "2006-01-02"

// GainsMarkdown renders a tax year report: totals, carryover, every
// disposal and the optional income, wash sale and skipped sections.
func GainsMarkdown(r *cryptotax.Report) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Capital Gains Report %d", r.Year))
	doc.PlainText(fmt.Sprintf("Method: %s", r.Method))

	s := r.Summary
	doc.H2("Summary")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Total", "Amount"},
		Rows: [][]string{
			{"Short-term", s.ShortTerm.SignedString()},
			{"Long-term", s.LongTerm.SignedString()},
			{"Collectibles", s.Collectibles.SignedString()},
			{md.Bold("Net"), md.Bold(s.Net().SignedString())},
			{"Proceeds", s.Proceeds.String()},
			{"Cost basis", s.CostBasis.String()},
			{"Wash sale disallowed", s.WashDisallowed.String()},
			{"Income", s.Income.String()},
		},
	})
	if s.Unmatched > 0 {
		doc.PlainText(fmt.Sprintf("%d disposals have no local basis and use $0.00.", s.Unmatched))
	}

	c := r.Carryover
	doc.H2("Carryover")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"", "Short-term", "Long-term"},
		Rows: [][]string{
			{"Prior", c.Prior.ShortTerm.SignedString(), c.Prior.LongTerm.SignedString()},
			{"Net", c.NetShortTerm.SignedString(), c.NetLongTerm.SignedString()},
			{"Next", c.Next.ShortTerm.SignedString(), c.Next.LongTerm.SignedString()},
		},
	})
	doc.PlainText(fmt.Sprintf("Net gain: %s, deduction: %s (limit %s)", c.NetGain, c.Deduction, c.Limit))

	doc.H2("Disposals")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Date", "Acquired", "Description", "Term", "Proceeds", "Cost Basis", "Gain"},
	}
	for _, d := range r.Disposals {
		desc := d.Description
		if d.Unmatched {
			desc += " (unmatched)"
		}
		table.Rows = append(table.Rows, []string{
			d.Date.Format(dateLayout),
			d.Acquired.Format(dateLayout),
			desc,
			d.Term.String(),
			d.Proceeds.String(),
			d.CostBasis.String(),
			d.Gain().SignedString(),
		})
	}
	doc.Table(table)
	doc.Build()

	ConditionalBlock(&buf, func(w io.Writer) bool {
		fmt.Fprintln(w)
		doc := md.NewMarkdown(w)
		doc.H2("Income")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight},
			Header:    []string{"Date", "Coin", "Source", "Amount", "Value"},
		}
		for _, inc := range r.Income {
			table.Rows = append(table.Rows, []string{inc.Date.Format(dateLayout), inc.Coin, inc.Source, inc.Amount.String(), inc.ValueUSD.String()})
		}
		doc.Table(table)
		doc.Build()
		return len(r.Income) > 0
	})

	ConditionalBlock(&buf, func(w io.Writer) bool {
		fmt.Fprintln(w)
		doc := md.NewMarkdown(w)
		doc.H2("Wash Sales")
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"Sale", "Coin", "Loss", "Sold", "Replaced", "Disallowed"},
		}
		for _, ws := range r.WashSales {
			table.Rows = append(table.Rows, []string{
				ws.SaleDate.Format(dateLayout),
				ws.Coin,
				ws.Loss.String(),
				ws.SoldQty.String(),
				ws.ReplacementQty.String(),
				ws.Disallowed.String(),
			})
		}
		doc.Table(table)
		doc.Build()
		return len(r.WashSales) > 0
	})

	ConditionalBlock(&buf, func(w io.Writer) bool {
		fmt.Fprintln(w)
		doc := md.NewMarkdown(w)
		doc.H2("Skipped Transactions")
		for _, sk := range r.Skipped {
			doc.BulletList(fmt.Sprintf("%s: %s: %s", sk.TxID, sk.Field, sk.Reason))
		}
		doc.Build()
		return len(r.Skipped) > 0
	})

	return buf.String()
}
