package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/cryptotax"
	md "github.com/nao1215/markdown"
)

// CascadeMarkdown renders consecutive years with the carryover flowing from
// one to the next.
func CascadeMarkdown(reports []*cryptotax.Report) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	if len(reports) == 0 {
		doc.H1("Carryover Cascade")
		return doc.String()
	}
	doc.H1(fmt.Sprintf("Carryover Cascade %d-%d", reports[0].Year, reports[len(reports)-1].Year))

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Year", "Short-term", "Long-term", "Prior Carryover", "Net Gain", "Deduction", "Next Short-term", "Next Long-term"},
	}
	for _, r := range reports {
		c := r.Carryover
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(r.Year),
			r.Summary.ShortTerm.SignedString(),
			r.Summary.LongTerm.Add(r.Summary.Collectibles).SignedString(),
			c.Prior.ShortTerm.Add(c.Prior.LongTerm).SignedString(),
			c.NetGain.String(),
			c.Deduction.String(),
			c.Next.ShortTerm.SignedString(),
			c.Next.LongTerm.SignedString(),
		})
	}
	doc.Table(table)
	return doc.String()
}
