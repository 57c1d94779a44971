package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/cryptotax"
)

// HoldingsMarkdown renders the open positions at the end of year, one row
// per coin and source.
func HoldingsMarkdown(year int, holdings []cryptotax.Holding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Holdings at the end of %d\n\n", year)
	fmt.Fprintln(&b, "| Coin | Source | Amount | Cost Basis | Lots |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|")

	total := cryptotax.USD(0)
	for _, h := range holdings {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d |\n",
			h.Coin,
			h.Source,
			h.Amount,
			h.CostBasis,
			h.Lots,
		)
		total = total.Add(h.CostBasis)
	}
	fmt.Fprintf(&b, "| **%s** | | | **%s** | |\n", "Total", total)
	return b.String()
}
