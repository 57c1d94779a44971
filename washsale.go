package cryptotax

import (
	"time"

	"github.com/etnz/cryptotax/date"
	"go.uber.org/zap"
)

// washWindowDays is the number of calendar days before and after a loss in
// which a purchase is a replacement.
const washWindowDays = 30

// WashSale records a loss disallowed because of replacement purchases.
type WashSale struct {
	SaleDate         time.Time   `json:"sale_date"`
	Coin             string      `json:"coin"`
	DisposalID       string      `json:"disposal_id"`
	TxID             string      `json:"tx_id"`
	Loss             Money       `json:"loss"` // before adjustment, as a positive amount.
	ReplacementQty   Quantity    `json:"replacement_qty"`
	SoldQty          Quantity    `json:"sold_qty"`
	Disallowed       Money       `json:"disallowed"`
	ReplacementDates []time.Time `json:"replacement_dates"`
}

type replacement struct {
	lin      *lineage
	held     Quantity // units of the lineage still held right after the sale.
	used     Quantity // held units already used by an earlier wash sale.
	eligible Quantity
}

// washPass applies the wash sale rule to every loss dated up to through, in
// chronological order. A disallowed loss reduces the disposal's cost basis and
// is added to the basis of the replacement units, so it is realized when they
// are sold.
//
// When several acquisitions replace the same loss, the disallowed amount is
// split between them in proportion to their eligible quantity.
func washPass(lots *LotLedger, disposals []*Disposal, through date.Date, logger *zap.Logger) []WashSale {
	var records []WashSale
	for _, d := range disposals {
		if date.Of(d.Date).After(through) {
			break
		}
		gain := d.Gain()
		if !gain.IsNegative() || !d.Amount.IsPositive() {
			continue
		}
		candidates := replacementsOf(lots, d)
		if len(candidates) == 0 {
			continue
		}

		var total Quantity
		for _, c := range candidates {
			total = total.Add(c.eligible)
		}
		replaced := MinQ(total, d.Amount)
		loss := gain.Neg()
		disallowed := loss.Mul(replaced).Div(d.Amount)

		d.CostBasis = d.CostBasis.Sub(disallowed)
		d.WashDisallowed = d.WashDisallowed.Add(disallowed)

		rec := WashSale{
			SaleDate:       d.Date,
			Coin:           d.Coin,
			DisposalID:     d.ID,
			TxID:           d.TxID,
			Loss:           loss,
			ReplacementQty: replaced,
			SoldQty:        d.Amount,
			Disallowed:     disallowed,
		}
		allocated := USD(0)
		for i, c := range candidates {
			var share Money
			if i == len(candidates)-1 {
				share = disallowed.Sub(allocated)
			} else {
				share = disallowed.Mul(c.eligible).Div(total)
			}
			allocated = allocated.Add(share)
			c.lin.washUsed = c.used.Add(c.eligible.Mul(replaced).Div(total))
			c.lin.washUsedAt = d.Date
			c.lin.adjust(share.Div(c.held), d.Date)
			rec.ReplacementDates = append(rec.ReplacementDates, c.lin.acquired)
		}
		logger.Debug("wash sale",
			zap.String("tx", d.TxID),
			zap.String("coin", d.Coin),
			zap.Stringer("loss", loss),
			zap.Stringer("replacement", replaced),
			zap.Stringer("disallowed", disallowed))
		records = append(records, rec)
	}
	return records
}

// replacementsOf returns the acquisitions that can replace the units sold by
// d, in chronological order.
func replacementsOf(lots *LotLedger, d *Disposal) []replacement {
	sold := date.Of(d.Date)
	var out []replacement
	for _, lin := range lots.lineagesOf(d.Coin) {
		if !lin.action.isReplacement() || lin.acquired.Equal(d.Date) {
			continue
		}
		days := sold.DaysUntil(date.Of(lin.acquired))
		if days < -washWindowDays || days > washWindowDays {
			continue
		}
		held := lin.amount.Sub(lin.disposedThrough(d.Date))
		if !held.IsPositive() {
			continue
		}
		used := lin.usedThrough(d.Date)
		eligible := held.Sub(used)
		if !eligible.IsPositive() {
			continue
		}
		out = append(out, replacement{lin: lin, held: held, used: used, eligible: eligible})
	}
	return out
}
