package cryptotax

import (
	"cmp"
	"slices"
	"time"
)

// Lot represents the open remainder of a single acquisition, used for cost
// basis calculations.
type Lot struct {
	Coin           string
	Source         string
	Remaining      Quantity
	CostPerUnit    Money
	Acquired       time.Time
	IsIncome       bool
	WashAdjustment Money // accumulated per-unit increase from disallowed wash sale losses.

	origin *lineage
	seq    int
}

// Take is a quantity consumed from a lot.
type Take struct {
	Lot         *Lot
	Amount      Quantity
	CostPerUnit Money // basis per unit when the take happened.
}

// Cost returns the basis of the take.
func (t Take) Cost() Money { return t.CostPerUnit.Mul(t.Amount) }

// lineage indexes everything that derives from one acquisition: the lot it
// opened, the fragments transfers created and the disposals that consumed any
// of them. The wash sale pass reaches lots through it.
type lineage struct {
	coin       string
	acquired   time.Time
	txID       string
	action     Action
	amount     Quantity
	lots       []*Lot
	takes      []lineageTake
	washUsed   Quantity // units used as replacement, as of washUsedAt.
	washUsedAt time.Time
}

type lineageTake struct {
	disposal *Disposal
	amount   Quantity
}

// disposedThrough returns the units of the lineage disposed at or before t.
func (l *lineage) disposedThrough(t time.Time) Quantity {
	var q Quantity
	for _, tk := range l.takes {
		if !tk.disposal.Date.After(t) {
			q = q.Add(tk.amount)
		}
	}
	return q
}

// usedThrough returns the units still held at t that already replaced a
// loss. Units disposed after a wash sale are counted against those first.
func (l *lineage) usedThrough(t time.Time) Quantity {
	if !l.washUsed.IsPositive() {
		return Q(0)
	}
	since := l.disposedThrough(t).Sub(l.disposedThrough(l.washUsedAt))
	used := l.washUsed.Sub(since)
	if !used.IsPositive() {
		return Q(0)
	}
	return used
}

// adjust raises the basis of the units still held after the sale at t by
// perUnit: the fragments of the lineage and units disposed after t.
func (l *lineage) adjust(perUnit Money, t time.Time) {
	// consumed fragments are updated too, they may be part of an earlier
	// holdings snapshot.
	for _, lot := range l.lots {
		lot.CostPerUnit = lot.CostPerUnit.Add(perUnit)
		lot.WashAdjustment = lot.WashAdjustment.Add(perUnit)
	}
	for _, tk := range l.takes {
		if tk.disposal.Date.After(t) {
			tk.disposal.CostBasis = tk.disposal.CostBasis.Add(perUnit.Mul(tk.amount))
		}
	}
}

type bucket struct{ coin, source string }

type lineageKey struct {
	coin     string
	acquired int64
	txID     string
}

// LotLedger holds the open lots of every (coin, source) bucket.
// Its zero value is not usable, use NewLotLedger.
type LotLedger struct {
	buckets  map[bucket][]*Lot
	index    map[lineageKey]*lineage
	lineages []*lineage // creation order
	seq      int
}

// NewLotLedger returns an empty ledger.
func NewLotLedger() *LotLedger {
	return &LotLedger{
		buckets: make(map[bucket][]*Lot),
		index:   make(map[lineageKey]*lineage),
	}
}

// Open creates a lot for an acquisition. origin identifies the acquiring
// transaction. Non positive amounts open nothing and return nil.
func (l *LotLedger) Open(coin, source string, amount Quantity, costPerUnit Money, acquired time.Time, isIncome bool, origin string, action Action) *Lot {
	if !amount.IsPositive() {
		return nil
	}
	key := lineageKey{coin: coin, acquired: acquired.UnixNano(), txID: origin}
	lin, ok := l.index[key]
	if !ok {
		lin = &lineage{coin: coin, acquired: acquired, txID: origin, action: action}
		l.index[key] = lin
		l.lineages = append(l.lineages, lin)
	}
	lin.amount = lin.amount.Add(amount)
	lot := &Lot{
		Coin:        coin,
		Source:      source,
		Remaining:   amount,
		CostPerUnit: costPerUnit,
		Acquired:    acquired,
		IsIncome:    isIncome,
		origin:      lin,
	}
	l.insert(lot)
	return lot
}

func (l *LotLedger) insert(lot *Lot) {
	l.seq++
	lot.seq = l.seq
	lot.origin.lots = append(lot.origin.lots, lot)
	b := bucket{lot.Coin, lot.Source}
	l.buckets[b] = append(l.buckets[b], lot)
}

// PeekOrder returns the open lots a disposal would consume, in consumption
// order. When pooled is true every source holding coin is considered.
func (l *LotLedger) PeekOrder(coin, source string, method CostBasisMethod, pooled bool) []*Lot {
	var open []*Lot
	if pooled {
		for b, lots := range l.buckets {
			if b.coin == coin {
				open = append(open, lots...)
			}
		}
	} else {
		open = slices.Clone(l.buckets[bucket{coin, source}])
	}
	// seq is unique, so both orders are total and map iteration does not leak.
	switch method {
	case HIFO:
		slices.SortFunc(open, func(a, b *Lot) int {
			if c := b.CostPerUnit.value.Cmp(a.CostPerUnit.value); c != 0 {
				return c
			}
			if c := a.Acquired.Compare(b.Acquired); c != 0 {
				return c
			}
			return cmp.Compare(a.seq, b.seq)
		})
	default:
		slices.SortFunc(open, func(a, b *Lot) int {
			if c := a.Acquired.Compare(b.Acquired); c != 0 {
				return c
			}
			return cmp.Compare(a.seq, b.seq)
		})
	}
	return open
}

// Consume removes amount from the open lots in method order. It returns the
// takes and the quantity that could not be found.
func (l *LotLedger) Consume(coin, source string, amount Quantity, method CostBasisMethod, pooled bool) (takes []Take, shortfall Quantity) {
	left := amount
	for _, lot := range l.PeekOrder(coin, source, method, pooled) {
		if !left.IsPositive() {
			break
		}
		taken := MinQ(lot.Remaining, left)
		takes = append(takes, Take{Lot: lot, Amount: taken, CostPerUnit: lot.CostPerUnit})
		lot.Remaining = lot.Remaining.Sub(taken)
		left = left.Sub(taken)
		if lot.Remaining.IsZero() {
			l.remove(lot)
		}
	}
	return takes, left
}

// Move transfers up to amount of coin from one source bucket to another,
// copying acquisition date and basis. It returns the moved quantity.
func (l *LotLedger) Move(coin, from, to string, amount Quantity, method CostBasisMethod) Quantity {
	takes, shortfall := l.Consume(coin, from, amount, method, false)
	for _, tk := range takes {
		moved := &Lot{
			Coin:           coin,
			Source:         to,
			Remaining:      tk.Amount,
			CostPerUnit:    tk.Lot.CostPerUnit,
			Acquired:       tk.Lot.Acquired,
			IsIncome:       tk.Lot.IsIncome,
			WashAdjustment: tk.Lot.WashAdjustment,
			origin:         tk.Lot.origin,
		}
		l.insert(moved)
	}
	return amount.Sub(shortfall)
}

// record links the takes of a disposal to their lineages.
func (l *LotLedger) record(d *Disposal, takes []Take) {
	for _, tk := range takes {
		tk.Lot.origin.takes = append(tk.Lot.origin.takes, lineageTake{disposal: d, amount: tk.Amount})
	}
}

func (l *LotLedger) remove(lot *Lot) {
	b := bucket{lot.Coin, lot.Source}
	l.buckets[b] = slices.DeleteFunc(l.buckets[b], func(x *Lot) bool { return x == lot })
	if len(l.buckets[b]) == 0 {
		delete(l.buckets, b)
	}
}

// Balance returns the open quantity of coin on source.
func (l *LotLedger) Balance(coin, source string) Quantity {
	var q Quantity
	for _, lot := range l.buckets[bucket{coin, source}] {
		q = q.Add(lot.Remaining)
	}
	return q
}

// lineagesOf returns the acquisitions of coin in creation order.
func (l *LotLedger) lineagesOf(coin string) []*lineage {
	var out []*lineage
	for _, lin := range l.lineages {
		if lin.coin == coin {
			out = append(out, lin)
		}
	}
	return out
}

// Holding is the open position of a coin on a source.
type Holding struct {
	Coin      string   `json:"coin"`
	Source    string   `json:"source"`
	Amount    Quantity `json:"amount"`
	CostBasis Money    `json:"cost_basis"`
	Lots      int      `json:"lots"`
}

// lotMark freezes the remaining quantity of a lot.
type lotMark struct {
	lot       *Lot
	remaining Quantity
}

// mark returns the open lots with their current remaining quantity.
func (l *LotLedger) mark() []lotMark {
	var marks []lotMark
	for _, lots := range l.buckets {
		for _, lot := range lots {
			marks = append(marks, lotMark{lot: lot, remaining: lot.Remaining})
		}
	}
	return marks
}

// Snapshot returns the remaining balances per (coin, source), sorted by coin
// then source.
func (l *LotLedger) Snapshot() []Holding { return holdingsOf(l.mark()) }

// holdingsOf values marked quantities at the current basis of their lots, so
// that wash sale adjustments made after the mark are included.
func holdingsOf(marks []lotMark) []Holding {
	index := make(map[bucket]*Holding)
	for _, m := range marks {
		b := bucket{m.lot.Coin, m.lot.Source}
		h, ok := index[b]
		if !ok {
			h = &Holding{Coin: b.coin, Source: b.source, CostBasis: USD(0)}
			index[b] = h
		}
		h.Amount = h.Amount.Add(m.remaining)
		h.CostBasis = h.CostBasis.Add(m.lot.CostPerUnit.Mul(m.remaining))
		h.Lots++
	}
	holdings := make([]Holding, 0, len(index))
	for _, h := range index {
		holdings = append(holdings, *h)
	}
	slices.SortFunc(holdings, func(a, b Holding) int {
		if c := cmp.Compare(a.Coin, b.Coin); c != 0 {
			return c
		}
		return cmp.Compare(a.Source, b.Source)
	})
	return holdings
}
