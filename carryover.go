package cryptotax

import (
	"maps"
	"slices"
)

// Carryover is the unused net capital loss brought into a tax year. Both
// values are losses: they are zero or negative.
type Carryover struct {
	ShortTerm Money `json:"short_term"`
	LongTerm  Money `json:"long_term"`
}

// IsZero reports whether there is no loss to carry.
func (c Carryover) IsZero() bool { return c.ShortTerm.IsZero() && c.LongTerm.IsZero() }

// normalized returns the carryover as losses, whatever sign was supplied.
func (c Carryover) normalized() Carryover {
	return Carryover{ShortTerm: USD(0).Sub(c.ShortTerm.Abs()), LongTerm: USD(0).Sub(c.LongTerm.Abs())}
}

// CarryoverResult is the netting of one year's gains with the prior carryover.
type CarryoverResult struct {
	Prior Carryover `json:"prior"`
	// NetShortTerm and NetLongTerm are the netted totals before the
	// deduction. Collectible gains are part of the long-term side.
	NetShortTerm Money `json:"net_short_term"`
	NetLongTerm  Money `json:"net_long_term"`
	// NetGain is the taxable net capital gain, zero for a net loss.
	NetGain Money `json:"net_gain"`
	// Deduction is the part of a net loss deducted this year, at most Limit.
	Deduction Money     `json:"deduction"`
	Limit     Money     `json:"limit"`
	Next      Carryover `json:"next"`
}

// ApplyCarryover nets the year's gains with the prior carryover and returns
// the carryover for the next year.
func ApplyCarryover(s Summary, prior Carryover, limit Money) CarryoverResult {
	prior = prior.normalized()
	st := s.ShortTerm.Add(prior.ShortTerm)
	lt := s.LongTerm.Add(s.Collectibles).Add(prior.LongTerm)

	// a loss on one side offsets a gain on the other.
	if st.IsNegative() != lt.IsNegative() && !st.IsZero() && !lt.IsZero() {
		sum := st.Add(lt)
		if st.IsNegative() {
			if sum.IsNegative() {
				st, lt = sum, USD(0)
			} else {
				st, lt = USD(0), sum
			}
		} else {
			if sum.IsNegative() {
				st, lt = USD(0), sum
			} else {
				st, lt = sum, USD(0)
			}
		}
	}

	r := CarryoverResult{
		Prior:        prior,
		NetShortTerm: st,
		NetLongTerm:  lt,
		NetGain:      USD(0),
		Deduction:    USD(0),
		Limit:        limit,
		Next:         Carryover{ShortTerm: USD(0), LongTerm: USD(0)},
	}
	total := st.Add(lt)
	if !total.IsNegative() {
		r.NetGain = total
		return r
	}

	r.Deduction = MinMoney(total.Neg(), limit)
	left := r.Deduction
	// short-term losses absorb the deduction first.
	if st.IsNegative() {
		used := MinMoney(st.Neg(), left)
		st, left = st.Add(used), left.Sub(used)
	}
	if lt.IsNegative() {
		used := MinMoney(lt.Neg(), left)
		lt = lt.Add(used)
	}
	r.Next = Carryover{ShortTerm: MinMoney(st, USD(0)), LongTerm: MinMoney(lt, USD(0))}
	return r
}

// CarryoverLedger tracks the carryover available at the start of each year.
type CarryoverLedger struct {
	limit Money
	years map[int]Carryover
}

// NewCarryoverLedger returns an empty ledger applying limit every year.
func NewCarryoverLedger(limit Money) *CarryoverLedger {
	return &CarryoverLedger{limit: limit, years: make(map[int]Carryover)}
}

// Set records the carryover available at the start of year.
func (c *CarryoverLedger) Set(year int, co Carryover) { c.years[year] = co.normalized() }

// Get returns the carryover available at the start of year, zero if unknown.
func (c *CarryoverLedger) Get(year int) Carryover {
	if co, ok := c.years[year]; ok {
		return co
	}
	return Carryover{ShortTerm: USD(0), LongTerm: USD(0)}
}

// Years returns the years with a recorded carryover, in increasing order.
func (c *CarryoverLedger) Years() []int { return slices.Sorted(maps.Keys(c.years)) }

// Apply nets year's summary with its carryover and records the result as the
// carryover of the following year.
func (c *CarryoverLedger) Apply(year int, s Summary) CarryoverResult {
	r := ApplyCarryover(s, c.Get(year), c.limit)
	c.years[year+1] = r.Next
	return r
}
