package cryptotax

import (
	"slices"
	"strings"
)

// Config holds the tax policy of a computation. It is copied by NewEngine
// and never modified afterwards.
type Config struct {
	// Method selects the lot consumption order.
	Method CostBasisMethod
	// WashSale enables the disallowance of losses with replacement purchases
	// within 30 days.
	WashSale bool
	// StrictBroker restricts disposals on a broker source to the lots held on
	// that same source.
	StrictBroker bool
	// BrokerSources lists the sources subject to StrictBroker.
	BrokerSources []string
	// StakingTaxableOnReceipt makes INCOME ordinary income at its fair value
	// on receipt. Otherwise rewards open zero-basis lots.
	StakingTaxableOnReceipt bool
	// Collectibles lists the coins whose long-term gains are reported apart.
	Collectibles []string
	// DeductionLimit caps the net capital loss deducted in a single year.
	DeductionLimit Money
}

// DefaultConfig returns a FIFO configuration with income taxable on receipt
// and the $3,000 annual loss deduction limit.
func DefaultConfig() Config {
	return Config{
		Method:                  FIFO,
		StakingTaxableOnReceipt: true,
		DeductionLimit:          USD(3000),
	}
}

// Validate returns an error wrapping ErrInvalidConfiguration when the
// configuration cannot be used.
func (c Config) Validate() error {
	if c.Method != FIFO && c.Method != HIFO {
		return configError("unknown cost basis method %d", int(c.Method))
	}
	if c.DeductionLimit.IsNegative() {
		return configError("negative deduction limit %s", c.DeductionLimit)
	}
	if cur := c.DeductionLimit.Currency(); cur != "" && cur != usd {
		return configError("deduction limit must be in USD, got %s", cur)
	}
	for _, s := range c.BrokerSources {
		if strings.TrimSpace(s) == "" {
			return configError("empty broker source name")
		}
	}
	for _, coin := range c.Collectibles {
		if strings.TrimSpace(coin) == "" {
			return configError("empty collectible coin")
		}
	}
	return nil
}

// clone returns a deep copy so that callers cannot alter a running engine.
func (c Config) clone() Config {
	c.BrokerSources = slices.Clone(c.BrokerSources)
	c.Collectibles = slices.Clone(c.Collectibles)
	return c
}

// isolated reports whether disposals on source may only consume lots held on
// source.
func (c Config) isolated(source string) bool {
	return c.StrictBroker && slices.Contains(c.BrokerSources, source)
}

func (c Config) isCollectible(coin string) bool {
	return slices.ContainsFunc(c.Collectibles, func(s string) bool { return strings.EqualFold(s, coin) })
}
