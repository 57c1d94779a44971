package cryptotax

import (
	"fmt"
	"strings"
)

// CostBasisMethod defines the order in which lots are consumed by a disposal.
type CostBasisMethod int

const (
	// FIFO (First-In, First-Out) consumes the oldest lots first.
	FIFO CostBasisMethod = iota
	// HIFO (Highest-In, First-Out) consumes the lots with the highest cost per unit first.
	HIFO
)

func (m CostBasisMethod) String() string {
	switch m {
	case FIFO:
		return "fifo"
	case HIFO:
		return "hifo"
	default:
		return "unknown"
	}
}

// ParseCostBasisMethod parses a string into a CostBasisMethod, ignoring case.
func ParseCostBasisMethod(s string) (CostBasisMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fifo":
		return FIFO, nil
	case "hifo":
		return HIFO, nil
	default:
		return 0, fmt.Errorf("unknown cost basis method: %q", s)
	}
}

func (m CostBasisMethod) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *CostBasisMethod) UnmarshalText(text []byte) error {
	v, err := ParseCostBasisMethod(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
