package cryptotax

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseDecimal converts a raw value read from a transaction source into a
// decimal. Strings may carry thousands separators ("1,234.5"). Binary floats
// are converted through their shortest decimal representation, so 0.1 becomes
// exactly 0.1.
func ParseDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("missing number")
	case decimal.Decimal:
		return x, nil
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(x, ",", ""))
		s = strings.TrimPrefix(s, "$")
		if s == "" {
			return decimal.Zero, fmt.Errorf("empty number")
		}
		return decimal.NewFromString(s)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, fmt.Errorf("not a finite number: %v", x)
		}
		return decimal.NewFromFloat(x), nil
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return decimal.Zero, fmt.Errorf("not a finite number: %v", x)
		}
		return decimal.NewFromFloat32(x), nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int8:
		return decimal.NewFromInt(int64(x)), nil
	case int16:
		return decimal.NewFromInt(int64(x)), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(x)), 0), nil
	case uint8:
		return decimal.NewFromInt(int64(x)), nil
	case uint16:
		return decimal.NewFromInt(int64(x)), nil
	case uint32:
		return decimal.NewFromInt(int64(x)), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported number type %T", v)
	}
}

// DecimalOr is ParseDecimal returning def when v cannot be parsed.
func DecimalOr(v any, def decimal.Decimal) decimal.Decimal {
	d, err := ParseDecimal(v)
	if err != nil {
		return def
	}
	return d
}

// numberFields decodes the numeric fields of a record. An absent value reads
// as zero, a present but unparsable one reads as zero and its raw text is
// kept under the field name.
type numberFields struct {
	unparsed map[string]string
}

func (n *numberFields) read(field string, v any) decimal.Decimal {
	if s, ok := v.(string); v == nil || ok && strings.TrimSpace(s) == "" {
		return decimal.Zero
	}
	d, err := ParseDecimal(v)
	if err != nil {
		if n.unparsed == nil {
			n.unparsed = make(map[string]string)
		}
		n.unparsed[field] = fmt.Sprint(v)
		return decimal.Zero
	}
	return d
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02",
	"1/2/2006 15:04",
	"1/2/2006 3:04PM",
	"2006-01-02T15:04:05",
}

// ParseTime parses a transaction timestamp in any of the layouts exchanges
// commonly export. Timestamps without a zone are read as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse time: %q", s)
}

// IsFiat reports whether the asset is a government currency. Fiat movements
// never open or consume lots.
func IsFiat(asset string) bool {
	switch strings.ToUpper(strings.TrimSpace(asset)) {
	case "USD", "EUR", "GBP", "CHF", "CAD", "AUD", "JPY":
		return true
	}
	return false
}
