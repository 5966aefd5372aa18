package core

// convert.go turns the cell values found in community spreadsheets and data
// dumps into the small set of scalars the normalizer works with.
//
// These functions handle the messy reality of hand-maintained data:
//   - Thousands separators in numbers ("1,234")
//   - Blank and whitespace-only cells
//   - NaN floats and NULL database values
//   - Driver-specific types (pgtype.Numeric, []byte, time.Time)
//
// Everything here is total: unsupported input becomes the empty marker (nil)
// or a failed parse, never an error.

import (
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex validates that a string is a plain decimal after cleanup.
// Scientific notation is rejected; pgtype.Numeric.Scan does not accept it.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// NormalizeCell coerces a raw cell to nil, string, int64, uint64, float64 or
// bool. nil is the canonical empty marker; blank strings, NaN floats, invalid
// numerics and unsupported types all become nil. Infinite floats and numerics
// become the text "infinity" or "-infinity".
func NormalizeCell(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(x) == "" {
			return nil
		}
		return x
	case []byte:
		return NormalizeCell(string(x))
	case bool:
		return x
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return uint64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	case float32:
		return NormalizeCell(float64(x))
	case float64:
		switch {
		case math.IsNaN(x):
			return nil
		case math.IsInf(x, 1):
			return pgtype.Infinity.String()
		case math.IsInf(x, -1):
			return pgtype.NegativeInfinity.String()
		}
		return x
	case pgtype.Numeric:
		if !x.Valid || x.NaN {
			return nil
		}
		if x.InfinityModifier != pgtype.Finite {
			return x.InfinityModifier.String()
		}
		return decimalString(x)
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return formatTime(x)
	default:
		return nil
	}
}

// isEmpty reports whether v is a null-like value. Unsupported types are not
// null-like here; NormalizeCell is what discards them.
func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []byte:
		return strings.TrimSpace(string(x)) == ""
	case float32:
		return math.IsNaN(float64(x))
	case float64:
		return math.IsNaN(x)
	case pgtype.Numeric:
		return !x.Valid || x.NaN
	case time.Time:
		return x.IsZero()
	}
	return false
}

// toNumeric parses v as an exact decimal.
// Strings may carry surrounding whitespace and comma thousands separators.
func toNumeric(v any) (pgtype.Numeric, bool) {
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		s = strings.ReplaceAll(s, ",", "")
		if !numericRegex.MatchString(s) {
			return pgtype.Numeric{}, false
		}
		// Scan rejects "+0" while accepting "+5".
		s = strings.TrimPrefix(s, "+")
		var n pgtype.Numeric
		if err := n.Scan(s); err != nil || !n.Valid {
			return pgtype.Numeric{}, false
		}
		return n, true
	case []byte:
		return toNumeric(string(x))
	case int, int8, int16, int32, int64:
		return pgtype.Numeric{Int: big.NewInt(intValue(x)), Valid: true}, true
	case uint, uint8, uint16, uint32, uint64:
		return pgtype.Numeric{Int: new(big.Int).SetUint64(uintValue(x)), Valid: true}, true
	case float32:
		return toNumeric(float64(x))
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return pgtype.Numeric{}, false
		}
		return toNumeric(strconv.FormatFloat(x, 'f', -1, 64))
	case pgtype.Numeric:
		if !x.Valid || x.NaN || x.InfinityModifier != pgtype.Finite {
			return pgtype.Numeric{}, false
		}
		return x, true
	default:
		return pgtype.Numeric{}, false
	}
}

// rangeLowerBound parses v as a number, or as a range such as "40-52" whose
// lower bound is the part before the first '-'.
func rangeLowerBound(v any) (pgtype.Numeric, bool) {
	if n, ok := toNumeric(v); ok {
		return n, true
	}
	s, ok := v.(string)
	if !ok {
		return pgtype.Numeric{}, false
	}
	idx := strings.Index(s, "-")
	if idx < 0 {
		return pgtype.Numeric{}, false
	}
	return toNumeric(s[:idx])
}

// ParseNumber returns v as a float64 when it is a plain number.
func ParseNumber(v any) (float64, bool) {
	n, ok := toNumeric(v)
	if !ok {
		return 0, false
	}
	return numericFloat(n)
}

// FormatNumber renders v with comma thousands separators, keeping every
// significant digit. Integral values have no decimal point.
// Returns false when v is not a number.
func FormatNumber(v any) (string, bool) {
	n, ok := toNumeric(v)
	if !ok {
		return "", false
	}
	neg, intPart, frac := decimalParts(n)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(groupThousands(intPart))
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String(), true
}

func numericFloat(n pgtype.Numeric) (float64, bool) {
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return 0, false
	}
	return f.Float64, true
}

// decimalParts splits n into sign, integer digits and fractional digits with
// trailing zeros removed.
func decimalParts(n pgtype.Numeric) (neg bool, intPart, frac string) {
	i := n.Int
	if i == nil {
		i = new(big.Int)
	}
	digits := new(big.Int).Abs(i).String()
	exp := int(n.Exp)

	if exp >= 0 {
		intPart = digits + strings.Repeat("0", exp)
	} else {
		k := -exp
		if len(digits) <= k {
			digits = strings.Repeat("0", k-len(digits)+1) + digits
		}
		intPart = digits[:len(digits)-k]
		frac = strings.TrimRight(digits[len(digits)-k:], "0")
	}

	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	neg = i.Sign() < 0 && (intPart != "0" || frac != "")
	return neg, intPart, frac
}

// decimalString renders n as a plain decimal without grouping.
func decimalString(n pgtype.Numeric) string {
	neg, intPart, frac := decimalParts(n)
	s := intPart
	if frac != "" {
		s += "." + frac
	}
	if neg {
		s = "-" + s
	}
	return s
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// formatTime renders dates without a time component as YYYY-MM-DD.
func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

// displayString is the plain string form of a non-empty cell.
func displayString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case time.Time:
		return formatTime(x)
	case pgtype.Numeric:
		if s, ok := NormalizeCell(x).(string); ok {
			return s
		}
		return ""
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func intValue(v any) int64 {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	}
	return 0
}

func uintValue(v any) uint64 {
	switch x := v.(type) {
	case uint:
		return uint64(x)
	case uint8:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	}
	return 0
}
