package memmap

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseHexOrUnsigned accepts a non-negative integer or a "0x" prefixed hex
// string whose digits may be separated by underscores ("0xFFFF_FFFF").
func ParseHexOrUnsigned(raw any) (uint64, error) {
	switch v := raw.(type) {
	case string:
		return parseHexString(v)
	case json.Number:
		s := v.String()
		if strings.ContainsAny(s, ".eE") {
			return 0, fmt.Errorf("%w: number %s", ErrInvalidFormat, s)
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: integer %s", ErrInvalidFormat, s)
		}
		return n, nil
	case int64:
		if v < 0 {
			return 0, fmt.Errorf("%w: integer %d", ErrInvalidFormat, v)
		}
		return uint64(v), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("%w: integer %d", ErrInvalidFormat, v)
		}
		return uint64(v), nil
	case uint64:
		return v, nil
	case uint32:
		return uint64(v), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidFormat, describe(raw))
	}
}

func parseHexString(s string) (uint64, error) {
	digits, ok := strings.CutPrefix(s, "0x")
	if !ok {
		return 0, fmt.Errorf("%w: string %q", ErrInvalidFormat, s)
	}
	digits = strings.ReplaceAll(digits, "_", "")
	n, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: string %q", ErrInvalidFormat, s)
	}
	return n, nil
}

// CheckASCII rejects strings containing bytes outside the ascii range.
func CheckASCII(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return fmt.Errorf("%w: %q", ErrNonASCII, s)
		}
	}
	return nil
}

// number is a decoded numeric scalar from either wire format.
type number struct {
	isFloat bool
	neg     bool
	u       uint64
	i       int64
	f       float64
}

func toNumber(raw any) (number, bool) {
	switch v := raw.(type) {
	case json.Number:
		s := v.String()
		if strings.ContainsAny(s, ".eE") {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return number{}, false
			}
			return number{isFloat: true, f: f}, true
		}
		if strings.HasPrefix(s, "-") {
			i, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return number{}, false
			}
			if i >= 0 {
				return number{u: uint64(i), i: i}, true
			}
			return number{neg: true, i: i}, true
		}
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return number{}, false
		}
		return number{u: u, i: int64(u)}, true
	case int64:
		if v < 0 {
			return number{neg: true, i: v}, true
		}
		return number{u: uint64(v), i: v}, true
	case int:
		return toNumber(int64(v))
	case uint64:
		return number{u: v, i: int64(v)}, true
	case float64:
		return number{isFloat: true, f: v}, true
	default:
		return number{}, false
	}
}

func (n number) float() float64 {
	switch {
	case n.isFloat:
		return n.f
	case n.neg:
		return float64(n.i)
	default:
		return float64(n.u)
	}
}

// toUint returns a non-negative integer no larger than limit.
func toUint(raw any, limit uint64) (uint64, error) {
	n, ok := toNumber(raw)
	if !ok || n.isFloat {
		return 0, fmt.Errorf("expected unsigned integer, got %s", describe(raw))
	}
	if n.neg {
		return 0, fmt.Errorf("expected unsigned integer, got %d", n.i)
	}
	if n.u > limit {
		return 0, fmt.Errorf("integer %d exceeds %d", n.u, limit)
	}
	return n.u, nil
}

func toInt32(raw any) (int32, error) {
	n, ok := toNumber(raw)
	if !ok || n.isFloat {
		return 0, fmt.Errorf("expected integer, got %s", describe(raw))
	}
	if n.neg {
		if n.i < math.MinInt32 {
			return 0, fmt.Errorf("integer %d out of range", n.i)
		}
		return int32(n.i), nil
	}
	if n.u > math.MaxInt32 {
		return 0, fmt.Errorf("integer %d out of range", n.u)
	}
	return int32(n.u), nil
}

func describe(raw any) string {
	switch v := raw.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("string %q", v)
	case bool:
		return fmt.Sprintf("boolean %t", v)
	case json.Number:
		return "number " + v.String()
	case int64, int, uint64:
		return fmt.Sprintf("integer %d", v)
	case float64:
		return "float " + formatFloat(v)
	case map[string]any:
		return "table"
	case []any, []map[string]any:
		return "array"
	default:
		return fmt.Sprintf("%T", raw)
	}
}

// formatFloat always keeps a fractional part or exponent so the value reads
// back as a float rather than an integer.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
