package elaborate

import (
	"math"

	"github.com/danmuck/memmap/internal/memmap"
)

// CheckValue reports whether v may be stored in a field of type t. It returns
// a *FieldError wrapping ErrValueType when v is from the wrong family and
// ErrValueRange when v does not fit.
func CheckValue(t memmap.FieldType, v memmap.Value) error {
	switch t.Kind {
	case memmap.KindString:
		return checkString(t, v)
	case memmap.KindUnsigned:
		return checkUnsigned(t, v)
	case memmap.KindSigned:
		return checkSigned(t, v)
	case memmap.KindUFixed:
		return checkUFixed(t, v)
	case memmap.KindSFixed:
		return checkSFixed(t, v)
	case memmap.KindEnum:
		return checkEnum(t, v)
	case memmap.KindBitfield:
		return checkBitfield(t, v)
	case memmap.KindSet:
		return schemaError("set fields carry no value")
	default:
		return schemaError("unknown type %s", t.Kind)
	}
}

func mismatch(t memmap.FieldType, v memmap.Value) error {
	return typeError("provided %s value %s doesn't match the field type %s", v.Kind, v, t)
}

func checkString(t memmap.FieldType, v memmap.Value) error {
	if v.Kind != memmap.ValueString {
		return mismatch(t, v)
	}
	if uint64(len(v.Str)) > t.Length {
		return rangeError("string value of %d bytes is longer than the field type %s", len(v.Str), t)
	}
	return nil
}

// fitsUnsigned reports n <= 2^bits-1.
func fitsUnsigned(n, bits uint64) bool {
	if bits >= 64 {
		return true
	}
	return n <= (uint64(1)<<bits)-1
}

func checkUnsigned(t memmap.FieldType, v memmap.Value) error {
	if v.Kind != memmap.ValueUnsigned {
		return mismatch(t, v)
	}
	if !fitsUnsigned(v.Uint, t.Length) {
		return rangeError("numeric value %d requires more than %d bits specified by the field type", v.Uint, t.Length)
	}
	return nil
}

func checkSigned(t memmap.FieldType, v memmap.Value) error {
	if t.Length == 0 {
		return schemaError("type %s has zero width", t.Kind)
	}
	var (
		n   int64
		big bool
	)
	switch v.Kind {
	case memmap.ValueSigned:
		n = v.Int
	case memmap.ValueUnsigned:
		if v.Uint > math.MaxInt64 {
			big = true
		} else {
			n = int64(v.Uint)
		}
	default:
		return mismatch(t, v)
	}
	if !big && t.Length >= 64 {
		return nil
	}
	if big {
		return rangeError("numeric value %s requires more than %d bits specified by the field type", v, t.Length)
	}
	lo, hi := signedBounds(t.Length)
	if n < lo || n > hi {
		return rangeError("numeric value %s requires more than %d bits specified by the field type", v, t.Length)
	}
	return nil
}

// signedBounds returns the two's complement range of a bits-wide integer.
// bits must be in 1..63.
func signedBounds(bits uint64) (int64, int64) {
	half := int64(1) << (bits - 1)
	return -half, half - 1
}

// fixedMax is the largest value a fixed point type with these weights holds.
func fixedMax(high, low int32) float64 {
	return math.Pow(2, float64(high)) - math.Pow(2, float64(low))
}

func checkFloat(t memmap.FieldType, v memmap.Value) (float64, error) {
	if v.Kind != memmap.ValueFloat {
		return 0, mismatch(t, v)
	}
	if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
		return 0, rangeError("value %s cannot be represented by the field type %s", v, t)
	}
	if t.High < t.Low {
		return 0, schemaError("type %s has high %d below low %d", t, t.High, t.Low)
	}
	return v.Float, nil
}

func checkUFixed(t memmap.FieldType, v memmap.Value) error {
	f, err := checkFloat(t, v)
	if err != nil {
		return err
	}
	if f < 0 || f > fixedMax(t.High, t.Low) {
		return rangeError("numeric value %s cannot be represented by the field type %s", v, t)
	}
	return nil
}

func checkSFixed(t memmap.FieldType, v memmap.Value) error {
	f, err := checkFloat(t, v)
	if err != nil {
		return err
	}
	if f < -math.Pow(2, float64(t.High)) || f > fixedMax(t.High, t.Low) {
		return rangeError("numeric value %s cannot be represented by the field type %s", v, t)
	}
	return nil
}

func checkEnum(t memmap.FieldType, v memmap.Value) error {
	switch v.Kind {
	case memmap.ValueString:
		if _, ok := t.Enum[v.Str]; !ok {
			return rangeError("%q is not a member of the enumeration", v.Str)
		}
		return nil
	case memmap.ValueUnsigned:
		if !fitsUnsigned(v.Uint, t.Length) {
			return rangeError("enumeration code %d requires more than %d bits", v.Uint, t.Length)
		}
		for _, code := range t.Enum {
			if code == v.Uint {
				return nil
			}
		}
		return rangeError("enumeration has no member with code %d", v.Uint)
	default:
		return mismatch(t, v)
	}
}

func checkBitfield(t memmap.FieldType, v memmap.Value) error {
	if v.Kind != memmap.ValueUnsigned {
		return mismatch(t, v)
	}
	if !fitsUnsigned(v.Uint, t.Length) {
		return rangeError("bitfield value %#x requires more than %d bits", v.Uint, t.Length)
	}
	return nil
}
