package elaborate

import "github.com/danmuck/memmap/internal/memmap"

// Footprint returns the number of bytes a leaf of type t occupies once
// aligned to dataMin. Strings occupy exactly their length; every other leaf
// occupies max(ceil(bits/8), dataMin).
func Footprint(t memmap.FieldType, dataMin uint8) (uint64, error) {
	switch t.Kind {
	case memmap.KindString:
		return t.Length, nil
	case memmap.KindUnsigned, memmap.KindSigned, memmap.KindEnum, memmap.KindBitfield:
		if t.Length == 0 {
			return 0, schemaError("type %s has zero width", t.Kind)
		}
		return alignBits(t.Length, dataMin), nil
	case memmap.KindUFixed, memmap.KindSFixed:
		if t.High < t.Low {
			return 0, schemaError("type %s has high %d below low %d", t, t.High, t.Low)
		}
		return alignBits(t.Width(), dataMin), nil
	case memmap.KindSet:
		return 0, schemaError("set has no footprint of its own")
	default:
		return 0, schemaError("unknown type %s", t.Kind)
	}
}

func alignBits(bits uint64, dataMin uint8) uint64 {
	bytes := bits / 8
	if bits%8 != 0 {
		bytes++
	}
	if bytes < uint64(dataMin) {
		bytes = uint64(dataMin)
	}
	return bytes
}

// overflows reports addr+footprint > addressMax without wrapping.
func overflows(addr, footprint, addressMax uint64) bool {
	return footprint > addressMax || addr > addressMax-footprint
}
