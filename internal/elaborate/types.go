package elaborate

import (
	"sort"

	"github.com/danmuck/memmap/internal/memmap"
)

// checkType rejects leaf types that cannot be laid out.
func checkType(t memmap.FieldType) error {
	switch t.Kind {
	case memmap.KindString:
		return nil
	case memmap.KindUnsigned, memmap.KindSigned:
		if t.Length == 0 {
			return schemaError("type %s has zero width", t.Kind)
		}
		return nil
	case memmap.KindUFixed, memmap.KindSFixed:
		if t.High < t.Low {
			return schemaError("type %s has high %d below low %d", t, t.High, t.Low)
		}
		return nil
	case memmap.KindEnum:
		if t.Length == 0 {
			return schemaError("type %s has zero width", t.Kind)
		}
		names := make([]string, 0, len(t.Enum))
		for name := range t.Enum {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if code := t.Enum[name]; !fitsUnsigned(code, t.Length) {
				return schemaError("enumeration member %s=%d requires more than %d bits", name, code, t.Length)
			}
		}
		return nil
	case memmap.KindBitfield:
		if t.Length == 0 {
			return schemaError("type %s has zero width", t.Kind)
		}
		if uint64(len(t.Bits.Ordered)) > t.Length {
			return schemaError("bitfield names %d bits but is %d bits long", len(t.Bits.Ordered), t.Length)
		}
		seen := make(map[uint64]string, len(t.Bits.Indexed))
		for _, bit := range bitAssignments(t.Bits) {
			if bit.index >= t.Length {
				return schemaError("bit %s at index %d is outside the %d bit field", bit.name, bit.index, t.Length)
			}
			if other, dup := seen[bit.index]; dup {
				return schemaError("bits %s and %s share index %d", other, bit.name, bit.index)
			}
			seen[bit.index] = bit.name
		}
		return nil
	case memmap.KindSet:
		return nil
	default:
		return schemaError("unknown type %s", t.Kind)
	}
}
