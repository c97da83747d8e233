package elaborate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/danmuck/memmap/internal/memmap"
)

// Describe renders the range annotation of a leaf type: numeric bounds for
// integers and fixed point, a byte count for strings, members for enums and
// bit assignments for bitfields.
func Describe(t memmap.FieldType) string {
	switch t.Kind {
	case memmap.KindUnsigned:
		return describeUnsigned(t.Length)
	case memmap.KindSigned:
		return describeSigned(t.Length)
	case memmap.KindUFixed:
		return fmt.Sprintf("[0, %s] step %s", formatWeight(fixedMax(t.High, t.Low)), formatWeight(math.Pow(2, float64(t.Low))))
	case memmap.KindSFixed:
		return fmt.Sprintf("[%s, %s] step %s",
			formatWeight(-math.Pow(2, float64(t.High))),
			formatWeight(fixedMax(t.High, t.Low)),
			formatWeight(math.Pow(2, float64(t.Low))),
		)
	case memmap.KindString:
		return fmt.Sprintf("0..%d ascii bytes", t.Length)
	case memmap.KindEnum:
		return describeEnum(t.Enum)
	case memmap.KindBitfield:
		return describeBits(t)
	default:
		return ""
	}
}

func describeUnsigned(bits uint64) string {
	switch {
	case bits > 64:
		return fmt.Sprintf("[0, 2^%d-1]", bits)
	case bits == 64:
		return "[0, " + strconv.FormatUint(math.MaxUint64, 10) + "]"
	default:
		return fmt.Sprintf("[0, %d]", (uint64(1)<<bits)-1)
	}
}

func describeSigned(bits uint64) string {
	switch {
	case bits > 64:
		return fmt.Sprintf("[-2^%d, 2^%d-1]", bits-1, bits-1)
	case bits == 64:
		return fmt.Sprintf("[%d, %d]", int64(math.MinInt64), int64(math.MaxInt64))
	default:
		lo, hi := signedBounds(bits)
		return fmt.Sprintf("[%d, %d]", lo, hi)
	}
}

func formatWeight(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func describeEnum(codes map[string]uint64) string {
	names := make([]string, 0, len(codes))
	for name := range codes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if codes[names[i]] != codes[names[j]] {
			return codes[names[i]] < codes[names[j]]
		}
		return names[i] < names[j]
	})
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, codes[name]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

type namedBit struct {
	index uint64
	name  string
}

// bitAssignments lists named bits ordered by index.
func bitAssignments(b memmap.Bits) []namedBit {
	var out []namedBit
	if b.Indexed != nil {
		for name, idx := range b.Indexed {
			out = append(out, namedBit{index: idx, name: name})
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].index != out[j].index {
				return out[i].index < out[j].index
			}
			return out[i].name < out[j].name
		})
		return out
	}
	for i, name := range b.Ordered {
		out = append(out, namedBit{index: uint64(i), name: name})
	}
	return out
}

// describeBits renders "{0=en, 1=rdy, 2-7=Reserved}". Runs of unnamed bits
// collapse into one Reserved entry.
func describeBits(t memmap.FieldType) string {
	var parts []string
	reserved := func(from, to uint64) {
		if from > to {
			return
		}
		if from == to {
			parts = append(parts, fmt.Sprintf("%d=Reserved", from))
			return
		}
		parts = append(parts, fmt.Sprintf("%d-%d=Reserved", from, to))
	}
	var next uint64
	for _, bit := range bitAssignments(t.Bits) {
		if bit.index >= t.Length {
			break
		}
		if bit.index > next {
			reserved(next, bit.index-1)
		}
		parts = append(parts, fmt.Sprintf("%d=%s", bit.index, bit.name))
		next = bit.index + 1
	}
	if t.Length > 0 {
		reserved(next, t.Length-1)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// span is an inclusive byte range.
type span struct {
	lo, hi uint64
	ok     bool
}

func leafSpan(addr, footprint uint64) span {
	if footprint == 0 {
		return span{}
	}
	return span{lo: addr, hi: addr + footprint - 1, ok: true}
}

func (s span) merge(o span) span {
	switch {
	case !o.ok:
		return s
	case !s.ok:
		return o
	}
	if o.lo < s.lo {
		s.lo = o.lo
	}
	if o.hi > s.hi {
		s.hi = o.hi
	}
	return s
}

func (s span) String() string {
	if !s.ok {
		return "empty"
	}
	return fmt.Sprintf("0x%X-0x%X", s.lo, s.hi)
}
