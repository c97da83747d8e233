package memmap

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type protocolWire struct {
	Name       string `json:"name,omitempty" toml:"name,omitempty"`
	AddressMax uint64 `json:"addressMax" toml:"addressMax"`
	DataMin    uint8  `json:"dataMin" toml:"dataMin"`
}

// fieldWire is the encoded shape of a Field. Contains holds either a single
// *fieldWire or a []*fieldWire so a single child object round trips as one.
type fieldWire struct {
	Name     string    `json:"name" toml:"name"`
	Address  *uint64   `json:"address,omitempty" toml:"address,omitempty"`
	Access   *Access   `json:"access,omitempty" toml:"access,omitempty"`
	Type     FieldType `json:"type" toml:"type"`
	Value    *Value    `json:"value,omitempty" toml:"value,omitempty"`
	Unit     string    `json:"unit,omitempty" toml:"unit,omitempty"`
	Min      *float64  `json:"min,omitempty" toml:"min,omitempty"`
	Max      *float64  `json:"max,omitempty" toml:"max,omitempty"`
	Range    string    `json:"range,omitempty" toml:"range,omitempty"`
	Contains any       `json:"contains,omitempty" toml:"contains,omitempty"`
}

type documentWire struct {
	Protocol protocolWire `json:"protocol" toml:"protocol"`
	fieldWire
}

func (d *Document) wire() documentWire {
	return documentWire{
		Protocol: protocolWire{
			Name:       d.Protocol.Name,
			AddressMax: d.Protocol.AddressMax,
			DataMin:    d.Protocol.DataMin,
		},
		fieldWire: fieldToWire(&d.Root),
	}
}

func fieldToWire(f *Field) fieldWire {
	w := fieldWire{
		Name:    f.Name,
		Address: f.Address,
		Access:  f.Access,
		Type:    f.Type,
		Value:   f.Value,
		Unit:    f.Unit,
		Min:     f.Min,
		Max:     f.Max,
		Range:   f.Range,
	}
	if f.Contains == nil {
		return w
	}
	if f.ContainsOne() && f.Contains[0] != nil {
		child := fieldToWire(f.Contains[0])
		w.Contains = &child
		return w
	}
	children := make([]*fieldWire, 0, len(f.Contains))
	for _, c := range f.Contains {
		if c == nil {
			continue
		}
		child := fieldToWire(c)
		children = append(children, &child)
	}
	w.Contains = children
	return w
}

type fixedWire struct {
	High int32 `json:"high"`
	Low  int32 `json:"low"`
}

type enumWire struct {
	Length uint64            `json:"length"`
	Map    map[string]uint64 `json:"map"`
}

type bitfieldWire struct {
	Length uint64 `json:"length"`
	Bits   any    `json:"bits"`
}

func (b Bits) wire() any {
	if b.Indexed != nil {
		return b.Indexed
	}
	if b.Ordered == nil {
		return []string{}
	}
	return b.Ordered
}

// MarshalJSON encodes "set" as a bare string and every other kind as a
// single-key object keyed by its lowercase tag.
func (t FieldType) MarshalJSON() ([]byte, error) {
	var body any
	switch t.Kind {
	case KindSet:
		return json.Marshal(KindSet.String())
	case KindString, KindUnsigned, KindSigned:
		body = t.Length
	case KindUFixed, KindSFixed:
		body = fixedWire{High: t.High, Low: t.Low}
	case KindEnum:
		codes := t.Enum
		if codes == nil {
			codes = map[string]uint64{}
		}
		body = enumWire{Length: t.Length, Map: codes}
	case KindBitfield:
		body = bitfieldWire{Length: t.Length, Bits: t.Bits.wire()}
	default:
		return nil, fmt.Errorf("memmap: cannot encode type %s", t.Kind)
	}
	return json.Marshal(map[string]any{t.Kind.String(): body})
}

// MarshalTOML renders the type as an inline value.
func (t FieldType) MarshalTOML() ([]byte, error) {
	var b strings.Builder
	switch t.Kind {
	case KindSet:
		return []byte(tomlString(KindSet.String())), nil
	case KindString, KindUnsigned, KindSigned:
		fmt.Fprintf(&b, "{ %s = %d }", t.Kind, t.Length)
	case KindUFixed, KindSFixed:
		fmt.Fprintf(&b, "{ %s = { high = %d, low = %d } }", t.Kind, t.High, t.Low)
	case KindEnum:
		fmt.Fprintf(&b, "{ enum = { length = %d, map = {", t.Length)
		for i, name := range sortedKeys(t.Enum) {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, " %s = %d", tomlKey(name), t.Enum[name])
		}
		b.WriteString(" } } }")
	case KindBitfield:
		fmt.Fprintf(&b, "{ bitfield = { length = %d, bits = ", t.Length)
		if t.Bits.Indexed != nil {
			b.WriteString("{")
			for i, name := range sortedKeys(t.Bits.Indexed) {
				if i > 0 {
					b.WriteString(",")
				}
				fmt.Fprintf(&b, " %s = %d", tomlKey(name), t.Bits.Indexed[name])
			}
			b.WriteString(" }")
		} else {
			b.WriteString("[")
			for i, name := range t.Bits.Ordered {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(tomlString(name))
			}
			b.WriteString("]")
		}
		b.WriteString(" } }")
	default:
		return nil, fmt.Errorf("memmap: cannot encode type %s", t.Kind)
	}
	return []byte(b.String()), nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueString:
		return json.Marshal(v.Str)
	case ValueUnsigned:
		return []byte(strconv.FormatUint(v.Uint, 10)), nil
	case ValueSigned:
		return []byte(strconv.FormatInt(v.Int, 10)), nil
	case ValueFloat:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return nil, fmt.Errorf("memmap: cannot encode %s as json", formatFloat(v.Float))
		}
		return []byte(formatFloat(v.Float)), nil
	default:
		return nil, fmt.Errorf("memmap: cannot encode value kind %s", v.Kind)
	}
}

func (v Value) MarshalTOML() ([]byte, error) {
	switch v.Kind {
	case ValueString:
		return []byte(tomlString(v.Str)), nil
	case ValueUnsigned:
		if v.Uint > math.MaxInt64 {
			return nil, fmt.Errorf("memmap: integer %d does not fit a toml integer", v.Uint)
		}
		return []byte(strconv.FormatUint(v.Uint, 10)), nil
	case ValueSigned:
		return []byte(strconv.FormatInt(v.Int, 10)), nil
	case ValueFloat:
		return []byte(formatFloat(v.Float)), nil
	default:
		return nil, fmt.Errorf("memmap: cannot encode value kind %s", v.Kind)
	}
}

func tomlKey(k string) string {
	if k == "" {
		return `""`
	}
	for i := 0; i < len(k); i++ {
		c := k[i]
		bare := c == '_' || c == '-' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !bare {
			return tomlString(k)
		}
	}
	return k
}

func tomlString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
