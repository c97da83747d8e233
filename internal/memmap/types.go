package memmap

import (
	"fmt"
	"strings"
)

// Access is a register access permission.
type Access uint8

const (
	AccessRead Access = iota
	AccessWrite
	AccessReadWrite
)

// ParseAccess accepts the wire spellings "r", "w" and "rw".
func ParseAccess(s string) (Access, error) {
	switch s {
	case "r":
		return AccessRead, nil
	case "w":
		return AccessWrite, nil
	case "rw":
		return AccessReadWrite, nil
	default:
		return AccessRead, fmt.Errorf("%w: %q (expected r, w or rw)", ErrInvalidAccess, s)
	}
}

func (a Access) String() string {
	switch a {
	case AccessWrite:
		return "w"
	case AccessReadWrite:
		return "rw"
	default:
		return "r"
	}
}

func (a Access) CanRead() bool  { return a != AccessWrite }
func (a Access) CanWrite() bool { return a != AccessRead }

func (a Access) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Access) UnmarshalText(b []byte) error {
	parsed, err := ParseAccess(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Kind tags the closed set of field type variants.
type Kind uint8

const (
	KindSet Kind = iota
	KindString
	KindEnum
	KindBitfield
	KindUnsigned
	KindSigned
	KindUFixed
	KindSFixed
)

var kindNames = [...]string{
	KindSet:      "set",
	KindString:   "string",
	KindEnum:     "enum",
	KindBitfield: "bitfield",
	KindUnsigned: "unsigned",
	KindSigned:   "signed",
	KindUFixed:   "ufixed",
	KindSFixed:   "sfixed",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps a lowercase wire tag to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// Bits names the individual bits of a bitfield. Exactly one of Ordered or
// Indexed is used: Ordered lists names from bit 0 upward, leaving higher bits
// reserved; Indexed maps names to explicit bit positions.
type Bits struct {
	Ordered []string
	Indexed map[string]uint64
}

// FieldType is one variant of the closed field type set. Only the members
// relevant to Kind are meaningful.
type FieldType struct {
	Kind Kind
	// Length is bytes for KindString and bits for enum, bitfield, unsigned
	// and signed.
	Length uint64
	// High and Low are the most and least significant bit weights of the
	// fixed point kinds.
	High int32
	Low  int32
	Enum map[string]uint64
	Bits Bits
}

func SetType() FieldType { return FieldType{Kind: KindSet} }
func StringType(n uint64) FieldType { return FieldType{Kind: KindString, Length: n} }
func UnsignedType(n uint64) FieldType { return FieldType{Kind: KindUnsigned, Length: n} }
func SignedType(n uint64) FieldType { return FieldType{Kind: KindSigned, Length: n} }
func UFixedType(h, l int32) FieldType { return FieldType{Kind: KindUFixed, High: h, Low: l} }
func SFixedType(h, l int32) FieldType { return FieldType{Kind: KindSFixed, High: h, Low: l} }

func EnumType(n uint64, codes map[string]uint64) FieldType {
	return FieldType{Kind: KindEnum, Length: n, Enum: codes}
}

func BitfieldType(n uint64, names ...string) FieldType {
	return FieldType{Kind: KindBitfield, Length: n, Bits: Bits{Ordered: names}}
}

func IndexedBitfieldType(n uint64, bits map[string]uint64) FieldType {
	return FieldType{Kind: KindBitfield, Length: n, Bits: Bits{Indexed: bits}}
}

// Width returns the number of bits a leaf type occupies before alignment.
// For fixed point kinds with High < Low it returns 0.
func (t FieldType) Width() uint64 {
	switch t.Kind {
	case KindString:
		return t.Length * 8
	case KindEnum, KindBitfield, KindUnsigned, KindSigned:
		return t.Length
	case KindUFixed, KindSFixed:
		if t.High < t.Low {
			return 0
		}
		return uint64(int64(t.High)-int64(t.Low)) + 1
	default:
		return 0
	}
}

// String renders the type the way it reads in an HDL declaration.
func (t FieldType) String() string {
	switch t.Kind {
	case KindSet:
		return "set"
	case KindString:
		return fmt.Sprintf("string(%d downto 1)", t.Length)
	case KindEnum:
		return fmt.Sprintf("enum length %d", t.Length)
	case KindBitfield:
		return fmt.Sprintf("bitfield length %d", t.Length)
	case KindUnsigned:
		return fmt.Sprintf("unsigned(%d downto 0)", int64(t.Length)-1)
	case KindSigned:
		return fmt.Sprintf("signed(%d downto 0)", int64(t.Length)-1)
	case KindUFixed:
		return fmt.Sprintf("ufixed(%d downto %d)", t.High, t.Low)
	case KindSFixed:
		return fmt.Sprintf("sfixed(%d downto %d)", t.High, t.Low)
	default:
		return t.Kind.String()
	}
}

// ValueKind tags the closed set of default value variants.
type ValueKind uint8

const (
	ValueString ValueKind = iota
	ValueUnsigned
	ValueSigned
	ValueFloat
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueUnsigned:
		return "unsigned"
	case ValueSigned:
		return "signed"
	case ValueFloat:
		return "float"
	default:
		return fmt.Sprintf("value(%d)", uint8(k))
	}
}

// Value is a declared default value.
type Value struct {
	Kind  ValueKind
	Str   string
	Uint  uint64
	Int   int64
	Float float64
}

func StringValue(s string) Value { return Value{Kind: ValueString, Str: s} }
func UnsignedValue(v uint64) Value { return Value{Kind: ValueUnsigned, Uint: v} }
func SignedValue(v int64) Value { return Value{Kind: ValueSigned, Int: v} }
func FloatValue(v float64) Value { return Value{Kind: ValueFloat, Float: v} }

func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueUnsigned:
		return fmt.Sprintf("%d", v.Uint)
	case ValueSigned:
		return fmt.Sprintf("%d", v.Int)
	default:
		return formatFloat(v.Float)
	}
}

// Protocol holds the global constraints of one memory map.
type Protocol struct {
	Name string
	// AddressMax is the inclusive bound no field end address may exceed.
	AddressMax uint64
	// DataMin is the minimum addressable granularity in bytes.
	DataMin uint8
}

// Field is one node of the register tree. Address, Access and Range are
// filled in by elaboration.
type Field struct {
	Name     string
	Address  *uint64
	Access   *Access
	Type     FieldType
	Contains []*Field
	Value    *Value
	Unit     string
	Min      *float64
	Max      *float64
	Range    string

	// containsOne records that contains was written as a single object.
	containsOne bool
}

// NewLeaf builds a field of a non-set type.
func NewLeaf(name string, t FieldType) *Field {
	return &Field{Name: name, Type: t}
}

// NewSet builds a set field owning children in declaration order.
func NewSet(name string, children ...*Field) *Field {
	return &Field{Name: name, Type: SetType(), Contains: append([]*Field{}, children...)}
}

func (f *Field) WithAddress(addr uint64) *Field {
	f.Address = &addr
	return f
}

func (f *Field) WithAccess(a Access) *Field {
	f.Access = &a
	return f
}

func (f *Field) WithValue(v Value) *Field {
	f.Value = &v
	return f
}

// ContainsOne reports whether contains was decoded from a single object.
func (f *Field) ContainsOne() bool {
	return f.containsOne && len(f.Contains) == 1
}

// Walk visits f and its descendants in declaration order.
func (f *Field) Walk(fn func(path string, field *Field) bool) {
	f.walk(f.Name, fn)
}

func (f *Field) walk(path string, fn func(string, *Field) bool) bool {
	if !fn(path, f) {
		return false
	}
	for _, child := range f.Contains {
		if child == nil {
			continue
		}
		if !child.walk(strings.TrimPrefix(path+"."+child.Name, "."), fn) {
			return false
		}
	}
	return true
}

// Document is one memory map: the protocol and the root field.
type Document struct {
	Protocol Protocol
	Root     Field
}
