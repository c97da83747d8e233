package memmap

import (
	"math"
	"sort"
	"strconv"
)

// DecodeTree builds a Document from the generic tree produced by a JSON or
// TOML parser. Objects are map[string]any; arrays are []any or
// []map[string]any; numbers are json.Number, int64 or float64.
func DecodeTree(raw map[string]any) (*Document, error) {
	if raw == nil {
		return nil, decodeErr("", "empty document")
	}
	doc := &Document{}

	protoRaw, ok := raw["protocol"]
	if !ok {
		return nil, decodeErr("protocol", "missing required key")
	}
	proto, err := decodeProtocol("protocol", protoRaw)
	if err != nil {
		return nil, err
	}
	doc.Protocol = proto

	root, err := decodeFieldTable("", raw)
	if err != nil {
		return nil, err
	}
	doc.Root = *root
	return doc, nil
}

func decodeProtocol(path string, raw any) (Protocol, error) {
	table, ok := raw.(map[string]any)
	if !ok {
		return Protocol{}, decodeErr(path, "expected table, got %s", describe(raw))
	}
	var p Protocol
	if v, ok := table["name"]; ok {
		s, err := decodeString(join(path, "name"), v)
		if err != nil {
			return Protocol{}, err
		}
		p.Name = s
	}

	v, ok := table["addressMax"]
	if !ok {
		return Protocol{}, decodeErr(join(path, "addressMax"), "missing required key")
	}
	addressMax, err := ParseHexOrUnsigned(v)
	if err != nil {
		return Protocol{}, wrapDecodeErr(join(path, "addressMax"), err)
	}
	p.AddressMax = addressMax

	v, ok = table["dataMin"]
	if !ok {
		return Protocol{}, decodeErr(join(path, "dataMin"), "missing required key")
	}
	dataMin, err := toUint(v, math.MaxUint8)
	if err != nil {
		return Protocol{}, decodeErr(join(path, "dataMin"), "%v", err)
	}
	p.DataMin = uint8(dataMin)
	return p, nil
}

func decodeField(path string, raw any) (*Field, error) {
	table, ok := raw.(map[string]any)
	if !ok {
		return nil, decodeErr(path, "expected table, got %s", describe(raw))
	}
	return decodeFieldTable(path, table)
}

func decodeFieldTable(path string, table map[string]any) (*Field, error) {
	f := &Field{}

	v, ok := table["name"]
	if !ok {
		return nil, decodeErr(join(path, "name"), "missing required key")
	}
	name, err := decodeString(join(path, "name"), v)
	if err != nil {
		return nil, err
	}
	f.Name = name

	if v, ok := table["address"]; ok {
		addr, err := ParseHexOrUnsigned(v)
		if err != nil {
			return nil, wrapDecodeErr(join(path, "address"), err)
		}
		f.Address = &addr
	}

	if v, ok := table["access"]; ok {
		s, isString := v.(string)
		if !isString {
			return nil, decodeErr(join(path, "access"), "expected string, got %s", describe(v))
		}
		a, err := ParseAccess(s)
		if err != nil {
			return nil, wrapDecodeErr(join(path, "access"), err)
		}
		f.Access = &a
	}

	v, ok = table["type"]
	if !ok {
		return nil, decodeErr(join(path, "type"), "missing required key")
	}
	ft, err := decodeFieldType(join(path, "type"), v)
	if err != nil {
		return nil, err
	}
	f.Type = ft

	// null contains reads as absent.
	if v, ok := table["contains"]; ok && v != nil {
		if err := decodeContains(join(path, "contains"), v, f); err != nil {
			return nil, err
		}
	}

	if v, ok := table["value"]; ok {
		val, err := decodeValue(join(path, "value"), v)
		if err != nil {
			return nil, err
		}
		f.Value = &val
	}

	if v, ok := table["unit"]; ok {
		unit, err := decodeString(join(path, "unit"), v)
		if err != nil {
			return nil, err
		}
		f.Unit = unit
	}
	if v, ok := table["min"]; ok {
		n, isNum := toNumber(v)
		if !isNum {
			return nil, decodeErr(join(path, "min"), "expected number, got %s", describe(v))
		}
		lo := n.float()
		f.Min = &lo
	}
	if v, ok := table["max"]; ok {
		n, isNum := toNumber(v)
		if !isNum {
			return nil, decodeErr(join(path, "max"), "expected number, got %s", describe(v))
		}
		hi := n.float()
		f.Max = &hi
	}
	// range is output only and never read back.
	return f, nil
}

func decodeContains(path string, raw any, parent *Field) error {
	switch v := raw.(type) {
	case map[string]any:
		child, err := decodeFieldTable(path, v)
		if err != nil {
			return err
		}
		parent.Contains = []*Field{child}
		parent.containsOne = true
	case []map[string]any:
		parent.Contains = make([]*Field, 0, len(v))
		for i, item := range v {
			child, err := decodeFieldTable(index(path, i), item)
			if err != nil {
				return err
			}
			parent.Contains = append(parent.Contains, child)
		}
	case []any:
		parent.Contains = make([]*Field, 0, len(v))
		for i, item := range v {
			child, err := decodeField(index(path, i), item)
			if err != nil {
				return err
			}
			parent.Contains = append(parent.Contains, child)
		}
	default:
		return decodeErr(path, "expected a field table or an array of field tables, got %s", describe(raw))
	}
	return nil
}

func decodeFieldType(path string, raw any) (FieldType, error) {
	switch v := raw.(type) {
	case string:
		kind, ok := ParseKind(v)
		if !ok {
			return FieldType{}, decodeErr(path, "unknown type %q", v)
		}
		if kind != KindSet {
			return FieldType{}, decodeErr(path, "type %q requires parameters", v)
		}
		return SetType(), nil
	case map[string]any:
		if len(v) != 1 {
			return FieldType{}, decodeErr(path, "expected exactly one type tag, got %d keys", len(v))
		}
		for tag, body := range v {
			kind, ok := ParseKind(tag)
			if !ok {
				return FieldType{}, decodeErr(path, "unknown type %q", tag)
			}
			return decodeTypeBody(join(path, tag), kind, body)
		}
	}
	return FieldType{}, decodeErr(path, "expected type tag, got %s", describe(raw))
}

func decodeTypeBody(path string, kind Kind, raw any) (FieldType, error) {
	switch kind {
	case KindSet:
		return FieldType{}, decodeErr(path, "type \"set\" takes no parameters")
	case KindString:
		n, err := toUint(raw, math.MaxUint64)
		if err != nil {
			return FieldType{}, decodeErr(path, "%v", err)
		}
		return StringType(n), nil
	case KindUnsigned, KindSigned:
		n, err := toUint(raw, math.MaxUint32)
		if err != nil {
			return FieldType{}, decodeErr(path, "%v", err)
		}
		return FieldType{Kind: kind, Length: n}, nil
	case KindUFixed, KindSFixed:
		table, ok := raw.(map[string]any)
		if !ok {
			return FieldType{}, decodeErr(path, "expected table with high and low, got %s", describe(raw))
		}
		high, err := requiredInt32(path, table, "high")
		if err != nil {
			return FieldType{}, err
		}
		low, err := requiredInt32(path, table, "low")
		if err != nil {
			return FieldType{}, err
		}
		return FieldType{Kind: kind, High: high, Low: low}, nil
	case KindEnum:
		table, ok := raw.(map[string]any)
		if !ok {
			return FieldType{}, decodeErr(path, "expected table with length and map, got %s", describe(raw))
		}
		length, err := requiredLength(path, table)
		if err != nil {
			return FieldType{}, err
		}
		mv, ok := table["map"]
		if !ok {
			return FieldType{}, decodeErr(join(path, "map"), "missing required key")
		}
		codesRaw, ok := mv.(map[string]any)
		if !ok {
			return FieldType{}, decodeErr(join(path, "map"), "expected table, got %s", describe(mv))
		}
		codes := make(map[string]uint64, len(codesRaw))
		for name, cv := range codesRaw {
			code, err := toUint(cv, math.MaxUint32)
			if err != nil {
				return FieldType{}, decodeErr(join(join(path, "map"), name), "%v", err)
			}
			codes[name] = code
		}
		return EnumType(length, codes), nil
	case KindBitfield:
		table, ok := raw.(map[string]any)
		if !ok {
			return FieldType{}, decodeErr(path, "expected table with length and bits, got %s", describe(raw))
		}
		length, err := requiredLength(path, table)
		if err != nil {
			return FieldType{}, err
		}
		bv, ok := table["bits"]
		if !ok {
			return FieldType{}, decodeErr(join(path, "bits"), "missing required key")
		}
		bits, err := decodeBits(join(path, "bits"), bv)
		if err != nil {
			return FieldType{}, err
		}
		return FieldType{Kind: KindBitfield, Length: length, Bits: bits}, nil
	}
	return FieldType{}, decodeErr(path, "unknown type %s", kind)
}

func decodeBits(path string, raw any) (Bits, error) {
	switch v := raw.(type) {
	case []string:
		return Bits{Ordered: append([]string(nil), v...)}, nil
	case []any:
		names := make([]string, 0, len(v))
		for i, item := range v {
			s, err := decodeString(index(path, i), item)
			if err != nil {
				return Bits{}, err
			}
			names = append(names, s)
		}
		return Bits{Ordered: names}, nil
	case map[string]any:
		indexed := make(map[string]uint64, len(v))
		for name, iv := range v {
			if err := CheckASCII(name); err != nil {
				return Bits{}, wrapDecodeErr(path, err)
			}
			bit, err := toUint(iv, math.MaxUint32)
			if err != nil {
				return Bits{}, decodeErr(join(path, name), "%v", err)
			}
			indexed[name] = bit
		}
		return Bits{Indexed: indexed}, nil
	default:
		return Bits{}, decodeErr(path, "expected array of names or table of bit indices, got %s", describe(raw))
	}
}

// decodeValue resolves the untagged value variant: strings first, then
// non-negative integers, negative integers and finally floats.
func decodeValue(path string, raw any) (Value, error) {
	if s, ok := raw.(string); ok {
		if err := CheckASCII(s); err != nil {
			return Value{}, wrapDecodeErr(path, err)
		}
		return StringValue(s), nil
	}
	n, ok := toNumber(raw)
	if !ok {
		return Value{}, decodeErr(path, "expected string or number, got %s", describe(raw))
	}
	switch {
	case n.isFloat:
		return FloatValue(n.f), nil
	case n.neg:
		return SignedValue(n.i), nil
	default:
		return UnsignedValue(n.u), nil
	}
}

func decodeString(path string, raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", decodeErr(path, "expected string, got %s", describe(raw))
	}
	if err := CheckASCII(s); err != nil {
		return "", wrapDecodeErr(path, err)
	}
	return s, nil
}

func requiredLength(path string, table map[string]any) (uint64, error) {
	v, ok := table["length"]
	if !ok {
		return 0, decodeErr(join(path, "length"), "missing required key")
	}
	n, err := toUint(v, math.MaxUint32)
	if err != nil {
		return 0, decodeErr(join(path, "length"), "%v", err)
	}
	return n, nil
}

func requiredInt32(path string, table map[string]any, key string) (int32, error) {
	v, ok := table[key]
	if !ok {
		return 0, decodeErr(join(path, key), "missing required key")
	}
	n, err := toInt32(v)
	if err != nil {
		return 0, decodeErr(join(path, key), "%v", err)
	}
	return n, nil
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

// sortedKeys returns map keys in a deterministic order for encoding.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
