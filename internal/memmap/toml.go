package memmap

import (
	"io"

	"github.com/BurntSushi/toml"
)

// DecodeTOML parses a TOML document.
func DecodeTOML(data []byte) (*Document, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, &DecodeError{Reason: err.Error(), Err: err}
	}
	return DecodeTree(raw)
}

// EncodeTOML writes the document as TOML. Field types and values are written
// as inline values; nested fields become [contains] tables or [[contains]]
// arrays of tables.
func (d *Document) EncodeTOML(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	return enc.Encode(d.wire())
}

// UnmarshalTOML lets a Document be the target of toml.Decode directly.
func (d *Document) UnmarshalTOML(data any) error {
	raw, ok := data.(map[string]any)
	if !ok {
		return decodeErr("", "expected table, got %s", describe(data))
	}
	doc, err := DecodeTree(raw)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}
