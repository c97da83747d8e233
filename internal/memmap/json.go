package memmap

import (
	"bytes"
	"encoding/json"
	"io"
)

// DecodeJSON parses a JSON document.
func DecodeJSON(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, &DecodeError{Reason: err.Error(), Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &DecodeError{Reason: "trailing data after document"}
	}
	return DecodeTree(raw)
}

// EncodeJSON writes the document as indented JSON.
func (d *Document) EncodeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d.wire())
}

func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.wire())
}

func (d *Document) UnmarshalJSON(data []byte) error {
	doc, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}
