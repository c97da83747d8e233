// Package codec picks the document encoding for a path or request and moves
// documents between bytes, streams and files.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/danmuck/memmap/internal/memmap"
)

type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

var ErrUnknownFormat = errors.New("codec: unknown format")

// ParseFormat accepts json, toml, auto or an empty string (auto).
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// DetectFormat maps a file extension to its format.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: cannot infer from %q", ErrUnknownFormat, path)
	}
}

// Resolve returns f unless it is auto, in which case the format is taken
// from path.
func Resolve(f Format, path string) (Format, error) {
	if f != FormatAuto && f != "" {
		return f, nil
	}
	return DetectFormat(path)
}

func (f Format) ContentType() string {
	switch f {
	case FormatTOML:
		return "application/toml"
	default:
		return "application/json"
	}
}

// Decode parses data in format f.
func Decode(f Format, data []byte) (*memmap.Document, error) {
	switch f {
	case FormatJSON:
		return memmap.DecodeJSON(data)
	case FormatTOML:
		return memmap.DecodeTOML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Encode writes doc to w in format f.
func Encode(f Format, w io.Writer, doc *memmap.Document) error {
	switch f {
	case FormatJSON:
		return doc.EncodeJSON(w)
	case FormatTOML:
		return doc.EncodeTOML(w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

func Marshal(f Format, doc *memmap.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(f, &buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadFile reads and decodes path. An auto format is resolved from the
// extension.
func LoadFile(path string, f Format) (*memmap.Document, Format, error) {
	f, err := Resolve(f, path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("document load failed (%s): %w", path, err)
	}
	doc, err := Decode(f, data)
	if err != nil {
		return nil, "", fmt.Errorf("document parse failed (%s): %w", path, err)
	}
	return doc, f, nil
}

// SaveFile encodes doc to path, creating parent directories as needed.
func SaveFile(path string, f Format, doc *memmap.Document) error {
	f, err := Resolve(f, path)
	if err != nil {
		return err
	}
	data, err := Marshal(f, doc)
	if err != nil {
		return fmt.Errorf("document encode failed (%s): %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("document dir create failed (%s): %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("document write failed (%s): %w", path, err)
	}
	return nil
}
