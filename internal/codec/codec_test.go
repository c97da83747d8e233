package codec

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/danmuck/memmap/internal/memmap"
	"github.com/danmuck/memmap/internal/testutil/testlog"
)

func sampleDocument() *memmap.Document {
	return &memmap.Document{
		Protocol: memmap.Protocol{Name: "demo", AddressMax: 0xFF, DataMin: 1},
		Root: *memmap.NewSet("root",
			memmap.NewLeaf("a", memmap.UnsignedType(8)).WithValue(memmap.UnsignedValue(3)),
			memmap.NewLeaf("label", memmap.StringType(4)).WithValue(memmap.StringValue("hi")),
		),
	}
}

func TestParseFormat(t *testing.T) {
	testlog.Start(t)
	for raw, want := range map[string]Format{"": FormatAuto, "AUTO": FormatAuto, "json": FormatJSON, " toml ": FormatTOML} {
		got, err := ParseFormat(raw)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v want %q", raw, got, err, want)
		}
	}
	if _, err := ParseFormat("yaml"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	testlog.Start(t)
	if f, err := Resolve(FormatAuto, "dir/map.TOML"); err != nil || f != FormatTOML {
		t.Fatalf("Resolve auto toml = %q, %v", f, err)
	}
	if f, err := Resolve(FormatJSON, "map.toml"); err != nil || f != FormatJSON {
		t.Fatalf("explicit format must win, got %q, %v", f, err)
	}
	if _, err := Resolve(FormatAuto, "map.yaml"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if FormatTOML.ContentType() != "application/toml" || FormatJSON.ContentType() != "application/json" {
		t.Fatalf("unexpected content types")
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	doc := sampleDocument()
	for _, name := range []string{"out/nested/map.json", "out/map.toml"} {
		path := filepath.Join(dir, name)
		if err := SaveFile(path, FormatAuto, doc); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		loaded, f, err := LoadFile(path, FormatAuto)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		want, _ := DetectFormat(path)
		if f != want {
			t.Fatalf("format = %q want %q", f, want)
		}
		if !reflect.DeepEqual(loaded, doc) {
			t.Fatalf("%s changed on disk round trip", name)
		}
	}
}

func TestLoadFileErrors(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	if _, _, err := LoadFile(filepath.Join(dir, "missing.json"), FormatAuto); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist, got %v", err)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"name":"r"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := LoadFile(bad, FormatAuto); !errors.Is(err, memmap.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}
