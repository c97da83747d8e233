package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/memmap/internal/codec"
	"github.com/danmuck/memmap/internal/elaborate"
	"github.com/danmuck/memmap/internal/memmap"
	"github.com/danmuck/memmap/internal/symbol"
	"github.com/danmuck/memmap/internal/testutil/testlog"
)

func fixturePath(name string) string {
	return filepath.Join("..", "..", "internal", "memmap", "testdata", name)
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestElaborateWritesOutputAndSummary(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "build", "map.toml")
	metrics := filepath.Join(dir, "memmap.prom")
	_, stderr, err := runCLI(t, "elaborate", fixturePath("register_map.json"), "-o", out, "--metrics-file", metrics, "--validate")
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	if !strings.Contains(stderr, "demo: 9 fields (7 leaves), 20 B in 0x0-0x101, next free 0x102") {
		t.Fatalf("unexpected summary: %q", stderr)
	}
	doc, f, err := codec.LoadFile(out, codec.FormatAuto)
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	if f != codec.FormatTOML {
		t.Fatalf("output format = %s", f)
	}
	doc.Root.Walk(func(path string, field *memmap.Field) bool {
		if field.Address == nil || field.Access == nil || field.Range == "" {
			t.Fatalf("%s not resolved: %+v", path, field)
		}
		return true
	})
	data, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(data), `memmap_elaborate_runs_total{outcome="ok",source="cli"}`) {
		t.Fatalf("metrics file missing cli run:\n%s", data)
	}
}

func TestElaborateToStdoutKeepsInputFormat(t *testing.T) {
	testlog.Start(t)
	stdout, _, err := runCLI(t, "elaborate", fixturePath("register_map.toml"))
	if err != nil {
		t.Fatalf("elaborate: %v", err)
	}
	if _, err := memmap.DecodeTOML([]byte(stdout)); err != nil {
		t.Fatalf("stdout is not toml: %v\n%s", err, stdout)
	}
}

func TestElaborateReportsFailure(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	doc := `{"protocol":{"addressMax":1,"dataMin":1},"name":"r","type":"set","contains":[{"name":"a","type":{"unsigned":8}},{"name":"b","type":{"unsigned":8}}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := runCLI(t, "elaborate", path)
	if !errors.Is(err, elaborate.ErrAddressOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestConvertAndSchema(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "map.json")
	if _, _, err := runCLI(t, "convert", fixturePath("register_map.toml"), "-o", out); err != nil {
		t.Fatalf("convert: %v", err)
	}
	stdout, _, err := runCLI(t, "schema", "--validate", out)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(stdout, "valid") {
		t.Fatalf("unexpected validate output: %q", stdout)
	}
	schemaPath := filepath.Join(dir, "schema", "memmap.schema.json")
	if _, _, err := runCLI(t, "schema", "-o", schemaPath); err != nil {
		t.Fatalf("schema export: %v", err)
	}
	if info, err := os.Stat(schemaPath); err != nil || info.Size() == 0 {
		t.Fatalf("schema not written: %v", err)
	}
}

func TestSymbolCreatesDocDir(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	docPath := filepath.Join(dir, "doc")
	stdout, _, err := runCLI(t, "symbol", "--source-path", dir, "--doc-path", docPath)
	if err != nil {
		t.Fatalf("symbol: %v", err)
	}
	if !strings.Contains(stdout, "Source: "+dir) {
		t.Fatalf("unexpected output: %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(docPath, symbol.FileName)); err != nil {
		t.Fatalf("icon missing: %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "memmapctl.toml")
	if _, _, err := runCLI(t, "config", "init", path); err != nil {
		t.Fatalf("init: %v", err)
	}
	stdout, _, err := runCLI(t, "config", "validate", path)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(stdout, "valid") {
		t.Fatalf("unexpected output: %q", stdout)
	}
	if _, _, err := runCLI(t, "config", "init", path); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
}

func TestUnknownLogLevel(t *testing.T) {
	testlog.Start(t)
	if _, _, err := runCLI(t, "--log-level", "loud", "version"); err == nil {
		t.Fatalf("expected log level error")
	}
	stdout, _, err := runCLI(t, "--log-level", "debug", "version")
	if err != nil || !strings.Contains(stdout, version) {
		t.Fatalf("version: %q %v", stdout, err)
	}
}
