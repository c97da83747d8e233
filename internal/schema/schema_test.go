package schema

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/memmap/internal/memmap"
	"github.com/danmuck/memmap/internal/testutil/testlog"
)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "memmap", "testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func TestJSONExportsDraft(t *testing.T) {
	testlog.Start(t)
	data, err := JSON()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("schema is not json: %v", err)
	}
	if out["$schema"] != Draft {
		t.Fatalf("$schema = %v", out["$schema"])
	}
	defs, ok := out["$defs"].(map[string]any)
	if !ok {
		t.Fatalf("missing $defs")
	}
	for _, name := range []string{"field", "fieldType", "value", "protocol", "access", "hexOrUnsigned"} {
		if _, ok := defs[name]; !ok {
			t.Fatalf("missing definition %s", name)
		}
	}
}

func TestValidateFixtures(t *testing.T) {
	testlog.Start(t)
	if err := ValidateJSON(fixture(t, "register_map.json")); err != nil {
		t.Fatalf("json fixture rejected: %v", err)
	}
	doc, err := memmap.DecodeTOML(fixture(t, "register_map.toml"))
	if err != nil {
		t.Fatalf("decode toml: %v", err)
	}
	if err := ValidateDocument(doc); err != nil {
		t.Fatalf("toml fixture rejected: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	testlog.Start(t)
	bad := map[string]string{
		"missing protocol": `{"name":"r","type":"set","contains":[]}`,
		"bad access":       `{"protocol":{"addressMax":1,"dataMin":1},"name":"r","access":"x","type":{"unsigned":8}}`,
		"bad hex":          `{"protocol":{"addressMax":"ffff","dataMin":1},"name":"r","type":{"unsigned":8}}`,
		"two type tags":    `{"protocol":{"addressMax":1,"dataMin":1},"name":"r","type":{"unsigned":8,"signed":8}}`,
		"unknown tag":      `{"protocol":{"addressMax":1,"dataMin":1},"name":"r","type":{"float":8}}`,
		"child no name":    `{"protocol":{"addressMax":1,"dataMin":1},"name":"r","type":"set","contains":[{"type":"set"}]}`,
		"bool value":       `{"protocol":{"addressMax":1,"dataMin":1},"name":"r","type":{"unsigned":8},"value":true}`,
		"not json":         `{`,
	}
	for name, doc := range bad {
		if err := ValidateJSON([]byte(doc)); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", name, err)
		}
	}
}
