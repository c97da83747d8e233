package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/danmuck/memmap/internal/memmap"
	"github.com/danmuck/memmap/internal/testutil/testlog"
)

func TestLoadServiceConfigDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := LoadServiceConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultServiceConfig()) {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadServiceConfigFileAndEnv(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "memmapctl.toml")
	if err := WriteTemplate(path, "service", false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	t.Setenv("MEMMAP_ADDR", ":9999")
	t.Setenv("MEMMAP_CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := LoadServiceConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Fatalf("env must override addr, got %q", cfg.Addr)
	}
	if !reflect.DeepEqual(cfg.CorsOrigins, []string{"http://a.test", "http://b.test"}) {
		t.Fatalf("cors = %v", cfg.CorsOrigins)
	}
	if cfg.Name != "memmap" || cfg.MaxBodyBytes != 1048576 || cfg.ShutdownTimeout().Seconds() != 5 {
		t.Fatalf("file values lost: %+v", cfg)
	}
}

func TestLoadServiceConfigErrors(t *testing.T) {
	testlog.Start(t)
	dir := t.TempDir()
	if _, err := LoadServiceConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("expected missing file error")
	}
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte(`default_format = "yaml"`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadServiceConfig(bad)
	if err == nil || !strings.Contains(err.Error(), "default_format") {
		t.Fatalf("expected default_format error, got %v", err)
	}
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "nested", "memmapctl.toml")
	if err := WriteTemplate(path, "", false); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteTemplate(path, "", false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if err := WriteTemplate(path, "service", true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if _, err := Template("ghost"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestDocumentTemplateDecodes(t *testing.T) {
	testlog.Start(t)
	tmpl, err := Template("map")
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	doc, err := memmap.DecodeTOML([]byte(tmpl))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Protocol.AddressMax != 0xFFFF || len(doc.Root.Contains) != 3 {
		t.Fatalf("unexpected template document: %+v", doc)
	}
}
