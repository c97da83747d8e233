package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/memmap/internal/testutil/testlog"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("memmap", "GET", "/health", 200, 12*time.Millisecond)
	RecordElaboration("test", "ok", 9, 2*time.Millisecond)
	RecordElaboration("test", "schema", 0, time.Millisecond)
}

func TestWriteTextfile(t *testing.T) {
	testlog.Start(t)
	RecordElaboration("textfile", "ok", 3, time.Millisecond)
	path := filepath.Join(t.TempDir(), "memmap.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, want := range []string{
		`memmap_elaborate_runs_total{outcome="ok",source="textfile"} 1`,
		`memmap_elaborate_fields_total{source="textfile"} 3`,
	} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("textfile missing %s:\n%s", want, data)
		}
	}
}
