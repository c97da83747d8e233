package observability

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/memmap/internal/logging"
	"github.com/danmuck/memmap/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), RequestLogger(logging.Component("test")), RequestMetricsMiddleware("test"))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})
	return r
}

func TestRequestIDAssignsAndPropagates(t *testing.T) {
	testlog.Start(t)
	r := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := rec.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("assigned id %q is not a uuid: %v", id, err)
	}
	if rec.Body.String() != id {
		t.Fatalf("handler saw %q, header %q", rec.Body.String(), id)
	}

	want := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, want)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != want {
		t.Fatalf("id = %q want %q", got, want)
	}

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got == "not-a-uuid" {
		t.Fatalf("malformed id must be replaced")
	}
}

func TestRequestMetricsLabelsUnmatchedPaths(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestMetricsMiddleware("route-labels"))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, target := range []string{"/items/1", "/items/2", "/nowhere/a", "/nowhere/b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	path := filepath.Join(t.TempDir(), "http.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`memmap_http_requests_total{method="GET",path="/items/:id",service="route-labels",status="200"} 2`,
		`memmap_http_requests_total{method="GET",path="unmatched",service="route-labels",status="404"} 2`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("textfile missing %s:\n%s", want, text)
		}
	}
	if strings.Contains(text, "/nowhere") {
		t.Fatalf("raw unmatched path leaked into labels:\n%s", text)
	}
}
