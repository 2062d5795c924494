package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/loykin/warden/internal/supervisor"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests require sh/sleep on Unix-like systems")
	}
}

func newTestRouter(t *testing.T, command string) (*Router, supervisor.Spec) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	spec := supervisor.Spec{
		Name:    "w1",
		Command: command,
		Marker:  filepath.Join(t.TempDir(), "w1.pid"),
	}
	return NewRouter(supervisor.New(spec), "/api"), spec
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouterLifecycle(t *testing.T) {
	requireUnix(t)
	r, spec := newTestRouter(t, "sleep 3")
	h := r.Handler()

	// status before start
	w := do(t, h, http.MethodGet, "/api/status")
	if w.Code != http.StatusOK {
		t.Fatalf("status code: %d", w.Code)
	}
	var st supervisor.Status
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.State != supervisor.StateStopped {
		t.Fatalf("expected stopped, got %+v", st)
	}

	// start
	w = do(t, h, http.MethodPost, "/api/start")
	if w.Code != http.StatusOK {
		t.Fatalf("start code: %d body=%s", w.Code, w.Body.String())
	}
	var sr struct {
		OK  bool `json:"ok"`
		PID int  `json:"pid"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !sr.OK || sr.PID <= 0 {
		t.Fatalf("start response: %+v", sr)
	}
	defer func() { _ = syscall.Kill(sr.PID, syscall.SIGKILL) }()

	// double start conflicts
	w = do(t, h, http.MethodPost, "/api/start")
	if w.Code != http.StatusConflict {
		t.Fatalf("double start code: %d", w.Code)
	}

	// running status
	w = do(t, h, http.MethodGet, "/api/status")
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.State != supervisor.StateRunning || st.PID != sr.PID {
		t.Fatalf("expected running with pid %d, got %+v", sr.PID, st)
	}

	// stop
	w = do(t, h, http.MethodPost, "/api/stop")
	if w.Code != http.StatusOK {
		t.Fatalf("stop code: %d body=%s", w.Code, w.Body.String())
	}

	// stop again -> not running
	w = do(t, h, http.MethodPost, "/api/stop")
	if w.Code != http.StatusNotFound {
		t.Fatalf("second stop code: %d", w.Code)
	}
	_ = spec
}

func TestRouterSignalFailureMapsToBadGateway(t *testing.T) {
	requireUnix(t)
	gin.SetMode(gin.TestMode)
	marker := filepath.Join(t.TempDir(), "w1.pid")
	if err := supervisor.WriteMarker(marker, 1<<29, supervisor.Spec{Name: "w1"}, 0); err != nil {
		t.Fatalf("WriteMarker: %v", err)
	}
	r := NewRouter(supervisor.New(supervisor.Spec{Name: "w1", Marker: marker}), "/api")
	w := do(t, r.Handler(), http.MethodPost, "/api/stop")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for signal failure, got %d", w.Code)
	}
}

func TestRouterHealthzAndMetrics(t *testing.T) {
	r, _ := newTestRouter(t, "sleep 1")
	h := r.Handler()
	if w := do(t, h, http.MethodGet, "/api/healthz"); w.Code != http.StatusOK {
		t.Fatalf("healthz: %d", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/metrics"); w.Code != http.StatusOK {
		t.Fatalf("metrics: %d", w.Code)
	}
}

func TestSanitizeBase(t *testing.T) {
	cases := map[string]string{
		"":      "",
		"/":     "",
		"api":   "/api",
		"/api":  "/api",
		"/api/": "/api",
	}
	for in, want := range cases {
		if got := sanitizeBase(in); got != want {
			t.Fatalf("sanitizeBase(%q) = %q, want %q", in, got, want)
		}
	}
}
