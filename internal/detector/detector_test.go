//go:build !windows

package detector

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestPIDDetectorSelf(t *testing.T) {
	d := PIDDetector{PID: os.Getpid()}
	alive, err := d.Alive()
	if err != nil {
		t.Fatalf("Alive: %v", err)
	}
	if !alive {
		t.Fatalf("expected current process to be alive")
	}
}

func TestPIDDetectorInvalid(t *testing.T) {
	d := PIDDetector{PID: -1}
	if alive, _ := d.Alive(); alive {
		t.Fatalf("negative pid reported alive")
	}
}

func writeMarker(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "w.pid")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	return path
}

func TestMarkerDetectorMissingFile(t *testing.T) {
	d := MarkerDetector{Path: filepath.Join(t.TempDir(), "nope.pid")}
	alive, err := d.Alive()
	if err != nil {
		t.Fatalf("missing marker should not error: %v", err)
	}
	if alive {
		t.Fatalf("missing marker reported alive")
	}
}

func TestMarkerDetectorAliveSelf(t *testing.T) {
	pid := os.Getpid()
	path := writeMarker(t, t.TempDir(), fmt.Sprintf("%d", pid), `{"name":"w"}`)
	d := MarkerDetector{Path: path}
	alive, err := d.Alive()
	if err != nil {
		t.Fatalf("Alive: %v", err)
	}
	if !alive {
		t.Fatalf("expected own pid to be detected alive")
	}
	if d.Describe() != "marker:"+path {
		t.Fatalf("Describe mismatch: %s", d.Describe())
	}
}

func TestMarkerDetectorStartTimeMismatchMeansPIDReuse(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("needs a platform with process start time support")
	}
	pid := os.Getpid()
	cur := ProcStartUnix(pid)
	if cur <= 0 {
		t.Skip("proc start time unavailable")
	}
	// Recorded start time differs: the PID belongs to someone else now.
	path := writeMarker(t, t.TempDir(),
		fmt.Sprintf("%d", pid), `{"name":"w"}`, fmt.Sprintf(`{"start_unix":%d}`, cur-12345))
	d := MarkerDetector{Path: path}
	alive, err := d.Alive()
	if err != nil {
		t.Fatalf("Alive: %v", err)
	}
	if alive {
		t.Fatalf("reused PID must not be reported alive")
	}
}

func TestMarkerDetectorMatchingStartTime(t *testing.T) {
	pid := os.Getpid()
	cur := ProcStartUnix(pid)
	if cur <= 0 {
		t.Skip("proc start time unavailable")
	}
	path := writeMarker(t, t.TempDir(),
		fmt.Sprintf("%d", pid), `{"name":"w"}`, fmt.Sprintf(`{"start_unix":%d}`, cur))
	d := MarkerDetector{Path: path}
	alive, err := d.Alive()
	if err != nil {
		t.Fatalf("Alive: %v", err)
	}
	if !alive {
		t.Fatalf("matching start time must be reported alive")
	}
}

func TestMarkerDetectorInvalidContent(t *testing.T) {
	path := writeMarker(t, t.TempDir(), "garbage")
	d := MarkerDetector{Path: path}
	if _, err := d.Alive(); err == nil {
		t.Fatalf("expected error for invalid marker content")
	}
}
