//go:build windows

package detector

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// pidAlive returns true if a process with given pid exists on Windows.
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	h, err := syscall.OpenProcess(syscall.PROCESS_QUERY_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer func() { _ = syscall.CloseHandle(h) }()
	return true
}

// MarkerDetector probes liveness through the marker (PID) file written by the
// supervisor. See marker_unix.go for the format.
type MarkerDetector struct {
	Path string
}

type markerMeta struct {
	StartUnix int64 `json:"start_unix"`
}

func (d MarkerDetector) Alive() (bool, error) {
	data, err := os.ReadFile(d.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) == 0 {
		return false, fmt.Errorf("empty marker file: %s", d.Path)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return false, fmt.Errorf("invalid pid in %s: %w", d.Path, err)
	}

	if meta := parseMeta(lines); meta.StartUnix > 0 {
		if cur := getProcStartUnix(pid); cur > 0 && cur != meta.StartUnix {
			return false, nil // PID reused
		}
	}

	return pidAlive(pid), nil
}

func (d MarkerDetector) Describe() string { return "marker:" + d.Path }

func parseMeta(lines []string) markerMeta {
	var m markerMeta
	if len(lines) >= 3 {
		if err := json.Unmarshal([]byte(strings.TrimSpace(lines[2])), &m); err == nil && m.StartUnix > 0 {
			return m
		}
	}
	if len(lines) >= 2 {
		if err := json.Unmarshal([]byte(strings.TrimSpace(lines[1])), &m); err == nil && m.StartUnix > 0 {
			return m
		}
	}
	return markerMeta{}
}
