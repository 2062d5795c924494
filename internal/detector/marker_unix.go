//go:build !windows

package detector

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// pidAlive returns true if a process with given pid exists (or EPERM).
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

// MarkerDetector probes liveness through the marker (PID) file written by the
// supervisor. Marker format: first line PID, optional spec JSON on the second
// line, optional meta JSON on the third.
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

	// When the recorded start time disagrees with the live process's start
	// time, the PID was reused by an unrelated process.
	if meta := parseMeta(lines); meta.StartUnix > 0 {
		if cur := getProcStartUnix(pid); cur > 0 && cur != meta.StartUnix {
			return false, nil
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
		// Legacy two-line markers carry meta on the second line.
		if err := json.Unmarshal([]byte(strings.TrimSpace(lines[1])), &m); err == nil && m.StartUnix > 0 {
			return m
		}
	}
	return markerMeta{}
}
