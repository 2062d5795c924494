package supervisor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// markerMeta is the third line of a marker file. StartUnix guards against
// PID reuse after a reboot or a long gap between operations.
type markerMeta struct {
	StartUnix int64 `json:"start_unix"`
}

// WriteMarker persists the marker file: first line PID, second line the Spec
// as JSON, third line meta JSON. Parent directories are created as needed.
func WriteMarker(path string, pid int, spec Spec, startUnix int64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(pid))
	b.WriteByte('\n')
	if sj, err := json.Marshal(spec); err == nil {
		b.Write(sj)
		b.WriteByte('\n')
	}
	if mj, err := json.Marshal(markerMeta{StartUnix: startUnix}); err == nil {
		b.Write(mj)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

// ReadMarker reads a marker file written by WriteMarker.
// It returns the PID and, if present, the JSON-encoded Spec that follows.
// For legacy files that contain only the PID, spec will be nil.
func ReadMarker(path string) (int, *Spec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, err
	}
	lines := strings.Split(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return 0, nil, err
	}
	if len(lines) < 2 || strings.TrimSpace(lines[1]) == "" {
		return pid, nil, nil
	}
	var spec Spec
	if err := json.Unmarshal([]byte(lines[1]), &spec); err != nil {
		// Return PID even if spec cannot be parsed
		return pid, nil, nil
	}
	return pid, &spec, nil
}

// MarkerExists reports whether the marker file is present. Errors other than
// "not exist" are treated as presence so a broken marker is never ignored.
func MarkerExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// RemoveMarker deletes the marker file.
func RemoveMarker(path string) error {
	return os.Remove(path)
}
