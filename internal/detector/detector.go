package detector

import "fmt"

// Detector is a strategy that determines if the supervised worker is running.
// Implementations must be non-destructive: probing liveness never signals,
// reaps, or mutates marker state. Safe for concurrent use.
type Detector interface {
	// Alive returns true if the worker is detected as running.
	Alive() (bool, error)
	// Describe returns a human-readable description of the detection method.
	Describe() string
}

// ProcStartUnix reports the start time of pid as Unix seconds, or 0 when
// unavailable. The supervisor records it in the marker so a reused PID is
// never mistaken for the worker.
func ProcStartUnix(pid int) int64 { return getProcStartUnix(pid) }

// PIDDetector detects by a provided PID number.
type PIDDetector struct{ PID int }

func (d PIDDetector) Alive() (bool, error) { return pidAlive(d.PID), nil }
func (d PIDDetector) Describe() string     { return fmt.Sprintf("pid:%d", d.PID) }
