package supervisor

import "time"

// State is the externally observable lifecycle state of the worker.
type State string

const (
	// StateStopped means no marker file exists.
	StateStopped State = "stopped"
	// StateRunning means the marker exists and the recorded PID is alive.
	StateRunning State = "running"
	// StateStale means the marker exists but the recorded PID is dead.
	// Status never repairs this; only an operator (or stop/start) can.
	StateStale State = "stale"
)

// Status is a read-only snapshot produced by Supervisor.Status.
type Status struct {
	Name       string    `json:"name"`
	State      State     `json:"state"`
	Running    bool      `json:"running"`
	PID        int       `json:"pid,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	DetectedBy string    `json:"detected_by,omitempty"`
	Marker     string    `json:"marker,omitempty"`
}
