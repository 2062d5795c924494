package client

import (
	"fmt"
	"time"
)

// StartResponse is the admin server's reply to a successful start.
type StartResponse struct {
	OK  bool `json:"ok"`
	PID int  `json:"pid"`
}

// StatusResponse mirrors the supervisor's status snapshot.
type StatusResponse struct {
	Name       string    `json:"name"`
	State      string    `json:"state"`
	Running    bool      `json:"running"`
	PID        int       `json:"pid,omitempty"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	DetectedBy string    `json:"detected_by,omitempty"`
	Marker     string    `json:"marker,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// APIError is a non-200 admin API reply. Status keeps the HTTP code so
// callers can distinguish conflict (already running) from not-found
// (not running) without string matching.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.Status, e.Message)
}
