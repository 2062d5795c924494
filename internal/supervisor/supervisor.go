package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/loykin/warden/internal/detector"
	"github.com/loykin/warden/internal/env"
	"github.com/loykin/warden/internal/history"
	"github.com/loykin/warden/internal/metrics"
)

// Supervisor owns the lifecycle of exactly one background worker, with the
// marker file as the source of truth for "is a worker currently owned here".
// Each operation is synchronous and runs to completion; the spawned worker is
// fully detached and never waited on.
type Supervisor struct {
	spec Spec
	log  *slog.Logger
	hist history.Sink
}

func New(spec Spec) *Supervisor {
	return &Supervisor{spec: spec, log: slog.Default()}
}

// SetLogger replaces the supervisor's own logger.
func (s *Supervisor) SetLogger(l *slog.Logger) {
	if l != nil {
		s.log = l
	}
}

// SetHistorySink attaches an audit sink. Sink failures are logged, never
// propagated into lifecycle results.
func (s *Supervisor) SetHistorySink(h history.Sink) { s.hist = h }

// Spec returns a copy of the supervised worker's spec.
func (s *Supervisor) Spec() Spec { return s.spec }

// Start spawns the worker detached and records its PID in the marker file.
// It fails with ErrAlreadyRunning when a marker exists, leaving the existing
// worker (if any) untouched. On success the new worker's PID is returned.
func (s *Supervisor) Start(ctx context.Context) (int, error) {
	if MarkerExists(s.spec.Marker) {
		return 0, fmt.Errorf("%w: marker %s exists", ErrAlreadyRunning, s.spec.Marker)
	}

	e := env.New()
	for _, f := range s.spec.EnvFiles {
		if err := e.LoadFile(f); err != nil {
			return 0, fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	perProc := append([]string{}, s.spec.Env...)
	perProc = append(perProc, "PORT="+strconv.Itoa(s.spec.ResolvedPort()))

	cmd := s.spec.BuildCommand()
	if s.spec.WorkDir != "" {
		cmd.Dir = s.spec.WorkDir
	}
	cmd.Env = e.Merge(perProc)

	outF, errF, err := s.spec.Log.WorkerFiles(s.spec.Name)
	if err != nil {
		return 0, fmt.Errorf("prepare worker logs: %w", err)
	}
	// The worker inherits the descriptors; the supervisor's copies are closed
	// after spawn so the files outlive this invocation with the worker alone.
	defer closeFiles(outF, errF)
	if outF != nil {
		cmd.Stdout = outF
	} else {
		cmd.Stdout, _ = os.OpenFile(os.DevNull, os.O_RDWR, 0)
	}
	if errF != nil {
		cmd.Stderr = errF
	} else {
		cmd.Stderr, _ = os.OpenFile(os.DevNull, os.O_RDWR, 0)
	}

	configureDetached(cmd)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("spawn worker: %w", err)
	}
	pid := cmd.Process.Pid
	// Detach: no parent-child lifetime coupling, the supervisor never reaps.
	_ = cmd.Process.Release()

	if err := WriteMarker(s.spec.Marker, pid, s.spec, detector.ProcStartUnix(pid)); err != nil {
		s.log.Error("worker spawned but marker write failed; stop will need the pid",
			"pid", pid, "marker", s.spec.Marker, "error", err)
		return pid, fmt.Errorf("write marker: %w", err)
	}

	s.log.Info("worker started", "name", s.spec.Name, "pid", pid, "port", s.spec.ResolvedPort())
	metrics.IncStart(s.spec.Name)
	s.record(ctx, history.Event{Type: history.EventStart, Name: s.spec.Name, PID: pid})
	return pid, nil
}

// Stop reads the recorded PID and delivers a termination signal. The marker
// is removed only after successful signal delivery; a failed signal keeps the
// marker in place so a stale marker is never silently cleared.
func (s *Supervisor) Stop(ctx context.Context) error {
	if !MarkerExists(s.spec.Marker) {
		return ErrNotRunning
	}
	pid, _, err := ReadMarker(s.spec.Marker)
	if err != nil {
		return fmt.Errorf("read marker %s: %w", s.spec.Marker, err)
	}

	if err := terminate(pid); err != nil {
		metrics.IncSignalFailure(s.spec.Name)
		sigErr := &SignalError{PID: pid, Err: err}
		s.record(ctx, history.Event{
			Type: history.EventStopFailed, Name: s.spec.Name, PID: pid, Error: sigErr.Error(),
		})
		return sigErr
	}

	if err := RemoveMarker(s.spec.Marker); err != nil {
		return fmt.Errorf("remove marker %s: %w", s.spec.Marker, err)
	}

	s.log.Info("worker stopped", "name", s.spec.Name, "pid", pid)
	metrics.IncStop(s.spec.Name)
	s.record(ctx, history.Event{Type: history.EventStop, Name: s.spec.Name, PID: pid})
	return nil
}

// Status reports the worker's state. It is strictly read-only: even when the
// probe finds the recorded PID dead, the marker file is left alone.
func (s *Supervisor) Status(_ context.Context) (Status, error) {
	st := Status{Name: s.spec.Name, Marker: s.spec.Marker, State: StateStopped}
	if !MarkerExists(s.spec.Marker) {
		metrics.SetWorkerUp(s.spec.Name, false)
		return st, nil
	}

	pid, _, err := ReadMarker(s.spec.Marker)
	if err != nil {
		// Marker present but unreadable: report stale, never repair.
		st.State = StateStale
		return st, fmt.Errorf("read marker %s: %w", s.spec.Marker, err)
	}
	st.PID = pid

	d := detector.MarkerDetector{Path: s.spec.Marker}
	alive, err := d.Alive()
	if err != nil {
		st.State = StateStale
		return st, err
	}
	if alive {
		st.State = StateRunning
		st.Running = true
		st.DetectedBy = d.Describe()
	} else {
		st.State = StateStale
	}
	metrics.SetWorkerUp(s.spec.Name, alive)
	return st, nil
}

func (s *Supervisor) record(ctx context.Context, e history.Event) {
	if s.hist == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.hist.Send(cctx, e); err != nil {
		s.log.Warn("history sink send failed", "event", string(e.Type), "error", err)
	}
}

func closeFiles(files ...*os.File) {
	var prev *os.File
	for _, f := range files {
		if f != nil && f != prev {
			_ = f.Close()
		}
		prev = f
	}
}
