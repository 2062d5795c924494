package main

import (
	"log/slog"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	cfg "github.com/loykin/warden/internal/config"
	"github.com/loykin/warden/internal/supervisor"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests require sh/sleep on Unix-like systems")
	}
}

func TestInitWritesLoadableConfig(t *testing.T) {
	c := &command{log: slog.Default()}
	out := filepath.Join(t.TempDir(), "warden.toml")
	if err := c.Init(InitFlags{Type: "api", Output: out}, "svc"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	conf, err := cfg.Load(out)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if conf.Worker.Name != "svc" {
		t.Fatalf("worker name = %q", conf.Worker.Name)
	}

	// Existing file is protected unless --force.
	if err := c.Init(InitFlags{Type: "api", Output: out}, "svc"); err == nil {
		t.Fatal("expected overwrite refusal without --force")
	}
	if err := c.Init(InitFlags{Type: "api", Output: out, Force: true}, "svc"); err != nil {
		t.Fatalf("Init --force: %v", err)
	}
}

func TestInitUnknownType(t *testing.T) {
	c := &command{log: slog.Default()}
	out := filepath.Join(t.TempDir(), "warden.toml")
	if err := c.Init(InitFlags{Type: "cluster", Output: out}, "svc"); err == nil {
		t.Fatal("expected error for unknown scaffold type")
	}
}

func TestStartStopRoundtripThroughHandlers(t *testing.T) {
	requireUnix(t)
	c := &command{log: slog.Default()}
	marker := filepath.Join(t.TempDir(), "w1.pid")

	flags := StartFlags{Name: "w1", Cmd: "sleep 2", Marker: marker}
	if err := c.Start(flags); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !supervisor.MarkerExists(marker) {
		t.Fatal("marker not written")
	}

	// Second start must refuse while the marker exists.
	if err := c.Start(flags); err == nil {
		t.Fatal("expected duplicate start to fail")
	}

	if err := c.Stop(StopFlags{Name: "w1", Marker: marker}); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for supervisor.MarkerExists(marker) {
		if time.Now().After(deadline) {
			t.Fatal("marker still present after stop")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := c.Stop(StopFlags{Name: "w1", Marker: marker}); err == nil {
		t.Fatal("expected stop without marker to fail")
	}
}
