package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/loykin/warden/internal/supervisor"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "warden.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[worker]
name = "question-app"
command = "uvicorn question_app.app:app --port ${PORT}"
workdir = "/srv/question-app"
port = 8010
env = ["APP_ENV=prod"]
env_files = [".env"]
marker = "run/question-app.pid"

[worker.log]
dir = "logs"
max_size_mb = 5

[history]
enabled = true
dsn = "sqlite://history.db"

[server]
listen = "0.0.0.0:9090"
base_path = "/admin"
log_file = "logs/warden.log"
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Worker.Name != "question-app" || c.Worker.Port != 8010 {
		t.Fatalf("worker fields: %+v", c.Worker)
	}
	if c.Worker.Marker != filepath.Join(dir, "run", "question-app.pid") {
		t.Fatalf("marker not resolved against config dir: %s", c.Worker.Marker)
	}
	if c.Worker.Log.Dir != filepath.Join(dir, "logs") {
		t.Fatalf("log dir not resolved: %s", c.Worker.Log.Dir)
	}
	if c.Worker.Log.MaxSizeMB != 5 {
		t.Fatalf("log rotation not parsed: %+v", c.Worker.Log)
	}
	if len(c.Worker.EnvFiles) != 1 || c.Worker.EnvFiles[0] != filepath.Join(dir, ".env") {
		t.Fatalf("env files not resolved: %v", c.Worker.EnvFiles)
	}
	if !c.History.Enabled || c.History.DSN != "sqlite://history.db" {
		t.Fatalf("history: %+v", c.History)
	}
	if c.Server.Listen != "0.0.0.0:9090" || c.Server.BasePath != "/admin" {
		t.Fatalf("server: %+v", c.Server)
	}
	if c.Server.LogFile != filepath.Join(dir, "logs", "warden.log") {
		t.Fatalf("server log file not resolved: %s", c.Server.LogFile)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[worker]
command = "sleep 1"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Worker.Name != "worker" {
		t.Fatalf("default name: %q", c.Worker.Name)
	}
	if c.Worker.Port != supervisor.DefaultPort {
		t.Fatalf("default port: %d", c.Worker.Port)
	}
	if c.Worker.Marker != filepath.Join(dir, "worker.pid") {
		t.Fatalf("default marker: %s", c.Worker.Marker)
	}
	if c.Server.Listen != "127.0.0.1:8080" || c.Server.BasePath != "/api" {
		t.Fatalf("server defaults: %+v", c.Server)
	}
}

func TestLoadRequiresCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[worker]
name = "w"
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for missing worker.command")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadKeepsAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[worker]
command = "sleep 1"
marker = "/var/run/w.pid"
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Worker.Marker != "/var/run/w.pid" {
		t.Fatalf("absolute marker rewritten: %s", c.Worker.Marker)
	}
}
