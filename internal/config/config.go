package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/loykin/warden/internal/supervisor"
)

// Config is the top-level TOML structure (warden.toml).
//
//	[worker]
//	name = "question-app"
//	command = "uvicorn question_app.app:app --host 0.0.0.0 --port ${PORT}"
//	workdir = "/srv/question-app"
//	port = 8004
//	env_files = [".env"]
//	marker = "run/question-app.pid"
//	  [worker.log]
//	  dir = "logs"
//	[history]
//	dsn = "sqlite://warden_history.db"
//	[server]
//	listen = "127.0.0.1:8080"
//	base_path = "/api"
//	log_file = "logs/warden.log"
type Config struct {
	Worker  supervisor.Spec `mapstructure:"worker"`
	History HistoryConfig   `mapstructure:"history"`
	Server  ServerConfig    `mapstructure:"server"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

type ServerConfig struct {
	Listen   string `mapstructure:"listen"`
	BasePath string `mapstructure:"base_path"`
	LogFile  string `mapstructure:"log_file"`
}

// Load reads a TOML config file and applies defaults. A missing file is an
// error; callers that treat the config as optional stat it first.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetDefault("worker.name", "worker")
	v.SetDefault("worker.port", supervisor.DefaultPort)
	v.SetDefault("server.listen", "127.0.0.1:8080")
	v.SetDefault("server.base_path", "/api")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyDefaults(&c, filepath.Dir(path))
	if c.Worker.Command == "" {
		return nil, fmt.Errorf("config %s: worker.command is required", path)
	}
	return &c, nil
}

// applyDefaults fills derived values and resolves relative paths against the
// config file's directory so invocations from any cwd behave the same.
func applyDefaults(c *Config, baseDir string) {
	if c.Worker.Marker == "" {
		c.Worker.Marker = c.Worker.Name + ".pid"
	}
	c.Worker.Marker = absAgainst(baseDir, c.Worker.Marker)
	if c.Worker.Log.Dir != "" {
		c.Worker.Log.Dir = absAgainst(baseDir, c.Worker.Log.Dir)
	}
	if c.Server.LogFile != "" {
		c.Server.LogFile = absAgainst(baseDir, c.Server.LogFile)
	}
	for i, f := range c.Worker.EnvFiles {
		c.Worker.EnvFiles[i] = absAgainst(baseDir, f)
	}
}

func absAgainst(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
