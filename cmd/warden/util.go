package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/loykin/warden"
	cfg "github.com/loykin/warden/internal/config"
)

const defaultConfigFile = "warden.toml"

type specOverrides struct {
	name       string
	cmd        string
	workDir    string
	port       int
	marker     string
	logDir     string
	envKVs     []string
	envFiles   []string
	historyDSN string
	// stop/status work from the marker alone; no command needed
	allowNoCommand bool
}

// resolveSpec merges config file values (when present) with flag overrides.
// Explicit --config must exist; the implicit ./warden.toml is optional.
func resolveSpec(configPath string, o specOverrides) (warden.Spec, string, error) {
	var spec warden.Spec
	var histDSN string

	path := configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		c, err := cfg.Load(path)
		if err != nil {
			return spec, "", err
		}
		spec = c.Worker
		if c.History.Enabled {
			histDSN = c.History.DSN
		}
	}

	if o.name != "" {
		spec.Name = o.name
	}
	if spec.Name == "" {
		spec.Name = "worker"
	}
	if o.cmd != "" {
		spec.Command = o.cmd
	}
	if o.workDir != "" {
		spec.WorkDir = o.workDir
	}
	if o.port > 0 {
		spec.Port = o.port
	}
	if o.marker != "" {
		spec.Marker = o.marker
	}
	if spec.Marker == "" {
		spec.Marker = spec.Name + ".pid"
	}
	if o.logDir != "" {
		spec.Log.Dir = o.logDir
	}
	if len(o.envKVs) > 0 {
		spec.Env = append(spec.Env, o.envKVs...)
	}
	if len(o.envFiles) > 0 {
		spec.EnvFiles = append(spec.EnvFiles, o.envFiles...)
	}
	if o.historyDSN != "" {
		histDSN = o.historyDSN
	}

	if spec.Command == "" && !o.allowNoCommand {
		return spec, "", fmt.Errorf("no worker command: set worker.command in %s or pass --cmd", defaultConfigFile)
	}
	return spec, histDSN, nil
}

func loadConfigRequired(path string) (*cfg.Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	return cfg.Load(path)
}

func parsePort(s string) (int, error) {
	p, err := strconv.Atoi(s)
	if err != nil || p <= 0 || p > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return p, nil
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(b))
}
