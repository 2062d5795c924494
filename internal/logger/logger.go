package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation parameters for the supervisor's own log.
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Config describes logging destinations for the supervised worker.
// If StdoutPath/StderrPath are empty and Dir is set, files will be
// Dir/<name>.stdout.log and Dir/<name>.stderr.log.
// Rotation parameters apply to the supervisor's own log (lumberjack
// semantics); worker output goes to plain append files because the worker
// outlives the supervisor process and must own its descriptors.
type Config struct {
	Dir        string `json:"dir" mapstructure:"dir"`
	StdoutPath string `json:"stdout_path" mapstructure:"stdout"`
	StderrPath string `json:"stderr_path" mapstructure:"stderr"`
	MaxSizeMB  int    `json:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `json:"compress" mapstructure:"compress"`
}

// WorkerFiles opens append-mode files for the worker's stdout and stderr and
// returns them. The descriptors are inherited by the spawned worker directly;
// no in-supervisor pipe sits between the worker and its logs. The log
// directory is created if absent. Both returns are nil when no destination
// is configured.
func (c Config) WorkerFiles(name string) (*os.File, *os.File, error) {
	stdout := c.StdoutPath
	stderr := c.StderrPath
	if stdout == "" && c.Dir != "" {
		stdout = filepath.Join(c.Dir, fmt.Sprintf("%s.stdout.log", name))
	}
	if stderr == "" && c.Dir != "" {
		stderr = filepath.Join(c.Dir, fmt.Sprintf("%s.stderr.log", name))
	}
	if c.Dir != "" {
		if err := os.MkdirAll(c.Dir, 0o750); err != nil {
			return nil, nil, err
		}
	}
	var outF, errF *os.File
	var err error
	if stdout != "" {
		// #nosec G304 -- operator-configured path
		outF, err = os.OpenFile(stdout, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return nil, nil, err
		}
	}
	if stderr != "" {
		if stderr == stdout {
			return outF, outF, nil
		}
		// #nosec G304 -- operator-configured path
		errF, err = os.OpenFile(stderr, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			if outF != nil {
				_ = outF.Close()
			}
			return nil, nil, err
		}
	}
	return outF, errF, nil
}

// NewRotatingWriter returns a lumberjack-backed writer for the supervisor's
// own log output (serve mode). Rotation parameters come from c.
func NewRotatingWriter(path string, c Config) io.WriteCloser {
	return &lj.Logger{
		Filename:   path,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// NewCLILogger returns a slog.Logger suitable for supervisor command output:
// colorized level prefix writing to stderr.
func NewCLILogger(level slog.Level) *slog.Logger {
	h := NewColorTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}, false)
	return slog.New(h)
}

// NewFileLogger returns a slog.Logger writing structured text to a rotating
// file, for the serve daemon.
func NewFileLogger(path string, c Config, level slog.Level) *slog.Logger {
	w := NewRotatingWriter(path, c)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
