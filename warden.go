package warden

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cfg "github.com/loykin/warden/internal/config"
	"github.com/loykin/warden/internal/history"
	"github.com/loykin/warden/internal/history/factory"
	"github.com/loykin/warden/internal/metrics"
	iapi "github.com/loykin/warden/internal/server"
	"github.com/loykin/warden/internal/supervisor"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Spec = supervisor.Spec

type Status = supervisor.Status

type State = supervisor.State

const (
	StateStopped = supervisor.StateStopped
	StateRunning = supervisor.StateRunning
	StateStale   = supervisor.StateStale
)

var (
	ErrAlreadyRunning = supervisor.ErrAlreadyRunning
	ErrNotRunning     = supervisor.ErrNotRunning
)

type SignalError = supervisor.SignalError

// Supervisor is a thin facade over internal/supervisor for embedding.
type Supervisor = supervisor.Supervisor

type HistorySink = history.Sink

// DefaultPort is handed to the worker when no port is configured.
const DefaultPort = supervisor.DefaultPort

func New(spec Spec) *Supervisor { return supervisor.New(spec) }

// LoadConfig reads a warden.toml file.
func LoadConfig(path string) (*cfg.Config, error) { return cfg.Load(path) }

// NewHistorySink builds an audit sink from a DSN
// (sqlite://, postgres://, clickhouse://).
func NewHistorySink(dsn string) (HistorySink, error) { return factory.NewSinkFromDSN(dsn) }

// NewHTTPServer starts the admin HTTP server exposing the supervisor API.
func NewHTTPServer(addr, basePath string, s *Supervisor) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, s)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics blocks serving Prometheus metrics on addr.
func ServeMetrics(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
