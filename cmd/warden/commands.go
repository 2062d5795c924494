package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loykin/warden"
	"github.com/loykin/warden/internal/logger"
	"github.com/loykin/warden/pkg/template"
)

type command struct {
	log *slog.Logger
}

func buildRoot() *cobra.Command {
	c := &command{log: logger.NewCLILogger(slog.LevelInfo)}

	root := &cobra.Command{
		Use:           "warden",
		Short:         "warden supervises a single background worker process",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	startFlags := &StartFlags{}
	startCmd := &cobra.Command{
		Use:   "start [port]",
		Short: "Spawn the worker detached and record its PID",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 1 {
				p, err := parsePort(args[0])
				if err != nil {
					return err
				}
				startFlags.Port = p
			}
			return c.Start(*startFlags)
		},
	}
	startCmd.Flags().StringVar(&startFlags.ConfigPath, "config", "", "path to warden.toml")
	startCmd.Flags().StringVar(&startFlags.Name, "name", "", "worker name")
	startCmd.Flags().StringVar(&startFlags.Cmd, "cmd", "", "worker command (use ${PORT} for the resolved port)")
	startCmd.Flags().StringVar(&startFlags.WorkDir, "workdir", "", "worker working directory")
	startCmd.Flags().IntVar(&startFlags.Port, "port", 0, fmt.Sprintf("worker port (default %d)", warden.DefaultPort))
	startCmd.Flags().StringVar(&startFlags.Marker, "marker", "", "marker (PID) file path")
	startCmd.Flags().StringVar(&startFlags.LogDir, "log-dir", "", "directory for worker stdout/stderr logs")
	startCmd.Flags().StringArrayVar(&startFlags.EnvKVs, "env", nil, "extra K=V env entries for the worker")
	startCmd.Flags().StringArrayVar(&startFlags.EnvFiles, "env-file", nil, "env files passed through to the worker")
	startCmd.Flags().StringVar(&startFlags.HistoryDSN, "history-dsn", "", "audit sink DSN (sqlite://, postgres://, clickhouse://)")

	stopFlags := &StopFlags{}
	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Signal the worker and remove the marker",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return c.Stop(*stopFlags)
		},
	}
	stopCmd.Flags().StringVar(&stopFlags.ConfigPath, "config", "", "path to warden.toml")
	stopCmd.Flags().StringVar(&stopFlags.Name, "name", "", "worker name")
	stopCmd.Flags().StringVar(&stopFlags.Marker, "marker", "", "marker (PID) file path")
	stopCmd.Flags().StringVar(&stopFlags.HistoryDSN, "history-dsn", "", "audit sink DSN")

	statusFlags := &StatusFlags{}
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether the worker is running",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return c.Status(*statusFlags)
		},
	}
	statusCmd.Flags().StringVar(&statusFlags.ConfigPath, "config", "", "path to warden.toml")
	statusCmd.Flags().StringVar(&statusFlags.Name, "name", "", "worker name")
	statusCmd.Flags().StringVar(&statusFlags.Marker, "marker", "", "marker (PID) file path")
	statusCmd.Flags().BoolVar(&statusFlags.JSON, "json", false, "print full status as JSON")

	serveFlags := &ServeFlags{}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP server (start/stop/status/metrics)",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return c.Serve(*serveFlags)
		},
	}
	serveCmd.Flags().StringVar(&serveFlags.ConfigPath, "config", "", "path to warden.toml")
	serveCmd.Flags().StringVar(&serveFlags.Listen, "listen", "", "listen address (default 127.0.0.1:8080)")
	serveCmd.Flags().StringVar(&serveFlags.BasePath, "base-path", "", "API base path (default /api)")
	serveCmd.Flags().StringVar(&serveFlags.HistoryDSN, "history-dsn", "", "audit sink DSN")
	serveCmd.Flags().StringVar(&serveFlags.LogFile, "log-file", "", "write the server's own log to this rotating file")

	initFlags := &InitFlags{}
	initCmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Write a warden.toml scaffold for a worker",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := "worker"
			if len(args) == 1 {
				name = args[0]
			}
			return c.Init(*initFlags, name)
		},
	}
	initCmd.Flags().StringVar(&initFlags.Type, "type", "simple", "scaffold type (web, api, simple)")
	initCmd.Flags().StringVar(&initFlags.Output, "output", defaultConfigFile, "output file path")
	initCmd.Flags().BoolVar(&initFlags.Force, "force", false, "overwrite an existing file")

	root.AddCommand(startCmd, stopCmd, statusCmd, serveCmd, initCmd)
	return root
}

func (c *command) Init(f InitFlags, name string) error {
	body, err := template.NewGenerator().GenerateTOML(template.TemplateType(f.Type), name)
	if err != nil {
		return err
	}
	if !f.Force {
		if _, err := os.Stat(f.Output); err == nil {
			return fmt.Errorf("%s already exists; use --force to overwrite", f.Output)
		}
	}
	if err := os.WriteFile(f.Output, []byte(body), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", f.Output, err)
	}
	fmt.Printf("wrote %s (%s scaffold for %q)\n", f.Output, f.Type, name)
	return nil
}

func (c *command) Start(f StartFlags) error {
	spec, histDSN, err := resolveSpec(f.ConfigPath, specOverrides{
		name: f.Name, cmd: f.Cmd, workDir: f.WorkDir, port: f.Port,
		marker: f.Marker, logDir: f.LogDir, envKVs: f.EnvKVs, envFiles: f.EnvFiles,
		historyDSN: f.HistoryDSN,
	})
	if err != nil {
		return err
	}
	sup := warden.New(spec)
	sup.SetLogger(c.log)
	defer c.attachHistory(sup, histDSN)()

	pid, err := sup.Start(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("started %s (pid %d) on port %d\n", spec.Name, pid, spec.ResolvedPort())
	return nil
}

func (c *command) Stop(f StopFlags) error {
	spec, histDSN, err := resolveSpec(f.ConfigPath, specOverrides{
		name: f.Name, marker: f.Marker, historyDSN: f.HistoryDSN, allowNoCommand: true,
	})
	if err != nil {
		return err
	}
	sup := warden.New(spec)
	sup.SetLogger(c.log)
	defer c.attachHistory(sup, histDSN)()

	if err := sup.Stop(context.Background()); err != nil {
		return err
	}
	fmt.Printf("stopped %s\n", spec.Name)
	return nil
}

func (c *command) Status(f StatusFlags) error {
	spec, _, err := resolveSpec(f.ConfigPath, specOverrides{
		name: f.Name, marker: f.Marker, allowNoCommand: true,
	})
	if err != nil {
		return err
	}
	sup := warden.New(spec)
	sup.SetLogger(c.log)

	st, err := sup.Status(context.Background())
	if err != nil {
		// status is informational; report what we know and the probe error
		c.log.Warn("status probe failed", "error", err)
	}
	if f.JSON {
		printJSON(st)
		return nil
	}
	switch st.State {
	case warden.StateRunning:
		fmt.Printf("%s is running (pid %d)\n", st.Name, st.PID)
	case warden.StateStale:
		fmt.Printf("%s is not running (stale marker %s, pid %d)\n", st.Name, st.Marker, st.PID)
	default:
		fmt.Printf("%s is not running\n", st.Name)
	}
	return nil
}

func (c *command) Serve(f ServeFlags) error {
	cfg, err := loadConfigRequired(f.ConfigPath)
	if err != nil {
		return err
	}
	if f.Listen != "" {
		cfg.Server.Listen = f.Listen
	}
	if f.BasePath != "" {
		cfg.Server.BasePath = f.BasePath
	}
	if f.HistoryDSN != "" {
		cfg.History.DSN = f.HistoryDSN
		cfg.History.Enabled = true
	}
	if f.LogFile != "" {
		cfg.Server.LogFile = f.LogFile
	}

	log := c.log
	if cfg.Server.LogFile != "" {
		log = logger.NewFileLogger(cfg.Server.LogFile, cfg.Worker.Log, slog.LevelInfo)
	}

	sup := warden.New(cfg.Worker)
	sup.SetLogger(log)
	if cfg.History.Enabled && cfg.History.DSN != "" {
		sink, err := warden.NewHistorySink(cfg.History.DSN)
		if err != nil {
			return fmt.Errorf("history sink: %w", err)
		}
		defer func() { _ = sink.Close() }()
		sup.SetHistorySink(sink)
	}
	if err := warden.RegisterMetricsDefault(); err != nil {
		return err
	}

	srv, err := warden.NewHTTPServer(cfg.Server.Listen, cfg.Server.BasePath, sup)
	if err != nil {
		return err
	}
	log.Info("admin server listening", "addr", cfg.Server.Listen, "base_path", cfg.Server.BasePath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")
	return srv.Close()
}

// attachHistory wires an audit sink when a DSN is configured and returns the
// cleanup func. A broken sink is logged, not fatal: audit must never block
// lifecycle operations.
func (c *command) attachHistory(sup *warden.Supervisor, dsn string) func() {
	if dsn == "" {
		return func() {}
	}
	sink, err := warden.NewHistorySink(dsn)
	if err != nil {
		c.log.Warn("history sink unavailable", "dsn", dsn, "error", err)
		return func() {}
	}
	sup.SetHistorySink(sink)
	return func() { _ = sink.Close() }
}
