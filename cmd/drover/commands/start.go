package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/drover-sh/drover/internal/logger"
	"github.com/drover-sh/drover/pkg/api"
	"github.com/drover-sh/drover/pkg/config"
	"github.com/drover-sh/drover/pkg/metrics"
	"github.com/drover-sh/drover/pkg/registry"
	"github.com/drover-sh/drover/pkg/services/janitor"
	"github.com/drover-sh/drover/pkg/store"
	"github.com/drover-sh/drover/pkg/supervisor"
)

var startPidFile string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the drover supervisor",
	Long: `Start the drover supervisor with the specified configuration.

The supervisor starts all enabled background services (API server, metrics
endpoint, janitor), waits for SIGINT/SIGTERM, and shuts them down
cooperatively within the configured shutdown timeout.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/drover/config.yaml.

Examples:
  # Start with default config location
  drover start

  # Start with custom config file
  drover start --config /etc/drover/config.yaml

  # Start with environment variable overrides
  DROVER_LOGGING_LEVEL=DEBUG drover start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startPidFile, "pid-file", "", "Path to PID file (overrides config)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))

	// Initialize metrics FIRST so later components see metrics.IsEnabled()
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}

	// Open the control store; schema migration happens during supervisor Init
	st, err := store.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open control store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close control store", logger.KeyError, err)
		}
	}()

	pidFile := cfg.PIDFile
	if startPidFile != "" {
		pidFile = startPidFile
	}

	services := registry.NewRegistry()

	opts := []supervisor.Option{supervisor.WithMigrator(st)}
	if rec := metrics.NewEnvironmentRecorder(); rec != nil {
		opts = append(opts, supervisor.WithEnvRecorder(rec))
	}
	if rec := metrics.NewServiceRecorder(); rec != nil {
		opts = append(opts, supervisor.WithServiceRecorder(rec))
	}

	srv := supervisor.New(supervisor.Options{
		PIDFile: pidFile,
		Version: Version,
		Commit:  Commit,
	}, services, opts...)

	// Register background services. Registration order is launch order.
	services.MustRegister("api", api.NewServer(cfg.API, srv, st))
	services.MustRegister("metrics", metrics.NewServer(cfg.Metrics.Port, cfg.Metrics.Enabled))
	services.MustRegister("janitor", janitor.New(cfg.Janitor, st))

	if cfg.API.IsEnabled() {
		logger.Info("API server enabled", "port", cfg.API.Port)
	} else {
		logger.Info("API server disabled")
	}

	// Initialize up front so a bad PID path or failed migration aborts
	// before anything is recorded as started
	if err := srv.Init(); err != nil {
		return err
	}

	// Record this run in the control store; history is best-effort
	run := &store.Run{
		PID:      os.Getpid(),
		Version:  Version,
		Commit:   Commit,
		Hostname: hostname(),
	}
	if err := st.RecordRunStart(cmd.Context(), run); err != nil {
		logger.Warn("failed to record run start", logger.KeyError, err)
		run = nil
	}

	// Start supervisor in background
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Run()
	}()

	// Wait for interrupt signal or supervisor exit
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Supervisor is running. Press Ctrl+C to stop.")

	var runErr error

	select {
	case sig := <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		err := srv.Shutdown(shutdownCtx, fmt.Sprintf("got signal %s", sig))
		cancel()
		if err != nil {
			// Services are still hanging past the deadline; give up on them
			recordRunStop(st, run, "timeout")
			return err
		}
		runErr = <-serverDone

	case runErr = <-serverDone:
		signal.Stop(sigChan)
	}

	outcome := "clean"
	if runErr != nil {
		outcome = "failed"
	}
	recordRunStop(st, run, outcome)

	if srv.ExitCode(runErr) != 0 {
		return runErr
	}
	logger.Info("Supervisor stopped gracefully")
	return nil
}

// recordRunStop closes out the run history row, if one was created.
func recordRunStop(st store.Store, run *store.Run, outcome string) {
	if run == nil {
		return
	}
	if err := st.RecordRunStop(context.Background(), run.ID, outcome); err != nil {
		logger.Warn("failed to record run stop", logger.KeyError, err)
	}
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

func hostname() string {
	h, _ := os.Hostname()
	return h
}
