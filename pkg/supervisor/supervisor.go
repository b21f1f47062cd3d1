// Package supervisor implements the service lifecycle coordinator: it owns
// the root cancellation context, starts all enabled background services
// concurrently, waits for completion or first failure, and provides
// cooperative shutdown and exit-code derivation.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/drover-sh/drover/internal/logger"
	"github.com/drover-sh/drover/pkg/registry"
)

// Options contains parameters for the New function.
type Options struct {
	// PIDFile is the path where the process ID is written at init.
	// Empty disables PID file handling.
	PIDFile string

	// Version and Commit identify the build, for logging and status only.
	Version string
	Commit  string
}

// Migrator applies pending schema migrations. It is called once during
// initialization and gates Run: a migration failure aborts startup.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// Environment describes the process environment recorded at startup.
type Environment struct {
	Version   string
	Commit    string
	Hostname  string
	OS        string
	Arch      string
	GoVersion string
}

// EnvRecorder records environment metadata for observability. It is called
// once during initialization; a failure aborts startup.
type EnvRecorder interface {
	RecordEnvironment(env Environment) error
}

// ServiceRecorder counts service stops for observability. Called once per
// launched service as it returns; never on disabled services.
type ServiceRecorder interface {
	RecordServiceStop(service string, failed bool)
}

// Server coordinates the lifecycle of all registered background services.
//
// A Server is created once per process. Run blocks until every enabled
// service has returned; Shutdown requests cooperative cancellation from
// another goroutine.
type Server struct {
	context    context.Context
	shutdownFn context.CancelFunc
	log        *slog.Logger
	opts       Options
	services   *registry.Registry

	migrator Migrator
	env      EnvRecorder
	svcRec   ServiceRecorder
	exitFn   func(code int)

	mtx           sync.Mutex
	isInitialized bool
	startedAt     time.Time

	state             stateVar
	shutdownTriggered atomic.Bool
	shutdownFinished  chan struct{}

	runOnce sync.Once
	runErr  error
}

// Option configures optional collaborators on a Server.
type Option func(*Server)

// WithMigrator sets the migration runner invoked during Init.
func WithMigrator(m Migrator) Option {
	return func(s *Server) { s.migrator = m }
}

// WithEnvRecorder sets the environment recorder invoked during Init.
func WithEnvRecorder(r EnvRecorder) Option {
	return func(s *Server) { s.env = r }
}

// WithServiceRecorder sets the per-service stop recorder.
func WithServiceRecorder(r ServiceRecorder) Option {
	return func(s *Server) { s.svcRec = r }
}

// WithExitFunc overrides the function used to terminate the process on
// fatal I/O errors. The default is os.Exit; tests substitute a recorder.
func WithExitFunc(fn func(code int)) Option {
	return func(s *Server) { s.exitFn = fn }
}

// New returns a new Server supervising the services in the given registry.
// The registry is borrowed, not owned; it must be fully populated before
// Run is called.
func New(opts Options, services *registry.Registry, options ...Option) *Server {
	rootCtx, shutdownFn := context.WithCancel(context.Background())

	s := &Server{
		context:          rootCtx,
		shutdownFn:       shutdownFn,
		shutdownFinished: make(chan struct{}),
		log:              logger.With(logger.KeyComponent, "supervisor"),
		opts:             opts,
		services:         services,
		exitFn:           os.Exit,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Init performs one-time startup work: PID file, environment recording, and
// schema migration. It is idempotent and safe under concurrent callers; the
// side effects execute at most once.
//
// Initialization is only marked complete on full success, so a failed Init
// can be retried by calling Init (or Run) again.
func (s *Server) Init() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.isInitialized {
		return nil
	}
	s.state.transition(StateUninitialized, StateInitializing)

	s.writePIDFile()

	if s.env != nil {
		if err := s.env.RecordEnvironment(s.environment()); err != nil {
			s.state.set(StateUninitialized)
			return fmt.Errorf("failed to record environment information: %w", err)
		}
	}

	if s.migrator != nil {
		if err := s.migrator.Migrate(s.context); err != nil {
			s.state.set(StateUninitialized)
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	s.isInitialized = true
	return nil
}

// Run initializes the server and starts all enabled services. It blocks
// until every launched service has returned and then returns the first real
// failure observed across services, or nil if all stopped cleanly.
//
// To initiate shutdown, call Shutdown from another goroutine. Calling Run
// again after it has returned yields the cached result.
func (s *Server) Run() error {
	s.runOnce.Do(func() {
		s.runErr = s.run()
	})
	return s.runErr
}

func (s *Server) run() error {
	defer func() {
		s.state.set(StateStopped)
		close(s.shutdownFinished)
	}()

	if err := s.Init(); err != nil {
		return err
	}

	s.mtx.Lock()
	s.startedAt = time.Now()
	s.mtx.Unlock()
	s.state.transition(StateInitializing, StateRunning)

	eg, ctx := errgroup.WithContext(s.context)
	for _, desc := range s.services.Services() {
		if registry.IsDisabled(desc.Service) {
			s.log.Info("skipping disabled service", logger.KeyService, desc.Name)
			continue
		}

		name, svc := desc.Name, desc.Service
		eg.Go(func() error {
			// The group may already be cancelled before this service was
			// scheduled; not starting it at all is a clean stop.
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			err := svc.Run(ctx)
			// A cancellation-derived exit is a clean stop. Escalating it
			// would let a derivative cancellation error mask the failure
			// that triggered group cancellation in the first place.
			failed := err != nil && !IsCancellation(err)
			if s.svcRec != nil {
				s.svcRec.RecordServiceStop(name, failed)
			}
			if failed {
				s.log.Error("background service stopped with failure",
					logger.KeyService, name, logger.KeyError, err)
				return fmt.Errorf("service %s: %w", name, err)
			}
			s.log.Debug("background service stopped",
				logger.KeyService, name, logger.KeyReason, err)
			return nil
		})
	}

	s.notifyReadiness(readyNotification)

	s.log.Debug("waiting on services")
	return eg.Wait()
}

// Shutdown requests cooperative shutdown of all running services and blocks
// until Run has fully returned or ctx expires. Cancellation is triggered
// exactly once no matter how many callers invoke Shutdown; every caller
// waits independently against its own deadline.
//
// On the deadline path the returned error wraps ErrShutdownTimeout and Run
// may still be executing in the background; there is no forced termination.
// Calling Shutdown after the server has stopped returns nil immediately.
func (s *Server) Shutdown(ctx context.Context, reason string) error {
	if s.shutdownTriggered.CompareAndSwap(false, true) {
		s.log.Info("shutdown started", logger.KeyReason, reason)
		s.state.transition(StateRunning, StateShuttingDown)
		s.shutdownFn()
	}

	select {
	case <-s.shutdownFinished:
		s.log.Debug("finished waiting for server to shut down")
		return nil
	case <-ctx.Done():
		s.log.Warn("timed out while waiting for server to shut down",
			logger.KeyReason, reason)
		return fmt.Errorf("%w: %v", ErrShutdownTimeout, ctx.Err())
	}
}

// ExitCode maps the result of Run to a process exit code.
func (s *Server) ExitCode(runErr error) int {
	if runErr != nil {
		s.log.Error("server run failed", logger.KeyError, runErr)
		return 1
	}
	return 0
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	return s.state.get()
}

// ServiceStatus describes one registered service for status reporting.
type ServiceStatus struct {
	Name     string `json:"name"`
	Disabled bool   `json:"disabled"`
}

// Status is a point-in-time snapshot of the supervisor for status reporting.
type Status struct {
	State     string          `json:"state"`
	PID       int             `json:"pid"`
	Version   string          `json:"version"`
	Commit    string          `json:"commit"`
	StartedAt time.Time       `json:"started_at"`
	Services  []ServiceStatus `json:"services"`
}

// Status returns a snapshot of the supervisor and its registered services.
func (s *Server) Status() Status {
	descs := s.services.Services()
	services := make([]ServiceStatus, 0, len(descs))
	for _, d := range descs {
		services = append(services, ServiceStatus{
			Name:     d.Name,
			Disabled: registry.IsDisabled(d.Service),
		})
	}

	s.mtx.Lock()
	startedAt := s.startedAt
	s.mtx.Unlock()

	return Status{
		State:     s.state.get().String(),
		PID:       os.Getpid(),
		Version:   s.opts.Version,
		Commit:    s.opts.Commit,
		StartedAt: startedAt,
		Services:  services,
	}
}

// environment collects the process environment recorded at startup.
func (s *Server) environment() Environment {
	hostname, _ := os.Hostname()
	return Environment{
		Version:   s.opts.Version,
		Commit:    s.opts.Commit,
		Hostname:  hostname,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
	}
}
