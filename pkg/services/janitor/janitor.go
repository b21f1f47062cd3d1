// Package janitor implements the periodic run-history pruning service.
package janitor

import (
	"context"
	"time"

	"github.com/drover-sh/drover/internal/logger"
	"github.com/drover-sh/drover/pkg/store"
)

// Config controls the janitor service.
type Config struct {
	// Enabled controls whether the janitor runs.
	// Default: true
	Enabled *bool `mapstructure:"enabled" yaml:"enabled"`

	// Interval is how often old runs are pruned.
	// Default: 1h
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`

	// Retention is how long completed runs are kept.
	// Default: 720h (30 days)
	Retention time.Duration `mapstructure:"retention" yaml:"retention"`
}

// IsEnabled returns whether the janitor is enabled.
// Defaults to true if not explicitly set.
func (c *Config) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Interval == 0 {
		c.Interval = time.Hour
	}
	if c.Retention == 0 {
		c.Retention = 30 * 24 * time.Hour
	}
}

// Janitor periodically deletes completed run records older than the
// configured retention from the control store.
type Janitor struct {
	cfg   Config
	store store.Store
}

// New creates a janitor over the given control store.
func New(cfg Config, st store.Store) *Janitor {
	cfg.ApplyDefaults()
	return &Janitor{cfg: cfg, store: st}
}

// IsDisabled reports whether the janitor is administratively off.
func (j *Janitor) IsDisabled() bool {
	return !j.cfg.IsEnabled()
}

// Run prunes on every interval tick until the context is cancelled.
// The context error is returned so the supervisor records a clean stop.
func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.cfg.Interval)
	defer ticker.Stop()

	logger.Debug("janitor started",
		"interval", j.cfg.Interval, "retention", j.cfg.Retention)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("janitor stopping", logger.KeyReason, ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			j.prune(ctx)
		}
	}
}

func (j *Janitor) prune(ctx context.Context) {
	cutoff := time.Now().Add(-j.cfg.Retention)
	removed, err := j.store.PruneRuns(ctx, cutoff)
	if err != nil {
		// Pruning failures are not fatal; retried on the next tick
		logger.Warn("failed to prune run history", logger.KeyError, err)
		return
	}
	if removed > 0 {
		logger.Info("pruned run history", "removed", removed)
	}
}
