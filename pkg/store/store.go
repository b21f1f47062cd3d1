// Package store implements the control store: a small database holding the
// supervisor's run history and instance metadata. It supports SQLite for
// single-node deployments (default) and PostgreSQL.
package store

import (
	"context"
	"time"
)

// Run is one supervisor run, recorded at startup and completed at exit.
type Run struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	PID       int        `gorm:"not null" json:"pid"`
	Hostname  string     `gorm:"size:255" json:"hostname"`
	Version   string     `gorm:"size:64" json:"version"`
	Commit    string     `gorm:"size:64" json:"commit"`
	StartedAt time.Time  `json:"started_at"`
	StoppedAt *time.Time `json:"stopped_at"`
	// Outcome is empty while the run is live, "clean" after a clean stop,
	// or the failure message.
	Outcome string `gorm:"size:1024" json:"outcome"`
}

// Store is the persistence interface for the control store.
type Store interface {
	// Migrate applies pending schema migrations. Called once at
	// supervisor initialization; failure gates startup.
	Migrate(ctx context.Context) error

	// RecordRunStart inserts a new run row and fills in its ID.
	RecordRunStart(ctx context.Context, run *Run) error

	// RecordRunStop marks a run as finished with the given outcome.
	RecordRunStop(ctx context.Context, id uint, outcome string) error

	// PruneRuns deletes completed runs that stopped before the cutoff and
	// returns the number of rows removed.
	PruneRuns(ctx context.Context, cutoff time.Time) (int64, error)

	// Runs returns the most recent runs, newest first.
	Runs(ctx context.Context, limit int) ([]Run, error)

	// Close releases the underlying database connection.
	Close() error
}
