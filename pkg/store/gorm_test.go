package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *GORMStore {
	t.Helper()

	cfg := &Config{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: filepath.Join(t.TempDir(), "control.db")},
	}
	st, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestConfig_ApplyDefaults(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	var cfg Config
	cfg.ApplyDefaults()

	assert.Equal(t, DatabaseTypeSQLite, cfg.Type)
	assert.NotEmpty(t, cfg.SQLite.Path)
	assert.Contains(t, cfg.SQLite.Path, "drover")
}

func TestConfig_ApplyDefaults_Postgres(t *testing.T) {
	cfg := Config{Type: DatabaseTypePostgres}
	cfg.ApplyDefaults()

	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.Equal(t, 25, cfg.Postgres.MaxOpenConns)
	assert.Equal(t, 5, cfg.Postgres.MaxIdleConns)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{Type: DatabaseTypeSQLite, SQLite: SQLiteConfig{Path: "/tmp/x.db"}}
	assert.NoError(t, valid.Validate())

	missing := Config{Type: DatabaseTypeSQLite}
	assert.Error(t, missing.Validate())

	badType := Config{Type: "oracle"}
	assert.Error(t, badType.Validate())

	pg := Config{Type: DatabaseTypePostgres, Postgres: PostgresConfig{Host: "db", Database: "drover"}}
	assert.Error(t, pg.Validate(), "postgres requires a user")
}

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := PostgresConfig{
		Host: "db.example.com", Port: 5432,
		User: "drover", Password: "secret", Database: "drover",
		SSLMode: "require",
	}
	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=db.example.com")
	assert.Contains(t, dsn, "dbname=drover")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestRunLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run := &Run{PID: 1234, Hostname: "host-1", Version: "1.0.0", Commit: "abc123"}
	require.NoError(t, st.RecordRunStart(ctx, run))
	require.NotZero(t, run.ID)
	assert.False(t, run.StartedAt.IsZero())

	require.NoError(t, st.RecordRunStop(ctx, run.ID, "clean"))

	runs, err := st.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "clean", runs[0].Outcome)
	require.NotNil(t, runs[0].StoppedAt)
}

func TestRecordRunStop_UnknownRun(t *testing.T) {
	st := newTestStore(t)
	err := st.RecordRunStop(context.Background(), 9999, "clean")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRuns_NewestFirstWithLimit(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		run := &Run{PID: 100 + i, StartedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, st.RecordRunStart(ctx, run))
	}

	runs, err := st.Runs(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, 104, runs[0].PID)
	assert.Equal(t, 103, runs[1].PID)
	assert.Equal(t, 102, runs[2].PID)
}

func TestPruneRuns(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	old := &Run{PID: 1, StartedAt: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, st.RecordRunStart(ctx, old))
	require.NoError(t, st.RecordRunStop(ctx, old.ID, "clean"))
	// Backdate the stop past the cutoff
	stoppedAt := time.Now().Add(-47 * time.Hour)
	require.NoError(t, st.DB().Model(&Run{}).Where("id = ?", old.ID).
		Update("stopped_at", &stoppedAt).Error)

	recent := &Run{PID: 2}
	require.NoError(t, st.RecordRunStart(ctx, recent))
	require.NoError(t, st.RecordRunStop(ctx, recent.ID, "clean"))

	live := &Run{PID: 3, StartedAt: time.Now().Add(-72 * time.Hour)}
	require.NoError(t, st.RecordRunStart(ctx, live))

	removed, err := st.PruneRuns(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	// The live run is old but never stopped; it must survive pruning
	runs, err := st.Runs(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(&Config{Type: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid database configuration")
}
