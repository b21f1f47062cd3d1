package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drover-sh/drover/pkg/supervisor"
)

func TestInitRegistry(t *testing.T) {
	InitRegistry()
	assert.True(t, IsEnabled())
	require.NotNil(t, GetRegistry())

	// The standard collectors are registered
	families, err := GetRegistry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
}

func TestEnvironmentRecorder(t *testing.T) {
	InitRegistry()

	rec := NewEnvironmentRecorder()
	require.NotNil(t, rec)

	err := rec.RecordEnvironment(supervisor.Environment{
		Version: "1.0.0", Commit: "abc", Hostname: "host-1",
		OS: "linux", Arch: "amd64", GoVersion: "go1.25",
	})
	require.NoError(t, err)

	srv := httptest.NewServer(promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "drover_environment_info")
	assert.Contains(t, string(body), `version="1.0.0"`)
}

func TestServiceRecorder(t *testing.T) {
	InitRegistry()

	rec := NewServiceRecorder()
	require.NotNil(t, rec)

	rec.RecordServiceStop("api", false)
	rec.RecordServiceStop("api", false)
	rec.RecordServiceStop("janitor", true)

	families, err := GetRegistry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "drover_service_stops_total" {
			continue
		}
		require.Len(t, f.GetMetric(), 2)
		return
	}
	t.Fatal("drover_service_stops_total not found")
}

func TestRecorders_NilWhenMetricsDisabled(t *testing.T) {
	mu.Lock()
	registry = nil
	mu.Unlock()

	assert.Nil(t, NewEnvironmentRecorder())
	assert.Nil(t, NewServiceRecorder())
}

func TestServer_DisabledWhenMetricsOff(t *testing.T) {
	assert.True(t, NewServer(9090, false).IsDisabled())
	assert.False(t, NewServer(9090, true).IsDisabled())
}

func TestServer_RunStopsOnContextCancel(t *testing.T) {
	InitRegistry()

	srv := NewServer(0, true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("metrics server did not stop after context cancellation")
	}
}
