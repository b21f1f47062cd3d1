package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/drover-sh/drover/pkg/supervisor"
)

// EnvironmentRecorder exposes process build and host information as a
// constant gauge. The supervisor calls RecordEnvironment once during
// initialization.
type EnvironmentRecorder struct {
	info *prometheus.GaugeVec
}

// NewEnvironmentRecorder creates a recorder backed by the process metrics
// registry. Returns nil if metrics are not enabled (InitRegistry not
// called); the supervisor treats a nil recorder as absent.
func NewEnvironmentRecorder() *EnvironmentRecorder {
	if !IsEnabled() {
		return nil
	}

	return &EnvironmentRecorder{
		info: promauto.With(GetRegistry()).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "drover_environment_info",
				Help: "Build and host information of the running drover process (always 1)",
			},
			[]string{"version", "commit", "hostname", "os", "arch", "go_version"},
		),
	}
}

// RecordEnvironment sets the environment-info gauge for the given
// environment.
func (r *EnvironmentRecorder) RecordEnvironment(env supervisor.Environment) error {
	gauge, err := r.info.GetMetricWithLabelValues(
		env.Version, env.Commit, env.Hostname, env.OS, env.Arch, env.GoVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to record environment info: %w", err)
	}
	gauge.Set(1)
	return nil
}
