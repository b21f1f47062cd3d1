package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ServiceRecorder counts background-service stops by outcome. The supervisor
// calls RecordServiceStop once per launched service as it returns.
type ServiceRecorder struct {
	stops *prometheus.CounterVec
}

// NewServiceRecorder creates a recorder backed by the process metrics
// registry, or nil when metrics are disabled.
func NewServiceRecorder() *ServiceRecorder {
	if !IsEnabled() {
		return nil
	}

	return &ServiceRecorder{
		stops: promauto.With(GetRegistry()).NewCounterVec(
			prometheus.CounterOpts{
				Name: "drover_service_stops_total",
				Help: "Background service stops, by service name and outcome",
			},
			[]string{"service", "outcome"},
		),
	}
}

// RecordServiceStop counts one service exit.
func (r *ServiceRecorder) RecordServiceStop(service string, failed bool) {
	outcome := "clean"
	if failed {
		outcome = "failed"
	}
	r.stops.WithLabelValues(service, outcome).Inc()
}
