// Package metrics wires Prometheus metrics for the supervisor: a process
// metrics registry, the environment-info recorder, and the metrics HTTP
// endpoint served as a regular background service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
)

// InitRegistry creates the process-wide metrics registry with the standard
// Go and process collectors. Call once at startup when metrics are enabled;
// calling it again replaces the registry (useful in tests).
func InitRegistry() {
	mu.Lock()
	defer mu.Unlock()

	registry = prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// IsEnabled reports whether the metrics registry has been initialized.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return registry != nil
}

// GetRegistry returns the process-wide metrics registry, or nil when
// metrics are disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}
