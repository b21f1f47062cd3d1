// Package registry defines the background-service contract and an explicit,
// constructed registry of services handed to the supervisor.
//
// A service is any unit of background work with a cancellable Run operation.
// Services are registered in launch order; the supervisor starts them
// concurrently and the registry itself never runs anything.
package registry

import (
	"context"
	"fmt"
	"sync"
)

// Runnable is a unit of background work.
//
// Run blocks until the service's work completes, the context is cancelled,
// or the service fails. Cancellation is cooperative: the service is expected
// to observe ctx and return promptly once it is done.
type Runnable interface {
	Run(ctx context.Context) error
}

// Disableable is implemented by services that can be administratively
// switched off. IsDisabled is queried once at startup; a disabled service is
// never started and never participates in failure accounting.
type Disableable interface {
	IsDisabled() bool
}

// Descriptor pairs a service with its name. The name is used for logging
// and status reporting only.
type Descriptor struct {
	Name    string
	Service Runnable
}

// Registry holds the ordered set of known background services.
//
// Unlike a process-global service table, a Registry is constructed
// explicitly and passed by reference into the supervisor, so tests can run
// against fake service sets.
type Registry struct {
	mu       sync.RWMutex
	services []Descriptor
	names    map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]struct{}),
	}
}

// Register adds a service under the given name. Registration order is
// preserved and becomes launch order. Duplicate names are rejected.
func (r *Registry) Register(name string, svc Runnable) error {
	if name == "" {
		return fmt.Errorf("service name is required")
	}
	if svc == nil {
		return fmt.Errorf("service %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.names[name]; exists {
		return fmt.Errorf("service %q is already registered", name)
	}
	r.names[name] = struct{}{}
	r.services = append(r.services, Descriptor{Name: name, Service: svc})
	return nil
}

// MustRegister is like Register but panics on error. Intended for
// composition code where a registration failure is a programming error.
func (r *Registry) MustRegister(name string, svc Runnable) {
	if err := r.Register(name, svc); err != nil {
		panic(err)
	}
}

// Services returns a snapshot of the registered services in registration
// order.
func (r *Registry) Services() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, len(r.services))
	copy(out, r.services)
	return out
}

// Len returns the number of registered services.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.services)
}

// IsDisabled reports whether the service is administratively disabled.
// Services that do not implement Disableable are always enabled.
func IsDisabled(svc Runnable) bool {
	d, ok := svc.(Disableable)
	return ok && d.IsDisabled()
}
