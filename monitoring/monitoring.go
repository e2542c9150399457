// Package monitoring provides pluggable metrics collection for the hook
// framework.
//
// This package is an alias for github.com/newbpydev/fshook/pkg/fsh/monitoring,
// providing a cleaner import path for users.
//
// # Example
//
//	import "github.com/newbpydev/fshook/monitoring"
//
//	func main() {
//	    // Enable Prometheus metrics
//	    metrics := monitoring.NewPrometheusMetrics(prometheus.DefaultRegisterer)
//	    monitoring.SetGlobalMetrics(metrics)
//
//	    // Serve metrics and pprof on localhost
//	    monitoring.EnableEndpoint("localhost:2112")
//	    defer monitoring.StopEndpoint()
//	}
//
// # Zero Overhead
//
// When monitoring is disabled (the default), there is zero overhead: no
// allocations, no mutex contention, no performance impact.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/newbpydev/fshook/pkg/fsh/monitoring"
)

// =============================================================================
// Global Metrics
// =============================================================================

// FrameworkMetrics defines the interface for framework metrics collection.
type FrameworkMetrics = monitoring.FrameworkMetrics

// GetGlobalMetrics returns the current global metrics implementation.
var GetGlobalMetrics = monitoring.GetGlobalMetrics

// SetGlobalMetrics sets the global metrics implementation.
var SetGlobalMetrics = monitoring.SetGlobalMetrics

// NoOpMetrics is a no-op implementation with zero overhead.
type NoOpMetrics = monitoring.NoOpMetrics

// =============================================================================
// Prometheus Integration
// =============================================================================

// PrometheusMetrics implements FrameworkMetrics using Prometheus.
type PrometheusMetrics = monitoring.PrometheusMetrics

// NewPrometheusMetrics creates a new Prometheus metrics implementation.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	return monitoring.NewPrometheusMetrics(reg)
}

// =============================================================================
// Diagnostics Endpoint
// =============================================================================

// EnableEndpoint starts an HTTP server with /metrics and pprof routes.
var EnableEndpoint = monitoring.EnableEndpoint

// StopEndpoint stops the diagnostics server if running.
var StopEndpoint = monitoring.StopEndpoint

// IsEndpointEnabled returns whether the diagnostics server is running.
var IsEndpointEnabled = monitoring.IsEndpointEnabled

// GetEndpointAddress returns the address of the diagnostics server if
// enabled.
var GetEndpointAddress = monitoring.GetEndpointAddress
