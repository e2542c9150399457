package monitoring

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Global diagnostics server
	endpointServer  *http.Server
	endpointAddr    string
	endpointMu      sync.Mutex
	endpointEnabled atomic.Bool
	endpointDone    chan struct{}
)

// EnableEndpoint starts an HTTP server exposing Prometheus metrics and Go
// pprof profiles.
//
// Security Warning: the endpoint exposes runtime internals. Only bind to
// localhost in production, never to 0.0.0.0 or public interfaces.
//
// Routes:
//   - /metrics - Prometheus metrics from the default registry
//   - /debug/pprof/ - standard Go pprof index and profiles
//
// Returns an error if the endpoint is already enabled or addr is empty.
// The server runs until StopEndpoint is called; listen errors after startup
// are swallowed (the endpoint is diagnostics, not a dependency).
//
// Example:
//
//	if err := monitoring.EnableEndpoint("localhost:2112"); err != nil {
//	    log.Fatalf("failed to start metrics endpoint: %v", err)
//	}
//	defer monitoring.StopEndpoint()
func EnableEndpoint(addr string) error {
	endpointMu.Lock()
	defer endpointMu.Unlock()

	if endpointEnabled.Load() {
		return errors.New("endpoint already enabled")
	}
	if addr == "" {
		return errors.New("address cannot be empty")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	endpointServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	endpointAddr = addr
	endpointDone = make(chan struct{})
	endpointEnabled.Store(true)

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			endpointEnabled.Store(false)
		}
	}(endpointServer, endpointDone)

	return nil
}

// StopEndpoint shuts the diagnostics server down if it is running.
func StopEndpoint() {
	endpointMu.Lock()
	defer endpointMu.Unlock()

	if !endpointEnabled.Load() || endpointServer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = endpointServer.Shutdown(ctx)
	<-endpointDone

	endpointServer = nil
	endpointAddr = ""
	endpointEnabled.Store(false)
}

// IsEndpointEnabled reports whether the diagnostics server is running.
func IsEndpointEnabled() bool {
	return endpointEnabled.Load()
}

// GetEndpointAddress returns the listen address of the diagnostics server,
// or the empty string when it is not running.
func GetEndpointAddress() string {
	endpointMu.Lock()
	defer endpointMu.Unlock()

	if !endpointEnabled.Load() {
		return ""
	}
	return endpointAddr
}
