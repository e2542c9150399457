package observability

import (
	"log"
	"sync"
	"time"
)

// ConsoleReporter is a simple error reporter that logs errors to the
// standard logger. It is designed for development and debugging, providing
// immediate feedback without external services.
//
// Thread-safe: all methods are safe for concurrent use.
type ConsoleReporter struct {
	// verbose controls whether the context's tags and extra data are
	// included in the output
	verbose bool

	// mu serializes log output
	mu sync.Mutex
}

// NewConsoleReporter creates a console error reporter. With verbose set,
// the context's tags and extras are printed alongside each error.
func NewConsoleReporter(verbose bool) *ConsoleReporter {
	return &ConsoleReporter{verbose: verbose}
}

// ReportError logs the error with its component and operation context.
//
// Example output:
//
//	2024/01/01 12:00:00 [ERROR] fsd read on /mnt/data: hook limit exceeded
func (r *ConsoleReporter) ReportError(err error, ctx *ErrorContext) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case ctx == nil:
		log.Printf("[ERROR] %v", err)
	case ctx.Mount != "":
		log.Printf("[ERROR] %s %s on %s: %v", ctx.Component, ctx.Operation, ctx.Mount, err)
	default:
		log.Printf("[ERROR] %s %s: %v", ctx.Component, ctx.Operation, err)
	}

	if r.verbose && ctx != nil {
		if len(ctx.Tags) > 0 {
			log.Printf("tags: %v", ctx.Tags)
		}
		if len(ctx.Extra) > 0 {
			log.Printf("extra: %v", ctx.Extra)
		}
	}
}

// Flush is a no-op for the console reporter; output is immediate.
func (r *ConsoleReporter) Flush(timeout time.Duration) error {
	return nil
}
