package fsh

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/newbpydev/fshook/pkg/fsh/observability"
)

// state is the module-scoped singleton holding everything global to the
// framework: the hook registry, the callback bus, the handle space and the
// late-init sentinel. It exists so the globals live behind one record with
// an explicit Init lifecycle instead of being scattered.
type state struct {
	// mu is the registry lock: the administrative lock for install, remove
	// and record teardown. It guards registry and the doomed transition of
	// every entry. Lock order: mu before any record.mu.
	mu       sync.Mutex
	registry map[Handle]*hookEntry

	// The callback bus. cbOwner is the goroutine currently holding cbMu
	// (0 when none), letting callback execution re-enter the bus from the
	// same goroutine.
	cbMu      sync.Mutex
	cbOwnerMu sync.Mutex
	cbOwner   int64
	callbacks []*callbackEntry

	ids *idSpace

	// sentinel is the reserved record marking an in-progress late
	// initialization; see Mount.prepare.
	sentinel *record
}

// fw is the live framework state, set by Init.
var fw *state

// Option configures Init.
type Option func(*config)

type config struct {
	handleLimit int64
}

// WithHandleLimit caps the number of simultaneously live handles (hooks and
// callbacks combined). The default is the full positive range of Handle.
// Install returns ErrResourceExhausted once the cap is reached.
func WithHandleLimit(n int64) Option {
	return func(c *config) {
		c.handleLimit = n
	}
}

// Init prepares the framework's global state. It MUST be called before any
// other function in this package. Calling Init again discards all installed
// hooks and callbacks and starts from scratch; production hosts call it
// once, tests use the reset between cases.
func Init(opts ...Option) {
	cfg := config{handleLimit: math.MaxInt64}
	for _, opt := range opts {
		opt(&cfg)
	}

	fw = &state{
		registry: make(map[Handle]*hookEntry),
		ids:      newIDSpace(cfg.handleLimit),
		sentinel: &record{},
	}
}

// verify checks a framework invariant. A violation is surfaced through the
// configured error reporter and then panics: the framework does not attempt
// to recover from broken internal state.
func verify(cond bool, format string, args ...any) {
	if cond {
		return
	}
	err := fmt.Errorf("fsh: invariant violated: "+format, args...)
	if reporter := observability.GetErrorReporter(); reporter != nil {
		reporter.ReportError(err, &observability.ErrorContext{
			Component: "fsh",
			Timestamp: time.Now(),
		})
	}
	panic(err)
}
