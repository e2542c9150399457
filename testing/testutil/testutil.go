// Package testutil provides test helpers for the hook framework and its
// clients: an ordered trace of framework-visible callbacks, hook factories
// that record into it, and synthetic operation tables.
package testutil

import (
	"sync"

	"github.com/newbpydev/fshook/pkg/fsh"
)

// Trace is an append-only, ordered log of events. Hooks and callbacks
// record into it so tests can assert exact execution order.
//
// Thread-safe: events may be appended from any goroutine.
type Trace struct {
	mu     sync.Mutex
	events []string
}

// NewTrace creates an empty trace.
func NewTrace() *Trace {
	return &Trace{}
}

// Add appends one event.
func (tr *Trace) Add(event string) {
	tr.mu.Lock()
	tr.events = append(tr.events, event)
	tr.mu.Unlock()
}

// Events returns a copy of the recorded events in order.
func (tr *Trace) Events() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]string, len(tr.events))
	copy(out, tr.events)
	return out
}

// Reset drops all recorded events.
func (tr *Trace) Reset() {
	tr.mu.Lock()
	tr.events = nil
	tr.mu.Unlock()
}

// RecordingHooks returns a Hooks record whose read pre/post and remove
// callbacks log "pre<label>", "post<label>" and "remove<label>" into the
// trace. The pre hook parks the label in the instance slot so pairing
// tests can rely on the slot round-tripping.
func RecordingHooks(label string, tr *Trace) *fsh.Hooks {
	return &fsh.Hooks{
		Arg: label,
		PreRead: func(arg any, instance *any, req *fsh.ReadRequest) {
			tr.Add("pre" + arg.(string))
			*instance = arg
		},
		PostRead: func(err error, arg any, instance any, req *fsh.ReadRequest) error {
			tr.Add("post" + arg.(string))
			return err
		},
		RemoveCB: func(arg any, handle fsh.Handle) {
			tr.Add("remove" + arg.(string))
		},
	}
}

// CountingOps returns an operation table that succeeds immediately and
// records invocations into the trace as "read", "write", "mount",
// "unmount".
func CountingOps(tr *Trace) fsh.Ops {
	return fsh.Ops{
		Read: func(m *fsh.Mount, req *fsh.ReadRequest) error {
			tr.Add("read")
			return nil
		},
		Write: func(m *fsh.Mount, req *fsh.WriteRequest) error {
			tr.Add("write")
			return nil
		},
		Mount: func(m *fsh.Mount, req *fsh.MountRequest) error {
			tr.Add("mount")
			return nil
		},
		Unmount: func(m *fsh.Mount, req *fsh.UnmountRequest) error {
			tr.Add("unmount")
			return nil
		},
	}
}

// NopOps returns an operation table where every operation succeeds and
// records nothing.
func NopOps() fsh.Ops {
	return fsh.Ops{
		Read:    func(m *fsh.Mount, req *fsh.ReadRequest) error { return nil },
		Write:   func(m *fsh.Mount, req *fsh.WriteRequest) error { return nil },
		Mount:   func(m *fsh.Mount, req *fsh.MountRequest) error { return nil },
		Unmount: func(m *fsh.Mount, req *fsh.UnmountRequest) error { return nil },
	}
}
