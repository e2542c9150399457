package fsh

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Mount is the host object representing one mounted filesystem: the
// granularity at which hooks are installed. The framework never locks a
// Mount; callers are responsible for keeping a Mount alive across any
// framework call that takes it.
type Mount struct {
	// Name is the mountpoint path, used by hosts and clients as the
	// human-readable identity of the mount.
	Name string

	// Ops is the table of underlying operations the dispatch engine wraps.
	// Read, Write, Mount and Unmount must be non-nil for the corresponding
	// dispatch entry points to be usable.
	Ops Ops

	// rec is the lazily attached per-mount framework state. Three states:
	// nil (untouched), the framework sentinel (initialization in progress),
	// or a published *record that never changes again until teardown.
	rec atomic.Pointer[record]
}

// NewMount creates a mount with the given name and underlying operations.
// The framework state is attached lazily on first use.
func NewMount(name string, ops Ops) *Mount {
	return &Mount{Name: name, Ops: ops}
}

// Ops holds the underlying operations a mount dispatches to once the hook
// chain has run. They stand in for the host's native vnode/vfs operations.
type Ops struct {
	Read    func(m *Mount, req *ReadRequest) error
	Write   func(m *Mount, req *WriteRequest) error
	Mount   func(m *Mount, req *MountRequest) error
	Unmount func(m *Mount, req *UnmountRequest) error
}

// ReadRequest carries the arguments of a read operation through the hook
// chain. Resid is the number of bytes remaining to transfer; the underlying
// operation decrements it by the bytes it moves, so after the dispatch the
// caller observes transferred = requested - Resid. Pre hooks may mutate any
// field.
type ReadRequest struct {
	Offset int64
	Resid  int64
	Flags  int
}

// WriteRequest carries the arguments of a write operation. Semantics of
// Resid mirror ReadRequest.
type WriteRequest struct {
	Offset int64
	Resid  int64
	Flags  int
}

// MountRequest carries the arguments of the host's mount operation.
type MountRequest struct {
	MountPoint string
	Flags      int
}

// UnmountRequest carries the arguments of the host's unmount operation.
type UnmountRequest struct {
	Flags int
}

// record is the per-mount framework state: the hook chain plus the enabled
// flag, both guarded by mu. The chain is kept in LIFO installation order
// with the most recently installed entry at index 0.
type record struct {
	mu      sync.RWMutex
	enabled bool
	chain   []*hookEntry
}

func newRecord() *record {
	return &record{enabled: true}
}

// prepare attaches the mount's record, constructing it on first use.
//
// Some hosts create mount structures without calling into the framework, so
// there is no single initialization point and no lock to rely on. The gate
// is a compare-and-swap over the record pointer with three observable
// states: nil (untouched), the sentinel (construction in progress
// elsewhere), any other non-nil value (published). Exactly one goroutine
// observes the nil-to-sentinel transition and constructs; everyone else
// either spins past the sentinel or uses the published record. Once
// published, the pointer does not change again until teardown, so it is
// safe to keep locally.
func (m *Mount) prepare() *record {
	for {
		rec := m.rec.Load()
		switch {
		case rec == nil:
			if m.rec.CompareAndSwap(nil, fw.sentinel) {
				rec = newRecord()
				m.rec.Store(rec)
				return rec
			}
		case rec == fw.sentinel:
			runtime.Gosched()
		default:
			return rec
		}
	}
}

// insertHead adds e at the head of the chain. Callers hold rec.mu for
// writing.
func (r *record) insertHead(e *hookEntry) {
	r.chain = append([]*hookEntry{e}, r.chain...)
}

// unlink removes e from the chain. Callers hold rec.mu for writing.
func (r *record) unlink(e *hookEntry) {
	for i, cur := range r.chain {
		if cur == e {
			r.chain = append(r.chain[:i], r.chain[i+1:]...)
			return
		}
	}
}

// EnableMount enables hook dispatch for the mount. A newly created record
// starts enabled; use a mount callback to change that default. Must not be
// called from inside a hook.
func EnableMount(m *Mount) {
	rec := m.prepare()
	rec.mu.Lock()
	rec.enabled = true
	rec.mu.Unlock()
}

// DisableMount disables hook dispatch for the mount: operations bypass the
// chain entirely until EnableMount is called. Must not be called from
// inside a hook.
func DisableMount(m *Mount) {
	rec := m.prepare()
	rec.mu.Lock()
	rec.enabled = false
	rec.mu.Unlock()
}
