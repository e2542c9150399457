package fsh

import (
	"github.com/newbpydev/fshook/pkg/fsh/monitoring"
)

// Install installs hooks on the mount and returns a handle for later
// removal. The Hooks record is copied; fields left nil are not called.
//
// Hooks execute in LIFO installation order: with hooks A then B installed,
// B wraps A. The handle stays valid until an explicit Remove or until the
// mount is torn down with DestroyRecord, which runs before the mount's free
// callbacks fire.
//
// On handle exhaustion Install returns (HandleInvalid, ErrResourceExhausted)
// and inserts nothing anywhere. The caller is expected to keep the mount
// alive across the call.
func Install(m *Mount, hooks *Hooks) (Handle, error) {
	rec := m.prepare()

	h, ok := fw.ids.alloc()
	if !ok {
		return HandleInvalid, ErrResourceExhausted
	}

	e := &hookEntry{
		handle:   h,
		hooks:    *hooks,
		mount:    m,
		refcount: 1,
	}

	fw.mu.Lock()
	rec.mu.Lock()
	rec.insertHead(e)
	rec.mu.Unlock()
	fw.registry[h] = e
	fw.mu.Unlock()

	monitoring.GetGlobalMetrics().RecordHookInstalled()
	return h, nil
}

// Remove removes the hook named by handle and invalidates it.
//
// After Remove returns, new dispatches on the owning mount will not go
// through the hook, though goroutines already past their snapshot may still
// be executing it. When RemoveCB fires, the hook has finished executing
// everywhere; RemoveCB may fire inside this call if no dispatch holds a
// reference.
//
// Returns ErrNotFound, with no side effects, if the handle names no live
// hook.
func Remove(handle Handle) error {
	fw.mu.Lock()
	e, ok := fw.registry[handle]
	if !ok {
		fw.mu.Unlock()
		return ErrNotFound
	}
	delete(fw.registry, handle)

	e.mu.Lock()
	verify(!e.doomed, "handle %d doomed while still in registry", handle)
	e.doomed = true
	e.mu.Unlock()
	fw.mu.Unlock()

	// Drop the install-time reference. If no dispatch holds the entry this
	// triggers reclamation, including RemoveCB, right here.
	release(e)

	monitoring.GetGlobalMetrics().RecordHookRemoved()
	return nil
}

// DestroyRecord tears down the mount's framework state. The host calls it
// when the mount itself is being reclaimed, before the free callbacks
// fire. Every hook still on the chain at that point was neither removed
// via the API nor doomed; each is reclaimed here, firing its RemoveCB.
// After DestroyRecord returns, all handles whose owning mount was m are
// invalid.
//
// The host guarantees no concurrent framework call touches m during
// teardown.
func DestroyRecord(m *Mount) {
	rec := m.rec.Load()
	if rec == nil {
		return
	}
	verify(rec != fw.sentinel, "teardown of mount %q during initialization", m.Name)

	for {
		fw.mu.Lock()
		rec.mu.Lock()
		if len(rec.chain) == 0 {
			rec.mu.Unlock()
			fw.mu.Unlock()
			break
		}
		e := rec.chain[0]
		rec.chain = rec.chain[1:]
		rec.mu.Unlock()

		verify(!e.doomed, "doomed handle %d still chained at teardown", e.handle)
		delete(fw.registry, e.handle)
		fw.mu.Unlock()

		if e.hooks.RemoveCB != nil {
			e.hooks.RemoveCB(e.hooks.Arg, e.handle)
		}
		fw.ids.release(e.handle)
		monitoring.GetGlobalMetrics().RecordReclamation()
	}

	m.rec.Store(nil)
}
