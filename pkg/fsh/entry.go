package fsh

import (
	"sync"

	"github.com/newbpydev/fshook/pkg/fsh/monitoring"
)

// hookEntry is the framework's authoritative record of one installed hook.
// Entries are reference counted and appear on two collections: the global
// registry (keyed by handle) and the owning mount's chain.
//
// Lifecycle:
//   - Install sets refcount to 1 and links the entry on both collections.
//   - Remove unlinks it from the registry and marks it doomed; the doomed
//     flag transitions exactly once, under the registry lock, and a doomed
//     entry can take no new references.
//   - refcount can reach zero only after the entry is doomed; that
//     transition is the one-time reclamation event.
//   - An entry can also be destroyed without Remove, inside DestroyRecord,
//     where it is guaranteed no goroutine is executing it.
type hookEntry struct {
	handle Handle
	hooks  Hooks

	// mount is a non-owning link back to the owning mount, used only to
	// find the chain during reclamation. The chain owns the entry.
	mount *Mount

	mu       sync.Mutex
	refcount uint64
	doomed   bool
}

// tryAcquire takes a reference on e for the duration of one dispatch.
// It fails iff the entry is doomed, which is what makes a removed hook
// unreachable to new dispatches while in-flight ones finish.
func (e *hookEntry) tryAcquire() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doomed {
		return false
	}
	e.refcount++
	return true
}

// release drops a reference on e. If the count reaches zero (which implies
// the entry is doomed), release performs the one-time reclamation: unlink
// from the owning mount's chain, fire RemoveCB, free the handle.
//
// release must not be called with the owning record's lock held: reclamation
// takes that lock itself. Dropping the count outside the registry lock is
// what keeps reclamation from inverting the lock order against dispatchers.
func release(e *hookEntry) {
	e.mu.Lock()
	verify(e.refcount > 0, "release of handle %d with zero refcount", e.handle)
	e.refcount--
	destroy := e.refcount == 0
	if destroy {
		verify(e.doomed, "handle %d reached zero refcount while live", e.handle)
	}
	e.mu.Unlock()

	if !destroy {
		return
	}

	// Remove already took the entry off the registry; the record is
	// necessarily initialized because the entry was installed on it.
	rec := e.mount.rec.Load()
	verify(rec != nil && rec != fw.sentinel, "reclaiming handle %d on uninitialized mount", e.handle)

	rec.mu.Lock()
	rec.unlink(e)
	rec.mu.Unlock()

	if e.hooks.RemoveCB != nil {
		e.hooks.RemoveCB(e.hooks.Arg, e.handle)
	}

	fw.ids.release(e.handle)
	monitoring.GetGlobalMetrics().RecordReclamation()
}
