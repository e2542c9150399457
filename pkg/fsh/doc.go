// Package fsh implements an in-process filesystem hook framework.
//
// The framework lets clients intercept filesystem operations on a per-mount
// basis by layering pre/post wrappers around each operation. Hooks may be
// installed and removed concurrently with operations in flight; removal is
// safe against concurrent execution, and a hook's removal callback fires only
// once no goroutine is executing the hook.
//
// # Hooks
//
// A Hooks value is filled out by the client. It contains optional pre and
// post functions for every interception point (read, write, mount, unmount),
// an opaque Arg shared by all of them, and an optional RemoveCB. Fields left
// nil are simply not called. Pre hooks receive a pointer to a per-dispatch
// instance slot; whatever a pre hook stores there is handed to its matching
// post hook in the same dispatch. Memory or state set up in a pre hook must
// be torn down in the post hook.
//
// Execution path for hooks A, B, C installed in that order on one mount:
//
//	preC(argC, &instC, req)
//	preB(argB, &instB, req)
//	preA(argA, &instA, req)
//	err = op(req)
//	err = postA(err, argA, instA, req)
//	err = postB(err, argB, instB, req)
//	err = postC(err, argC, instC, req)
//
// Hooks run in LIFO installation order: the most recently installed hook is
// innermost in the pre pass and outermost in the post pass, the way layered
// proxies nest. It is guaranteed that whenever a pre hook runs, its post hook
// runs within the same dispatch, on the same goroutine, with the same
// instance slot.
//
// A hook installed or removed on a mount during the execution of another
// hook on that mount does not join or leave dispatches that have already
// taken their snapshot.
//
// # Installation and removal
//
// Install returns a Handle used for removal. Remove invalidates the handle:
// after it returns, new dispatches will not go through the hook, although
// goroutines already past their snapshot may still be executing it. When
// RemoveCB fires, the hook has finished executing everywhere and it is safe
// to destroy the client state behind it. RemoveCB may fire inside the Remove
// call itself.
//
// # Mount and free callbacks
//
// Clients may register global callbacks fired whenever the host mounts or
// frees a mount. The mount callback fires right after the host's mount path
// succeeds. The free callback is a hint that the mount is gone: it fires
// during mount teardown, after the mount's remaining hooks have already
// been reclaimed (their RemoveCB included), so every handle bound to that
// mount is invalid by the time it runs and must not be passed to the API.
// Use it to drop per-mount bookkeeping, not to call Remove.
//
// It is legal to call Install and Remove inside a mount or free callback.
// InstallCallback and RemoveCallback must NOT be called inside a callback;
// doing so deadlocks.
//
// # Internals
//
// Each installed hook is a reference-counted entry on two collections: the
// global registry (keyed by handle) and the owning mount's chain. Install
// sets the reference count to 1. Remove unlinks the entry from the registry
// and marks it doomed; a doomed entry can take no new references, so only
// in-flight dispatches keep it alive. The count dropping to zero is the
// one-time reclamation event: the entry leaves the mount chain, RemoveCB
// fires, and the handle is freed.
//
// Per-mount state is attached lazily: some hosts create mounts without
// calling into the framework, so the first framework call on a mount runs a
// lock-free three-state gate (nil, sentinel, published record) to construct
// the record exactly once. After publication the pointer does not change
// until mount teardown, so callers may cache it locally.
//
// Lock order is registry, then mount record (write), then entry. Reclamation
// runs with no framework lock held and takes the mount's write lock alone;
// dropping the count to zero under the registry lock would invert the order
// against dispatchers holding the record lock.
//
// Init must be called before any other function in this package.
package fsh
