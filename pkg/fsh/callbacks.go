package fsh

import (
	"github.com/petermattis/goid"

	"github.com/newbpydev/fshook/pkg/fsh/monitoring"
)

// callbackEntry is one registered mount/free callback on the global bus.
type callbackEntry struct {
	cb     Callback
	handle Handle
}

// InstallCallback registers a mount/free callback pair on the global bus.
// Callbacks fire in installation order. The Callback record is copied.
//
// Must NOT be called from inside a mount or free callback: the bus lock is
// held across callback execution and this call would deadlock.
func InstallCallback(cb *Callback) (Handle, error) {
	h, ok := fw.ids.alloc()
	if !ok {
		return HandleInvalid, ErrResourceExhausted
	}

	fw.cbMu.Lock()
	fw.callbacks = append(fw.callbacks, &callbackEntry{cb: *cb, handle: h})
	fw.cbMu.Unlock()

	return h, nil
}

// RemoveCallback unregisters a callback installed with InstallCallback.
// Returns ErrNotFound if the handle names no registered callback.
//
// Must NOT be called from inside a mount or free callback.
func RemoveCallback(handle Handle) error {
	fw.cbMu.Lock()
	found := false
	for i, ce := range fw.callbacks {
		if ce.handle == handle {
			fw.callbacks = append(fw.callbacks[:i], fw.callbacks[i+1:]...)
			found = true
			break
		}
	}
	fw.cbMu.Unlock()

	if !found {
		return ErrNotFound
	}
	fw.ids.release(handle)
	return nil
}

// ExecMountCallbacks fires every registered OnMount for m, in installation
// order. The host calls it right after its native mount path returns
// successfully. Callbacks may call Install and Remove on m, including
// without holding the mount the way ordinary API callers must.
func ExecMountCallbacks(m *Mount) {
	execCallbacks(m, false)
}

// ExecFreeCallbacks fires every registered OnFree for m, in installation
// order. The host calls it during mount teardown, after DestroyRecord has
// reclaimed the mount's hooks; handles bound to m are already invalid when
// the callbacks run.
func ExecFreeCallbacks(m *Mount) {
	execCallbacks(m, true)
}

// execCallbacks walks the bus under cbMu. The bus records which goroutine
// owns the lock so that a callback whose body ends up re-entering the bus
// (for example a mount performed inside a mount callback) does not attempt
// a second acquisition.
func execCallbacks(m *Mount, free bool) {
	self := goid.Get()

	fw.cbOwnerMu.Lock()
	owned := fw.cbOwner == self
	fw.cbOwnerMu.Unlock()

	if !owned {
		fw.cbMu.Lock()
		fw.cbOwnerMu.Lock()
		fw.cbOwner = self
		fw.cbOwnerMu.Unlock()
	}

	kind := "mount"
	if free {
		kind = "free"
	}
	for _, ce := range fw.callbacks {
		if free {
			if ce.cb.OnFree != nil {
				ce.cb.OnFree(m, ce.cb.Arg)
			}
		} else {
			if ce.cb.OnMount != nil {
				ce.cb.OnMount(m, ce.cb.Arg)
			}
		}
	}
	monitoring.GetGlobalMetrics().RecordCallbackExec(kind)

	if !owned {
		fw.cbOwnerMu.Lock()
		fw.cbOwner = 0
		fw.cbOwnerMu.Unlock()
		fw.cbMu.Unlock()
	}
}
