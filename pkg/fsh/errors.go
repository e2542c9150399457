package fsh

import "errors"

// Framework-level error kinds. The framework never recovers internally;
// callers translate these into their own code space.
var (
	// ErrResourceExhausted is returned when the handle allocator has reached
	// its configured ceiling and no freed handle is available for reuse.
	// Install and InstallCallback return it together with HandleInvalid; no
	// entry is inserted anywhere when they do.
	ErrResourceExhausted = errors.New("fsh: handle space exhausted")

	// ErrNotFound is returned by Remove and RemoveCallback when the handle
	// does not name a live entry. The call has no side effects.
	ErrNotFound = errors.New("fsh: no such handle")
)
