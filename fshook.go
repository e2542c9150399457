// Package fshook provides an in-process filesystem hook framework for Go.
//
// fshook lets clients intercept filesystem operations on a per-mount basis
// by layering pre/post wrappers around each operation. Hooks can be
// installed and removed concurrently with operations in flight; removal is
// safe against concurrent execution, and a hook's removal callback fires
// only once no goroutine is executing the hook.
//
// # Quick Start
//
//	import "github.com/newbpydev/fshook"
//
//	func main() {
//	    fshook.Init()
//
//	    m := fshook.NewMount("/mnt/data", ops)
//	    handle, err := fshook.Install(m, &fshook.Hooks{
//	        PreRead: func(arg any, instance *any, req *fshook.ReadRequest) {
//	            // runs before the underlying read
//	        },
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer fshook.Remove(handle)
//
//	    fshook.Read(m, &fshook.ReadRequest{Resid: 4096})
//	}
//
// # Core Types
//
// The following types are re-exported from pkg/fsh for convenience:
//   - Mount: the host object hooks are installed on
//   - Hooks: the client-filled record of pre/post functions
//   - Callback: a mount/free callback pair for the global bus
//   - Handle: the identifier of an installed hook or callback
//
// # Subpackages
//
// For additional functionality, import the subpackages directly:
//
//	import "github.com/newbpydev/fshook/pkg/fsh"               // the framework core
//	import "github.com/newbpydev/fshook/pkg/fsh/monitoring"    // prometheus metrics
//	import "github.com/newbpydev/fshook/pkg/fsh/observability" // error reporting
//	import "github.com/newbpydev/fshook/pkg/vfs"               // in-process host
//	import "github.com/newbpydev/fshook/pkg/fsd"               // the disturber client
package fshook

import "github.com/newbpydev/fshook/pkg/fsh"

// =============================================================================
// Core Types - Re-exported for convenient access
// =============================================================================

// Mount is the host object representing one mounted filesystem: the
// granularity at which hooks are installed.
type Mount = fsh.Mount

// Ops is the table of underlying operations a mount dispatches to once the
// hook chain has run.
type Ops = fsh.Ops

// Hooks is the client-filled record describing one hook: optional pre and
// post functions per interception point, the opaque Arg shared by all of
// them, and the optional RemoveCB.
type Hooks = fsh.Hooks

// Callback is the client-filled record for the mount/free callback bus.
type Callback = fsh.Callback

// Handle identifies an installed hook or callback.
type Handle = fsh.Handle

// HandleInvalid is the sentinel returned when handle allocation fails.
const HandleInvalid = fsh.HandleInvalid

// =============================================================================
// Requests
// =============================================================================

// ReadRequest carries the arguments of a read operation through the hook
// chain.
type ReadRequest = fsh.ReadRequest

// WriteRequest carries the arguments of a write operation through the hook
// chain.
type WriteRequest = fsh.WriteRequest

// MountRequest carries the arguments of the host's mount operation.
type MountRequest = fsh.MountRequest

// UnmountRequest carries the arguments of the host's unmount operation.
type UnmountRequest = fsh.UnmountRequest

// =============================================================================
// Core Functions
// =============================================================================

// Init prepares the framework's global state. It must be called before any
// other framework function.
var Init = fsh.Init

// NewMount creates a mount with the given name and underlying operations.
var NewMount = fsh.NewMount

// Install installs hooks on a mount and returns a handle for removal.
var Install = fsh.Install

// Remove removes the hook named by a handle and invalidates it.
var Remove = fsh.Remove

// InstallCallback registers a mount/free callback pair on the global bus.
var InstallCallback = fsh.InstallCallback

// RemoveCallback unregisters a callback installed with InstallCallback.
var RemoveCallback = fsh.RemoveCallback

// EnableMount enables hook dispatch for a mount.
var EnableMount = fsh.EnableMount

// DisableMount disables hook dispatch for a mount; operations bypass the
// chain until EnableMount is called.
var DisableMount = fsh.DisableMount

// =============================================================================
// Dispatch
// =============================================================================

// Read executes the hook chain for a read operation.
var Read = fsh.Read

// Write executes the hook chain for a write operation.
var Write = fsh.Write

// MountOp executes the hook chain for the host's mount operation.
var MountOp = fsh.MountOp

// UnmountOp executes the hook chain for the host's unmount operation.
var UnmountOp = fsh.UnmountOp

// =============================================================================
// Errors
// =============================================================================

// ErrResourceExhausted is returned when the handle allocator is at its
// ceiling.
var ErrResourceExhausted = fsh.ErrResourceExhausted

// ErrNotFound is returned when a handle names no live entry.
var ErrNotFound = fsh.ErrNotFound
