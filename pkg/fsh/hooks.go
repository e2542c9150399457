package fsh

// Handle identifies an installed hook or callback. Handles are dense
// non-negative integers, unique while live and never reused while any
// reference to the entry remains.
type Handle int64

// HandleInvalid is the sentinel returned when handle allocation fails.
const HandleInvalid Handle = -1

// RemoveFunc is the hook remove callback. It fires exactly once per
// installed hook, after removal, when no goroutine is executing the hook
// anymore. It is safe to destroy all client state associated with the hook
// inside it. It may fire inside the Remove call itself; clients must accept
// that reentrancy.
type RemoveFunc func(arg any, handle Handle)

// Pre hook signatures. Pre hooks receive the shared hook Arg, a pointer to
// the per-dispatch instance slot, and the operation's request, which they
// may mutate. Whatever a pre hook stores in the slot reaches its matching
// post hook unchanged.
type (
	PreReadFunc    func(arg any, instance *any, req *ReadRequest)
	PreWriteFunc   func(arg any, instance *any, req *WriteRequest)
	PreMountFunc   func(arg any, instance *any, req *MountRequest)
	PreUnmountFunc func(arg any, instance *any, req *UnmountRequest)
)

// Post hook signatures. Post hooks receive the result of the previous post
// hook or of the underlying operation; their return value replaces it.
type (
	PostReadFunc    func(err error, arg any, instance any, req *ReadRequest) error
	PostWriteFunc   func(err error, arg any, instance any, req *WriteRequest) error
	PostMountFunc   func(err error, arg any, instance any, req *MountRequest) error
	PostUnmountFunc func(err error, arg any, instance any, req *UnmountRequest) error
)

// Hooks is the client-filled record describing one hook: optional pre and
// post functions per interception point, the opaque Arg shared by all of
// them, and the optional RemoveCB. The framework copies the record at
// install time; later changes by the client have no effect.
type Hooks struct {
	Arg      any
	RemoveCB RemoveFunc

	PreRead  PreReadFunc
	PostRead PostReadFunc

	PreWrite  PreWriteFunc
	PostWrite PostWriteFunc

	PreMount  PreMountFunc
	PostMount PostMountFunc

	PreUnmount  PreUnmountFunc
	PostUnmount PostUnmountFunc
}

// Callback is the client-filled record for the mount/free callback bus:
// an opaque Arg plus optional OnMount and OnFree functions. OnMount fires
// after the host's native mount path returns successfully; OnFree fires
// right before the host reclaims the mount.
type Callback struct {
	Arg     any
	OnMount func(m *Mount, arg any)
	OnFree  func(m *Mount, arg any)
}
