package fsh

import (
	"github.com/newbpydev/fshook/pkg/fsh/monitoring"
)

// snapshot is one hook captured for a single dispatch, together with its
// per-dispatch instance slot. The slot is handed to the pre hook by pointer
// and to the post hook by value.
type snapshot struct {
	entry    *hookEntry
	instance any
}

// Dispatch entry points. Each one drives a full hook chain around the
// mount's underlying operation:
//
//  1. attach the mount's record if this is the first framework touch;
//  2. under the read lock, bypass everything if the mount is disabled;
//  3. otherwise snapshot the chain head-to-tail, taking a reference on
//     every entry that hooks this operation (entries with neither a pre
//     nor a post for it are elided);
//  4. run pre hooks in snapshot order (most recently installed first);
//  5. call the underlying operation;
//  6. run post hooks in reverse order, threading the result, and release
//     every reference.
//
// A hook doomed before the snapshot cannot appear in it; a hook doomed
// after still runs to completion for this call and is reclaimed when the
// snapshot drops its reference. Installs and removals during the dispatch
// do not join or leave the snapshot.

// Read executes the hook chain for a read operation on m.
func Read(m *Mount, req *ReadRequest) error {
	rec := m.prepare()

	rec.mu.RLock()
	if !rec.enabled {
		rec.mu.RUnlock()
		return m.Ops.Read(m, req)
	}
	var execs []snapshot
	for _, e := range rec.chain {
		if e.hooks.PreRead == nil && e.hooks.PostRead == nil {
			continue
		}
		if e.tryAcquire() {
			execs = append(execs, snapshot{entry: e})
		}
	}
	rec.mu.RUnlock()

	for i := range execs {
		if pre := execs[i].entry.hooks.PreRead; pre != nil {
			pre(execs[i].entry.hooks.Arg, &execs[i].instance, req)
		}
	}

	err := m.Ops.Read(m, req)

	for i := len(execs) - 1; i >= 0; i-- {
		s := execs[i]
		if post := s.entry.hooks.PostRead; post != nil {
			err = post(err, s.entry.hooks.Arg, s.instance, req)
		}
		release(s.entry)
	}

	monitoring.GetGlobalMetrics().RecordDispatch("read", len(execs))
	return err
}

// Write executes the hook chain for a write operation on m.
func Write(m *Mount, req *WriteRequest) error {
	rec := m.prepare()

	rec.mu.RLock()
	if !rec.enabled {
		rec.mu.RUnlock()
		return m.Ops.Write(m, req)
	}
	var execs []snapshot
	for _, e := range rec.chain {
		if e.hooks.PreWrite == nil && e.hooks.PostWrite == nil {
			continue
		}
		if e.tryAcquire() {
			execs = append(execs, snapshot{entry: e})
		}
	}
	rec.mu.RUnlock()

	for i := range execs {
		if pre := execs[i].entry.hooks.PreWrite; pre != nil {
			pre(execs[i].entry.hooks.Arg, &execs[i].instance, req)
		}
	}

	err := m.Ops.Write(m, req)

	for i := len(execs) - 1; i >= 0; i-- {
		s := execs[i]
		if post := s.entry.hooks.PostWrite; post != nil {
			err = post(err, s.entry.hooks.Arg, s.instance, req)
		}
		release(s.entry)
	}

	monitoring.GetGlobalMetrics().RecordDispatch("write", len(execs))
	return err
}

// MountOp executes the hook chain for the host's mount operation on m.
func MountOp(m *Mount, req *MountRequest) error {
	rec := m.prepare()

	rec.mu.RLock()
	if !rec.enabled {
		rec.mu.RUnlock()
		return m.Ops.Mount(m, req)
	}
	var execs []snapshot
	for _, e := range rec.chain {
		if e.hooks.PreMount == nil && e.hooks.PostMount == nil {
			continue
		}
		if e.tryAcquire() {
			execs = append(execs, snapshot{entry: e})
		}
	}
	rec.mu.RUnlock()

	for i := range execs {
		if pre := execs[i].entry.hooks.PreMount; pre != nil {
			pre(execs[i].entry.hooks.Arg, &execs[i].instance, req)
		}
	}

	err := m.Ops.Mount(m, req)

	for i := len(execs) - 1; i >= 0; i-- {
		s := execs[i]
		if post := s.entry.hooks.PostMount; post != nil {
			err = post(err, s.entry.hooks.Arg, s.instance, req)
		}
		release(s.entry)
	}

	monitoring.GetGlobalMetrics().RecordDispatch("mount", len(execs))
	return err
}

// UnmountOp executes the hook chain for the host's unmount operation on m.
func UnmountOp(m *Mount, req *UnmountRequest) error {
	rec := m.prepare()

	rec.mu.RLock()
	if !rec.enabled {
		rec.mu.RUnlock()
		return m.Ops.Unmount(m, req)
	}
	var execs []snapshot
	for _, e := range rec.chain {
		if e.hooks.PreUnmount == nil && e.hooks.PostUnmount == nil {
			continue
		}
		if e.tryAcquire() {
			execs = append(execs, snapshot{entry: e})
		}
	}
	rec.mu.RUnlock()

	for i := range execs {
		if pre := execs[i].entry.hooks.PreUnmount; pre != nil {
			pre(execs[i].entry.hooks.Arg, &execs[i].instance, req)
		}
	}

	err := m.Ops.Unmount(m, req)

	for i := len(execs) - 1; i >= 0; i-- {
		s := execs[i]
		if post := s.entry.hooks.PostUnmount; post != nil {
			err = post(err, s.entry.hooks.Arg, s.instance, req)
		}
		release(s.entry)
	}

	monitoring.GetGlobalMetrics().RecordDispatch("unmount", len(execs))
	return err
}
