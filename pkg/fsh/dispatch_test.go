package fsh_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newbpydev/fshook/pkg/fsh"
	"github.com/newbpydev/fshook/testing/testutil"
)

// TestDispatch_LIFOOrder tests the canonical layering scenario: with hooks
// A then B installed, a read traces preB, preA, read, postA, postB.
func TestDispatch_LIFOOrder(t *testing.T) {
	fsh.Init()
	tr := testutil.NewTrace()
	m := fsh.NewMount("/mnt/order", testutil.CountingOps(tr))

	_, err := fsh.Install(m, testutil.RecordingHooks("A", tr))
	require.NoError(t, err)
	_, err = fsh.Install(m, testutil.RecordingHooks("B", tr))
	require.NoError(t, err)

	require.NoError(t, fsh.Read(m, &fsh.ReadRequest{Resid: 64}))

	assert.Equal(t, []string{"preB", "preA", "read", "postA", "postB"}, tr.Events())
}

// TestDispatch_ManyHooksOrder tests execution order for a longer chain:
// pre hooks run newest-first, post hooks oldest-first.
func TestDispatch_ManyHooksOrder(t *testing.T) {
	fsh.Init()
	tr := testutil.NewTrace()
	m := fsh.NewMount("/mnt/order", testutil.CountingOps(tr))

	labels := []string{"1", "2", "3", "4"}
	for _, l := range labels {
		_, err := fsh.Install(m, testutil.RecordingHooks(l, tr))
		require.NoError(t, err)
	}

	require.NoError(t, fsh.Read(m, &fsh.ReadRequest{Resid: 64}))

	want := []string{
		"pre4", "pre3", "pre2", "pre1",
		"read",
		"post1", "post2", "post3", "post4",
	}
	assert.Equal(t, want, tr.Events())
}

// TestDispatch_ResultThreading tests that each post hook receives the
// previous result and that its return replaces it; the caller sees the
// outermost post hook's return.
func TestDispatch_ResultThreading(t *testing.T) {
	fsh.Init()

	errInner := errors.New("inner")
	errOuter := errors.New("outer")

	m := fsh.NewMount("/mnt/result", fsh.Ops{
		Read: func(m *fsh.Mount, req *fsh.ReadRequest) error { return nil },
	})

	var sawByInner, sawByOuter error
	// Installed first: runs first in the post pass, so it is innermost.
	_, err := fsh.Install(m, &fsh.Hooks{
		PostRead: func(err error, arg any, instance any, req *fsh.ReadRequest) error {
			sawByInner = err
			return errInner
		},
	})
	require.NoError(t, err)
	_, err = fsh.Install(m, &fsh.Hooks{
		PostRead: func(err error, arg any, instance any, req *fsh.ReadRequest) error {
			sawByOuter = err
			return errOuter
		},
	})
	require.NoError(t, err)

	got := fsh.Read(m, &fsh.ReadRequest{Resid: 8})

	assert.NoError(t, sawByInner, "innermost post sees the underlying result")
	assert.Equal(t, errInner, sawByOuter, "outer post sees the inner post's return")
	assert.Equal(t, errOuter, got, "the caller sees the outermost post's return")
}

// TestDispatch_InstanceSlotPairing tests that whatever a pre hook stores in
// the instance slot reaches its own post hook, per hook, within one
// dispatch.
func TestDispatch_InstanceSlotPairing(t *testing.T) {
	fsh.Init()
	m := fsh.NewMount("/mnt/slot", fsh.Ops{
		Read: func(m *fsh.Mount, req *fsh.ReadRequest) error { return nil },
	})

	got := make(map[string]any)
	mkHooks := func(label string) *fsh.Hooks {
		return &fsh.Hooks{
			PreRead: func(arg any, instance *any, req *fsh.ReadRequest) {
				*instance = label
			},
			PostRead: func(err error, arg any, instance any, req *fsh.ReadRequest) error {
				got[label] = instance
				return err
			},
		}
	}

	_, err := fsh.Install(m, mkHooks("a"))
	require.NoError(t, err)
	_, err = fsh.Install(m, mkHooks("b"))
	require.NoError(t, err)

	require.NoError(t, fsh.Read(m, &fsh.ReadRequest{Resid: 8}))

	assert.Equal(t, "a", got["a"], "hook a's post must see hook a's slot")
	assert.Equal(t, "b", got["b"], "hook b's post must see hook b's slot")
}

// TestDispatch_DisabledBypassesChain tests that a disabled mount behaves
// exactly like the underlying operation and that re-enabling restores the
// layered behavior with the same chain.
func TestDispatch_DisabledBypassesChain(t *testing.T) {
	fsh.Init()
	tr := testutil.NewTrace()
	m := fsh.NewMount("/mnt/bypass", testutil.CountingOps(tr))

	_, err := fsh.Install(m, testutil.RecordingHooks("A", tr))
	require.NoError(t, err)

	fsh.DisableMount(m)
	require.NoError(t, fsh.Read(m, &fsh.ReadRequest{Resid: 8}))
	assert.Equal(t, []string{"read"}, tr.Events(), "a disabled mount runs only the underlying op")

	tr.Reset()
	fsh.EnableMount(m)
	require.NoError(t, fsh.Read(m, &fsh.ReadRequest{Resid: 8}))
	assert.Equal(t, []string{"preA", "read", "postA"}, tr.Events(), "re-enabling restores the chain")
}

// TestDispatch_ElidesUnrelatedHooks tests that a hook with neither pre nor
// post for the dispatched operation is allowed but produces no observable
// effect.
func TestDispatch_ElidesUnrelatedHooks(t *testing.T) {
	fsh.Init()
	tr := testutil.NewTrace()
	m := fsh.NewMount("/mnt/elide", testutil.CountingOps(tr))

	// Hooks only the write path; a read dispatch must elide it.
	_, err := fsh.Install(m, &fsh.Hooks{
		PreWrite: func(arg any, instance *any, req *fsh.WriteRequest) {
			tr.Add("preW")
		},
	})
	require.NoError(t, err)

	// No callbacks at all: installable, never observable.
	_, err = fsh.Install(m, &fsh.Hooks{})
	require.NoError(t, err)

	require.NoError(t, fsh.Read(m, &fsh.ReadRequest{Resid: 8}))
	assert.Equal(t, []string{"read"}, tr.Events())

	require.NoError(t, fsh.Write(m, &fsh.WriteRequest{Resid: 8}))
	assert.Equal(t, []string{"read", "preW", "write"}, tr.Events())
}

// TestDispatch_InstallDuringDispatchIsolated tests that a hook installed by
// a pre hook does not retroactively join the running dispatch, while the
// next dispatch sees it.
func TestDispatch_InstallDuringDispatchIsolated(t *testing.T) {
	fsh.Init()
	tr := testutil.NewTrace()
	m := fsh.NewMount("/mnt/isolate", testutil.CountingOps(tr))

	installed := false
	_, err := fsh.Install(m, &fsh.Hooks{
		PreRead: func(arg any, instance *any, req *fsh.ReadRequest) {
			tr.Add("preI")
			if !installed {
				installed = true
				_, ierr := fsh.Install(m, testutil.RecordingHooks("New", tr))
				require.NoError(t, ierr)
			}
		},
		PostRead: func(err error, arg any, instance any, req *fsh.ReadRequest) error {
			tr.Add("postI")
			return err
		},
	})
	require.NoError(t, err)

	require.NoError(t, fsh.Read(m, &fsh.ReadRequest{Resid: 8}))
	assert.Equal(t, []string{"preI", "read", "postI"}, tr.Events(),
		"the hook installed mid-dispatch must not run in that dispatch")

	tr.Reset()
	require.NoError(t, fsh.Read(m, &fsh.ReadRequest{Resid: 8}))
	assert.Equal(t, []string{"preNew", "preI", "read", "postI", "postNew"}, tr.Events(),
		"the next dispatch sees the new hook at the head of the chain")
}

// TestDispatch_AllOperations smoke-tests the four dispatch entry points
// against one hook that intercepts everything.
func TestDispatch_AllOperations(t *testing.T) {
	fsh.Init()
	tr := testutil.NewTrace()
	m := fsh.NewMount("/mnt/ops", testutil.CountingOps(tr))

	_, err := fsh.Install(m, &fsh.Hooks{
		PreRead:     func(arg any, instance *any, req *fsh.ReadRequest) { tr.Add("preR") },
		PostRead:    func(err error, arg any, instance any, req *fsh.ReadRequest) error { tr.Add("postR"); return err },
		PreWrite:    func(arg any, instance *any, req *fsh.WriteRequest) { tr.Add("preW") },
		PostWrite:   func(err error, arg any, instance any, req *fsh.WriteRequest) error { tr.Add("postW"); return err },
		PreMount:    func(arg any, instance *any, req *fsh.MountRequest) { tr.Add("preM") },
		PostMount:   func(err error, arg any, instance any, req *fsh.MountRequest) error { tr.Add("postM"); return err },
		PreUnmount:  func(arg any, instance *any, req *fsh.UnmountRequest) { tr.Add("preU") },
		PostUnmount: func(err error, arg any, instance any, req *fsh.UnmountRequest) error { tr.Add("postU"); return err },
	})
	require.NoError(t, err)

	require.NoError(t, fsh.Read(m, &fsh.ReadRequest{Resid: 1}))
	require.NoError(t, fsh.Write(m, &fsh.WriteRequest{Resid: 1}))
	require.NoError(t, fsh.MountOp(m, &fsh.MountRequest{}))
	require.NoError(t, fsh.UnmountOp(m, &fsh.UnmountRequest{}))

	want := []string{
		"preR", "read", "postR",
		"preW", "write", "postW",
		"preM", "mount", "postM",
		"preU", "unmount", "postU",
	}
	assert.Equal(t, want, tr.Events())
}
