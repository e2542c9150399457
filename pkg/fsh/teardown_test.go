package fsh_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newbpydev/fshook/pkg/fsh"
	"github.com/newbpydev/fshook/testing/testutil"
)

// TestDestroyRecord_ReclaimsRemainingHooks tests mount teardown: hooks
// neither removed nor doomed are reclaimed, firing their remove callbacks,
// and their handles return to the space.
func TestDestroyRecord_ReclaimsRemainingHooks(t *testing.T) {
	fsh.Init()
	tr := testutil.NewTrace()
	m := fsh.NewMount("/mnt/teardown", testutil.CountingOps(tr))

	hA, err := fsh.Install(m, testutil.RecordingHooks("A", tr))
	require.NoError(t, err)
	_, err = fsh.Install(m, testutil.RecordingHooks("B", tr))
	require.NoError(t, err)

	fsh.DestroyRecord(m)

	// Chain order is LIFO, so teardown pops B first.
	assert.Equal(t, []string{"removeB", "removeA"}, tr.Events())

	assert.ErrorIs(t, fsh.Remove(hA), fsh.ErrNotFound, "handles die with the mount")

	// Both handles returned to the space: a fresh install on another mount
	// starts from the lowest value again.
	other := fsh.NewMount("/mnt/other", testutil.CountingOps(tr))
	h, err := fsh.Install(other, testutil.RecordingHooks("C", tr))
	require.NoError(t, err)
	assert.Equal(t, fsh.Handle(0), h)
}

// TestDestroyRecord_UntouchedMount tests that tearing down a mount the
// framework never touched is a no-op.
func TestDestroyRecord_UntouchedMount(t *testing.T) {
	fsh.Init()
	m := fsh.NewMount("/mnt/untouched", testutil.NopOps())

	assert.NotPanics(t, func() { fsh.DestroyRecord(m) })
}
