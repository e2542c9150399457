package vfs_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newbpydev/fshook/pkg/fsh"
	"github.com/newbpydev/fshook/pkg/vfs"
	"github.com/newbpydev/fshook/testing/testutil"
)

// TestHost_MountFiresCallbacks tests that mounting drives the mount
// operation through the dispatch engine and then fires the framework's
// mount callbacks.
func TestHost_MountFiresCallbacks(t *testing.T) {
	fsh.Init()
	tr := testutil.NewTrace()
	h := vfs.NewHost(slog.Default())

	_, err := fsh.InstallCallback(&fsh.Callback{
		OnMount: func(m *fsh.Mount, arg any) { tr.Add("cb:" + m.Name) },
	})
	require.NoError(t, err)

	m, err := h.Mount("/mnt/a", testutil.CountingOps(tr))
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, []string{"mount", "cb:/mnt/a"}, tr.Events(),
		"the callback fires after the native mount path returns")
}

// TestHost_DuplicateMount tests that a mountpoint can be mounted once.
func TestHost_DuplicateMount(t *testing.T) {
	fsh.Init()
	h := vfs.NewHost(nil)

	_, err := h.Mount("/mnt/a", vfs.MemOps(1024))
	require.NoError(t, err)

	_, err = h.Mount("/mnt/a", vfs.MemOps(1024))
	assert.ErrorIs(t, err, vfs.ErrMountExists)
}

// TestHost_Lookup tests descriptor resolution.
func TestHost_Lookup(t *testing.T) {
	fsh.Init()
	h := vfs.NewHost(nil)

	m, err := h.Mount("/mnt/a", vfs.MemOps(1024))
	require.NoError(t, err)

	got, ok := h.Lookup("/mnt/a")
	require.True(t, ok)
	assert.Same(t, m, got)

	_, ok = h.Lookup("/mnt/missing")
	assert.False(t, ok)
}

// TestHost_ReadThroughChain tests that host reads run the mount's hook
// chain.
func TestHost_ReadThroughChain(t *testing.T) {
	fsh.Init()
	tr := testutil.NewTrace()
	h := vfs.NewHost(nil)

	m, err := h.Mount("/mnt/a", testutil.CountingOps(tr))
	require.NoError(t, err)
	_, err = fsh.Install(m, testutil.RecordingHooks("A", tr))
	require.NoError(t, err)
	tr.Reset()

	require.NoError(t, h.Read("/mnt/a", &fsh.ReadRequest{Resid: 8}))
	assert.Equal(t, []string{"preA", "read", "postA"}, tr.Events())

	assert.ErrorIs(t, h.Read("/mnt/missing", &fsh.ReadRequest{Resid: 8}), vfs.ErrNoMount)
}

// TestHost_UnmountTeardown tests the teardown sequence: hooks still
// installed are reclaimed (their remove callbacks fire) before the free
// callbacks run, and the mount leaves the registry.
func TestHost_UnmountTeardown(t *testing.T) {
	fsh.Init()
	tr := testutil.NewTrace()
	h := vfs.NewHost(nil)

	_, err := fsh.InstallCallback(&fsh.Callback{
		OnFree: func(m *fsh.Mount, arg any) { tr.Add("free:" + m.Name) },
	})
	require.NoError(t, err)

	m, err := h.Mount("/mnt/a", testutil.CountingOps(tr))
	require.NoError(t, err)
	_, err = fsh.Install(m, testutil.RecordingHooks("A", tr))
	require.NoError(t, err)
	tr.Reset()

	require.NoError(t, h.Unmount("/mnt/a", 0))

	assert.Equal(t, []string{"unmount", "removeA", "free:/mnt/a"}, tr.Events(),
		"hooks reclaim before the free callbacks announce the mount's death")

	_, ok := h.Lookup("/mnt/a")
	assert.False(t, ok)

	assert.ErrorIs(t, h.Unmount("/mnt/a", 0), vfs.ErrNoMount)
}

// TestHost_List tests the live-mount snapshot.
func TestHost_List(t *testing.T) {
	fsh.Init()
	h := vfs.NewHost(nil)

	_, err := h.Mount("/mnt/a", vfs.MemOps(64))
	require.NoError(t, err)
	_, err = h.Mount("/mnt/b", vfs.MemOps(64))
	require.NoError(t, err)

	infos := h.List()
	require.Len(t, infos, 2)

	paths := []string{infos[0].Path, infos[1].Path}
	assert.ElementsMatch(t, []string{"/mnt/a", "/mnt/b"}, paths)
	assert.NotEqual(t, infos[0].ID, infos[1].ID, "instance IDs are unique")
}

// TestMemOps tests the synthetic operation table's transfer accounting.
func TestMemOps(t *testing.T) {
	tests := []struct {
		name      string
		size      int64
		offset    int64
		resid     int64
		wantResid int64
	}{
		{name: "full transfer", size: 1024, offset: 0, resid: 100, wantResid: 0},
		{name: "bounded by region end", size: 100, offset: 80, resid: 50, wantResid: 30},
		{name: "offset past end transfers nothing", size: 100, offset: 200, resid: 50, wantResid: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsh.Init()
			ops := vfs.MemOps(tt.size)
			m := fsh.NewMount("/mnt/mem", ops)

			req := &fsh.ReadRequest{Offset: tt.offset, Resid: tt.resid}
			require.NoError(t, ops.Read(m, req))
			assert.Equal(t, tt.wantResid, req.Resid)
		})
	}
}
