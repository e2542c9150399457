// Package vfs provides a minimal in-process host for the hook framework:
// a registry of live mounts plus the glue that drives operations through
// the dispatch engine and fires the framework's mount/free callbacks at
// the right moments.
//
// It stands in for the role a kernel VFS layer plays around the framework.
// The synthetic operation tables it ships are byte-counting stand-ins, not
// filesystems; they exist so the framework and its clients can be exercised
// end to end.
package vfs

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/newbpydev/fshook/pkg/fsh"
)

// ErrMountExists is returned by Mount when the mountpoint is already in use.
var ErrMountExists = errors.New("vfs: mountpoint already mounted")

// ErrNoMount is returned when a path resolves to no live mount.
var ErrNoMount = errors.New("vfs: no such mount")

// MountInfo describes one live mount.
type MountInfo struct {
	// ID is the unique instance identifier assigned at mount time.
	ID string
	// Path is the mountpoint.
	Path string
}

type mountState struct {
	id    string
	mount *fsh.Mount
}

// Host owns the set of live mounts. All methods are safe for concurrent
// use; the host serializes only its own registry, never the mounts
// themselves.
type Host struct {
	mu     sync.RWMutex
	mounts map[string]*mountState
	logger *slog.Logger
}

// NewHost creates an empty host. A nil logger falls back to slog.Default().
func NewHost(logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		mounts: make(map[string]*mountState),
		logger: logger,
	}
}

// Mount creates a mount at path with the given underlying operations,
// drives the mount operation through the dispatch engine, and fires the
// framework's mount callbacks — the moment omnipresent clients use to
// attach their hooks.
func (h *Host) Mount(path string, ops fsh.Ops) (*fsh.Mount, error) {
	h.mu.Lock()
	if _, exists := h.mounts[path]; exists {
		h.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrMountExists, path)
	}

	m := fsh.NewMount(path, ops)
	st := &mountState{id: uuid.NewString(), mount: m}

	req := &fsh.MountRequest{MountPoint: path}
	if err := fsh.MountOp(m, req); err != nil {
		h.mu.Unlock()
		return nil, fmt.Errorf("mount %s: %w", path, err)
	}

	h.mounts[path] = st
	h.mu.Unlock()

	fsh.ExecMountCallbacks(m)

	h.logger.Info("mounted", "path", path, "id", st.id)
	return m, nil
}

// Unmount drives the unmount operation through the dispatch engine and, on
// success, reclaims the mount: the framework record is destroyed
// (reclaiming any hooks still chained and firing their remove callbacks),
// then the free callbacks fire as the clients' hint that the mount is gone,
// and the mount leaves the registry. Handles bound to the mount are invalid
// afterwards.
func (h *Host) Unmount(path string, flags int) error {
	h.mu.Lock()
	st, ok := h.mounts[path]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNoMount, path)
	}
	h.mu.Unlock()

	req := &fsh.UnmountRequest{Flags: flags}
	if err := fsh.UnmountOp(st.mount, req); err != nil {
		return fmt.Errorf("unmount %s: %w", path, err)
	}

	h.mu.Lock()
	delete(h.mounts, path)
	h.mu.Unlock()

	fsh.DestroyRecord(st.mount)
	fsh.ExecFreeCallbacks(st.mount)

	h.logger.Info("unmounted", "path", path, "id", st.id)
	return nil
}

// Lookup resolves a mountpoint path to its live mount.
func (h *Host) Lookup(path string) (*fsh.Mount, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	st, ok := h.mounts[path]
	if !ok {
		return nil, false
	}
	return st.mount, true
}

// Read drives a read on the mount at path through the hook chain.
func (h *Host) Read(path string, req *fsh.ReadRequest) error {
	m, ok := h.Lookup(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoMount, path)
	}
	return fsh.Read(m, req)
}

// Write drives a write on the mount at path through the hook chain.
func (h *Host) Write(path string, req *fsh.WriteRequest) error {
	m, ok := h.Lookup(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoMount, path)
	}
	return fsh.Write(m, req)
}

// List returns a snapshot of the live mounts, in no particular order.
func (h *Host) List() []MountInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	infos := make([]MountInfo, 0, len(h.mounts))
	for path, st := range h.mounts {
		infos = append(infos, MountInfo{ID: st.id, Path: path})
	}
	return infos
}

// MemOps returns a synthetic operation table backed by a byte count: reads
// and writes transfer as many bytes as remain in the request, bounded by
// the region size past the offset. Mount and unmount succeed immediately.
func MemOps(size int64) fsh.Ops {
	transfer := func(offset, resid int64) int64 {
		avail := size - offset
		if avail < 0 {
			avail = 0
		}
		if resid < avail {
			return resid
		}
		return avail
	}

	return fsh.Ops{
		Read: func(m *fsh.Mount, req *fsh.ReadRequest) error {
			req.Resid -= transfer(req.Offset, req.Resid)
			return nil
		},
		Write: func(m *fsh.Mount, req *fsh.WriteRequest) error {
			req.Resid -= transfer(req.Offset, req.Resid)
			return nil
		},
		Mount: func(m *fsh.Mount, req *fsh.MountRequest) error {
			return nil
		},
		Unmount: func(m *fsh.Mount, req *fsh.UnmountRequest) error {
			return nil
		},
	}
}
