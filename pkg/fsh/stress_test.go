package fsh_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newbpydev/fshook/pkg/fsh"
)

// TestStress_ConcurrentInstallRemoveDispatch hammers one mount with
// concurrent installers, removers and readers and then checks the global
// accounting invariants: every pre paired with a post, every install
// reclaimed exactly once after the drain.
func TestStress_ConcurrentInstallRemoveDispatch(t *testing.T) {
	const (
		workers    = 8
		iterations = 500
	)

	fsh.Init()

	var pres, posts, reclaims, installs atomic.Int64

	m := fsh.NewMount("/mnt/stress", fsh.Ops{
		Read: func(m *fsh.Mount, req *fsh.ReadRequest) error { return nil },
	})

	hooks := func() *fsh.Hooks {
		return &fsh.Hooks{
			PreRead: func(arg any, instance *any, req *fsh.ReadRequest) {
				pres.Add(1)
				*instance = struct{}{}
			},
			PostRead: func(err error, arg any, instance any, req *fsh.ReadRequest) error {
				posts.Add(1)
				return err
			},
			RemoveCB: func(arg any, h fsh.Handle) {
				reclaims.Add(1)
			},
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				h, err := fsh.Install(m, hooks())
				require.NoError(t, err)
				installs.Add(1)

				if err := fsh.Read(m, &fsh.ReadRequest{Resid: 16}); err != nil {
					t.Error(err)
					return
				}

				require.NoError(t, fsh.Remove(h))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, pres.Load(), posts.Load(), "every pre hook must pair with a post hook")
	assert.Equal(t, installs.Load(), reclaims.Load(), "every installed hook must reclaim exactly once")

	// All hooks removed: a final read runs bare.
	preBefore := pres.Load()
	require.NoError(t, fsh.Read(m, &fsh.ReadRequest{Resid: 16}))
	assert.Equal(t, preBefore, pres.Load(), "no hook may survive the drain")
}
