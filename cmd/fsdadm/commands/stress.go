package commands

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/newbpydev/fshook/pkg/fsh"
)

// newStressCmd creates the `fsdadm stress` command: concurrent workers
// hammering the framework with installs, removals, enable/disable flips
// and reads, all against live dispatch traffic.
func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Stress the hook framework with concurrent workers",
		Long: `Run concurrent workers against the sandbox mounts. Each worker
randomly installs hooks, removes live or bogus handles, flips the
per-mount enabled bit and issues reads. The run reports the operation
totals and verifies that every installed hook was reclaimed.

Examples:
  fsdadm stress
  fsdadm stress --duration 10s --workers 8`,
		RunE: runStress,
	}

	cmd.Flags().Duration("duration", 5*time.Second, "how long to run")
	cmd.Flags().Int("workers", 4, "concurrent workers per mount")
	return cmd
}

// stressCounters aggregates what the workers did.
type stressCounters struct {
	installs  atomic.Int64
	removes   atomic.Int64
	misses    atomic.Int64
	reads     atomic.Int64
	flips     atomic.Int64
	reclaimed atomic.Int64
}

func runStress(cmd *cobra.Command, _ []string) error {
	sb, err := newSandbox(cmd)
	if err != nil {
		return err
	}
	defer sb.close()

	duration, _ := cmd.Flags().GetDuration("duration")
	workers, _ := cmd.Flags().GetInt("workers")

	var counters stressCounters
	deadline := time.Now().Add(duration)

	var wg sync.WaitGroup
	for _, info := range sb.host.List() {
		m, ok := sb.host.Lookup(info.Path)
		if !ok {
			continue
		}
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(m *fsh.Mount, seed int64) {
				defer wg.Done()
				stressWorker(m, seed, deadline, &counters)
			}(m, rand.Int63())
		}
	}
	wg.Wait()

	// Drain: every mount re-enabled, nothing left but what reclamation
	// already accounted for.
	for _, info := range sb.host.List() {
		if m, ok := sb.host.Lookup(info.Path); ok {
			fsh.EnableMount(m)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "installs:  %d\n", counters.installs.Load())
	fmt.Fprintf(out, "removes:   %d (+%d misses on bogus handles)\n",
		counters.removes.Load(), counters.misses.Load())
	fmt.Fprintf(out, "reads:     %d\n", counters.reads.Load())
	fmt.Fprintf(out, "flips:     %d\n", counters.flips.Load())
	fmt.Fprintf(out, "reclaimed: %d\n", counters.reclaimed.Load())

	if got, want := counters.reclaimed.Load(), counters.installs.Load(); got != want {
		return fmt.Errorf("reclamation mismatch: %d installed, %d reclaimed", want, got)
	}
	fmt.Fprintln(out, "every installed hook reclaimed")
	return nil
}

// stressWorker is one loop of randomized framework traffic on one mount,
// keeping its own roster of live handles the way the original harness did.
func stressWorker(m *fsh.Mount, seed int64, deadline time.Time, c *stressCounters) {
	rng := rand.New(rand.NewSource(seed))
	var handles []fsh.Handle

	hooks := &fsh.Hooks{
		PreRead: func(arg any, instance *any, req *fsh.ReadRequest) {},
		PostRead: func(err error, arg any, instance any, req *fsh.ReadRequest) error {
			return err
		},
		RemoveCB: func(arg any, h fsh.Handle) { c.reclaimed.Add(1) },
	}

	for time.Now().Before(deadline) {
		switch rng.Intn(9) {
		case 0:
			fsh.EnableMount(m)
			c.flips.Add(1)

		case 1:
			fsh.DisableMount(m)
			c.flips.Add(1)

		case 2, 3, 4:
			h, err := fsh.Install(m, hooks)
			if err == nil {
				handles = append(handles, h)
				c.installs.Add(1)
			}

		case 5, 6:
			if len(handles) == 0 {
				break
			}
			pos := rng.Intn(len(handles))
			if err := fsh.Remove(handles[pos]); err == nil {
				c.removes.Add(1)
			}
			handles[pos] = handles[len(handles)-1]
			handles = handles[:len(handles)-1]

		case 7:
			// A handle nobody owns; not-found is the expected answer.
			if err := fsh.Remove(fsh.Handle(rng.Int63())); err != nil {
				c.misses.Add(1)
			}

		case 8:
			req := &fsh.ReadRequest{Resid: int64(rng.Intn(4096))}
			if err := fsh.Read(m, req); err == nil {
				c.reads.Add(1)
			}
		}
	}

	for _, h := range handles {
		if err := fsh.Remove(h); err == nil {
			c.removes.Add(1)
		}
	}
}
