// Package fsd implements the filesystem disturber, the reference client of
// the hook framework.
//
// The disturber injects pathological but protocol-legal behavior into
// filesystem reads. It is NOT a fuzzer: the behavior it injects is the kind
// well-written software must already expect and handle, the canonical
// example being a read transferring fewer bytes than requested.
//
// Features:
//   - per-mount disturbance policies
//   - an omnipresent policy installed on every newly mounted filesystem
//
// The disturber installs at most one hook per mount; all disturbance
// parameters for a mount live in one Policy behind that hook. Overwriting
// an installed policy updates it in place without reinstalling the hook.
package fsd

import (
	"log/slog"
	"sync"
	"time"

	"github.com/petermattis/goid"

	"github.com/newbpydev/fshook/pkg/fsh"
	"github.com/newbpydev/fshook/pkg/fsh/observability"
)

// recordEntry is the disturber's bookkeeping for one hooked mount. The
// policy sits behind its own lock so the hook can read it while the
// administrative path rewrites it; nothing else in the record changes
// after installation except the doomed flag, which is guarded by the
// disturber's mutex.
type recordEntry struct {
	mu     sync.RWMutex
	policy Policy

	handle fsh.Handle
	mount  *fsh.Mount
	doomed bool
}

// Disturber is one instance of the client. For every mount it disturbs
// there is exactly one record on its roster; the record is also the hook's
// Arg, so hooks touch nothing but their own record.
//
// Locking: enabled, detaching, omni, the roster and the count are guarded
// by mu. Roster entries are removed and destroyed in the hook remove
// callback. Because that callback can run either inside the disturber's own
// Remove call or on some dispatching goroutine, removeCB consults remGID to
// decide whether mu is already held by this goroutine.
type Disturber struct {
	mu        sync.Mutex
	empty     *sync.Cond // signaled when the roster drains
	enabled   bool
	detaching bool
	attached  bool
	omni      *Policy
	roster    []*recordEntry
	count     int
	cbHandle  fsh.Handle

	// remGID is the goroutine currently inside a framework Remove call
	// made by this disturber, 0 when none.
	remMu  sync.Mutex
	remGID int64

	randMu   sync.Mutex
	randSeed int64

	logger *slog.Logger
}

// DisturberOption configures New.
type DisturberOption func(*Disturber)

// WithSeed fixes the pseudo-random generator seed. Tests use this for
// reproducible disturbance patterns; the default seed is the current time.
func WithSeed(seed int64) DisturberOption {
	return func(d *Disturber) {
		d.randSeed = seed
	}
}

// New creates a detached, disabled disturber. A nil logger falls back to
// slog.Default().
func New(logger *slog.Logger, opts ...DisturberOption) *Disturber {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Disturber{
		logger:   logger,
		randSeed: time.Now().UnixNano(),
	}
	d.empty = sync.NewCond(&d.mu)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Attach installs the disturber's mount/free callbacks on the framework
// bus. It must be called before the omnipresent policy can take effect.
func (d *Disturber) Attach() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.attached {
		return nil
	}

	h, err := fsh.InstallCallback(&fsh.Callback{
		OnMount: d.mountCallback,
		OnFree:  d.freeCallback,
	})
	if err != nil {
		return err
	}
	d.cbHandle = h
	d.attached = true
	return nil
}

// Detach tears the disturber down: every installed hook is removed, the
// call waits until the last roster entry has been reclaimed, and the
// mount/free callbacks are unregistered. Detach is refused while the
// disturber is enabled.
//
// The hooks must go before the callbacks: the free callback is the last
// stop before a mount disappears, and removing it first would leave a
// window where a dying mount invalidates handles the teardown loop still
// holds.
func (d *Disturber) Detach() error {
	d.mu.Lock()
	if !d.attached {
		d.mu.Unlock()
		return ErrNotAttached
	}
	if d.enabled {
		d.mu.Unlock()
		return ErrEnabled
	}

	// Once detaching is set, removeCB stops touching the roster; the
	// entries popped here would otherwise invalidate its iteration.
	d.detaching = true
	for len(d.roster) > 0 {
		rec := d.roster[0]
		d.roster = d.roster[1:]
		if rec.doomed {
			continue
		}
		rec.doomed = true
		d.removeEntry(rec)
	}

	for d.count > 0 {
		d.empty.Wait()
	}
	d.roster = nil
	d.detaching = false
	d.omni = nil
	d.attached = false
	cbHandle := d.cbHandle
	d.mu.Unlock()

	return fsh.RemoveCallback(cbHandle)
}

// Enable marks the disturber active. While active, Detach is refused.
func (d *Disturber) Enable() {
	d.mu.Lock()
	d.enabled = true
	d.mu.Unlock()
}

// Disable marks the disturber inactive: control commands are refused and
// newly appearing mounts no longer receive the omnipresent hook. Hooks
// already installed keep running.
func (d *Disturber) Disable() {
	d.mu.Lock()
	d.enabled = false
	d.mu.Unlock()
}

// Enabled reports whether the disturber is active.
func (d *Disturber) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.enabled
}

// Disturb installs the policy on the mount, or updates the existing hook's
// policy in place if the mount is already disturbed.
func (d *Disturber) Disturb(m *fsh.Mount, pol Policy) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.install(m, pol)
}

// DisturbOff removes the disturber's hook from the mount. Returns
// fsh.ErrNotFound when the mount is not being disturbed.
func (d *Disturber) DisturbOff(m *fsh.Mount) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec := d.find(m)
	if rec == nil || rec.doomed {
		return fsh.ErrNotFound
	}
	rec.doomed = true
	return d.removeEntry(rec)
}

// DisturbOmni sets the omnipresent policy: every mount that appears while
// it is set receives a hook with this policy. Mounts already present are
// not touched.
func (d *Disturber) DisturbOmni(pol Policy) {
	d.mu.Lock()
	if d.omni == nil {
		d.omni = new(Policy)
	}
	*d.omni = pol
	d.mu.Unlock()
}

// DisturbOmniOff clears the omnipresent policy. Mounts disturbed because of
// its past presence stay disturbed.
func (d *Disturber) DisturbOmniOff() {
	d.mu.Lock()
	d.omni = nil
	d.mu.Unlock()
}

// Param returns the policy installed on the mount. Returns fsh.ErrNotFound
// when the mount is not being disturbed.
func (d *Disturber) Param(m *fsh.Mount) (Policy, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rec := d.find(m)
	if rec == nil {
		return Policy{}, fsh.ErrNotFound
	}
	rec.mu.RLock()
	pol := rec.policy
	rec.mu.RUnlock()
	return pol, nil
}

// Info is the disturber's status snapshot.
type Info struct {
	Enabled    bool
	Count      int
	OmniOn     bool
	OmniPolicy Policy
}

// GetInfo returns the current status snapshot.
func (d *Disturber) GetInfo() Info {
	d.mu.Lock()
	defer d.mu.Unlock()

	info := Info{
		Enabled: d.enabled,
		Count:   d.count,
		OmniOn:  d.omni != nil,
	}
	if d.omni != nil {
		info.OmniPolicy = *d.omni
	}
	return info
}

// MountStatus describes one disturbed mount.
type MountStatus struct {
	Path   string
	Policy Policy
}

// GetList returns up to max currently disturbed mounts, most recently
// disturbed first.
func (d *Disturber) GetList(max int) []MountStatus {
	d.mu.Lock()
	defer d.mu.Unlock()

	if max > len(d.roster) {
		max = len(d.roster)
	}
	list := make([]MountStatus, 0, max)
	for _, rec := range d.roster[:max] {
		rec.mu.RLock()
		list = append(list, MountStatus{Path: rec.mount.Name, Policy: rec.policy})
		rec.mu.RUnlock()
	}
	return list
}

// find returns the roster entry for m, or nil. Callers hold d.mu.
func (d *Disturber) find(m *fsh.Mount) *recordEntry {
	for _, rec := range d.roster {
		if rec.mount == m {
			return rec
		}
	}
	return nil
}

// install puts a hook with the policy on the mount, or rewrites the policy
// of the hook already there. Callers hold d.mu.
func (d *Disturber) install(m *fsh.Mount, pol Policy) error {
	if rec := d.find(m); rec != nil {
		rec.mu.Lock()
		rec.policy = pol
		rec.mu.Unlock()
		return nil
	}

	rec := &recordEntry{mount: m, policy: pol}
	// The hooks touch nothing but their own record, so handing the record
	// out before handle and roster membership are set is safe.
	h, err := fsh.Install(m, &fsh.Hooks{
		Arg:      rec,
		PreRead:  d.preRead,
		PostRead: d.postRead,
		RemoveCB: d.removeCB,
	})
	if err != nil {
		return err
	}
	rec.handle = h
	d.roster = append([]*recordEntry{rec}, d.roster...)
	d.count++
	return nil
}

// removeEntry removes the hook behind rec, recording this goroutine as the
// remover so removeCB knows d.mu is already held when it fires inline.
// Callers hold d.mu and have already marked rec doomed.
func (d *Disturber) removeEntry(rec *recordEntry) error {
	d.remMu.Lock()
	d.remGID = goid.Get()
	d.remMu.Unlock()

	err := fsh.Remove(rec.handle)

	d.remMu.Lock()
	d.remGID = 0
	d.remMu.Unlock()

	// d.mu is held, so no other disturber path can have removed the hook
	// first; an error means mount teardown reclaimed it in the framework.
	if err != nil {
		if r := observability.GetErrorReporter(); r != nil {
			r.ReportError(err, &observability.ErrorContext{
				Component: "fsd",
				Mount:     rec.mount.Name,
				Operation: "remove",
				Timestamp: time.Now(),
			})
		}
	}
	return err
}

// removeCB is the hook remove callback: the framework fires it exactly once
// per hook, after no goroutine executes the hook anymore. It drops the
// roster entry and signals the drain condition Detach waits on.
func (d *Disturber) removeCB(arg any, handle fsh.Handle) {
	rec := arg.(*recordEntry)

	d.remMu.Lock()
	inRemove := d.remGID == goid.Get()
	d.remMu.Unlock()

	if !inRemove {
		d.mu.Lock()
	}

	if !d.detaching {
		for i, cur := range d.roster {
			if cur == rec {
				d.roster = append(d.roster[:i], d.roster[i+1:]...)
				break
			}
		}
	}
	d.count--
	if d.count == 0 {
		d.empty.Broadcast()
	}

	if !inRemove {
		d.mu.Unlock()
	}
}

// mountCallback fires for every new mount. While the disturber is enabled
// and an omnipresent policy is configured, the mount gets a hook.
func (d *Disturber) mountCallback(m *fsh.Mount, arg any) {
	var err error
	d.mu.Lock()
	if d.enabled && d.omni != nil {
		err = d.install(m, *d.omni)
	}
	d.mu.Unlock()

	if err != nil {
		d.logger.Warn("installing disturber failed",
			"mount", m.Name, "error", err)
		if r := observability.GetErrorReporter(); r != nil {
			r.ReportError(err, &observability.ErrorContext{
				Component: "fsd",
				Mount:     m.Name,
				Operation: "omni-install",
				Timestamp: time.Now(),
			})
		}
	}
}

// freeCallback fires when a mount is torn down. The hook on that mount is
// already gone by then (mount teardown reclaims it, which fired removeCB),
// so this only drops bookkeeping that somehow survived; it never calls back
// into the framework.
func (d *Disturber) freeCallback(m *fsh.Mount, arg any) {
	d.mu.Lock()
	for i, rec := range d.roster {
		if rec.mount != m || rec.doomed {
			continue
		}
		d.roster = append(d.roster[:i], d.roster[i+1:]...)
		d.count--
		if d.count == 0 {
			d.empty.Broadcast()
		}
		break
	}
	d.mu.Unlock()
}

// preRead is the disturber's pre hook: on a policy roll it shortens the
// request and parks the withheld byte count in the instance slot for
// postRead.
func (d *Disturber) preRead(arg any, instance *any, req *fsh.ReadRequest) {
	rec := arg.(*recordEntry)

	// Keeps the number of rand calls odd on every path that reaches the
	// range draw; see the comment on rand.
	d.rand()

	rec.mu.RLock()
	chance := rec.policy.ChancePercent
	lo, hi := rec.policy.Range[0], rec.policy.Range[1]
	rec.mu.RUnlock()

	if d.rand()%100 >= chance {
		return
	}

	less := d.rand()%(hi+1-lo) + lo
	count := uint64(req.Resid)
	if count <= less {
		return
	}
	req.Resid = int64(count - less)
	*instance = int64(less)
}

// postRead restores the withheld byte count so the caller observes a short
// read of exactly the amount preRead withheld.
func (d *Disturber) postRead(err error, arg any, instance any, req *fsh.ReadRequest) error {
	if less, ok := instance.(int64); ok {
		req.Resid += less
	}
	return err
}
