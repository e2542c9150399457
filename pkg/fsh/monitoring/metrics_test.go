package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNoOpMetrics_ImplementsInterface tests that NoOpMetrics satisfies
// FrameworkMetrics.
func TestNoOpMetrics_ImplementsInterface(t *testing.T) {
	var _ FrameworkMetrics = (*NoOpMetrics)(nil)
}

// TestGlobalMetrics_DefaultIsNoOp tests that the default global metrics is
// the zero-cost no-op implementation.
func TestGlobalMetrics_DefaultIsNoOp(t *testing.T) {
	SetGlobalMetrics(nil)

	m := GetGlobalMetrics()

	assert.IsType(t, &NoOpMetrics{}, m)
	assert.NotPanics(t, func() {
		m.RecordHookInstalled()
		m.RecordHookRemoved()
		m.RecordDispatch("read", 3)
		m.RecordReclamation()
		m.RecordCallbackExec("mount")
	})
}

// TestSetGlobalMetrics tests global metrics replacement and the nil reset.
func TestSetGlobalMetrics(t *testing.T) {
	defer SetGlobalMetrics(nil)

	custom := &recordingMetrics{}
	SetGlobalMetrics(custom)
	assert.Same(t, custom, GetGlobalMetrics())

	// nil resets to NoOp instead of breaking every caller.
	SetGlobalMetrics(nil)
	assert.IsType(t, &NoOpMetrics{}, GetGlobalMetrics())
}

// recordingMetrics counts calls for tests.
type recordingMetrics struct {
	installed, removed, dispatches, reclaims, callbacks int
}

func (r *recordingMetrics) RecordHookInstalled()                 { r.installed++ }
func (r *recordingMetrics) RecordHookRemoved()                   { r.removed++ }
func (r *recordingMetrics) RecordDispatch(op string, n int)      { r.dispatches++ }
func (r *recordingMetrics) RecordReclamation()                   { r.reclaims++ }
func (r *recordingMetrics) RecordCallbackExec(kind string)       { r.callbacks++ }
