package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGlobalReporter_DefaultIsNil tests that reporting starts disabled.
func TestGlobalReporter_DefaultIsNil(t *testing.T) {
	SetErrorReporter(nil)

	assert.Nil(t, GetErrorReporter())
}

// TestSetErrorReporter tests reporter replacement and reset.
func TestSetErrorReporter(t *testing.T) {
	defer SetErrorReporter(nil)

	r := NewConsoleReporter(false)
	SetErrorReporter(r)
	assert.Same(t, ErrorReporter(r), GetErrorReporter())

	SetErrorReporter(nil)
	assert.Nil(t, GetErrorReporter())
}

// TestConsoleReporter tests that the console reporter accepts every context
// shape without panicking and flushes immediately.
func TestConsoleReporter(t *testing.T) {
	tests := []struct {
		name string
		ctx  *ErrorContext
	}{
		{name: "nil context", ctx: nil},
		{name: "component only", ctx: &ErrorContext{Component: "fsh", Operation: "install"}},
		{
			name: "full context",
			ctx: &ErrorContext{
				Component: "fsd",
				Mount:     "/mnt/data",
				Operation: "read",
				Timestamp: time.Now(),
				Tags:      map[string]string{"kind": "test"},
				Extra:     map[string]any{"resid": 42},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewConsoleReporter(true)

			assert.NotPanics(t, func() {
				r.ReportError(errors.New("boom"), tt.ctx)
			})
			assert.NoError(t, r.Flush(time.Second))
		})
	}
}

// TestConsoleReporter_ImplementsInterface tests interface satisfaction for
// both shipped reporters.
func TestConsoleReporter_ImplementsInterface(t *testing.T) {
	var _ ErrorReporter = (*ConsoleReporter)(nil)
	var _ ErrorReporter = (*SentryReporter)(nil)
}

// TestSentryReporter_EmptyDSN tests the offline path: an empty DSN
// constructs a reporter that accepts reports and flushes without a network.
func TestSentryReporter_EmptyDSN(t *testing.T) {
	r, err := NewSentryReporter("",
		WithEnvironment("test"),
		WithRelease("v0.0.0"),
		WithDebug(false),
	)
	require.NoError(t, err, "an empty DSN disables sending but must construct")

	assert.NotPanics(t, func() {
		r.ReportError(errors.New("boom"), &ErrorContext{
			Component: "fsh",
			Mount:     "/mnt/data",
			Operation: "read",
			Timestamp: time.Now(),
			Tags:      map[string]string{"kind": "test"},
			Extra:     map[string]any{"n": 1},
		})
	})
	assert.NoError(t, r.Flush(2*time.Second))
}
