package observability

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryReporter is an error reporter that sends errors to Sentry. It is
// designed for production use, providing centralized error tracking with
// tags and structured context.
//
// The reporter uses Sentry's Hub API for thread-safe reporting and supports
// customization via functional options.
//
// Thread-safe: all methods are safe for concurrent use.
//
// Example usage:
//
//	reporter, err := NewSentryReporter(
//	    os.Getenv("SENTRY_DSN"),
//	    WithEnvironment("production"),
//	    WithRelease("v1.0.0"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	SetErrorReporter(reporter)
//	defer reporter.Flush(5 * time.Second)
type SentryReporter struct {
	// hub is the Sentry hub used for error reporting
	hub *sentry.Hub
}

// SentryOption is a functional option for configuring SentryReporter.
// Options are applied to the Sentry ClientOptions during initialization.
type SentryOption func(*sentry.ClientOptions)

// WithEnvironment sets the environment tag for all events
// (e.g. "production", "staging", "development").
func WithEnvironment(environment string) SentryOption {
	return func(opts *sentry.ClientOptions) {
		opts.Environment = environment
	}
}

// WithRelease sets the release version for all events.
func WithRelease(release string) SentryOption {
	return func(opts *sentry.ClientOptions) {
		opts.Release = release
	}
}

// WithDebug enables debug mode for the Sentry client. When enabled, Sentry
// logs detailed information about event processing to stderr.
func WithDebug(debug bool) SentryOption {
	return func(opts *sentry.ClientOptions) {
		opts.Debug = debug
	}
}

// WithBeforeSend configures a BeforeSend hook for the Sentry client. The
// hook is called before each event is sent, allowing events to be filtered
// (return nil) or modified.
func WithBeforeSend(fn func(*sentry.Event, *sentry.EventHint) *sentry.Event) SentryOption {
	return func(opts *sentry.ClientOptions) {
		opts.BeforeSend = fn
	}
}

// NewSentryReporter creates a new Sentry error reporter.
//
// An empty DSN is allowed and disables sending events, which is useful for
// testing. Returns an error if Sentry initialization fails.
//
// Thread-safe: the returned reporter is safe for concurrent use.
func NewSentryReporter(dsn string, opts ...SentryOption) (*SentryReporter, error) {
	clientOpts := sentry.ClientOptions{
		Dsn: dsn,
	}
	for _, opt := range opts {
		opt(&clientOpts)
	}

	if err := sentry.Init(clientOpts); err != nil {
		return nil, fmt.Errorf("failed to initialize Sentry: %w", err)
	}

	return &SentryReporter{
		hub: sentry.CurrentHub(),
	}, nil
}

// ReportError sends the error to Sentry with the context attached as tags
// and extras.
func (r *SentryReporter) ReportError(err error, ctx *ErrorContext) {
	r.hub.WithScope(func(scope *sentry.Scope) {
		if ctx != nil {
			scope.SetTag("component", ctx.Component)
			if ctx.Mount != "" {
				scope.SetTag("mount", ctx.Mount)
			}
			if ctx.Operation != "" {
				scope.SetTag("operation", ctx.Operation)
			}
			for key, value := range ctx.Tags {
				scope.SetTag(key, value)
			}
			for key, value := range ctx.Extra {
				scope.SetExtra(key, value)
			}
			if !ctx.Timestamp.IsZero() {
				scope.SetExtra("timestamp", ctx.Timestamp.Format(time.RFC3339Nano))
			}
		}
		r.hub.CaptureException(err)
	})
}

// Flush waits up to timeout for pending events to be sent. Call it before
// the application exits so no reports are lost.
func (r *SentryReporter) Flush(timeout time.Duration) error {
	if ok := r.hub.Flush(timeout); !ok {
		return fmt.Errorf("sentry flush timed out after %v", timeout)
	}
	return nil
}
