package fsd

import "errors"

// Client-level error kinds. The control surface is the only layer that
// turns these into user-visible strings.
var (
	// ErrNotEnabled is returned by every control command except ENABLE
	// while the client is inactive.
	ErrNotEnabled = errors.New("fsd: disturber is not enabled")

	// ErrEnabled is returned by Detach while the client is active;
	// teardown is refused until DISABLE.
	ErrEnabled = errors.New("fsd: disturber is enabled")

	// ErrInvalidArgument is returned when a policy is out of range:
	// chance above 100 percent or an inverted byte range.
	ErrInvalidArgument = errors.New("fsd: invalid disturbance policy")

	// ErrBadReference is returned when a mount descriptor does not resolve
	// to a live mount.
	ErrBadReference = errors.New("fsd: mount descriptor does not resolve")

	// ErrNotAttached is returned by operations that need the mount/free
	// callbacks installed before Attach has been called.
	ErrNotAttached = errors.New("fsd: disturber is not attached")
)
