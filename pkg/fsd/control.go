package fsd

import (
	"errors"
	"fmt"

	"github.com/newbpydev/fshook/pkg/fsh"
)

// Command is a control-surface command code. The numeric space mirrors a
// character-device ioctl layout: a three-byte tag plus a command ordinal.
type Command uint32

const cmdBase Command = 'f'<<24 | 's'<<16 | 'd'<<8

// The admin command set.
const (
	CmdGetParam       Command = cmdBase | 1
	CmdEnable         Command = cmdBase | 2
	CmdDisable        Command = cmdBase | 3
	CmdDisturb        Command = cmdBase | 4
	CmdDisturbOff     Command = cmdBase | 5
	CmdDisturbOmni    Command = cmdBase | 6
	CmdDisturbOmniOff Command = cmdBase | 7
	CmdGetList        Command = cmdBase | 8
	CmdGetInfo        Command = cmdBase | 9
)

// Resolver turns mount descriptors (mountpoint paths) into live mounts.
// The vfs host implements it.
type Resolver interface {
	Lookup(path string) (*fsh.Mount, bool)
}

// DisturbArgs is the payload of CmdDisturb.
type DisturbArgs struct {
	Path   string
	Policy Policy
}

// Control is the disturber's admin command surface. Every command except
// ENABLE is refused with ErrNotEnabled while the disturber is inactive.
// Control is the only layer that forms user-visible strings; the disturber
// itself returns bare error kinds.
type Control struct {
	d        *Disturber
	resolver Resolver
}

// NewControl wraps a disturber and a mount resolver into a command surface.
func NewControl(d *Disturber, resolver Resolver) *Control {
	return &Control{d: d, resolver: resolver}
}

// gate refuses commands while the disturber is inactive.
func (c *Control) gate() error {
	if !c.d.Enabled() {
		return ErrNotEnabled
	}
	return nil
}

func (c *Control) resolve(path string) (*fsh.Mount, error) {
	m, ok := c.resolver.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBadReference, path)
	}
	return m, nil
}

// Enable marks the disturber active. While active, Detach is refused.
func (c *Control) Enable() {
	c.d.Enable()
}

// Disable marks the disturber inactive; no new hooks are installed.
// Like every command except ENABLE, it is refused while the disturber is
// already inactive.
func (c *Control) Disable() error {
	if err := c.gate(); err != nil {
		return err
	}
	c.d.Disable()
	return nil
}

// GetParam returns the policy installed on the mount at path.
func (c *Control) GetParam(path string) (Policy, error) {
	if err := c.gate(); err != nil {
		return Policy{}, err
	}
	m, err := c.resolve(path)
	if err != nil {
		return Policy{}, err
	}
	pol, err := c.d.Param(m)
	if err != nil {
		return Policy{}, fmt.Errorf("%s is not being disturbed: %w", path, err)
	}
	return pol, nil
}

// Disturb installs or updates the disturbance policy on the mount at path.
func (c *Control) Disturb(path string, pol Policy) error {
	if err := c.gate(); err != nil {
		return err
	}
	if err := pol.Validate(); err != nil {
		return err
	}
	m, err := c.resolve(path)
	if err != nil {
		return err
	}
	if err := c.d.Disturb(m, pol); err != nil {
		return fmt.Errorf("disturbing %s: %w", path, err)
	}
	return nil
}

// DisturbOff removes the disturbance hook from the mount at path.
func (c *Control) DisturbOff(path string) error {
	if err := c.gate(); err != nil {
		return err
	}
	m, err := c.resolve(path)
	if err != nil {
		return err
	}
	if err := c.d.DisturbOff(m); err != nil {
		return fmt.Errorf("%s is not being disturbed: %w", path, err)
	}
	return nil
}

// DisturbOmni sets the omnipresent policy applied to future mounts.
func (c *Control) DisturbOmni(pol Policy) error {
	if err := c.gate(); err != nil {
		return err
	}
	if err := pol.Validate(); err != nil {
		return err
	}
	c.d.DisturbOmni(pol)
	return nil
}

// DisturbOmniOff clears the omnipresent policy. Mounts already disturbed
// stay disturbed.
func (c *Control) DisturbOmniOff() error {
	if err := c.gate(); err != nil {
		return err
	}
	c.d.DisturbOmniOff()
	return nil
}

// GetList returns up to capacity descriptors of currently disturbed mounts.
func (c *Control) GetList(capacity int) ([]MountStatus, error) {
	if err := c.gate(); err != nil {
		return nil, err
	}
	return c.d.GetList(capacity), nil
}

// GetInfo returns the disturber's status snapshot.
func (c *Control) GetInfo() (Info, error) {
	if err := c.gate(); err != nil {
		return Info{}, err
	}
	return c.d.GetInfo(), nil
}

// ErrUnknownCommand is returned by Dispatch for a command outside the
// admin command set.
var ErrUnknownCommand = errors.New("fsd: unknown command")

// ErrBadPayload is returned by Dispatch when the payload type does not
// match the command.
var ErrBadPayload = errors.New("fsd: payload does not match command")

// Dispatch executes one command against the control surface, the way the
// original character-device ioctl entry point did. Payload types per
// command:
//
//	CmdEnable, CmdDisable, CmdDisturbOmniOff, CmdGetInfo: nil
//	CmdGetParam, CmdDisturbOff:                           string (path)
//	CmdDisturb:                                           DisturbArgs
//	CmdDisturbOmni:                                       Policy
//	CmdGetList:                                           int (capacity)
func (c *Control) Dispatch(cmd Command, payload any) (any, error) {
	switch cmd {
	case CmdEnable:
		c.Enable()
		return nil, nil

	case CmdDisable:
		return nil, c.Disable()

	case CmdGetParam:
		path, ok := payload.(string)
		if !ok {
			return nil, ErrBadPayload
		}
		return c.GetParam(path)

	case CmdDisturb:
		args, ok := payload.(DisturbArgs)
		if !ok {
			return nil, ErrBadPayload
		}
		return nil, c.Disturb(args.Path, args.Policy)

	case CmdDisturbOff:
		path, ok := payload.(string)
		if !ok {
			return nil, ErrBadPayload
		}
		return nil, c.DisturbOff(path)

	case CmdDisturbOmni:
		pol, ok := payload.(Policy)
		if !ok {
			return nil, ErrBadPayload
		}
		return nil, c.DisturbOmni(pol)

	case CmdDisturbOmniOff:
		return nil, c.DisturbOmniOff()

	case CmdGetList:
		capacity, ok := payload.(int)
		if !ok {
			return nil, ErrBadPayload
		}
		return c.GetList(capacity)

	case CmdGetInfo:
		return c.GetInfo()

	default:
		return nil, fmt.Errorf("%w: %#x", ErrUnknownCommand, uint32(cmd))
	}
}
