// Package limiter rate-limits how often a stream of text changes reaches a
// fetch callback. It owns no timers: a Dispatcher tells its caller when to
// fire and which deferred call to arm, and the caller reports back when that
// deferred call comes due.
package limiter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Mode selects the dispatch strategy.
type Mode string

const (
	// ModeNone delivers every submitted value immediately.
	ModeNone Mode = "none"
	// ModeThrottle delivers the first value at once, then at most one value
	// per wait window, catching up with the latest value at the window end.
	ModeThrottle Mode = "throttle"
	// ModeDebounce delivers only the last value of a burst, once the wait has
	// elapsed without another submission.
	ModeDebounce Mode = "debounce"
)

// DefaultWait is the wait used when none is configured.
const DefaultWait = 100 * time.Millisecond

// ValidModes lists all accepted modes for validation and help text.
var ValidModes = []Mode{ModeNone, ModeThrottle, ModeDebounce}

var (
	// ErrUnknownMode is returned for a mode outside ValidModes.
	ErrUnknownMode = errors.New("unknown rate limit mode")
	// ErrNegativeWait is returned for a wait below zero.
	ErrNegativeWait = errors.New("rate limit wait must be non-negative")
)

// IsValid reports whether m is one of ValidModes.
func (m Mode) IsValid() bool {
	for _, v := range ValidModes {
		if v == m {
			return true
		}
	}
	return false
}

func (m Mode) String() string {
	return string(m)
}

// ParseMode converts user text into a Mode. The empty string maps to
// ModeNone; "trottle" is accepted as a legacy spelling of throttle.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ModeNone, nil
	case "throttle", "trottle":
		return ModeThrottle, nil
	case "debounce":
		return ModeDebounce, nil
	default:
		return "", fmt.Errorf("%w %q (expected none, throttle or debounce)", ErrUnknownMode, s)
	}
}

// Config holds the rate-limiting parameters.
type Config struct {
	Mode Mode
	Wait time.Duration
}

// Validate checks the mode and wait and returns an error if invalid.
// Rules:
// - Mode must be one of ValidModes
// - Wait must be non-negative
func (c Config) Validate() error {
	if !c.Mode.IsValid() {
		return fmt.Errorf("%w %q", ErrUnknownMode, string(c.Mode))
	}
	if c.Wait < 0 {
		return fmt.Errorf("%w, got %s", ErrNegativeWait, c.Wait)
	}
	return nil
}

// IsActive returns true if values can be held back.
func (c Config) IsActive() bool {
	return c.Mode == ModeThrottle || c.Mode == ModeDebounce
}

// Pending is a deferred delivery waiting for its deadline. Seq identifies it
// so a late timer for a replaced or discarded call can be recognised.
type Pending struct {
	Seq      uint64
	Value    string
	Deadline time.Time
}

// Decision tells the caller what to do after Submit or Expire.
type Decision struct {
	// Fire is true when Value must be delivered now.
	Fire  bool
	Value string
	// Schedule, when non-nil, is a deferred call the caller must arm.
	Schedule *Pending
}

// Dispatcher applies one Config to a stream of values. It is not safe for
// concurrent use; callers drive it from a single event loop.
type Dispatcher struct {
	cfg      Config
	now      func() time.Time
	seq      uint64
	pending  *Pending
	lastFire time.Time
	fired    bool
}

// NewDispatcher creates a dispatcher. A nil clock uses time.Now.
func NewDispatcher(cfg Config, now func() time.Time) *Dispatcher {
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{cfg: cfg, now: now}
}

// Config returns the active configuration.
func (d *Dispatcher) Config() Config {
	return d.cfg
}

// Submit offers a new value.
func (d *Dispatcher) Submit(value string) Decision {
	switch d.cfg.Mode {
	case ModeDebounce:
		return d.schedule(value, d.now().Add(d.cfg.Wait))
	case ModeThrottle:
		now := d.now()
		if d.fired && now.Sub(d.lastFire) < d.cfg.Wait {
			if d.pending != nil {
				d.pending.Value = value
				return Decision{}
			}
			return d.schedule(value, d.lastFire.Add(d.cfg.Wait))
		}
		// Window is closed; any armed timer is now stale.
		d.pending = nil
		d.lastFire = now
		d.fired = true
		return Decision{Fire: true, Value: value}
	default:
		return Decision{Fire: true, Value: value}
	}
}

// Expire resolves the deferred call identified by seq. Unknown or replaced
// sequences produce an empty decision.
func (d *Dispatcher) Expire(seq uint64) Decision {
	if d.pending == nil || d.pending.Seq != seq {
		return Decision{}
	}
	value := d.pending.Value
	d.pending = nil
	if d.cfg.Mode == ModeThrottle {
		d.lastFire = d.now()
		d.fired = true
	}
	return Decision{Fire: true, Value: value}
}

// Pending returns the armed deferred call, if any.
func (d *Dispatcher) Pending() (Pending, bool) {
	if d.pending == nil {
		return Pending{}, false
	}
	return *d.pending, true
}

// Cancel discards the armed deferred call.
func (d *Dispatcher) Cancel() {
	d.pending = nil
}

// Reset swaps in a new configuration and forgets all timing state. Sequence
// numbers keep increasing so timers armed under the old configuration never
// match again.
func (d *Dispatcher) Reset(cfg Config) {
	d.cfg = cfg
	d.pending = nil
	d.fired = false
	d.lastFire = time.Time{}
}

func (d *Dispatcher) schedule(value string, deadline time.Time) Decision {
	d.seq++
	d.pending = &Pending{Seq: d.seq, Value: value, Deadline: deadline}
	p := *d.pending
	return Decision{Schedule: &p}
}
