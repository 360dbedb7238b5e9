// Package capture manages the lifecycle of a biometric capture device for a
// single verification attempt. The capture device is an exclusive resource:
// only one session may hold it at a time within a process, and acquisition
// fails fast rather than queueing.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Sample is an opaque captured biometric sample.
type Sample struct {
	Data        []byte
	ContentType string
	CapturedAt  time.Time
}

// Device is the capture hardware contract. Acquire must be exclusive within
// the implementation's scope; Release must be safe to call exactly once per
// successful Acquire.
type Device interface {
	Acquire(ctx context.Context) error
	Capture(ctx context.Context) (Sample, error)
	Release()
}

// State of the capture session machine.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateActive
	StateCapturing
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateCapturing:
		return "capturing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrSessionActive means another session currently holds the device.
	// There is no capture queue: callers get an immediate error.
	ErrSessionActive = errors.New("capture session already active")

	// ErrInvalidTransition means an operation was called from a state that
	// does not permit it, e.g. Capture before Start.
	ErrInvalidTransition = errors.New("invalid capture session transition")

	// ErrDeviceUnavailable wraps device acquisition failures.
	ErrDeviceUnavailable = errors.New("capture device unavailable")

	// ErrCaptureFailed wraps sample production failures.
	ErrCaptureFailed = errors.New("capture failed")
)

// Controller is the per-process capture session state machine:
//
//	Idle -> Starting -> Active -> Capturing -> (Succeeded | Failed) -> Idle
//
// Idle is both initial and terminal; Succeeded and Failed are passed through
// under the session lock on the way back to Idle. The device is released on
// every exit path: capture success, capture failure, explicit Cancel, and
// failed start.
type Controller struct {
	mu     sync.Mutex
	state  State
	device Device
	held   bool
}

// NewController builds an idle controller. Each session supplies its device
// to Start; the controller serializes sessions process-wide.
func NewController() *Controller {
	return &Controller{state: StateIdle}
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start acquires the given device exclusively for a new session. From Idle
// it moves through Starting to Active; if the device cannot be acquired the
// session returns to Idle and reports ErrDeviceUnavailable. Starting while a
// session is active is an error, not a queued operation.
func (c *Controller) Start(ctx context.Context, device Device) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return fmt.Errorf("%w: state %s", ErrSessionActive, c.state)
	}
	c.state = StateStarting
	c.device = device
	c.mu.Unlock()

	if err := device.Acquire(ctx); err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.device = nil
		c.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	c.mu.Lock()
	if c.state != StateStarting {
		// Cancelled while acquiring: the acquisition won, so hand it back.
		device.Release()
		c.mu.Unlock()
		return fmt.Errorf("%w: session cancelled", ErrDeviceUnavailable)
	}
	c.held = true
	c.state = StateActive
	c.mu.Unlock()
	return nil
}

// Capture produces a sample. Valid only from Active. On success the session
// passes through Succeeded, releases the device, and returns to Idle; on
// failure it releases the device, returns to Idle, and reports
// ErrCaptureFailed. Either way the device is never left held.
func (c *Controller) Capture(ctx context.Context) (Sample, error) {
	c.mu.Lock()
	if c.state != StateActive {
		state := c.state
		c.mu.Unlock()
		return Sample{}, fmt.Errorf("%w: capture from %s", ErrInvalidTransition, state)
	}
	c.state = StateCapturing
	device := c.device
	c.mu.Unlock()

	sample, err := device.Capture(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateFailed
		c.finishLocked()
		return Sample{}, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}
	c.state = StateSucceeded
	c.finishLocked()
	return sample, nil
}

// Cancel aborts the session from any state, releasing the device if held,
// and returns to Idle. The device is released before Cancel returns. Calling
// Cancel from Idle is a no-op so callers can defer it on every path.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finishLocked()
}

// finishLocked releases the device if held and returns the machine to Idle.
// Must be called with c.mu held.
func (c *Controller) finishLocked() {
	if c.held {
		c.device.Release()
		c.held = false
	}
	c.device = nil
	c.state = StateIdle
}
