// Package suspend implements the timed auto-switching disable window:
// a small state machine over Enabled, DisabledUntil, and DisabledForever
// with a one-shot re-enable timer and a countdown tick.
package suspend

import (
	"fmt"
	"sync"
	"time"
)

// State is the suspension status.
type State string

const (
	StateEnabled         State = "enabled"
	StateDisabledUntil   State = "disabled_until"
	StateDisabledForever State = "disabled_forever"
)

// Controller owns the suspension state and its timers. Timers are
// cancelled and replaced wholesale on every transition; none outlive it.
type Controller struct {
	// OnEnable fires after a transition back to Enabled, so the engine
	// can force a re-evaluation of triggers. Optional.
	OnEnable func()
	// OnChange fires after every state transition and countdown update.
	// Optional.
	OnChange func()

	mu           sync.Mutex
	state        State
	until        time.Time
	remaining    string
	enableTimer  *time.Timer
	tickerStop   chan struct{}
	now          func() time.Time
	tickInterval time.Duration
}

// NewController returns an enabled controller on the wall clock.
func NewController() *Controller {
	return &Controller{
		state:        StateEnabled,
		now:          time.Now,
		tickInterval: time.Minute,
	}
}

// SetClock overrides the time source. Test hook.
func (c *Controller) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// SetTickInterval shortens the countdown tick. Test hook.
func (c *Controller) SetTickInterval(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickInterval = d
}

// DisableFor suspends auto-switching for a fixed duration.
func (c *Controller) DisableFor(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.disableLocked(c.now().Add(d), StateDisabledUntil)
	c.mu.Unlock()
	c.emitChange()
}

// DisableUntilEndOfDay suspends auto-switching until local midnight.
func (c *Controller) DisableUntilEndOfDay() {
	c.mu.Lock()
	now := c.now()
	year, month, day := now.Date()
	midnight := time.Date(year, month, day+1, 0, 0, 0, 0, now.Location())
	c.disableLocked(midnight, StateDisabledUntil)
	c.mu.Unlock()
	c.emitChange()
}

// DisableForever suspends auto-switching with no end timestamp.
func (c *Controller) DisableForever() {
	c.mu.Lock()
	c.disableLocked(time.Time{}, StateDisabledForever)
	c.mu.Unlock()
	c.emitChange()
}

// disableLocked replaces any previous suspension: old timers are
// cancelled, the new end timestamp armed, and the countdown started.
func (c *Controller) disableLocked(until time.Time, state State) {
	c.cancelTimersLocked()

	c.state = state
	c.until = until
	c.remaining = c.remainingLocked()

	if state == StateDisabledUntil {
		delay := until.Sub(c.now())
		c.enableTimer = time.AfterFunc(delay, c.Enable)
	}

	stop := make(chan struct{})
	c.tickerStop = stop
	go c.countdown(stop, c.tickInterval)
}

// countdown refreshes the remaining-time string every interval and
// enables early when the deadline has already passed.
func (c *Controller) countdown(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.tickerStop != stop {
				c.mu.Unlock()
				return
			}
			expired := c.state == StateDisabledUntil && !c.until.After(c.now())
			if !expired {
				c.remaining = c.remainingLocked()
			}
			c.mu.Unlock()

			if expired {
				c.Enable()
				return
			}
			c.emitChange()
		}
	}
}

// Enable cancels all suspension timers, restores Enabled, and asks the
// engine to re-evaluate triggers. No-op when already enabled.
func (c *Controller) Enable() {
	c.mu.Lock()
	if c.state == StateEnabled {
		c.mu.Unlock()
		return
	}
	c.cancelTimersLocked()
	c.state = StateEnabled
	c.until = time.Time{}
	c.remaining = ""
	c.mu.Unlock()

	c.emitChange()
	if c.OnEnable != nil {
		c.OnEnable()
	}
}

// Close cancels timers without firing callbacks. Daemon shutdown path.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelTimersLocked()
}

func (c *Controller) cancelTimersLocked() {
	if c.enableTimer != nil {
		c.enableTimer.Stop()
		c.enableTimer = nil
	}
	if c.tickerStop != nil {
		close(c.tickerStop)
		c.tickerStop = nil
	}
}

// Suspended reports whether automatic evaluation is currently blocked.
func (c *Controller) Suspended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != StateEnabled
}

// Status returns the state, the end timestamp (zero for forever or
// enabled), and the human-readable remaining time.
func (c *Controller) Status() (State, time.Time, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.until, c.remaining
}

func (c *Controller) emitChange() {
	if c.OnChange != nil {
		c.OnChange()
	}
}

// remainingLocked renders the countdown string for the current state.
func (c *Controller) remainingLocked() string {
	switch c.state {
	case StateDisabledForever:
		return "forever"
	case StateDisabledUntil:
		left := c.until.Sub(c.now())
		if left <= 0 {
			return "less than a minute"
		}
		return formatRemaining(left)
	default:
		return ""
	}
}

// formatRemaining renders durations as "3h 05m" / "42m", minute floor.
func formatRemaining(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		return "less than a minute"
	}
	hours := minutes / 60
	minutes %= 60
	if hours > 0 {
		return fmt.Sprintf("%dh %02dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
