package trigger

import (
	"sync"
	"time"
)

// Presence is the history view the override policy consults.
type Presence interface {
	ActiveSeenAfter(ids []string, t time.Time) bool
}

// OverridePolicy suppresses automatic switching after an explicit manual
// profile choice, until one of a profile's trigger devices is observed
// (re)connecting after that choice.
type OverridePolicy struct {
	history Presence

	mu         sync.Mutex
	lastManual time.Time
	haveManual bool
	now        func() time.Time
}

// NewOverridePolicy builds a policy over the given presence view.
func NewOverridePolicy(history Presence) *OverridePolicy {
	return &OverridePolicy{history: history, now: time.Now}
}

// SetClock overrides the time source. Test hook.
func (o *OverridePolicy) SetClock(now func() time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.now = now
}

// RecordManual marks now as the moment of an explicit user choice.
func (o *OverridePolicy) RecordManual() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastManual = o.now()
	o.haveManual = true
}

// Clear restores default auto-switching sensitivity. Called after a
// fully automatic activation and on intentional suspension.
func (o *OverridePolicy) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastManual = time.Time{}
	o.haveManual = false
}

// LastManual returns the override timestamp when one is recorded.
func (o *OverridePolicy) LastManual() (time.Time, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastManual, o.haveManual
}

// ShouldApply reports whether an automatic trigger for the given devices
// may override the user's last manual choice. A trigger device that was
// (re)connected after the manual switch is evidence the trigger is newly
// relevant rather than re-firing on stale state.
func (o *OverridePolicy) ShouldApply(triggerIDs []string) bool {
	o.mu.Lock()
	haveManual := o.haveManual
	lastManual := o.lastManual
	o.mu.Unlock()

	if !haveManual {
		return true
	}
	return o.history.ActiveSeenAfter(triggerIDs, lastManual)
}
