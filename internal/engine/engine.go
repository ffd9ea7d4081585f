// Package engine wires device observation, history, trigger matching,
// arbitration, and suspension into the single owner of activation state.
package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Zakay/AudioProfiles/internal/device"
	"github.com/Zakay/AudioProfiles/internal/history"
	"github.com/Zakay/AudioProfiles/internal/hotkey"
	"github.com/Zakay/AudioProfiles/internal/notify"
	"github.com/Zakay/AudioProfiles/internal/profile"
	"github.com/Zakay/AudioProfiles/internal/store"
	"github.com/Zakay/AudioProfiles/internal/suspend"
	"github.com/Zakay/AudioProfiles/internal/trigger"
)

const (
	// DefaultDebounce coalesces device-change bursts into one evaluation.
	DefaultDebounce = 500 * time.Millisecond

	janitorInterval = 5 * time.Minute
)

// Persistence is the storage surface the engine writes through.
type Persistence interface {
	SaveProfiles([]profile.Profile) error
	SaveHistory(map[string]history.Entry) error
	LoadState() (store.State, error)
	SaveState(store.State) error
}

// Snapshot is the read-only state view published to subscribers.
type Snapshot struct {
	ActiveProfileID   string
	ActiveProfileName string
	Mode              profile.Mode
	Suspended         bool
	SuspendState      suspend.State
	SuspendedUntil    time.Time
	SuspendRemaining  string
}

// Options bundles the engine's collaborators.
type Options struct {
	Logger     *slog.Logger
	Profiles   *profile.Store
	History    *history.Store
	Enumerator device.Enumerator
	Controller device.Controller
	Notifier   notify.Notifier
	Registrar  hotkey.Registrar
	Persist    Persistence
	Debounce   time.Duration
}

// Engine is the trigger-detection orchestrator. All activation-state
// mutations funnel through its one mutex; device-change callbacks are
// debounced before they reach it.
type Engine struct {
	logger     *slog.Logger
	profiles   *profile.Store
	history    *history.Store
	enumerator device.Enumerator
	controller device.Controller
	notifier   notify.Notifier
	registrar  hotkey.Registrar
	persist    Persistence

	override   *trigger.OverridePolicy
	suspension *suspend.Controller

	mu            sync.Mutex
	activeID      uuid.UUID
	mode          profile.Mode
	lastEvalIDs   map[string]struct{}
	haveEvaluated bool

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
	pending       []device.AudioDevice
	debounce      time.Duration

	subsMu sync.Mutex
	subs   []func(Snapshot)
}

// New constructs an engine; Start must be called before events flow.
func New(opts Options) *Engine {
	if opts.Notifier == nil {
		opts.Notifier = notify.Noop{}
	}
	if opts.Registrar == nil {
		opts.Registrar = hotkey.Noop{}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := &Engine{
		logger:     opts.Logger,
		profiles:   opts.Profiles,
		history:    opts.History,
		enumerator: opts.Enumerator,
		controller: opts.Controller,
		notifier:   opts.Notifier,
		registrar:  opts.Registrar,
		persist:    opts.Persist,
		mode:       profile.ModePublic,
		debounce:   opts.Debounce,
	}
	e.override = trigger.NewOverridePolicy(opts.History)
	e.suspension = suspend.NewController()
	e.suspension.OnEnable = func() { e.TriggerAutoDetection(context.Background()) }
	e.suspension.OnChange = e.broadcast
	return e
}

// Override exposes the manual-override policy. Test hook.
func (e *Engine) Override() *trigger.OverridePolicy { return e.override }

// Suspension exposes the suspension controller. Test hook.
func (e *Engine) Suspension() *suspend.Controller { return e.suspension }

// Start restores persisted state, registers hotkeys, runs the initial
// forced evaluation, and launches the history janitor.
func (e *Engine) Start(ctx context.Context) {
	if e.persist != nil {
		state, err := e.persist.LoadState()
		if err != nil {
			e.logger.Warn("load daemon state failed; starting fresh", "error", err.Error())
		} else if state.LastUsedProfileID != "" {
			if id, parseErr := uuid.Parse(state.LastUsedProfileID); parseErr == nil {
				if p, ok := e.profiles.Get(id); ok {
					e.mu.Lock()
					e.activeID = p.ID
					e.mode = p.PreferredMode
					e.mu.Unlock()
					e.logger.Info("restored last used profile", "profile", p.Name)
				}
			}
		}
	}

	e.cleanupProfileDevices(ctx)
	e.registerHotkeys(ctx)
	e.TriggerAutoDetection(ctx)

	go e.janitor(ctx)
	go func() {
		<-ctx.Done()
		e.suspension.Close()
		e.cancelDebounce()
	}()
}

// cleanupProfileDevices strips device references that are neither
// currently connected nor remembered in history from every profile's
// device lists, persisting the collection when anything was dropped.
// Runs once at startup so IDs orphaned by history retention do not
// linger in profiles across daemon lifetimes.
func (e *Engine) cleanupProfileDevices(ctx context.Context) {
	devices, err := e.enumerator.ListCurrentDevices(ctx)
	if err != nil {
		e.logger.Warn("device enumeration failed; skipping profile device cleanup", "error", err.Error())
		return
	}
	connected := device.IDs(devices)

	altered := e.profiles.CleanupInvalidDevices(func(id string) bool {
		if _, ok := connected[id]; ok {
			return true
		}
		_, remembered := e.history.Get(id)
		return remembered
	})
	if altered {
		e.logger.Info("dropped unknown device references from profiles")
		e.saveProfiles()
	}
}

// janitor prunes expired history periodically, beyond the per-update prune.
func (e *Engine) janitor(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := e.history.Prune(); removed > 0 {
				e.logger.Info("pruned expired device history", "removed", removed)
				e.saveHistory()
			}
		}
	}
}

// OnDeviceChange receives one raw device snapshot from the monitor and
// schedules a debounced automatic evaluation. The latest snapshot in a
// burst wins.
func (e *Engine) OnDeviceChange(devices []device.AudioDevice) {
	e.debounceMu.Lock()
	e.pending = devices
	if e.debounceTimer != nil {
		e.debounceTimer.Stop()
	}
	e.debounceTimer = time.AfterFunc(e.debounce, e.flushDeviceChange)
	e.debounceMu.Unlock()
}

func (e *Engine) flushDeviceChange() {
	e.debounceMu.Lock()
	devices := e.pending
	e.pending = nil
	e.debounceMu.Unlock()

	e.evaluate(context.Background(), devices, false)
}

func (e *Engine) cancelDebounce() {
	e.debounceMu.Lock()
	if e.debounceTimer != nil {
		e.debounceTimer.Stop()
		e.debounceTimer = nil
	}
	e.debounceMu.Unlock()
}

// TriggerAutoDetection snapshots the current devices and runs a forced
// evaluation: suspension, the idempotence guard, and the manual-override
// policy are all bypassed.
func (e *Engine) TriggerAutoDetection(ctx context.Context) {
	devices, err := e.enumerator.ListCurrentDevices(ctx)
	if err != nil {
		e.logger.Warn("device enumeration failed; skipping evaluation", "error", err.Error())
		return
	}
	e.evaluate(ctx, devices, true)
}

// evaluate is the single serialized evaluation path (the nine-step
// detection flow). Notification delivery and event publication run after
// the lock is released.
func (e *Engine) evaluate(ctx context.Context, devices []device.AudioDevice, manual bool) {
	// Suspension short-circuits automatic work before history is touched.
	if !manual && e.suspension.Suspended() {
		return
	}

	decision, detail, snap, applied := e.evaluateLocked(ctx, devices, manual)
	if !applied {
		return
	}

	if decision.Notify {
		e.notifier.Notify(ctx, notify.Event{
			Kind:        decision.Kind,
			ProfileName: decision.Profile.Name,
			Detail:      detail,
		})
	}

	e.logger.Info("profile activated",
		"profile", decision.Profile.Name,
		"manual", manual,
		"kind", string(decision.Kind),
	)

	e.publish(snap)
}

func (e *Engine) evaluateLocked(ctx context.Context, devices []device.AudioDevice, manual bool) (*trigger.Decision, string, Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history.Update(devices)
	e.saveHistory()

	ids := device.IDs(devices)
	if !manual && e.haveEvaluated && sameIDSet(ids, e.lastEvalIDs) {
		return nil, "", Snapshot{}, false
	}
	e.lastEvalIDs = ids
	e.haveEvaluated = true

	profiles := e.profiles.List()
	match := trigger.BestMatch(profiles, ids)

	if !manual && match != nil && !e.override.ShouldApply(match.Profile.TriggerDeviceIDs) {
		e.logger.Info("automatic trigger vetoed by manual override",
			"profile", match.Profile.Name)
		return nil, "", Snapshot{}, false
	}

	decision, err := trigger.Decide(match, e.activeID, manual, profiles)
	if err != nil {
		e.logger.Warn("activation arbitration failed", "error", err.Error())
		return nil, "", Snapshot{}, false
	}
	if decision == nil {
		return nil, "", Snapshot{}, false
	}

	detail := ""
	switch decision.Kind {
	case notify.KindTriggeredSwitch:
		if match != nil {
			if dev, ok := e.history.Get(match.PrimaryTriggerID); ok {
				detail = dev.Name
			}
		}
	case notify.KindFallbackSwitch:
		detail = e.lostTriggerDeviceNameLocked()
	}

	e.applyLocked(ctx, decision.Profile, decision.Profile.PreferredMode)

	if !manual {
		// A fully automatic activation restores default sensitivity.
		e.override.Clear()
	}

	return decision, detail, e.snapshotLocked(), true
}

// lostTriggerDeviceNameLocked names the device whose disappearance caused
// a fallback, by inspecting the previously active profile's first trigger
// against history.
func (e *Engine) lostTriggerDeviceNameLocked() string {
	if e.activeID == uuid.Nil {
		return ""
	}
	prev, ok := e.profiles.Get(e.activeID)
	if !ok || len(prev.TriggerDeviceIDs) == 0 {
		return ""
	}
	if dev, found := e.history.Get(prev.TriggerDeviceIDs[0]); found {
		return dev.Name
	}
	return ""
}

// applyLocked sets default devices for the profile's priority lists and
// records the new activation state. For each kind the first present
// device wins; on a control failure the next candidate is tried, never
// the same one again.
func (e *Engine) applyLocked(ctx context.Context, p profile.Profile, mode profile.Mode) {
	present := e.presentDevicesLocked()

	e.applyPriorityList(ctx, device.KindOutput, p.OutputPriority(mode), present)
	e.applyPriorityList(ctx, device.KindInput, p.InputPriority(mode), present)

	e.activeID = p.ID
	e.mode = mode
	e.persistLastUsedLocked(p)
}

// presentDevicesLocked indexes the last evaluated snapshot by ID.
func (e *Engine) presentDevicesLocked() map[string]device.AudioDevice {
	out := make(map[string]device.AudioDevice, len(e.lastEvalIDs))
	for id := range e.lastEvalIDs {
		if dev, ok := e.history.Get(id); ok {
			out[id] = dev
		}
	}
	return out
}

func (e *Engine) applyPriorityList(ctx context.Context, kind device.Kind, priority []string, present map[string]device.AudioDevice) {
	for _, id := range priority {
		dev, ok := present[id]
		if !ok {
			continue
		}
		if err := e.controller.SetDefault(ctx, kind, dev); err != nil {
			e.logger.Warn("set default device failed; trying next candidate",
				"kind", string(kind), "device", dev.ID, "error", err.Error())
			continue
		}
		return
	}
	// Nothing applicable: leave the server default untouched.
}

// persistLastUsedLocked records the active profile for startup
// restoration. The System Default is never recorded.
func (e *Engine) persistLastUsedLocked(p profile.Profile) {
	if e.persist == nil || p.IsSystemDefault() {
		return
	}
	state, err := e.persist.LoadState()
	if err != nil {
		state = store.State{}
	}
	state.LastUsedProfileID = p.ID.String()
	if err := e.persist.SaveState(state); err != nil {
		e.logger.Warn("persist last used profile failed", "error", err.Error())
	}
}

// ActivateProfile applies one profile on explicit request (UI, CLI,
// hotkey). Manual activations record the override timestamp.
func (e *Engine) ActivateProfile(ctx context.Context, id uuid.UUID, manual bool) error {
	p, ok := e.profiles.Get(id)
	if !ok {
		return profile.ErrNotFound
	}

	e.refreshSnapshot(ctx)

	e.mu.Lock()
	changed := e.activeID != p.ID
	e.applyLocked(ctx, p, p.PreferredMode)
	e.mu.Unlock()

	if manual {
		e.override.RecordManual()
	}
	if changed {
		e.notifier.Notify(ctx, notify.Event{Kind: notify.KindManualSwitch, ProfileName: p.Name})
	}
	e.logger.Info("profile activated", "profile", p.Name, "manual", manual, "kind", "manual_switch")
	e.broadcast()
	return nil
}

// refreshSnapshot updates history and the evaluated ID set outside the
// trigger path, so explicit activations see current devices.
func (e *Engine) refreshSnapshot(ctx context.Context) {
	devices, err := e.enumerator.ListCurrentDevices(ctx)
	if err != nil {
		e.logger.Warn("device enumeration failed; applying against remembered devices", "error", err.Error())
		return
	}
	e.mu.Lock()
	e.history.Update(devices)
	e.lastEvalIDs = device.IDs(devices)
	e.haveEvaluated = true
	e.mu.Unlock()
	e.saveHistory()
}

// ToggleMode flips Public/Private and re-applies the active profile's
// priority lists for the new mode.
func (e *Engine) ToggleMode(ctx context.Context) {
	e.refreshSnapshot(ctx)

	e.mu.Lock()
	next := profile.ModePrivate
	if e.mode == profile.ModePrivate {
		next = profile.ModePublic
	}
	if p, ok := e.profiles.Get(e.activeID); ok {
		e.applyLocked(ctx, p, next)
	} else {
		e.mode = next
	}
	e.mu.Unlock()

	e.logger.Info("mode toggled", "mode", string(next))
	e.broadcast()
}

// Upsert validates and stores a profile, persists the collection,
// refreshes hotkey bindings, and forces a re-evaluation.
func (e *Engine) Upsert(ctx context.Context, p profile.Profile) error {
	if err := e.profiles.Upsert(p); err != nil {
		return err
	}
	e.saveProfiles()
	e.registerHotkeys(ctx)
	e.TriggerAutoDetection(ctx)
	return nil
}

// Remove deletes a profile and cascades hotkey unregistration. An active
// profile falls back on the next evaluation.
func (e *Engine) Remove(ctx context.Context, id uuid.UUID) error {
	removed, err := e.profiles.Remove(id)
	if err != nil {
		return err
	}
	e.saveProfiles()
	e.registerHotkeys(ctx)

	e.mu.Lock()
	wasActive := e.activeID == removed.ID
	if wasActive {
		e.activeID = uuid.Nil
	}
	e.mu.Unlock()
	if wasActive {
		e.TriggerAutoDetection(ctx)
	}
	e.broadcast()
	return nil
}

// ReplaceProfiles swaps in a freshly loaded collection, rebinds hotkeys,
// and forces a re-evaluation. Serves the reload command.
func (e *Engine) ReplaceProfiles(ctx context.Context, profiles []profile.Profile) {
	if e.profiles.Load(profiles) {
		e.saveProfiles()
	}
	e.registerHotkeys(ctx)
	e.TriggerAutoDetection(ctx)
}

// Move reorders the profile collection (and with it, match tie-breaks).
func (e *Engine) Move(from, to int) error {
	if err := e.profiles.Move(from, to); err != nil {
		return err
	}
	e.saveProfiles()
	return nil
}

// RemoveHistoryDevice forgets a device and strips its ID from every
// profile's device lists.
func (e *Engine) RemoveHistoryDevice(id string) bool {
	removed := e.history.Remove(id)
	if !removed {
		return false
	}
	if e.profiles.StripDevice(id) {
		e.saveProfiles()
	}
	e.saveHistory()
	return true
}

// DisableFor suspends automatic switching for a fixed duration.
func (e *Engine) DisableFor(d time.Duration) {
	e.override.Clear()
	e.suspension.DisableFor(d)
}

// DisableUntilEndOfDay suspends automatic switching until local midnight.
func (e *Engine) DisableUntilEndOfDay() {
	e.override.Clear()
	e.suspension.DisableUntilEndOfDay()
}

// DisableForever suspends automatic switching indefinitely.
func (e *Engine) DisableForever() {
	e.override.Clear()
	e.suspension.DisableForever()
}

// EnableAutoSwitching resumes automatic switching; the suspension
// controller fires the forced re-evaluation.
func (e *Engine) EnableAutoSwitching() {
	e.suspension.Enable()
}

// Profiles returns the ordered collection.
func (e *Engine) Profiles() []profile.Profile {
	return e.profiles.List()
}

// PreviouslySeen lists remembered devices that are not currently present.
func (e *Engine) PreviouslySeen(ctx context.Context) []device.AudioDevice {
	current, err := e.enumerator.ListCurrentDevices(ctx)
	if err != nil {
		e.logger.Warn("device enumeration failed; listing full history", "error", err.Error())
		current = nil
	}
	return e.history.PreviouslySeen(current)
}

// Snapshot returns the current activation state view.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	state, until, remaining := e.suspension.Status()
	snap := Snapshot{
		Mode:             e.mode,
		Suspended:        state != suspend.StateEnabled,
		SuspendState:     state,
		SuspendedUntil:   until,
		SuspendRemaining: remaining,
	}
	if e.activeID != uuid.Nil {
		if p, ok := e.profiles.Get(e.activeID); ok {
			snap.ActiveProfileID = p.ID.String()
			snap.ActiveProfileName = p.Name
		}
	}
	return snap
}

// Subscribe registers a state-change listener. Listeners only read.
func (e *Engine) Subscribe(fn func(Snapshot)) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	e.subs = append(e.subs, fn)
}

func (e *Engine) broadcast() {
	e.mu.Lock()
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(snap)
}

func (e *Engine) publish(snap Snapshot) {
	e.subsMu.Lock()
	subs := append(make([]func(Snapshot), 0, len(e.subs)), e.subs...)
	e.subsMu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

// registerHotkeys rebinds all profile hotkeys from scratch.
func (e *Engine) registerHotkeys(ctx context.Context) {
	if err := e.registrar.UnregisterAll(ctx); err != nil {
		e.logger.Warn("hotkey unregistration failed", "error", err.Error())
	}
	for _, p := range e.profiles.List() {
		if p.Hotkey == nil {
			continue
		}
		if err := e.registrar.Register(ctx, *p.Hotkey, p.ID); err != nil {
			e.logger.Warn("hotkey registration failed", "profile", p.Name, "error", err.Error())
		}
	}
}

func (e *Engine) saveProfiles() {
	if e.persist == nil {
		return
	}
	if err := e.persist.SaveProfiles(e.profiles.List()); err != nil {
		e.logger.Warn("persist profiles failed", "error", err.Error())
	}
}

func (e *Engine) saveHistory() {
	if e.persist == nil {
		return
	}
	if err := e.persist.SaveHistory(e.history.Snapshot()); err != nil {
		e.logger.Warn("persist history failed", "error", err.Error())
	}
}

func sameIDSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}
