// Package history tracks every audio device ever observed, with
// last-seen timestamps, presence flags, and bounded retention.
package history

import (
	"sort"
	"sync"
	"time"

	"github.com/Zakay/AudioProfiles/internal/device"
)

// RetentionWindow bounds how long a disconnected device is remembered,
// measured from its last sighting.
const RetentionWindow = 30 * 24 * time.Hour

// Entry is one remembered device keyed by its hardware-persistent ID.
// LastSeen refreshes on every sighting; LastConnected only moves when
// the device transitions from absent to present, so it marks the moment
// of the most recent (re)connection.
type Entry struct {
	Device        device.AudioDevice `json:"device"`
	LastSeen      time.Time          `json:"last_seen"`
	LastConnected time.Time          `json:"last_connected"`
	Active        bool               `json:"is_currently_active"`
}

// Store is the device history. All methods are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	entries map[string]Entry
	now     func() time.Time
}

// NewStore returns an empty history on the wall clock.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Load replaces the history with persisted entries, then prunes expired ones.
// Files written before connection tracking lack LastConnected; the last
// sighting is the best available stand-in.
func (s *Store) Load(entries map[string]Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry, len(entries))
	for id, e := range entries {
		if e.LastConnected.IsZero() {
			e.LastConnected = e.LastSeen
		}
		s.entries[id] = e
	}
	s.pruneLocked()
}

// Snapshot returns a copy of all entries for persistence.
func (s *Store) Snapshot() map[string]Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Entry, len(s.entries))
	for id, e := range s.entries {
		out[id] = e
	}
	return out
}

// Update reconciles the history against one full device snapshot.
//
// Two phases, both under one lock: first every existing entry has its
// presence flag recomputed (refreshing LastSeen for present devices, and
// LastConnected for those returning from absence), then unknown present
// devices are inserted and known present devices get their stored
// metadata overwritten. A device that disappears and reappears within
// the same batch is therefore never observed inactive.
func (s *Store) Update(current []device.AudioDevice) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	currentIDs := device.IDs(current)

	for id, entry := range s.entries {
		_, present := currentIDs[id]
		if present {
			if !entry.Active {
				entry.LastConnected = now
			}
			entry.LastSeen = now
		}
		entry.Active = present
		s.entries[id] = entry
	}

	for _, dev := range current {
		entry, known := s.entries[dev.ID]
		if !known {
			s.entries[dev.ID] = Entry{Device: dev, LastSeen: now, LastConnected: now, Active: true}
			continue
		}
		// Known and present: capture renamed or reclassified metadata.
		entry.Device = dev
		s.entries[dev.ID] = entry
	}

	s.pruneLocked()
}

// PreviouslySeen returns remembered devices that are not currently
// present, not in the excluding set, and not expired, sorted by name.
func (s *Store) PreviouslySeen(excluding []device.AudioDevice) []device.AudioDevice {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-RetentionWindow)
	excluded := device.IDs(excluding)

	out := make([]device.AudioDevice, 0, len(s.entries))
	for id, entry := range s.entries {
		if entry.Active {
			continue
		}
		if _, skip := excluded[id]; skip {
			continue
		}
		if entry.LastSeen.Before(cutoff) {
			continue
		}
		out = append(out, entry.Device)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get resolves one remembered device by ID.
func (s *Store) Get(id string) (device.AudioDevice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	return entry.Device, ok
}

// Remove forgets one device. The caller cascades profile cleanup.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	return ok
}

// ActiveSeenAfter reports whether any of ids is currently present and
// (re)connected after t. Sightings of an uninterrupted connection do not
// count; only a fresh connection does. Used by the manual-override policy.
func (s *Store) ActiveSeenAfter(ids []string, t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		entry, ok := s.entries[id]
		if ok && entry.Active && entry.LastConnected.After(t) {
			return true
		}
	}
	return false
}

// Prune drops entries whose last sighting fell outside the retention
// window, returning how many were removed.
func (s *Store) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked()
}

func (s *Store) pruneLocked() int {
	cutoff := s.now().Add(-RetentionWindow)
	removed := 0
	for id, entry := range s.entries {
		if !entry.Active && entry.LastSeen.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of remembered devices.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
