package profile

import (
	"sync"

	"github.com/google/uuid"
)

// Store is the ordered profile collection. Index 0 is always the System
// Default profile; collection order is the documented tie-break for
// trigger matching, so callers control it through Move.
type Store struct {
	mu       sync.Mutex
	profiles []Profile
}

// NewStore returns a store holding only a synthesized System Default.
func NewStore() *Store {
	return &Store{profiles: []Profile{NewSystemDefault()}}
}

// Load replaces the collection with persisted profiles, synthesizing and
// front-loading a System Default when missing. It reports whether the
// collection was altered and should be re-persisted.
func (s *Store) Load(profiles []Profile) (altered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles = append([]Profile(nil), profiles...)

	defaultIdx := -1
	for i, p := range s.profiles {
		if p.IsSystemDefault() {
			defaultIdx = i
			break
		}
	}

	switch {
	case defaultIdx < 0:
		s.profiles = append([]Profile{NewSystemDefault()}, s.profiles...)
		return true
	case defaultIdx > 0:
		def := s.profiles[defaultIdx]
		s.profiles = append(s.profiles[:defaultIdx], s.profiles[defaultIdx+1:]...)
		s.profiles = append([]Profile{def}, s.profiles...)
		return true
	}
	return false
}

// List returns the ordered collection as a copy.
func (s *Store) List() []Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Profile(nil), s.profiles...)
}

// Get resolves a profile by ID.
func (s *Store) Get(id uuid.UUID) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}

// GetByName resolves a profile by its exact name.
func (s *Store) GetByName(name string) (Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// SystemDefault returns the fallback profile when present.
func (s *Store) SystemDefault() (Profile, bool) {
	return s.GetByName(SystemDefaultName)
}

// Upsert inserts or replaces one profile after invariant checks:
// non-empty unique name, valid non-conflicting hotkey, and the System
// Default name stays reserved for the pinned head profile.
func (s *Store) Upsert(p Profile) error {
	if err := Validate(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existingIdx := -1
	for i, existing := range s.profiles {
		if existing.ID == p.ID {
			existingIdx = i
			continue
		}
		if existing.Name == p.Name {
			return ErrDuplicateName
		}
		if p.Hotkey != nil && existing.Hotkey != nil && p.Hotkey.ConflictsWith(*existing.Hotkey) {
			return ErrHotkeyConflict
		}
	}

	if existingIdx >= 0 {
		if s.profiles[existingIdx].IsSystemDefault() && !p.IsSystemDefault() {
			return ErrSystemDefaultImmutable
		}
		s.profiles[existingIdx] = p
		return nil
	}

	s.profiles = append(s.profiles, p)
	return nil
}

// Remove deletes a profile by ID. The System Default is not removable.
func (s *Store) Remove(id uuid.UUID) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.profiles {
		if p.ID != id {
			continue
		}
		if p.IsSystemDefault() {
			return Profile{}, ErrSystemDefaultImmutable
		}
		s.profiles = append(s.profiles[:i], s.profiles[i+1:]...)
		return p, nil
	}
	return Profile{}, ErrNotFound
}

// Move relocates a profile within the collection order. The System
// Default cannot move, and nothing may take index 0 while it exists.
func (s *Store) Move(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if from < 0 || from >= len(s.profiles) || to < 0 || to >= len(s.profiles) {
		return ErrNotFound
	}
	if s.profiles[from].IsSystemDefault() {
		return ErrSystemDefaultImmutable
	}
	if to == 0 {
		for _, p := range s.profiles {
			if p.IsSystemDefault() {
				return ErrSystemDefaultImmutable
			}
		}
	}
	if from == to {
		return nil
	}

	moved := s.profiles[from]
	rest := append(s.profiles[:from], s.profiles[from+1:]...)
	s.profiles = append(rest[:to], append([]Profile{moved}, rest[to:]...)...)
	return nil
}

// CleanupInvalidDevices strips device IDs that the caller no longer
// recognizes (neither connected nor remembered) from every profile's
// five device lists. Soft references stay. Reports whether anything changed.
func (s *Store) CleanupInvalidDevices(known func(id string) bool) (altered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.profiles {
		for _, list := range s.profiles[i].deviceLists() {
			kept := (*list)[:0]
			for _, id := range *list {
				if known(id) {
					kept = append(kept, id)
				} else {
					altered = true
				}
			}
			*list = kept
		}
	}
	return altered
}

// StripDevice removes one device ID from every profile list. Cascade
// target for explicit history removal.
func (s *Store) StripDevice(id string) (altered bool) {
	return s.CleanupInvalidDevices(func(candidate string) bool {
		return candidate != id
	})
}

// Len reports the number of profiles.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.profiles)
}
