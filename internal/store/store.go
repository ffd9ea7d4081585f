// Package store persists profiles, device history, and scalar daemon
// state as JSON files in the XDG state directory.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Zakay/AudioProfiles/internal/history"
	"github.com/Zakay/AudioProfiles/internal/profile"
)

// schemaVersion marks the current on-disk layout. Older files without a
// version field decode as version 0 and are normalized on load.
const schemaVersion = 1

const (
	profilesFileName = "profiles.json"
	historyFileName  = "history.json"
	stateFileName    = "state.json"
)

// State holds the scalar persisted values.
type State struct {
	LastUsedProfileID string `json:"last_used_profile_id,omitempty"`
	OnboardingShown   bool   `json:"onboarding_shown"`
}

type profilesFile struct {
	Version  int               `json:"version"`
	Profiles []profile.Profile `json:"profiles"`
}

type historyFile struct {
	Version int                      `json:"version"`
	Entries map[string]history.Entry `json:"entries"`
}

type stateFile struct {
	Version int `json:"version"`
	State
}

// Store reads and writes the three state files under one directory.
type Store struct {
	Dir string
}

// ResolveDir selects XDG_STATE_HOME when available, otherwise ~/.local/state.
func ResolveDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return filepath.Join(xdg, "audioprofiles"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for state directory")
	}
	return filepath.Join(home, ".local", "state", "audioprofiles"), nil
}

// LoadProfiles reads the persisted profile list. Decode failures yield an
// empty collection and the error; the caller logs and self-heals.
func (s Store) LoadProfiles() ([]profile.Profile, error) {
	var file profilesFile
	if err := s.read(profilesFileName, &file); err != nil {
		return nil, err
	}

	profiles := make([]profile.Profile, 0, len(file.Profiles))
	for _, p := range file.Profiles {
		profiles = append(profiles, normalizeProfile(p))
	}
	return profiles, nil
}

// SaveProfiles writes the ordered profile collection.
func (s Store) SaveProfiles(profiles []profile.Profile) error {
	return s.write(profilesFileName, profilesFile{Version: schemaVersion, Profiles: profiles})
}

// LoadHistory reads the persisted device history map.
func (s Store) LoadHistory() (map[string]history.Entry, error) {
	var file historyFile
	if err := s.read(historyFileName, &file); err != nil {
		return nil, err
	}
	if file.Entries == nil {
		file.Entries = map[string]history.Entry{}
	}
	return file.Entries, nil
}

// SaveHistory writes the device history map.
func (s Store) SaveHistory(entries map[string]history.Entry) error {
	return s.write(historyFileName, historyFile{Version: schemaVersion, Entries: entries})
}

// LoadState reads the scalar daemon state.
func (s Store) LoadState() (State, error) {
	var file stateFile
	if err := s.read(stateFileName, &file); err != nil {
		return State{}, err
	}
	return file.State, nil
}

// SaveState writes the scalar daemon state.
func (s Store) SaveState(state State) error {
	return s.write(stateFileName, stateFile{Version: schemaVersion, State: state})
}

// read decodes one state file. A missing file is not an error; it decodes
// as the zero value.
func (s Store) read(name string, into any) error {
	content, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(content, into); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// write marshals and atomically replaces one state file, so a failed
// save leaves the prior persisted state untouched.
func (s Store) write(name string, value any) error {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("ensure state dir: %w", err)
	}

	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	path := filepath.Join(s.Dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(encoded, '\n'), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// normalizeProfile fills defaults for fields older files may lack.
func normalizeProfile(p profile.Profile) profile.Profile {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.PreferredMode != profile.ModePublic && p.PreferredMode != profile.ModePrivate {
		p.PreferredMode = profile.ModePublic
	}
	if p.Icon == "" {
		p.Icon = "audio-card"
	}
	if p.Hotkey != nil && !p.Hotkey.Valid() {
		p.Hotkey = nil
	}
	return p
}
