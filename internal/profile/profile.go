// Package profile defines switching profiles, their invariants, and the
// ordered collection they live in.
package profile

import (
	"errors"

	"github.com/google/uuid"
)

// SystemDefaultName is the reserved name of the always-present fallback
// profile pinned to the head of the collection.
const SystemDefaultName = "System Default"

// Mode selects which of a profile's two priority-list pairs applies.
type Mode string

const (
	ModePublic  Mode = "public"
	ModePrivate Mode = "private"
)

var (
	ErrEmptyName              = errors.New("profile name must not be empty")
	ErrDuplicateName          = errors.New("profile name already in use")
	ErrNotFound               = errors.New("profile not found")
	ErrSystemDefaultImmutable = errors.New("the System Default profile cannot be removed or moved")
	ErrInvalidHotkey          = errors.New("hotkey requires a non-zero key code and at least one modifier")
	ErrHotkeyConflict         = errors.New("hotkey already bound to another profile")
)

// Hotkey is a global key binding. Identity is the full (key, modifiers) pair.
type Hotkey struct {
	KeyCode   uint32 `json:"key_code"`
	Modifiers uint32 `json:"modifiers"`
}

// Valid requires a non-zero key code and at least one modifier.
func (h Hotkey) Valid() bool {
	return h.KeyCode != 0 && h.Modifiers != 0
}

// ConflictsWith reports whether both key code and modifiers match.
func (h Hotkey) ConflictsWith(other Hotkey) bool {
	return h.KeyCode == other.KeyCode && h.Modifiers == other.Modifiers
}

// Profile binds trigger devices to prioritized output/input device lists.
// Device ID lists may reference disconnected devices (soft references);
// only fully-unknown IDs are ever cleaned out.
type Profile struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Icon             string    `json:"icon"`
	TriggerDeviceIDs []string  `json:"trigger_device_ids"`
	PublicOutputs    []string  `json:"public_output_priority"`
	PublicInputs     []string  `json:"public_input_priority"`
	PrivateOutputs   []string  `json:"private_output_priority"`
	PrivateInputs    []string  `json:"private_input_priority"`
	Hotkey           *Hotkey   `json:"hotkey,omitempty"`
	PreferredMode    Mode      `json:"preferred_mode"`
}

// New returns a profile with factory defaults and a fresh identity.
func New(name string) Profile {
	return Profile{
		ID:            uuid.New(),
		Name:          name,
		Icon:          "audio-card",
		PreferredMode: ModePublic,
	}
}

// NewSystemDefault synthesizes the fallback profile with empty lists.
func NewSystemDefault() Profile {
	p := New(SystemDefaultName)
	p.Icon = "audio-speakers"
	return p
}

// IsSystemDefault reports whether this is the reserved fallback profile.
func (p Profile) IsSystemDefault() bool {
	return p.Name == SystemDefaultName
}

// OutputPriority returns the output list for the given mode.
func (p Profile) OutputPriority(mode Mode) []string {
	if mode == ModePrivate {
		return p.PrivateOutputs
	}
	return p.PublicOutputs
}

// InputPriority returns the input list for the given mode.
func (p Profile) InputPriority(mode Mode) []string {
	if mode == ModePrivate {
		return p.PrivateInputs
	}
	return p.PublicInputs
}

// deviceLists exposes the five device-ID lists for in-place cleanup.
func (p *Profile) deviceLists() []*[]string {
	return []*[]string{
		&p.TriggerDeviceIDs,
		&p.PublicOutputs,
		&p.PublicInputs,
		&p.PrivateOutputs,
		&p.PrivateInputs,
	}
}

// Validate checks intrinsic profile invariants.
func Validate(p Profile) error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.Hotkey != nil && !p.Hotkey.Valid() {
		return ErrInvalidHotkey
	}
	return nil
}
