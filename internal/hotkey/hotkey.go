// Package hotkey registers global profile-activation key bindings.
// The core only depends on the Registrar capability; the Hyprland
// backend is a best-effort implementation of it.
package hotkey

import (
	"context"

	"github.com/google/uuid"

	"github.com/Zakay/AudioProfiles/internal/profile"
)

// Modifier bits of profile.Hotkey.Modifiers.
const (
	ModShift uint32 = 1 << 0
	ModCtrl  uint32 = 1 << 1
	ModAlt   uint32 = 1 << 2
	ModSuper uint32 = 1 << 3
)

// Registrar binds hotkeys to profile activations.
type Registrar interface {
	Register(ctx context.Context, hk profile.Hotkey, profileID uuid.UUID) error
	UnregisterAll(ctx context.Context) error
}

// Noop ignores all registrations. Used when hotkeys are disabled.
type Noop struct{}

func (Noop) Register(context.Context, profile.Hotkey, uuid.UUID) error { return nil }
func (Noop) UnregisterAll(context.Context) error                       { return nil }
