package hotkey

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Zakay/AudioProfiles/internal/profile"
)

// HyprctlRegistrar installs Hyprland binds that exec the CLI back into
// the running daemon (`audioprofiles activate <id>`).
type HyprctlRegistrar struct {
	// Binary is the executable the bind runs. Defaults to "audioprofiles".
	Binary string
	Logger *slog.Logger

	mu    sync.Mutex
	bound []string // "MODS,KEY" specs currently registered
}

// Register installs one bind. Hotkeys whose key code has no Hyprland
// name are skipped with a warning rather than failing the profile save.
func (r *HyprctlRegistrar) Register(ctx context.Context, hk profile.Hotkey, profileID uuid.UUID) error {
	keyName, ok := keyName(hk.KeyCode)
	if !ok {
		if r.Logger != nil {
			r.Logger.Warn("hotkey key code has no Hyprland mapping; skipping bind",
				"key_code", hk.KeyCode, "profile_id", profileID.String())
		}
		return nil
	}

	binary := r.Binary
	if binary == "" {
		binary = "audioprofiles"
	}

	spec := modifierNames(hk.Modifiers) + "," + keyName
	command := fmt.Sprintf("%s activate %s", binary, profileID.String())
	if err := runHyprctl(ctx, "keyword", "bind", spec+",exec,"+command); err != nil {
		return err
	}

	r.mu.Lock()
	r.bound = append(r.bound, spec)
	r.mu.Unlock()
	return nil
}

// UnregisterAll removes every bind this registrar installed.
func (r *HyprctlRegistrar) UnregisterAll(ctx context.Context) error {
	r.mu.Lock()
	bound := r.bound
	r.bound = nil
	r.mu.Unlock()

	var firstErr error
	for _, spec := range bound {
		if err := runHyprctl(ctx, "keyword", "unbind", spec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// runHyprctl executes one hyprctl invocation, folding output into the error.
func runHyprctl(ctx context.Context, args ...string) error {
	out, err := exec.CommandContext(ctx, "hyprctl", args...).CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(out))
		if trimmed == "" {
			return fmt.Errorf("hyprctl %v failed: %w", args, err)
		}
		return fmt.Errorf("hyprctl %v failed: %w (%s)", args, err, trimmed)
	}
	return nil
}

// modifierNames renders a modifier bitmask as a Hyprland mod list.
func modifierNames(mask uint32) string {
	var parts []string
	if mask&ModSuper != 0 {
		parts = append(parts, "SUPER")
	}
	if mask&ModCtrl != 0 {
		parts = append(parts, "CTRL")
	}
	if mask&ModAlt != 0 {
		parts = append(parts, "ALT")
	}
	if mask&ModShift != 0 {
		parts = append(parts, "SHIFT")
	}
	return strings.Join(parts, " ")
}

// evdevKeyNames maps common evdev key codes to Hyprland key names.
var evdevKeyNames = map[uint32]string{
	2: "1", 3: "2", 4: "3", 5: "4", 6: "5",
	7: "6", 8: "7", 9: "8", 10: "9", 11: "0",
	16: "Q", 17: "W", 18: "E", 19: "R", 20: "T",
	21: "Y", 22: "U", 23: "I", 24: "O", 25: "P",
	30: "A", 31: "S", 32: "D", 33: "F", 34: "G",
	35: "H", 36: "J", 37: "K", 38: "L",
	44: "Z", 45: "X", 46: "C", 47: "V", 48: "B",
	49: "N", 50: "M",
	57: "SPACE",
	59: "F1", 60: "F2", 61: "F3", 62: "F4", 63: "F5",
	64: "F6", 65: "F7", 66: "F8", 67: "F9", 68: "F10",
	87: "F11", 88: "F12",
}

func keyName(code uint32) (string, bool) {
	name, ok := evdevKeyNames[code]
	return name, ok
}
