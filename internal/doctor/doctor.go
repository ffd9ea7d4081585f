// Package doctor runs runtime readiness diagnostics for config, tools,
// audio, and state storage.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Zakay/AudioProfiles/internal/config"
	"github.com/Zakay/AudioProfiles/internal/device"
	"github.com/Zakay/AudioProfiles/internal/store"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	checks = append(checks, checkPulse())
	checks = append(checks, checkBinary("pactl", "device control and monitoring"))

	if cfg.Config.Notifications.Enable {
		if len(cfg.Config.Notifications.Command.Argv) > 0 {
			checks = append(checks, checkCommand(cfg.Config.Notifications.Command.Argv, "notifications.command"))
		} else {
			checks = append(checks, checkBinary("busctl", "desktop notifications"))
		}
	}

	if cfg.Config.Hotkeys.Enable {
		checks = append(checks, checkBinary("hyprctl", "global hotkey binds"))
	}

	checks = append(checks, checkStateDir())

	return Report{Checks: checks}
}

// checkPulse connects to the sound server and enumerates devices.
func checkPulse() Check {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	enum := device.PulseEnumerator{AppName: "audioprofiles-doctor"}
	devices, err := enum.ListCurrentDevices(ctx)
	if err != nil {
		return Check{Name: "pulse", Pass: false, Message: err.Error()}
	}
	return Check{Name: "pulse", Pass: true, Message: fmt.Sprintf("%d devices visible", len(devices))}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkStateDir verifies the persistence directory is writable.
func checkStateDir() Check {
	dir, err := store.ResolveDir()
	if err != nil {
		return Check{Name: "state.dir", Pass: false, Message: err.Error()}
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Check{Name: "state.dir", Pass: false, Message: fmt.Sprintf("create %s: %v", dir, err)}
	}

	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return Check{Name: "state.dir", Pass: false, Message: fmt.Sprintf("write %s: %v", dir, err)}
	}
	_ = os.Remove(probe)

	return Check{Name: "state.dir", Pass: true, Message: fmt.Sprintf("writable at %s", dir)}
}
