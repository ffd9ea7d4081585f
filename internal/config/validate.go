package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if cfg.Engine.DebounceMS <= 0 {
		return nil, fmt.Errorf("engine.debounce_ms must be > 0")
	}
	if cfg.Engine.DebounceMS > 10_000 {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("engine.debounce_ms=%d delays profile switches by more than 10s", cfg.Engine.DebounceMS),
		})
	}

	if cfg.Notifications.TimeoutMS < 0 {
		return nil, fmt.Errorf("notifications.timeout_ms must be >= 0")
	}
	if cfg.Notifications.Enable {
		if cfg.Notifications.Command.Raw != "" && len(cfg.Notifications.Command.Argv) == 0 {
			return nil, fmt.Errorf("notifications.command is configured but empty")
		}
		if len(cfg.Notifications.Command.Argv) == 0 && strings.TrimSpace(cfg.Notifications.AppName) == "" {
			return nil, fmt.Errorf("notifications.app_name must not be empty when notifications.enable=true")
		}
	}

	if cfg.Hotkeys.Enable && strings.TrimSpace(cfg.Hotkeys.Binary) == "" {
		return nil, fmt.Errorf("hotkeys.binary must not be empty when hotkeys.enable=true")
	}

	return warnings, nil
}
