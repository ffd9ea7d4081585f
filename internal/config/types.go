// Package config resolves, parses, validates, and defaults audioprofiles
// configuration.
package config

// Config is the fully materialized runtime configuration used by the daemon.
type Config struct {
	Engine        EngineConfig
	Notifications NotificationsConfig
	Hotkeys       HotkeysConfig
}

// EngineConfig tunes the trigger-detection orchestrator.
type EngineConfig struct {
	// DebounceMS coalesces device-change bursts before evaluation.
	DebounceMS int
}

// NotificationsConfig controls desktop notifications for profile switches.
type NotificationsConfig struct {
	Enable    bool
	AppName   string
	TimeoutMS int
	// Command overrides the built-in DBus notifier with a user command;
	// the rendered notification text is appended as the final argument.
	Command CommandConfig
}

// HotkeysConfig controls global profile-activation key bindings.
type HotkeysConfig struct {
	Enable bool
	// Binary is the executable compositor binds invoke. Defaults to the
	// installed CLI name.
	Binary string
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
