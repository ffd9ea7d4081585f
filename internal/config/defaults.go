package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			DebounceMS: 500,
		},
		Notifications: NotificationsConfig{
			Enable:    true,
			AppName:   "audioprofiles",
			TimeoutMS: 4000,
		},
		Hotkeys: HotkeysConfig{
			Enable: true,
			Binary: "audioprofiles",
		},
	}
}
