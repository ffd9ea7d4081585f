package config

import (
	"errors"
	"fmt"
	"os"
)

// Loaded is the result of resolving and parsing the config file. The
// daemon keeps running on warnings; only an unreadable or malformed
// file is fatal.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load reads the JSONC config at explicitPath (or the default XDG
// location) and overlays it on built-in defaults. A missing file is not
// an error: defaults apply and a warning notes the absence.
func Load(explicitPath string) (Loaded, error) {
	path, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	loaded := Loaded{Path: path, Config: Default()}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		loaded.Warnings = append(loaded.Warnings, Warning{
			Message: fmt.Sprintf("config file %q not found; using defaults", path),
		})
		return loaded, nil
	case err != nil:
		return Loaded{}, fmt.Errorf("read config %q: %w", path, err)
	}

	cfg, warnings, err := Parse(string(content), loaded.Config)
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", path, err)
	}

	loaded.Config = cfg
	loaded.Warnings = warnings
	loaded.Exists = true
	return loaded, nil
}
