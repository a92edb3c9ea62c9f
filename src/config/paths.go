package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const appName = "moviefinder"

// DefaultDatabasePath is where the sqlite memory backend lives unless
// configured otherwise. It follows XDG_STATE_HOME.
func DefaultDatabasePath() string {
	return filepath.Join(xdg.StateHome, appName, "conversations.db")
}

// UserConfigCandidates returns the config files checked when no explicit
// path is given, in order.
func UserConfigCandidates() []string {
	dir := filepath.Join(xdg.ConfigHome, appName)
	return []string{
		filepath.Join(dir, "config.json"),
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.yml"),
	}
}
