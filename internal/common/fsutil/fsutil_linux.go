//go:build linux

package fsutil

import (
	"os"
	"path/filepath"
)

// defaultDataDir uses $XDG_DATA_HOME/<appName> if set,
// otherwise ~/.local/share/<appName>.
func defaultDataDir(appName string) (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}
