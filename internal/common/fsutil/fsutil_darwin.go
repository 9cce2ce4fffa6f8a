//go:build darwin

package fsutil

import (
	"os"
	"path/filepath"
)

// defaultDataDir returns ~/Library/Application Support/<appName>.
func defaultDataDir(appName string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "Application Support", appName), nil
}
