//go:build windows

package fsutil

import (
	"os"
	"path/filepath"
)

// defaultDataDir returns %APPDATA%\<appName>.
func defaultDataDir(appName string) (string, error) {
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "AppData", "Roaming", appName), nil
}
