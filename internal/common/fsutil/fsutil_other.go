//go:build !linux && !darwin && !windows

package fsutil

import (
	"os"
	"path/filepath"
)

func defaultDataDir(appName string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "."+appName), nil
}
