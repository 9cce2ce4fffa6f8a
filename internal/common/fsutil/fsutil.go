package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	// handle cases like ~/pixelforge/models
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// PathExists checks if the given path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// DataDirEnv overrides the application data directory when set.
const DataDirEnv = "PIXELFORGE_DATA_DIR"

// AppDataDir returns the per-user application data directory for appName.
// Priority: PIXELFORGE_DATA_DIR > platform default.
func AppDataDir(appName string) (string, error) {
	if v := os.Getenv(DataDirEnv); v != "" {
		return ExpandHome(v)
	}
	return defaultDataDir(appName)
}
