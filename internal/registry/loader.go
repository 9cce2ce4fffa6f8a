package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"pixelforge/internal/common/fsutil"
	"pixelforge/pkg/types"
)

// ScanDir returns the catalog entries whose files are present in dir as
// regular files. A missing directory yields an empty result.
func (r *Registry) ScanDir(dir string) ([]types.ModelDescriptor, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			present[e.Name()] = true
		}
	}
	var models []types.ModelDescriptor
	for _, m := range r.models {
		if present[m.Filename] {
			models = append(models, m)
		}
	}
	return models, nil
}
