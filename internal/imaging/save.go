package imaging

import (
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"pixelforge/internal/apperr"
)

// OutputPrefix starts every file name written by Saver.
const OutputPrefix = "pixelforge_"

// Saver writes result images as PNG files with unique names.
type Saver struct {
	// Dir defaults to os.TempDir() when empty.
	Dir string
}

// Save encodes img to <Dir>/pixelforge_<uuid>.png and returns the path.
func (s Saver) Save(img image.Image) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperr.Wrap(apperr.KindSaveFailed, err)
	}
	path := filepath.Join(dir, OutputPrefix+uuid.NewString()+".png")
	f, err := os.Create(path)
	if err != nil {
		return "", apperr.Wrap(apperr.KindSaveFailed, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", apperr.Wrap(apperr.KindSaveFailed, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", apperr.Wrap(apperr.KindSaveFailed, err)
	}
	return path, nil
}
