package config

import (
	"strings"
	"testing"
)

func TestLoad_NonexistentFile(t *testing.T) {
	if _, err := Load("/definitely/not/a/real/pixelforge-12345.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
}

func TestLoad_Malformed(t *testing.T) {
	d := t.TempDir()
	for name, content := range map[string]string{
		"bad.yaml": "addr: :8080\n: broken\n",
		"bad.json": `{ "addr": ":8080", "data_dir": }`,
		"bad.toml": "addr=:8080\ndata_dir\n",
		// wrong type for a numeric tile setting
		"tile.yaml": "tile_size: large\n",
	} {
		if _, err := Load(writeTempFile(t, d, name, content)); err == nil {
			t.Fatalf("%s: expected unmarshal error", name)
		}
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	p := writeTempFile(t, t.TempDir(), "cfg.ini", "addr=:1\n")
	_, err := Load(p)
	if err == nil || !strings.Contains(err.Error(), ".ini") {
		t.Fatalf("expected unsupported extension error, got %v", err)
	}
}

// Model overrides from YAML keep only the fields that were given, so a
// pinned mirror does not wipe the built-in hash.
func TestLoad_YAMLModelOverrides(t *testing.T) {
	p := writeTempFile(t, t.TempDir(), "cfg.yaml", `
tile_size: 96
tile_overlap: 200
models:
  - id: u2net
    url: http://mirror.local/u2net.onnx
  - id: style-candy
    sha256: 00ff
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Models) != 2 {
		t.Fatalf("models: %+v", cfg.Models)
	}
	if m := cfg.Models[0]; m.ID != "u2net" || m.URL != "http://mirror.local/u2net.onnx" || m.SHA256 != "" {
		t.Fatalf("u2net override: %+v", m)
	}
	if m := cfg.Models[1]; m.ID != "style-candy" || m.SHA256 != "00ff" || m.URL != "" {
		t.Fatalf("style override: %+v", m)
	}
	cfg.ApplyDefaults()
	if cfg.TileSize != 96 || cfg.TileOverlap != DefaultTileOverlap {
		t.Fatalf("tile %d overlap %d", cfg.TileSize, cfg.TileOverlap)
	}
}
