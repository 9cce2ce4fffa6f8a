package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"pixelforge/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultAddr         = "127.0.0.1:8089"
	DefaultIntraThreads = 4
	DefaultTileSize     = 128
	DefaultTileOverlap  = 16
	DefaultStyleMaxSide = 2048
	DefaultLogLevel     = "info"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr         string `json:"addr" yaml:"addr" toml:"addr"`
	DataDir      string `json:"data_dir" yaml:"data_dir" toml:"data_dir"`
	OutputDir    string `json:"output_dir" yaml:"output_dir" toml:"output_dir"`
	OrtLibrary   string `json:"ort_library" yaml:"ort_library" toml:"ort_library"`
	IntraThreads int    `json:"intra_threads" yaml:"intra_threads" toml:"intra_threads"`
	TileSize     int    `json:"tile_size" yaml:"tile_size" toml:"tile_size"`
	TileOverlap  int    `json:"tile_overlap" yaml:"tile_overlap" toml:"tile_overlap"`
	StyleMaxSide int    `json:"style_max_side" yaml:"style_max_side" toml:"style_max_side"`
	LogLevel     string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogJSON      bool   `json:"log_json" yaml:"log_json" toml:"log_json"`

	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`

	// Models overrides catalog entries by id (e.g. to pin a hash or mirror URL).
	Models []types.ModelDescriptor `json:"models" yaml:"models" toml:"models"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields. DataDir and OutputDir are left for the
// caller since they depend on the platform.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.IntraThreads <= 0 {
		c.IntraThreads = DefaultIntraThreads
	}
	if c.TileSize <= 0 {
		c.TileSize = DefaultTileSize
	}
	if c.TileOverlap < 0 || c.TileOverlap >= c.TileSize {
		c.TileOverlap = DefaultTileOverlap
		if c.TileOverlap >= c.TileSize {
			c.TileOverlap = 0
		}
	}
	if c.StyleMaxSide <= 0 {
		c.StyleMaxSide = DefaultStyleMaxSide
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

// ApplyEnv overrides fields from PIXELFORGE_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PIXELFORGE_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("PIXELFORGE_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("PIXELFORGE_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("PIXELFORGE_ORT_LIBRARY"); v != "" {
		c.OrtLibrary = v
	}
	if v := os.Getenv("PIXELFORGE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PIXELFORGE_LOG_JSON"); v != "" {
		c.LogJSON = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("PIXELFORGE_CORS_ORIGINS"); v != "" {
		c.CORSOrigins = SplitCSV(v)
	}
	envInt("PIXELFORGE_INTRA_THREADS", &c.IntraThreads)
	envInt("PIXELFORGE_TILE_SIZE", &c.TileSize)
	envInt("PIXELFORGE_TILE_OVERLAP", &c.TileOverlap)
	envInt("PIXELFORGE_STYLE_MAX_SIDE", &c.StyleMaxSide)
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping empties.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
