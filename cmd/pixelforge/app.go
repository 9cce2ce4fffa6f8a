package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"pixelforge/internal/common/fsutil"
	"pixelforge/internal/config"
	"pixelforge/internal/events"
	"pixelforge/internal/imaging"
	"pixelforge/internal/pipeline"
	"pixelforge/internal/provision"
	"pixelforge/internal/registry"
	"pixelforge/internal/session"
)

const appName = "pixelforge"

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	envFile    string
	dataDir    string
	outputDir  string
	ortLibrary string
	logLevel   string
	logJSON    bool
}

// loadConfig resolves the effective configuration. Precedence: flags, then
// PIXELFORGE_* env (including .env), then the config file, then defaults.
func loadConfig(o *options) (config.Config, error) {
	var cfg config.Config
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return cfg, err
	}
	if o.configPath != "" {
		c, err := config.Load(o.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = c
	}
	cfg.ApplyEnv()
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.outputDir != "" {
		cfg.OutputDir = o.outputDir
	}
	if o.ortLibrary != "" {
		cfg.OrtLibrary = o.ortLibrary
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logJSON {
		cfg.LogJSON = true
	}
	cfg.ApplyDefaults()

	if cfg.DataDir == "" {
		dir, err := fsutil.AppDataDir(appName)
		if err != nil {
			return cfg, err
		}
		cfg.DataDir = dir
	} else {
		dir, err := fsutil.ExpandHome(cfg.DataDir)
		if err != nil {
			return cfg, err
		}
		cfg.DataDir = dir
	}
	if cfg.OutputDir != "" {
		dir, err := fsutil.ExpandHome(cfg.OutputDir)
		if err != nil {
			return cfg, err
		}
		cfg.OutputDir = dir
	}
	return cfg, nil
}

// newLogger writes human-readable logs to a terminal and JSON otherwise.
func newLogger(cfg config.Config, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if f, ok := w.(*os.File); ok && !cfg.LogJSON && isatty.IsTerminal(f.Fd()) {
		w = zerolog.ConsoleWriter{Out: f, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// app owns the long-lived components behind every command.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	prov     *provision.Provisioner
	sessions *session.Registry
	svc      *pipeline.Service
}

// newApp wires the catalog, provisioner, session registry and service.
// extra publishers (such as the websocket hub) receive every event.
func newApp(cfg config.Config, logger zerolog.Logger, factory session.EngineFactory, extra ...events.Publisher) *app {
	pub := append(events.Multi{events.LogPublisher{Logger: logger}}, extra...)
	reg := registry.Default().WithOverrides(cfg.Models...)
	prov := provision.New(provision.Config{
		Dir:       filepath.Join(cfg.DataDir, "models"),
		Registry:  reg,
		Publisher: pub,
		Logger:    logger,
	})
	if factory == nil {
		factory = session.NewORTFactory(cfg.OrtLibrary, cfg.IntraThreads)
	}
	sessions := session.New(session.Config{
		Resolver:  prov,
		Factory:   factory,
		Publisher: pub,
		Logger:    logger,
	})
	svc := pipeline.New(pipeline.Config{
		Provisioner:  prov,
		Sessions:     sessions,
		Saver:        imaging.Saver{Dir: cfg.OutputDir},
		Publisher:    pub,
		Logger:       logger,
		TileSize:     cfg.TileSize,
		TileOverlap:  cfg.TileOverlap,
		StyleMaxSide: cfg.StyleMaxSide,
	})
	return &app{cfg: cfg, log: logger, prov: prov, sessions: sessions, svc: svc}
}

func (a *app) Close() error {
	return errors.Join(a.sessions.Close(), session.ShutdownRuntime())
}
