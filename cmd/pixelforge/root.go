package main

import (
	"github.com/spf13/cobra"

	"pixelforge/internal/session"
)

// newRootCmd constructs the command tree. factory, when non-nil, replaces
// the onnxruntime engine factory.
func newRootCmd() *cobra.Command { return newRootCmdWith(nil) }

func newRootCmdWith(factory session.EngineFactory) *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           appName,
		Short:         "On-device image models: catalog, downloads and inference",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "Config file (.yaml, .yml, .json, .toml)")
	pf.StringVar(&o.envFile, "env-file", ".env", "dotenv file loaded before reading PIXELFORGE_* variables")
	pf.StringVar(&o.dataDir, "data-dir", "", "Data directory; models live in <data-dir>/models")
	pf.StringVar(&o.outputDir, "output-dir", "", "Directory for result images (default OS temp dir)")
	pf.StringVar(&o.ortLibrary, "ort-library", "", "Path to the onnxruntime shared library")
	pf.StringVar(&o.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	pf.BoolVar(&o.logJSON, "log-json", false, "Force JSON logs even on a terminal")

	// setup loads config and builds the app for a subcommand.
	setup := func(cmd *cobra.Command) (*app, error) {
		cfg, err := loadConfig(o)
		if err != nil {
			return nil, err
		}
		return newApp(cfg, newLogger(cfg, cmd.ErrOrStderr()), factory), nil
	}

	root.AddCommand(newServeCmd(o, factory), newModelsCmd(setup), newRunCmd(setup))
	return root
}
