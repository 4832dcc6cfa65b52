package main

import (
	"os"

	"github.com/ritzau/mindmap-layout/pkg/config"
	"github.com/ritzau/mindmap-layout/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "mindmap",
		Short:        "Mind map layout service",
		Long:         `Mind map layout service: a force-directed layout engine for mind maps, served over HTTP or run headless over an outline.`,
		SilenceUsage: true,
	}

	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newServeCommand())
	root.AddCommand(newLayoutCommand())
	return root
}

// loadConfig loads the layered configuration and sets up logging from it.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Verbosity, cfg.Log.Verbose)
	if err != nil {
		return nil, err
	}
	logging.Configure(os.Stderr, level, cfg.Log.JSON)

	if cfg.File != "" {
		logging.Debug("config loaded", "file", cfg.File)
	}
	return cfg, nil
}
