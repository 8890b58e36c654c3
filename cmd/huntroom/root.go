package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/caravela-games/huntroom/internal/config"
	"github.com/caravela-games/huntroom/internal/log"
)

const releaseVersion = "0.1.0"

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "huntroom",
		Short:         "Virtual tabletop rooms for monster hunters: relay server and table client.",
		Version:       releaseVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newCreateCmd(opts))
	cmd.AddCommand(newJoinCmd(opts))

	return cmd
}

// setup resolves configuration and builds the logger. The flag level wins
// over the config file.
func (o *rootOptions) setup() (config.Config, *zerolog.Logger, error) {
	bootstrap := log.New("info")
	cfg, _, err := config.Load(bootstrap, o.configPath)
	if err != nil {
		return cfg, bootstrap, err
	}

	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	return cfg, log.New(level), nil
}
