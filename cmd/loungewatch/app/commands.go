// Package app wires the loungewatch components into cobra commands.
package app

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/loungewatch/loungewatch/internal/config"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	level      *slog.LevelVar
}

// NewRootCmd creates the loungewatch command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{level: new(slog.LevelVar)}

	root := &cobra.Command{
		Use:           "loungewatch",
		Short:         "Live venue occupancy aggregator",
		Long:          `loungewatch polls venue occupancy feeds, ranks venues by guests present and serves the latest snapshot over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// serve logs to stdout like any service; one-shot commands keep
			// stdout for their own output.
			var w io.Writer = os.Stdout
			if cmd.Name() != "serve" {
				w = cmd.ErrOrStderr()
			}
			slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts.level})))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (built-in defaults when empty)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override: debug|info|warn|error")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newOnceCmd(opts))
	root.AddCommand(newDebugCmd(opts))

	return root
}

// loadConfig reads the config file, or the defaults when none was given,
// and applies the effective log level.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath == "" {
		cfg = config.Default()
	} else if cfg, err = config.Load(o.configPath); err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := o.applyLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *rootOptions) applyLevel(s string) error {
	lvl, err := config.ParseLevel(s)
	if err != nil {
		return err
	}
	o.level.Set(lvl)
	return nil
}
