package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/omarchist/omarchist/internal/infrastructure/system"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// globalOptions holds persistent flag state shared by every subcommand.
type globalOptions struct {
	cfgFile string
	verbose bool
	viper   *viper.Viper
}

// Execute runs the root command.
func Execute() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", userMessage(err))
		os.Exit(1)
	}
}

// newRootCmd builds the application entry point.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{viper: viper.New()}

	cmd := &cobra.Command{
		Use:   "omarchist",
		Short: "Settings and Waybar profile manager for Omarchy",
		Long: `omarchist keeps named Waybar profiles (layout, modules, bar options and
CSS) and the application's own settings. Exactly one profile is active; every
change to it is mirrored into the live Waybar configuration directory.`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd.ErrOrStderr(), opts.verbose)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/omarchist/config.yaml)")
	pf.String("data-dir", "", "directory holding settings and profiles (default is $XDG_DATA_HOME/omarchist)")
	pf.String("waybar-dir", "", "live Waybar config directory (default is $XDG_CONFIG_HOME/waybar)")
	pf.StringP("output", "o", "", "output format: table, json, yaml, toml")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	for key, flag := range map[string]string{
		"config":     "config",
		"data_dir":   "data-dir",
		"waybar_dir": "waybar-dir",
		"output":     "output",
	} {
		_ = opts.viper.BindPFlag(key, pf.Lookup(flag))
	}
	opts.viper.SetEnvPrefix("OMARCHIST")
	opts.viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	opts.viper.AutomaticEnv()

	cmd.AddCommand(
		newSettingsCmd(opts),
		newWaybarCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}

// loadConfig reads the config file and applies flag and OMARCHIST_* overrides.
func (o *globalOptions) loadConfig() (*system.Config, error) {
	path := o.viper.GetString("config")
	if path == "" {
		var err error
		path, err = system.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := system.NewConfigLoader().Load(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("using config file", "file", path)

	cfg.ApplyOverrides(system.Overrides{
		DataDir:   o.viper.GetString("data_dir"),
		WaybarDir: o.viper.GetString("waybar_dir"),
		Output:    o.viper.GetString("output"),
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	// Using TextHandler for CLI friendliness
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
