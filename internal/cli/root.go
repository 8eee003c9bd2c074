// Package cli is the voice-translator command line: the API server plus
// one-shot translation, detection and catalog commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/buildinfo"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/config"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/logging"
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// options are the persistent flags shared by every subcommand.
type options struct {
	profile   string
	configDir string
	envFile   string
	logLevel  string
}

func (o *options) addFlags(fs *pflag.FlagSet) {
	profile := os.Getenv(config.EnvPrefix + "ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	fs.StringVar(&o.profile, "profile", profile, "configuration profile (configs/<profile>.yaml)")
	fs.StringVar(&o.configDir, "config-dir", "configs", "directory holding base.yaml and profile files")
	fs.StringVar(&o.envFile, "env-file", ".env", "dotenv file loaded before environment overrides")
	fs.StringVar(&o.logLevel, "log-level", "", "override log.level (trace, debug, info, warn, error)")
}

// load reads and validates the configuration and builds the logger. The
// logger writes to w so one-shot commands keep stdout for their results.
func (o *options) load(w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadWithOptions(config.Options{
		Profile: o.profile,
		Dir:     o.configDir,
		EnvFile: o.envFile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewWithWriter(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	}, w)
	logging.SetDefault(logger)

	return cfg, logger, nil
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           buildinfo.Command,
		Short:         "Multi-provider translation service",
		Long:          "voice-translator serves the translation API and runs one-shot translations from the terminal.",
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	opts.addFlags(root.PersistentFlags())

	root.AddCommand(
		serveCmd(opts),
		translateCmd(opts),
		detectCmd(opts),
		languagesCmd(),
		providersCmd(opts),
		historyCmd(opts),
		versionCmd(),
	)

	return root
}
