// File: cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vexlor/droidpilot-cli/internal/config"
	"github.com/vexlor/droidpilot-cli/internal/observability"
)

// NewRootCommand builds a fresh root command tree. A new instance per
// invocation keeps flag state from leaking between executions.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:     "droidpilot",
		Short:   "droidpilot drives an Android device through adb from plain action instructions.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, cfgFile)
			if err != nil {
				// Fall back to a usable logger so the failure itself is visible.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "droidpilot"})
				return err
			}

			observability.InitializeLogger(cfg.Logger())
			observability.GetLogger().Info("Starting droidpilot", zap.String("version", Version))

			cmd.SetContext(withConfig(cmd.Context(), cfg))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./droidpilot.yaml)")
	rootCmd.PersistentFlags().String("serial", "", "device serial passed to adb -s (default: the only attached device)")
	rootCmd.PersistentFlags().Int("width", 0, "device screen width in pixels (overrides device.screen_width)")
	rootCmd.PersistentFlags().Int("height", 0, "device screen height in pixels (overrides device.screen_height)")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "auto-approve sensitive operations instead of prompting")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newExecCmd())
	rootCmd.AddCommand(newRunCmd())

	return rootCmd
}

// Execute runs the root command with the given signal-aware context.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger := observability.GetLogger(); logger != nil {
			logger.Error("Command execution failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return err
	}
	return nil
}

// loadConfig assembles the effective configuration: defaults, then an
// optional config file, then DROIDPILOT_* environment variables, then
// command-line flags. A malformed override fails here rather than being
// silently replaced by a default.
func loadConfig(cmd *cobra.Command, cfgFile string) (*config.Config, error) {
	v := viper.New()
	config.SetDefaults(v)
	config.BindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("droidpilot")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults, env vars and flags apply.
	}

	for key, flag := range map[string]string{
		"device.serial":        "serial",
		"device.screen_width":  "width",
		"device.screen_height": "height",
	} {
		f := cmd.Flags().Lookup(flag)
		if f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind --%s: %w", flag, err)
			}
		}
	}

	return config.NewConfigFromViper(v)
}

type configKey struct{}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// configFromCommand retrieves the configuration stored by PersistentPreRunE.
func configFromCommand(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(configKey{}).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration was not initialized")
	}
	return cfg, nil
}
