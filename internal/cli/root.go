package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/andywolf/swarmctl/internal/config"
	"github.com/andywolf/swarmctl/internal/logging"
	"github.com/andywolf/swarmctl/internal/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "swarmctl",
	Short: "swarmctl - publish and verify the active agent skill set",
	Long: `swarmctl publishes the skills listed in the active skill declaration into
the agent's skill directory, records their tree digests in a manifest, and
checks the published set, the manifest and the routing configuration for drift.

Example:
  swarmctl publish
  swarmctl doctor --repo-root ~/src/agent-os`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = version.Short()
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <repo-root>/.swarmctl.yaml)")
	rootCmd.PersistentFlags().String("repo-root", "", "repository root (default is the working directory)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
}

func initConfig() {
	flags := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("repo_root", flags.Lookup("repo-root"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))

	if err := config.BindEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "Error binding environment:", err)
		os.Exit(1)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		root, err := repoRoot()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error resolving repository root:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(root)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".swarmctl")
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// repoRoot returns the absolute repository root from --repo-root,
// SWARMCTL_REPO_ROOT or the working directory.
func repoRoot() (string, error) {
	root := viper.GetString("repo_root")
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		root = cwd
	}
	return filepath.Abs(root)
}

// loadLayout loads the configuration and resolves it against the repo root.
func loadLayout() (config.Layout, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Layout{}, nil, err
	}
	root, err := repoRoot()
	if err != nil {
		return config.Layout{}, nil, err
	}
	layout, err := cfg.Layout(root)
	if err != nil {
		return config.Layout{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return layout, cfg, nil
}

// newLogger builds the stderr logger for a command.
func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if viper.GetBool("verbose") && level > slog.LevelDebug {
		level = slog.LevelDebug
	}
	return logging.New(cmd.ErrOrStderr(), level), nil
}

// ExitError carries a specific process exit status.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
