package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/andywolf/swarmctl/internal/cli/wizard"
	"github.com/andywolf/swarmctl/internal/config"
)

// configFileName is the config file looked up in the repository root.
const configFileName = ".swarmctl.yaml"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize repository configuration",
	Long: `Write a .swarmctl.yaml with every default spelled out, ready to customize.

Example:
  swarmctl init
  swarmctl init --interactive
  swarmctl init --force`,
	Args: cobra.NoArgs,
	RunE: initProject,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite existing config")
	initCmd.Flags().BoolP("interactive", "i", false, "Prompt for paths and checks")
}

type projectConfig struct {
	Paths struct {
		Declaration    string `yaml:"declaration"`
		Destination    string `yaml:"destination"`
		Manifest       string `yaml:"manifest"`
		RouterConfig   string `yaml:"router_config"`
		ModelRouting   string `yaml:"model_routing"`
		MCPProfiles    string `yaml:"mcp_profiles"`
		ModelProviders string `yaml:"model_providers"`
		EnvFile        string `yaml:"env_file"`
	} `yaml:"paths"`
	Publish struct {
		Keep []string `yaml:"keep"`
	} `yaml:"publish"`
	Hash struct {
		Exclude []string `yaml:"exclude"`
	} `yaml:"hash"`
	Doctor struct {
		RequiredTiers   []string `yaml:"required_tiers"`
		RequiredEnv     []string `yaml:"required_env"`
		ModelRouteProbe string   `yaml:"model_route_probe"`
		MCPRouteProbe   string   `yaml:"mcp_route_probe"`
	} `yaml:"doctor"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func initProject(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	configPath := filepath.Join(root, configFileName)
	force, _ := cmd.Flags().GetBool("force")
	interactive, _ := cmd.Flags().GetBool("interactive")

	cfg := config.Default()
	if interactive {
		if _, err := os.Stat(configPath); err == nil && !force {
			confirmed, err := wizard.ConfirmOverwrite(configPath)
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			force = true
		}
		if err := wizard.PromptConfig(cfg); err != nil {
			return err
		}
	}
	return writeProjectConfig(cmd.OutOrStdout(), configPath, cfg, force)
}

func writeProjectConfig(out io.Writer, configPath string, settings *config.Config, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := projectConfig{}
	cfg.Paths.Declaration = settings.Paths.Declaration
	cfg.Paths.Destination = settings.Paths.Destination
	cfg.Paths.Manifest = settings.Paths.Manifest
	cfg.Paths.RouterConfig = settings.Paths.RouterConfig
	cfg.Paths.ModelRouting = settings.Paths.ModelRouting
	cfg.Paths.MCPProfiles = settings.Paths.MCPProfiles
	cfg.Paths.ModelProviders = settings.Paths.ModelProviders
	cfg.Paths.EnvFile = settings.Paths.EnvFile
	cfg.Publish.Keep = settings.Publish.Keep
	cfg.Hash.Exclude = settings.Hash.Exclude
	cfg.Doctor.RequiredTiers = settings.Doctor.RequiredTiers
	cfg.Doctor.RequiredEnv = settings.Doctor.RequiredEnv
	cfg.Doctor.ModelRouteProbe = settings.Doctor.ModelRouteProbe
	cfg.Doctor.MCPRouteProbe = settings.Doctor.MCPRouteProbe
	cfg.Log.Level = settings.Log.Level

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := `# swarmctl configuration
# Relative paths resolve against the repository root.
# Every key can be overridden with SWARMCTL_<SECTION>_<KEY>, e.g. SWARMCTL_PATHS_DESTINATION.

`

	if err := os.WriteFile(configPath, append([]byte(header), data...), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(out, "Created %s\n\n", configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. List the active skills in", cfg.Paths.Declaration)
	fmt.Fprintln(out, "  2. Run 'swarmctl publish' to publish them")
	fmt.Fprintln(out, "  3. Run 'swarmctl doctor' to verify the result")

	return nil
}
