package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"github.com/andywolf/swarmctl/internal/routing"
)

// Config represents the full swarmctl configuration
type Config struct {
	RepoRoot string        `mapstructure:"repo_root"`
	Paths    PathsConfig   `mapstructure:"paths"`
	Publish  PublishConfig `mapstructure:"publish"`
	Hash     HashConfig    `mapstructure:"hash"`
	Doctor   DoctorConfig  `mapstructure:"doctor"`
	Log      LogConfig     `mapstructure:"log"`
}

// PathsConfig locates the declaration, the published set and the routing
// configuration. Relative paths resolve against the repo root.
type PathsConfig struct {
	Declaration    string `mapstructure:"declaration"`
	Destination    string `mapstructure:"destination"`
	Manifest       string `mapstructure:"manifest"` // file name inside Destination
	RouterConfig   string `mapstructure:"router_config"`
	ModelRouting   string `mapstructure:"model_routing"`
	MCPProfiles    string `mapstructure:"mcp_profiles"`
	ModelProviders string `mapstructure:"model_providers"`
	EnvFile        string `mapstructure:"env_file"`
}

// PublishConfig contains publisher settings
type PublishConfig struct {
	Keep []string `mapstructure:"keep"`
}

// HashConfig contains tree hashing settings
type HashConfig struct {
	Exclude []string `mapstructure:"exclude"`
}

// DoctorConfig contains consistency checker settings
type DoctorConfig struct {
	RequiredTiers   []string `mapstructure:"required_tiers"`
	RequiredEnv     []string `mapstructure:"required_env"`
	ModelRouteProbe string   `mapstructure:"model_route_probe"`
	MCPRouteProbe   string   `mapstructure:"mcp_route_probe"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// EnvPrefix prefixes every environment override, e.g. SWARMCTL_PATHS_DESTINATION.
const EnvPrefix = "SWARMCTL"

// keys lists every setting so that environment overrides reach Unmarshal.
var keys = []string{
	"repo_root",
	"paths.declaration",
	"paths.destination",
	"paths.manifest",
	"paths.router_config",
	"paths.model_routing",
	"paths.mcp_profiles",
	"paths.model_providers",
	"paths.env_file",
	"publish.keep",
	"hash.exclude",
	"doctor.required_tiers",
	"doctor.required_env",
	"doctor.model_route_probe",
	"doctor.mcp_route_probe",
	"log.level",
}

// BindEnv enables SWARMCTL_* environment overrides on the global viper.
func BindEnv() error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range keys {
		if err := viper.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	cfg := &Config{}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	setDefault(&cfg.Paths.Declaration, "configs/skills/ACTIVE_SKILLS.md")
	setDefault(&cfg.Paths.Destination, ".agent/skills")
	setDefault(&cfg.Paths.Manifest, ".active_set_manifest.json")
	setDefault(&cfg.Paths.RouterConfig, ".agent/config/model_router.yaml")
	setDefault(&cfg.Paths.ModelRouting, "configs/tooling/model_routing.json")
	setDefault(&cfg.Paths.MCPProfiles, "configs/tooling/mcp_profiles.json")
	setDefault(&cfg.Paths.ModelProviders, "configs/tooling/model_providers.json")
	setDefault(&cfg.Paths.EnvFile, ".env")

	if cfg.Publish.Keep == nil {
		cfg.Publish.Keep = []string{".gitkeep"}
	}

	if cfg.Hash.Exclude == nil {
		cfg.Hash.Exclude = []string{"**/__pycache__/**", "**/*.pyc"}
	}

	if len(cfg.Doctor.RequiredTiers) == 0 {
		cfg.Doctor.RequiredTiers = []string{"reasoning", "quality", "light"}
	}

	if cfg.Doctor.RequiredEnv == nil {
		cfg.Doctor.RequiredEnv = []string{"OPENROUTER_API_KEY"}
	}

	setDefault(&cfg.Doctor.ModelRouteProbe, "T2/C1")
	setDefault(&cfg.Doctor.MCPRouteProbe, "T6/C3")
	setDefault(&cfg.Log.Level, "info")
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	m := c.Paths.Manifest
	if m == "" || m == "." || m == ".." || strings.ContainsAny(m, `/\`) {
		return fmt.Errorf("invalid paths.manifest: %q must be a file name", m)
	}

	for _, name := range c.Publish.Keep {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("invalid publish.keep entry: %q must be a file name", name)
		}
	}

	for _, pattern := range c.Hash.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid hash.exclude pattern: %q", pattern)
		}
	}

	if _, err := routing.ParseProbe(c.Doctor.ModelRouteProbe); err != nil {
		return fmt.Errorf("invalid doctor.model_route_probe: %w", err)
	}

	if _, err := routing.ParseProbe(c.Doctor.MCPRouteProbe); err != nil {
		return fmt.Errorf("invalid doctor.mcp_route_probe: %w", err)
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	return nil
}
