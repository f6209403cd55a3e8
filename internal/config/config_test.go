package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/andywolf/swarmctl/internal/routing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "manifest with directory",
			mutate:  func(c *Config) { c.Paths.Manifest = "sub/manifest.json" },
			wantErr: true,
			errMsg:  "invalid paths.manifest",
		},
		{
			name:    "manifest dot-dot",
			mutate:  func(c *Config) { c.Paths.Manifest = ".." },
			wantErr: true,
			errMsg:  "invalid paths.manifest",
		},
		{
			name:    "keep entry with separator",
			mutate:  func(c *Config) { c.Publish.Keep = []string{"a/b"} },
			wantErr: true,
			errMsg:  "invalid publish.keep entry",
		},
		{
			name:    "bad exclude pattern",
			mutate:  func(c *Config) { c.Hash.Exclude = []string{"[unterminated"} },
			wantErr: true,
			errMsg:  "invalid hash.exclude pattern",
		},
		{
			name:    "bad model probe",
			mutate:  func(c *Config) { c.Doctor.ModelRouteProbe = "T2" },
			wantErr: true,
			errMsg:  "invalid doctor.model_route_probe",
		},
		{
			name:    "bad mcp probe",
			mutate:  func(c *Config) { c.Doctor.MCPRouteProbe = "/C3" },
			wantErr: true,
			errMsg:  "invalid doctor.mcp_route_probe",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
			errMsg:  "invalid log level",
		},
		{
			name:    "log level is case insensitive",
			mutate:  func(c *Config) { c.Log.Level = "DEBUG" },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.errMsg)
				} else if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error = %q, want error containing %q", err.Error(), tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	checks := map[string][2]string{
		"declaration":     {cfg.Paths.Declaration, "configs/skills/ACTIVE_SKILLS.md"},
		"destination":     {cfg.Paths.Destination, ".agent/skills"},
		"manifest":        {cfg.Paths.Manifest, ".active_set_manifest.json"},
		"router_config":   {cfg.Paths.RouterConfig, ".agent/config/model_router.yaml"},
		"model_routing":   {cfg.Paths.ModelRouting, "configs/tooling/model_routing.json"},
		"mcp_profiles":    {cfg.Paths.MCPProfiles, "configs/tooling/mcp_profiles.json"},
		"model_providers": {cfg.Paths.ModelProviders, "configs/tooling/model_providers.json"},
		"env_file":        {cfg.Paths.EnvFile, ".env"},
		"model probe":     {cfg.Doctor.ModelRouteProbe, "T2/C1"},
		"mcp probe":       {cfg.Doctor.MCPRouteProbe, "T6/C3"},
		"log level":       {cfg.Log.Level, "info"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", name, c[0], c[1])
		}
	}

	if strings.Join(cfg.Publish.Keep, ",") != ".gitkeep" {
		t.Errorf("Publish.Keep = %v", cfg.Publish.Keep)
	}
	if strings.Join(cfg.Hash.Exclude, ",") != "**/__pycache__/**,**/*.pyc" {
		t.Errorf("Hash.Exclude = %v", cfg.Hash.Exclude)
	}
	if strings.Join(cfg.Doctor.RequiredTiers, ",") != "reasoning,quality,light" {
		t.Errorf("Doctor.RequiredTiers = %v", cfg.Doctor.RequiredTiers)
	}
	if strings.Join(cfg.Doctor.RequiredEnv, ",") != "OPENROUTER_API_KEY" {
		t.Errorf("Doctor.RequiredEnv = %v", cfg.Doctor.RequiredEnv)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Paths:   PathsConfig{Destination: "published"},
		Publish: PublishConfig{Keep: []string{}},
		Doctor:  DoctorConfig{RequiredEnv: []string{}},
	}
	applyDefaults(cfg)

	if cfg.Paths.Destination != "published" {
		t.Errorf("Destination = %q, want published", cfg.Paths.Destination)
	}
	if len(cfg.Publish.Keep) != 0 {
		t.Errorf("explicit empty keep list should survive, got %v", cfg.Publish.Keep)
	}
	if len(cfg.Doctor.RequiredEnv) != 0 {
		t.Errorf("explicit empty env list should survive, got %v", cfg.Doctor.RequiredEnv)
	}
}

func TestLoad_FromViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("paths.destination", "out/skills")
	viper.Set("publish.keep", []string{".gitkeep", "README.md"})
	viper.Set("doctor.model_route_probe", "T1/C2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Paths.Destination != "out/skills" {
		t.Errorf("Destination = %q", cfg.Paths.Destination)
	}
	if len(cfg.Publish.Keep) != 2 || cfg.Publish.Keep[1] != "README.md" {
		t.Errorf("Keep = %v", cfg.Publish.Keep)
	}
	if cfg.Doctor.ModelRouteProbe != "T1/C2" {
		t.Errorf("ModelRouteProbe = %q", cfg.Doctor.ModelRouteProbe)
	}
	if cfg.Paths.Declaration != "configs/skills/ACTIVE_SKILLS.md" {
		t.Errorf("unset keys should get defaults, Declaration = %q", cfg.Paths.Declaration)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SWARMCTL_PATHS_DESTINATION", "env/skills")
	t.Setenv("SWARMCTL_DOCTOR_REQUIRED_ENV", "A_KEY,B_KEY")
	t.Setenv("SWARMCTL_LOG_LEVEL", "debug")
	if err := BindEnv(); err != nil {
		t.Fatalf("BindEnv() error: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Paths.Destination != "env/skills" {
		t.Errorf("Destination = %q, want env/skills", cfg.Paths.Destination)
	}
	if strings.Join(cfg.Doctor.RequiredEnv, ",") != "A_KEY,B_KEY" {
		t.Errorf("RequiredEnv = %v", cfg.Doctor.RequiredEnv)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLayout(t *testing.T) {
	root := t.TempDir()
	layout, err := DefaultLayout(root)
	if err != nil {
		t.Fatalf("DefaultLayout() error: %v", err)
	}

	want := map[string]string{
		"Declaration":    filepath.Join(root, "configs", "skills", "ACTIVE_SKILLS.md"),
		"Destination":    filepath.Join(root, ".agent", "skills"),
		"Manifest":       filepath.Join(root, ".agent", "skills", ".active_set_manifest.json"),
		"RouterConfig":   filepath.Join(root, ".agent", "config", "model_router.yaml"),
		"ModelRouting":   filepath.Join(root, "configs", "tooling", "model_routing.json"),
		"MCPProfiles":    filepath.Join(root, "configs", "tooling", "mcp_profiles.json"),
		"ModelProviders": filepath.Join(root, "configs", "tooling", "model_providers.json"),
		"EnvFile":        filepath.Join(root, ".env"),
	}
	got := map[string]string{
		"Declaration":    layout.Declaration,
		"Destination":    layout.Destination,
		"Manifest":       layout.Manifest,
		"RouterConfig":   layout.RouterConfig,
		"ModelRouting":   layout.ModelRouting,
		"MCPProfiles":    layout.MCPProfiles,
		"ModelProviders": layout.ModelProviders,
		"EnvFile":        layout.EnvFile,
	}
	for k, w := range want {
		if got[k] != w {
			t.Errorf("%s = %q, want %q", k, got[k], w)
		}
	}

	if layout.ModelProbe != (routing.Probe{TaskType: "T2", Complexity: "C1"}) {
		t.Errorf("ModelProbe = %+v", layout.ModelProbe)
	}
	if layout.MCPProbe != (routing.Probe{TaskType: "T6", Complexity: "C3"}) {
		t.Errorf("MCPProbe = %+v", layout.MCPProbe)
	}
}

func TestLayout_AbsolutePathsKept(t *testing.T) {
	root := t.TempDir()
	elsewhere := t.TempDir()

	cfg := Default()
	cfg.Paths.Destination = elsewhere
	layout, err := cfg.Layout(root)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if layout.Destination != elsewhere {
		t.Errorf("Destination = %q, want %q", layout.Destination, elsewhere)
	}
}

func TestLayout_RelativeRootRejected(t *testing.T) {
	_, err := Default().Layout("relative/root")
	if err == nil || !strings.Contains(err.Error(), "absolute") {
		t.Errorf("expected absolute root error, got %v", err)
	}
}

func TestLayout_InvalidConfigRejected(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	if _, err := cfg.Layout(t.TempDir()); err == nil {
		t.Error("expected validation error")
	}
}

func TestLayout_Rel(t *testing.T) {
	root := t.TempDir()
	layout, err := DefaultLayout(root)
	if err != nil {
		t.Fatal(err)
	}

	if got := layout.Rel(filepath.Join(root, "skills", "alpha")); got != "skills/alpha" {
		t.Errorf("Rel(inside) = %q, want skills/alpha", got)
	}

	outside := filepath.Join(filepath.Dir(root), "other")
	if got := layout.Rel(outside); got != filepath.ToSlash(outside) {
		t.Errorf("Rel(outside) = %q, want %q", got, filepath.ToSlash(outside))
	}
}

func TestLayout_IsKept(t *testing.T) {
	layout, err := DefaultLayout(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if !layout.IsKept(".gitkeep") {
		t.Error(".gitkeep should be kept")
	}
	if layout.IsKept("alpha") {
		t.Error("alpha should not be kept")
	}
}
