package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/andywolf/swarmctl/internal/routing"
)

// Layout is the resolved set of absolute paths and settings for one
// repository root. Core packages receive a Layout and never consult the
// working directory.
type Layout struct {
	Root           string
	Declaration    string
	Destination    string
	Manifest       string
	RouterConfig   string
	ModelRouting   string
	MCPProfiles    string
	ModelProviders string
	EnvFile        string

	Keep          []string
	Exclude       []string
	RequiredTiers []string
	RequiredEnv   []string
	ModelProbe    routing.Probe
	MCPProbe      routing.Probe
}

// Layout validates the configuration and resolves it against root, which
// must be absolute.
func (c *Config) Layout(root string) (Layout, error) {
	if !filepath.IsAbs(root) {
		return Layout{}, fmt.Errorf("repo root must be an absolute path, got %q", root)
	}
	if err := c.Validate(); err != nil {
		return Layout{}, err
	}

	root = filepath.Clean(root)
	modelProbe, _ := routing.ParseProbe(c.Doctor.ModelRouteProbe)
	mcpProbe, _ := routing.ParseProbe(c.Doctor.MCPRouteProbe)
	dest := resolve(root, c.Paths.Destination)

	return Layout{
		Root:           root,
		Declaration:    resolve(root, c.Paths.Declaration),
		Destination:    dest,
		Manifest:       filepath.Join(dest, c.Paths.Manifest),
		RouterConfig:   resolve(root, c.Paths.RouterConfig),
		ModelRouting:   resolve(root, c.Paths.ModelRouting),
		MCPProfiles:    resolve(root, c.Paths.MCPProfiles),
		ModelProviders: resolve(root, c.Paths.ModelProviders),
		EnvFile:        resolve(root, c.Paths.EnvFile),
		Keep:           append([]string(nil), c.Publish.Keep...),
		Exclude:        append([]string(nil), c.Hash.Exclude...),
		RequiredTiers:  append([]string(nil), c.Doctor.RequiredTiers...),
		RequiredEnv:    append([]string(nil), c.Doctor.RequiredEnv...),
		ModelProbe:     modelProbe,
		MCPProbe:       mcpProbe,
	}, nil
}

// DefaultLayout resolves the default configuration against root.
func DefaultLayout(root string) (Layout, error) {
	return Default().Layout(root)
}

// Rel returns path relative to the layout root using forward slashes.
// Paths outside the root are returned unchanged.
func (l Layout) Rel(path string) string {
	rel, err := filepath.Rel(l.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// IsKept reports whether name is a destination entry that publishing leaves
// in place.
func (l Layout) IsKept(name string) bool {
	for _, k := range l.Keep {
		if k == name {
			return true
		}
	}
	return false
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, filepath.FromSlash(path))
}
