package routing

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/andywolf/swarmctl/internal/errkind"
	"github.com/andywolf/swarmctl/internal/simpleyaml"
)

// DecodeRouterConfig checks the shape of a parsed router YAML document: a
// `tiers` mapping whose entries each carry a non-empty `models` list, with
// every name in required present. All violations are joined in the returned
// error, each one an errkind.Shape error whose subject is the offending key.
func DecodeRouterConfig(doc simpleyaml.Mapping, required []string) (*RouterConfig, error) {
	tiersValue, ok := doc.Get("tiers")
	if !ok {
		return nil, shapeError("tiers", "missing mapping")
	}
	tiers, ok := tiersValue.(simpleyaml.Mapping)
	if !ok {
		return nil, shapeError("tiers", "must be a mapping, got %s", tiersValue.Kind())
	}

	cfg := &RouterConfig{Tiers: make(map[string]Tier, tiers.Len())}
	var errs []error
	for _, name := range required {
		if _, ok := tiers.Get(name); !ok {
			errs = append(errs, shapeError("tiers."+name, "missing required tier"))
		}
	}
	for _, name := range tiers.Keys() {
		key := "tiers." + name + ".models"
		entry, ok := tiers.Mapping(name)
		if !ok {
			errs = append(errs, shapeError("tiers."+name, "must be a mapping"))
			continue
		}
		models, ok := entry.List("models")
		if !ok || models.Len() == 0 {
			errs = append(errs, shapeError(key, "must be a non-empty list"))
			continue
		}
		cfg.Tiers[name] = Tier{Name: name, Models: models.Strings()}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// LoadRouterConfig parses and shape-checks the router YAML at path.
func LoadRouterConfig(path string, required []string) (*RouterConfig, error) {
	doc, err := simpleyaml.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeRouterConfig(doc, required)
}

// TierNames returns the configured tier names, sorted.
func (c *RouterConfig) TierNames() []string {
	names := make([]string, 0, len(c.Tiers))
	for name := range c.Tiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadModelRouting reads model_routing.json.
func LoadModelRouting(path string) (*ModelRouting, error) {
	return loadJSON[ModelRouting](path)
}

// LoadMCPProfiles reads mcp_profiles.json.
func LoadMCPProfiles(path string) (*MCPProfiles, error) {
	return loadJSON[MCPProfiles](path)
}

// LoadProviders reads model_providers.json.
func LoadProviders(path string) (*Providers, error) {
	return loadJSON[Providers](path)
}

// Validate checks the provider topology.
func (p *Providers) Validate() error {
	if !ValidTopologies[p.Topology] {
		return shapeError("provider_topology", "invalid value %q (must be hybrid, gateway-only, or direct-only)", p.Topology)
	}
	return nil
}

func loadJSON[T any](path string) (*T, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errkind.Wrap(errkind.NotFound, path, err)
		}
		return nil, errkind.Wrap(errkind.IO, path, err)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errkind.Wrap(errkind.Syntax, path, fmt.Errorf("invalid JSON: %w", err))
	}
	return &v, nil
}

func shapeError(key, format string, args ...any) error {
	return errkind.New(errkind.Shape, key, format, args...)
}
