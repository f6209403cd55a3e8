package routing

import (
	"sort"

	"github.com/andywolf/swarmctl/internal/errkind"
)

// DefaultProfile is used when the MCP profile table has no default.
const DefaultProfile = "core"

// Router answers tier and profile lookups from the routing tables.
type Router struct {
	routing  *ModelRouting
	profiles *MCPProfiles
}

// NewRouter creates a router. Nil-safe: nil tables behave as empty tables.
func NewRouter(routing *ModelRouting, profiles *MCPProfiles) *Router {
	return &Router{routing: routing, profiles: profiles}
}

// ModelTier returns the tier routed for the probe.
func (r *Router) ModelTier(p Probe) (string, error) {
	if r.routing != nil {
		for _, row := range r.routing.Routing {
			if row.TaskType == p.TaskType && row.Complexity == p.Complexity {
				return row.ModelTier, nil
			}
		}
	}
	return "", errkind.New(errkind.Shape, p.String(), "no model routing entry")
}

// MCPProfile returns the first profile whose task types and complexities
// both contain the probe's values, falling back to the default profile.
func (r *Router) MCPProfile(p Probe) string {
	if r.profiles == nil {
		return DefaultProfile
	}
	for _, row := range r.profiles.Routing {
		if contains(row.TaskTypes, p.TaskType) && contains(row.Complexities, p.Complexity) {
			return row.Profile
		}
	}
	if r.profiles.DefaultProfile != "" {
		return r.profiles.DefaultProfile
	}
	return DefaultProfile
}

// Tiers returns the set of tiers referenced by the model routing table,
// sorted for deterministic ordering.
func (r *Router) Tiers() []string {
	if r.routing == nil {
		return nil
	}
	seen := make(map[string]bool)
	for _, row := range r.routing.Routing {
		if row.ModelTier != "" {
			seen[row.ModelTier] = true
		}
	}
	tiers := make([]string, 0, len(seen))
	for name := range seen {
		tiers = append(tiers, name)
	}
	sort.Strings(tiers)
	return tiers
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
