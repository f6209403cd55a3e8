package routing

import (
	"fmt"
	"strings"
)

// Tier lists the models a routing tier may use, in preference order.
type Tier struct {
	Name   string
	Models []string
}

// RouterConfig is the shape-checked content of the router YAML.
type RouterConfig struct {
	Tiers map[string]Tier
}

// ModelRoute maps a task type and complexity to a model tier.
type ModelRoute struct {
	TaskType   string `json:"task_type"`
	Complexity string `json:"complexity"`
	ModelTier  string `json:"model_tier"`
}

// ModelRouting is the content of model_routing.json.
type ModelRouting struct {
	Routing []ModelRoute `json:"routing"`
}

// ProfileRoute selects an MCP profile for any of its task types combined
// with any of its complexities.
type ProfileRoute struct {
	TaskTypes    []string `json:"task_type"`
	Complexities []string `json:"complexity"`
	Profile      string   `json:"profile"`
}

// MCPProfiles is the content of mcp_profiles.json.
type MCPProfiles struct {
	DefaultProfile string         `json:"default_profile"`
	Routing        []ProfileRoute `json:"routing"`
}

// Providers is the content of model_providers.json.
type Providers struct {
	Topology string `json:"provider_topology"`
}

// ValidTopologies is the set of recognized provider topologies.
var ValidTopologies = map[string]bool{
	"hybrid":       true,
	"gateway-only": true,
	"direct-only":  true,
}

// Probe is a (task type, complexity) pair used to exercise the routing
// tables.
type Probe struct {
	TaskType   string
	Complexity string
}

func (p Probe) String() string {
	return p.TaskType + "/" + p.Complexity
}

// ParseProbe parses a "TASK/COMPLEXITY" string such as "T2/C1".
func ParseProbe(s string) (Probe, error) {
	task, complexity, ok := strings.Cut(s, "/")
	task = strings.TrimSpace(task)
	complexity = strings.TrimSpace(complexity)
	if !ok || task == "" || complexity == "" {
		return Probe{}, fmt.Errorf("invalid routing probe %q (want TASK/COMPLEXITY)", s)
	}
	return Probe{TaskType: task, Complexity: complexity}, nil
}
