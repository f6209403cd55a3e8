// Package repotest builds throwaway repository trees for tests.
package repotest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andywolf/swarmctl/internal/config"
)

// RouterConfig is a router YAML with every default tier.
const RouterConfig = `# model router
tiers:
  reasoning:
    models:
      - anthropic/claude-opus
  quality:
    models:
      - anthropic/claude-sonnet
      - openai/gpt-4.1
  light:
    models:
      - anthropic/claude-haiku
`

// ModelRouting routes the default model probe.
const ModelRouting = `{
  "routing": [
    {"task_type": "T1", "complexity": "C1", "model_tier": "light"},
    {"task_type": "T2", "complexity": "C1", "model_tier": "quality"},
    {"task_type": "T6", "complexity": "C3", "model_tier": "reasoning"}
  ]
}
`

// MCPProfiles routes the default MCP probe.
const MCPProfiles = `{
  "default_profile": "core",
  "routing": [
    {"task_type": ["T5", "T6"], "complexity": ["C3", "C4"], "profile": "research"}
  ]
}
`

// ModelProviders uses a valid topology.
const ModelProviders = `{"provider_topology": "hybrid"}
`

// Repo is a temporary repository root with a default layout.
type Repo struct {
	t      testing.TB
	Root   string
	Layout config.Layout
}

// New creates a repository holding valid tooling configs, an empty
// declaration directory and no skills.
func New(t testing.TB) *Repo {
	t.Helper()
	root := t.TempDir()
	layout, err := config.DefaultLayout(root)
	require.NoError(t, err)

	r := &Repo{t: t, Root: root, Layout: layout}
	r.WriteAbs(layout.RouterConfig, RouterConfig)
	r.WriteAbs(layout.ModelRouting, ModelRouting)
	r.WriteAbs(layout.MCPProfiles, MCPProfiles)
	r.WriteAbs(layout.ModelProviders, ModelProviders)
	return r
}

// Path joins a slash-separated relative path to the root.
func (r *Repo) Path(rel string) string {
	return filepath.Join(r.Root, filepath.FromSlash(rel))
}

// Write creates a file at a root-relative path.
func (r *Repo) Write(rel, content string) string {
	path := r.Path(rel)
	r.WriteAbs(path, content)
	return path
}

// WriteAbs creates a file at an absolute path, making parent directories.
func (r *Repo) WriteAbs(path, content string) {
	r.t.Helper()
	require.NoError(r.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(r.t, os.WriteFile(path, []byte(content), 0o644))
}

// Remove deletes a root-relative path.
func (r *Repo) Remove(rel string) {
	r.t.Helper()
	require.NoError(r.t, os.RemoveAll(r.Path(rel)))
}

// AddSkill creates configs/skills/<name> with a SKILL.md and the given
// extra files, and returns its directory.
func (r *Repo) AddSkill(name string, files map[string]string) string {
	r.t.Helper()
	dir := "configs/skills/" + name
	r.Write(dir+"/SKILL.md", "---\nname: "+name+"\ndescription: "+name+" skill\n---\n# "+name+"\n")
	for rel, content := range files {
		r.Write(dir+"/"+rel, content)
	}
	return r.Path(dir)
}

// Declare writes the declaration with one list item per line given.
func (r *Repo) Declare(items ...string) {
	r.t.Helper()
	var b strings.Builder
	b.WriteString("# Active skills\n\n")
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
	r.WriteAbs(r.Layout.Declaration, b.String())
}
