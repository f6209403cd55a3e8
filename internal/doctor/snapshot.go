package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/andywolf/swarmctl/internal/errkind"
	"github.com/andywolf/swarmctl/internal/manifest"
	"github.com/andywolf/swarmctl/internal/routing"
	"github.com/andywolf/swarmctl/internal/skills"
	"github.com/andywolf/swarmctl/internal/treehash"
)

// digestResult is the live digest of one published skill directory.
type digestResult struct {
	digest treehash.Digest
	err    error
}

// snapshot is everything the checks look at, read once up front.
type snapshot struct {
	loadFindings []Finding

	declared     []string
	routerErr    error
	providers    *routing.Providers
	modelRouting *routing.ModelRouting
	mcpProfiles  *routing.MCPProfiles

	destErr     error
	destDirs    []string
	manifest    *manifest.Manifest
	manifestErr error
	digests     map[string]digestResult

	envWarnings []string
}

func (c *Checker) gather() *snapshot {
	l := c.layout
	snap := &snapshot{}
	missing := func(path string, err error) {
		snap.loadFindings = append(snap.loadFindings,
			fromError(err, l.Rel(path), fmt.Sprintf("missing: %s", l.Rel(path))))
	}

	if specs, err := skills.ResolveFile(l.Declaration, l.Root); err != nil {
		missing(l.Declaration, err)
	} else {
		snap.declared = skills.Names(specs)
	}

	if _, err := os.Stat(l.RouterConfig); err != nil {
		missing(l.RouterConfig, classify(l.RouterConfig, err))
	} else {
		_, snap.routerErr = routing.LoadRouterConfig(l.RouterConfig, l.RequiredTiers)
	}

	var err error
	if snap.modelRouting, err = routing.LoadModelRouting(l.ModelRouting); err != nil {
		missing(l.ModelRouting, err)
	}
	if snap.mcpProfiles, err = routing.LoadMCPProfiles(l.MCPProfiles); err != nil {
		missing(l.MCPProfiles, err)
	}
	if snap.providers, err = routing.LoadProviders(l.ModelProviders); err != nil {
		missing(l.ModelProviders, err)
	}

	c.gatherPublished(snap)
	snap.envWarnings = c.envWarnings()
	return snap
}

func (c *Checker) gatherPublished(snap *snapshot) {
	l := c.layout
	info, err := os.Stat(l.Destination)
	if err != nil {
		snap.destErr = classify(l.Destination, err)
		return
	}
	if !info.IsDir() {
		snap.destErr = errkind.New(errkind.IO, l.Rel(l.Destination), "%s is not a directory", l.Rel(l.Destination))
		return
	}

	children, err := os.ReadDir(l.Destination)
	if err != nil {
		snap.destErr = classify(l.Destination, err)
		return
	}
	for _, child := range children {
		if !child.IsDir() && !isDirLink(filepath.Join(l.Destination, child.Name())) {
			continue
		}
		snap.destDirs = append(snap.destDirs, child.Name())
	}

	snap.manifest, snap.manifestErr = manifest.Load(l.Manifest)
	if snap.manifestErr != nil {
		return
	}
	snap.digests = make(map[string]digestResult, len(snap.manifest.Skills))
	for _, entry := range snap.manifest.Skills {
		dir := filepath.Join(l.Destination, entry.Name)
		sum, err := c.hasher.Tree(dir)
		snap.digests[entry.Name] = digestResult{digest: sum, err: err}
	}
}

// envWarnings lists required variables set neither in the process
// environment nor in the repository env file.
func (c *Checker) envWarnings() []string {
	l := c.layout
	if len(l.RequiredEnv) == 0 {
		return nil
	}
	fileEnv, err := godotenv.Read(l.EnvFile)
	if err != nil {
		fileEnv = nil
	}

	var warnings []string
	for _, name := range l.RequiredEnv {
		if v, ok := c.lookupEnv(name); ok && strings.TrimSpace(v) != "" {
			continue
		}
		if strings.TrimSpace(fileEnv[name]) != "" {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("missing env var: %s", name))
	}
	return warnings
}

func isDirLink(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func classify(path string, err error) error {
	if os.IsNotExist(err) {
		return errkind.Wrap(errkind.NotFound, path, err)
	}
	return errkind.Wrap(errkind.IO, path, err)
}
