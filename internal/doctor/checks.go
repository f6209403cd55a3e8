package doctor

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/andywolf/swarmctl/internal/errkind"
	"github.com/andywolf/swarmctl/internal/manifest"
	"github.com/andywolf/swarmctl/internal/routing"
)

// checkRouter reports every shape or syntax problem of the router config.
func checkRouter(err error, subject string) []Finding {
	if err == nil {
		return nil
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	findings := make([]Finding, 0, len(errs))
	for _, e := range errs {
		f := Finding{Kind: errkind.Syntax, Subject: subject, Message: fmt.Sprintf("invalid router config %s: %v", subject, e)}
		var kerr *errkind.Error
		if errors.As(e, &kerr) {
			f.Kind = kerr.Kind
			if kerr.Kind == errkind.Shape {
				f.Subject = kerr.Subject
			}
		}
		findings = append(findings, f)
	}
	return findings
}

func checkProviders(p *routing.Providers, subject string) []Finding {
	if p == nil {
		return nil
	}
	if err := p.Validate(); err != nil {
		return []Finding{{Kind: errkind.Shape, Subject: subject, Message: fmt.Sprintf("%s: %v", subject, err)}}
	}
	return nil
}

// checkRouting resolves the probes through whichever routing tables loaded.
func checkRouting(mr *routing.ModelRouting, mp *routing.MCPProfiles, modelProbe, mcpProbe routing.Probe) []Finding {
	var findings []Finding
	if mr != nil {
		if _, err := routing.NewRouter(mr, nil).ModelTier(modelProbe); err != nil {
			findings = append(findings, Finding{
				Kind:    errkind.Shape,
				Subject: modelProbe.String(),
				Message: fmt.Sprintf("routing sanity failed: %v", err),
			})
		}
	}
	if mp != nil {
		if profile := routing.NewRouter(nil, mp).MCPProfile(mcpProbe); profile == "" {
			findings = append(findings, Finding{
				Kind:    errkind.Shape,
				Subject: mcpProbe.String(),
				Message: fmt.Sprintf("routing sanity failed: %s: empty MCP profile", mcpProbe),
			})
		}
	}
	return findings
}

// checkManifestNames reports the symmetric difference between the declared
// and the recorded skill names.
func checkManifestNames(declared, recorded []string) []Finding {
	var findings []Finding
	for _, name := range difference(declared, recorded) {
		findings = append(findings, Finding{
			Kind:    errkind.Integrity,
			Subject: name,
			Message: fmt.Sprintf("manifest missing skill: %s", name),
		})
	}
	for _, name := range difference(recorded, declared) {
		findings = append(findings, Finding{
			Kind:    errkind.Integrity,
			Subject: name,
			Message: fmt.Sprintf("manifest has extra skill: %s", name),
		})
	}
	return findings
}

// checkDigests compares each recorded digest with the live one.
func checkDigests(entries []manifest.Entry, live map[string]digestResult) []Finding {
	var findings []Finding
	for _, entry := range entries {
		got, ok := live[entry.Name]
		switch {
		case !ok:
			continue
		case errkind.Is(got.err, errkind.NotFound):
			findings = append(findings, Finding{
				Kind:    errkind.Integrity,
				Subject: entry.Name,
				Message: fmt.Sprintf("missing published skill dir: %s", entry.Name),
			})
		case got.err != nil:
			findings = append(findings, Finding{
				Kind:    errkind.IO,
				Subject: entry.Name,
				Message: fmt.Sprintf("cannot hash %s: %v", entry.Name, got.err),
			})
		case got.digest != entry.TreeDigest:
			findings = append(findings, Finding{
				Kind:    errkind.Integrity,
				Subject: entry.Name,
				Message: fmt.Sprintf("hash mismatch for %s: manifest=%s actual=%s", entry.Name, entry.TreeDigest, got.digest),
			})
		}
	}
	return findings
}

// checkOrphans reports destination directories that are not declared.
// Hidden directories and keep-entries are never orphans.
func checkOrphans(dirs, declared, keep []string) []Finding {
	skip := make(map[string]bool, len(declared)+len(keep))
	for _, name := range declared {
		skip[name] = true
	}
	for _, name := range keep {
		skip[name] = true
	}
	var orphans []string
	for _, dir := range dirs {
		if strings.HasPrefix(dir, ".") || skip[dir] {
			continue
		}
		orphans = append(orphans, dir)
	}
	sort.Strings(orphans)

	findings := make([]Finding, 0, len(orphans))
	for _, name := range orphans {
		findings = append(findings, Finding{
			Kind:    errkind.Integrity,
			Subject: name,
			Message: fmt.Sprintf("extra directory in destination: %s", name),
		})
	}
	return findings
}

// difference returns the sorted names in a that are not in b.
func difference(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, name := range b {
		in[name] = true
	}
	var out []string
	for _, name := range a {
		if !in[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
