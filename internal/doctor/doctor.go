// Package doctor reports drift between the skill declaration, the published
// skill set, its manifest and the routing configuration. It never modifies
// anything it inspects.
package doctor

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/andywolf/swarmctl/internal/config"
	"github.com/andywolf/swarmctl/internal/errkind"
	"github.com/andywolf/swarmctl/internal/logging"
	"github.com/andywolf/swarmctl/internal/treehash"
)

// Finding is one problem found by a check.
type Finding struct {
	Kind    errkind.Kind
	Subject string
	Message string
}

func (f Finding) String() string {
	return f.Message
}

// Report collects every finding and warning from one run.
type Report struct {
	Findings []Finding
	Warnings []string
}

// Healthy reports whether the run produced no findings. Warnings do not
// count.
func (r *Report) Healthy() bool {
	return len(r.Findings) == 0
}

// Checker runs the consistency checks for one repository layout.
type Checker struct {
	layout    config.Layout
	hasher    *treehash.Hasher
	logger    *slog.Logger
	lookupEnv func(string) (string, bool)
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger used for progress messages.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) { c.logger = logger }
}

// WithHasher replaces the tree hasher built from the layout's exclusions.
func WithHasher(h *treehash.Hasher) Option {
	return func(c *Checker) { c.hasher = h }
}

// WithLookupEnv replaces os.LookupEnv for the environment check.
func WithLookupEnv(lookup func(string) (string, bool)) Option {
	return func(c *Checker) { c.lookupEnv = lookup }
}

// New creates a Checker for layout.
func New(layout config.Layout, opts ...Option) (*Checker, error) {
	c := &Checker{
		layout:    layout,
		logger:    logging.Discard(),
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hasher == nil {
		h, err := treehash.New(layout.Exclude)
		if err != nil {
			return nil, err
		}
		c.hasher = h
	}
	return c, nil
}

// Check reads a snapshot of the repository and runs every check against it.
// Checks are independent; one failing never hides the others.
func (c *Checker) Check() *Report {
	snap := c.gather()
	l := c.layout

	report := &Report{}
	add := func(found []Finding) { report.Findings = append(report.Findings, found...) }

	add(snap.loadFindings)
	add(checkRouter(snap.routerErr, l.Rel(l.RouterConfig)))
	add(checkProviders(snap.providers, l.Rel(l.ModelProviders)))
	add(checkRouting(snap.modelRouting, snap.mcpProfiles, l.ModelProbe, l.MCPProbe))
	add(checkPublished(snap, l))

	report.Warnings = snap.envWarnings
	for _, f := range report.Findings {
		c.logger.Debug("finding", "kind", string(f.Kind), "subject", f.Subject)
	}
	c.logger.Info("doctor finished", "findings", len(report.Findings), "warnings", len(report.Warnings))
	return report
}

// checkPublished covers the destination, the manifest and the three-way
// comparison with the declaration.
func checkPublished(snap *snapshot, l config.Layout) []Finding {
	switch {
	case snap.destErr != nil:
		return []Finding{fromError(snap.destErr, l.Rel(l.Destination),
			fmt.Sprintf("missing directory: %s", l.Rel(l.Destination)))}
	case snap.manifestErr != nil:
		if errkind.Is(snap.manifestErr, errkind.NotFound) {
			return []Finding{{
				Kind:    errkind.NotFound,
				Subject: l.Rel(l.Manifest),
				Message: fmt.Sprintf("missing manifest: %s (run publish)", l.Rel(l.Manifest)),
			}}
		}
		f := fromError(snap.manifestErr, l.Rel(l.Manifest), "")
		f.Message = "manifest invalid: " + f.Message
		return []Finding{f}
	}

	var findings []Finding
	if snap.declared != nil {
		findings = append(findings, checkManifestNames(snap.declared, snap.manifest.Names())...)
	}
	findings = append(findings, checkDigests(snap.manifest.Skills, snap.digests)...)
	if snap.declared != nil {
		findings = append(findings, checkOrphans(snap.destDirs, snap.declared, l.Keep)...)
	}
	return findings
}

// fromError turns a load error into a finding, keeping the error's kind.
// Missing files get notFoundMessage instead of the raw error text.
func fromError(err error, subject, notFoundMessage string) Finding {
	kind := errkind.KindOf(err)
	if kind == "" {
		kind = errkind.IO
	}
	msg := err.Error()
	if errors.Is(err, fs.ErrNotExist) && notFoundMessage != "" {
		msg = notFoundMessage
	}
	return Finding{Kind: kind, Subject: subject, Message: msg}
}
