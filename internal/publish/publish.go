// Package publish copies the declared skill set into the destination root and
// records what was copied in a manifest.
package publish

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/andywolf/swarmctl/internal/config"
	"github.com/andywolf/swarmctl/internal/errkind"
	"github.com/andywolf/swarmctl/internal/logging"
	"github.com/andywolf/swarmctl/internal/manifest"
	"github.com/andywolf/swarmctl/internal/skills"
	"github.com/andywolf/swarmctl/internal/treehash"
)

// Publisher publishes skill sets for one repository layout.
type Publisher struct {
	layout config.Layout
	hasher *treehash.Hasher
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger used for progress messages.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// WithHasher replaces the tree hasher built from the layout's exclusions.
func WithHasher(h *treehash.Hasher) Option {
	return func(p *Publisher) { p.hasher = h }
}

// WithClock sets the time source for the manifest timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

// WithIDGenerator sets the generator for the manifest publish ID.
func WithIDGenerator(newID func() string) Option {
	return func(p *Publisher) { p.newID = newID }
}

// New creates a Publisher for layout.
func New(layout config.Layout, opts ...Option) (*Publisher, error) {
	p := &Publisher{
		layout: layout,
		logger: logging.Discard(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.hasher == nil {
		h, err := treehash.New(layout.Exclude)
		if err != nil {
			return nil, err
		}
		p.hasher = h
	}
	return p, nil
}

// PublishDeclared resolves the layout's declaration and publishes it.
func (p *Publisher) PublishDeclared() (*manifest.Manifest, error) {
	specs, err := skills.ResolveFile(p.layout.Declaration, p.layout.Root)
	if err != nil {
		return nil, err
	}
	return p.Publish(specs)
}

// Publish replaces the contents of the destination root with specs and
// writes the manifest. Every spec is validated before the destination is
// touched, so a validation failure leaves it exactly as it was. A failure
// after that point may leave the destination partially populated.
func (p *Publisher) Publish(specs []skills.Spec) (*manifest.Manifest, error) {
	if len(specs) == 0 {
		return nil, errkind.New(errkind.NotFound, "", "no skills declared")
	}
	manifestName := filepath.Base(p.layout.Manifest)
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		if spec.Name == manifestName || p.layout.IsKept(spec.Name) {
			return nil, errkind.New(errkind.Shape, spec.Name, "skill name collides with reserved destination entry %q", spec.Name)
		}
	}

	dest := p.layout.Destination
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, errkind.Wrap(errkind.IO, dest, err)
	}
	if err := p.clear(dest); err != nil {
		return nil, err
	}

	m := &manifest.Manifest{
		Version:     manifest.Version,
		GeneratedAt: manifest.Timestamp(p.now()),
		PublishID:   p.newID(),
		Declaration: p.layout.Rel(p.layout.Declaration),
		Skills:      make([]manifest.Entry, 0, len(specs)),
	}
	for _, spec := range specs {
		target := filepath.Join(dest, spec.Name)
		if err := copyTree(spec.Source, target, make(map[string]bool)); err != nil {
			return nil, errkind.Wrap(errkind.IO, spec.Name, fmt.Errorf("copy %s: %w", spec.Source, err))
		}
		digest, err := p.hasher.Tree(target)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Name, err)
		}
		m.Skills = append(m.Skills, manifest.Entry{
			Name:       spec.Name,
			Source:     p.layout.Rel(spec.Source),
			Dest:       p.layout.Rel(target),
			TreeDigest: digest,
		})
		p.logger.Info("published skill", "name", spec.Name, "digest", digest.String())
	}

	if err := m.Save(p.layout.Manifest); err != nil {
		return nil, err
	}
	p.logger.Info("wrote manifest", "path", p.layout.Rel(p.layout.Manifest), "skills", len(m.Skills))
	return m, nil
}

// clear removes every child of dir that is not a keep-entry.
func (p *Publisher) clear(dir string) error {
	children, err := os.ReadDir(dir)
	if err != nil {
		return errkind.Wrap(errkind.IO, dir, err)
	}
	for _, child := range children {
		if p.layout.IsKept(child.Name()) {
			continue
		}
		path := filepath.Join(dir, child.Name())
		if err := os.RemoveAll(path); err != nil {
			return errkind.Wrap(errkind.IO, path, err)
		}
		p.logger.Debug("removed stale entry", "path", p.layout.Rel(path))
	}
	return nil
}

// copyTree copies src into dst, following symlinks. Dangling links and
// special files are skipped. active holds the resolved directories on the
// current path and stops symlink cycles.
func copyTree(src, dst string, active map[string]bool) error {
	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return err
	}
	if active[resolved] {
		return fmt.Errorf("symlink cycle at %s", src)
	}
	active[resolved] = true
	defer delete(active, resolved)

	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
		return err
	}

	children, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, child := range children {
		from := filepath.Join(src, child.Name())
		to := filepath.Join(dst, child.Name())
		fi, err := os.Stat(from)
		if err != nil {
			if child.Type()&fs.ModeSymlink != 0 && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		switch {
		case fi.IsDir():
			if err := copyTree(from, to, active); err != nil {
				return err
			}
		case fi.Mode().IsRegular():
			if err := copyFile(from, to, fi.Mode().Perm()); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
