// Package manifest reads and writes the record of a published skill set.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/andywolf/swarmctl/internal/errkind"
	"github.com/andywolf/swarmctl/internal/treehash"
)

const (
	// Version identifies the manifest layout.
	Version = "agent-os-v2"
	// FileName is the default manifest name inside the destination root.
	FileName = ".active_set_manifest.json"
)

// Entry records one published skill. Paths are slash-separated and relative
// to the repository root.
type Entry struct {
	Name       string          `json:"name"`
	Source     string          `json:"source"`
	Dest       string          `json:"dest"`
	TreeDigest treehash.Digest `json:"sha256_tree"`
}

// Manifest describes what a publish run copied and the digests of the copies.
// GeneratedAt and PublishID are informational and never compared.
// GeneratedAt holds the timestamp text exactly as it was written.
type Manifest struct {
	Version     string  `json:"version"`
	GeneratedAt string  `json:"generated_at"`
	PublishID   string  `json:"publish_id,omitempty"`
	Declaration string  `json:"active_skills_md"`
	Skills      []Entry `json:"skills"`
}

// Timestamp formats t the way GeneratedAt is written.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// GeneratedTime parses GeneratedAt. It fails for manifests whose timestamp
// is not RFC 3339.
func (m *Manifest) GeneratedTime() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, m.GeneratedAt)
}

// Names returns the recorded skill names in order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.Skills))
	for i, s := range m.Skills {
		names[i] = s.Name
	}
	return names
}

// Lookup returns the entry recorded for name.
func (m *Manifest) Lookup(name string) (Entry, bool) {
	for _, s := range m.Skills {
		if s.Name == name {
			return s, true
		}
	}
	return Entry{}, false
}

// Equivalent reports whether a and b record the same publication, ignoring
// the informational fields.
func Equivalent(a, b *Manifest) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Version == b.Version &&
		a.Declaration == b.Declaration &&
		slices.Equal(a.Skills, b.Skills)
}

// Load reads the manifest at path.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errkind.Wrap(errkind.NotFound, path, err)
		}
		return nil, errkind.Wrap(errkind.IO, path, err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errkind.Wrap(errkind.Syntax, path, fmt.Errorf("invalid manifest JSON: %w", err))
	}
	return &m, nil
}

// Save writes the manifest to path. The file is replaced in one rename so a
// reader never sees a partial manifest.
func (m *Manifest) Save(path string) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	raw = append(raw, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".manifest-*.tmp")
	if err != nil {
		return errkind.Wrap(errkind.IO, path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return errkind.Wrap(errkind.IO, path, err)
	}
	if err := tmp.Close(); err != nil {
		return errkind.Wrap(errkind.IO, path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errkind.Wrap(errkind.IO, path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errkind.Wrap(errkind.IO, path, err)
	}
	return nil
}
