// Package treehash computes canonical content digests of files and
// directory trees.
//
// A tree digest depends only on the slash-separated relative paths of the
// regular files under a root and on their bytes. Absolute location,
// timestamps, permissions and directory iteration order have no influence.
package treehash

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/andywolf/swarmctl/internal/errkind"
)

// chunkSize bounds the memory used to hash a single file.
const chunkSize = 1 << 20

// DefaultExclude lists the build artifacts left out of tree digests.
var DefaultExclude = []string{
	"**/__pycache__/**",
	"**/*.pyc",
}

// Digest is a lowercase hex SHA-256.
type Digest string

func (d Digest) String() string { return string(d) }

// IsZero reports whether the digest is unset.
func (d Digest) IsZero() bool { return d == "" }

// Entry is one hashed file of a tree.
type Entry struct {
	Path   string
	Digest Digest
}

// Hasher digests trees while skipping paths that match its exclusion
// patterns. The zero value excludes nothing.
type Hasher struct {
	exclude []string
}

// New returns a Hasher using the given doublestar patterns, matched against
// slash-separated paths relative to the tree root.
func New(exclude []string) (*Hasher, error) {
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	return &Hasher{exclude: append([]string(nil), exclude...)}, nil
}

// Default returns a Hasher using DefaultExclude.
func Default() *Hasher {
	return &Hasher{exclude: DefaultExclude}
}

// Excluded reports whether rel is left out of tree digests.
func (h *Hasher) Excluded(rel string) bool {
	for _, pattern := range h.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// File digests the content of the file at path, reading it in fixed chunks.
func File(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", classify(path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.CopyBuffer(h, f, make([]byte, chunkSize)); err != nil {
		return "", errkind.Wrap(errkind.IO, path, err)
	}
	return Digest(hex.EncodeToString(h.Sum(nil))), nil
}

// Entries lists the digests of every regular file under root that is not
// excluded, sorted by relative path. A symlinked root is resolved first.
func (h *Hasher) Entries(root string) ([]Entry, error) {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, classify(root, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, classify(root, err)
	}
	if !info.IsDir() {
		return nil, errkind.New(errkind.IO, root, "not a directory")
	}

	var entries []Entry
	err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			// Symlinks count when they resolve to a regular file.
			target, statErr := os.Stat(path)
			if statErr != nil || !target.Mode().IsRegular() {
				return nil
			}
		}
		rel, err := filepath.Rel(resolved, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if h.Excluded(rel) {
			return nil
		}
		sum, err := File(path)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Path: rel, Digest: sum})
		return nil
	})
	if err != nil {
		if errkind.KindOf(err) != "" {
			return nil, err
		}
		return nil, errkind.Wrap(errkind.IO, root, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return comparePaths(entries[i].Path, entries[j].Path) < 0
	})
	return entries, nil
}

// comparePaths orders slash paths component by component, so "a/b" sorts
// before "a-b" even though '-' is below '/'.
func comparePaths(a, b string) int {
	return slices.Compare(strings.Split(a, "/"), strings.Split(b, "/"))
}

// Tree digests the directory at root.
func (h *Hasher) Tree(root string) (Digest, error) {
	entries, err := h.Entries(root)
	if err != nil {
		return "", err
	}
	payload, err := Encode(entries)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return Digest(hex.EncodeToString(sum[:])), nil
}

// Encode renders entries as a compact JSON array of [path, digest] pairs,
// in the given order and without insignificant whitespace.
func Encode(entries []Entry) ([]byte, error) {
	pairs := make([][2]string, len(entries))
	for i, e := range entries {
		pairs[i] = [2]string{e.Path, string(e.Digest)}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(pairs); err != nil {
		return nil, fmt.Errorf("encode tree entries: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func classify(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return errkind.Wrap(errkind.NotFound, path, err)
	}
	return errkind.Wrap(errkind.IO, path, err)
}
