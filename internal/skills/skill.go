// Package skills resolves the declared active skill set and checks that each
// declared skill directory is publishable.
package skills

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/andywolf/swarmctl/internal/errkind"
)

// MarkerFile must exist at the root of every skill directory.
const MarkerFile = "SKILL.md"

var backticked = regexp.MustCompile("`([^`]+)`")

// Spec is one resolved skill: its unique name and the directory it is
// published from.
type Spec struct {
	Name   string
	Source string
}

// Resolve extracts the skill references listed in a declaration.
//
// Only list items count: lines starting with "-", holding either a
// backticked path or a bare one. Every other line is prose and is skipped.
// Relative paths are joined to base. When two entries share a name, the first
// one wins and declaration order is kept.
func Resolve(text, base string) ([]Spec, error) {
	var specs []Spec
	seen := make(map[string]bool)
	for _, raw := range strings.Split(text, "\n") {
		value, ok := listValue(raw)
		if !ok {
			continue
		}
		name := filepath.Base(filepath.Clean(value))
		if name == "." || name == ".." || name == string(filepath.Separator) {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		source := value
		if !filepath.IsAbs(source) {
			source = filepath.Join(base, value)
		}
		specs = append(specs, Spec{Name: name, Source: filepath.Clean(source)})
	}
	if len(specs) == 0 {
		return nil, errkind.New(errkind.NotFound, "", "no skills declared")
	}
	return specs, nil
}

// ResolveFile reads the declaration at path and resolves it against base.
func ResolveFile(path, base string) ([]Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errkind.Wrap(errkind.NotFound, path, err)
		}
		return nil, errkind.Wrap(errkind.IO, path, err)
	}
	specs, err := Resolve(string(data), base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return specs, nil
}

// Names returns the names of specs in order.
func Names(specs []Spec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}

// listValue returns the path held by a declaration list item.
func listValue(raw string) (string, bool) {
	line := strings.TrimSpace(raw)
	if !strings.HasPrefix(line, "-") {
		return "", false
	}
	var value string
	if m := backticked.FindStringSubmatch(line); m != nil {
		value = m[1]
	} else {
		value = strings.TrimLeft(line, "-")
	}
	value = strings.TrimSpace(value)
	if value == "" || strings.HasPrefix(value, "#") {
		return "", false
	}
	return value, true
}

// Validate checks that the source is a directory holding the marker file.
func (s Spec) Validate() error {
	info, err := os.Stat(s.Source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errkind.New(errkind.NotFound, s.Name, "skill directory not found: %s", s.Source)
		}
		return errkind.Wrap(errkind.IO, s.Name, err)
	}
	if !info.IsDir() {
		return errkind.New(errkind.NotFound, s.Name, "skill directory not found: %s is not a directory", s.Source)
	}
	marker, err := os.Stat(filepath.Join(s.Source, MarkerFile))
	if err != nil || marker.IsDir() {
		return errkind.New(errkind.NotFound, s.Name, "missing %s in: %s", MarkerFile, s.Source)
	}
	return nil
}
