package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Metadata is the optional YAML front matter of a SKILL.md file.
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	License     string `yaml:"license,omitempty"`
}

// ParseFrontMatter extracts the front matter block of a SKILL.md document.
// Documents without a leading "---" fence have empty metadata.
func ParseFrontMatter(content string) (Metadata, error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return Metadata{}, nil
	}
	block, _, found := strings.Cut(normalized[len("---\n"):], "\n---")
	if !found {
		return Metadata{}, fmt.Errorf("invalid front matter: missing closing fence")
	}
	var meta Metadata
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse front matter: %w", err)
	}
	return meta, nil
}

// ReadMetadata reads the front matter of the marker file in dir.
func ReadMetadata(dir string) (Metadata, error) {
	content, err := os.ReadFile(filepath.Join(dir, MarkerFile))
	if err != nil {
		return Metadata{}, err
	}
	return ParseFrontMatter(string(content))
}
