// Package simpleyaml parses the restricted, indentation-based YAML subset used
// by the routing configuration: nested mappings, lists of scalars, string,
// integer and boolean scalars, quoting and trailing comments. Anything else is
// rejected with an errkind.Syntax error that names the offending line.
package simpleyaml

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/andywolf/swarmctl/internal/errkind"
)

type line struct {
	num    int
	indent int
	text   string
}

type parser struct {
	lines []line
	pos   int
}

// Parse turns text into a mapping. Empty input yields an empty mapping.
func Parse(text string) (Mapping, error) {
	lines, err := scan(text)
	if err != nil {
		return Mapping{}, err
	}
	p := &parser{lines: lines}
	return p.mapping(0)
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Mapping{}, errkind.Wrap(errkind.NotFound, path, err)
		}
		return Mapping{}, errkind.Wrap(errkind.IO, path, err)
	}
	m, err := Parse(string(data))
	if err != nil {
		return Mapping{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// scan drops comments and blank lines and measures indentation.
func scan(text string) ([]line, error) {
	var out []line
	for i, raw := range strings.Split(text, "\n") {
		raw = stripComment(strings.TrimSuffix(raw, "\r"))
		if strings.TrimSpace(raw) == "" {
			continue
		}
		body := strings.TrimLeft(raw, " ")
		if body[0] == '\t' {
			return nil, syntaxError(i+1, "tab character in indentation")
		}
		out = append(out, line{num: i + 1, indent: len(raw) - len(body), text: body})
	}
	return out, nil
}

// stripComment cuts s at the first '#' that is not inside a quoted span.
func stripComment(s string) string {
	inSingle, inDouble := false, false
	for i, r := range s {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case r == '#' && !inSingle && !inDouble:
			return strings.TrimRightFunc(s[:i], unicode.IsSpace)
		}
	}
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// mapping consumes every following line indented at least minIndent.
func (p *parser) mapping(minIndent int) (Mapping, error) {
	m := Mapping{entries: make(map[string]Value)}
	for p.pos < len(p.lines) && p.lines[p.pos].indent >= minIndent {
		ln := p.lines[p.pos]
		if isListItem(ln.text) {
			return Mapping{}, syntaxError(ln.num, "list item %q inside a mapping", ln.text)
		}
		key, rest, ok := strings.Cut(ln.text, ":")
		if !ok {
			return Mapping{}, syntaxError(ln.num, "cannot classify %q", ln.text)
		}
		key = strings.TrimSpace(key)
		rest = strings.TrimSpace(rest)
		if key == "" {
			return Mapping{}, syntaxError(ln.num, "empty key in %q", ln.text)
		}
		p.pos++

		var (
			v   Value
			err error
		)
		switch {
		case rest != "":
			v = coerce(rest)
		case p.listFollows(ln.indent):
			v, err = p.list(ln.indent + 2)
		default:
			v, err = p.mapping(ln.indent + 2)
		}
		if err != nil {
			return Mapping{}, err
		}
		if _, dup := m.entries[key]; !dup {
			m.keys = append(m.keys, key)
		}
		m.entries[key] = v
	}
	return m, nil
}

// list consumes every following list item indented at least minIndent.
func (p *parser) list(minIndent int) (List, error) {
	var l List
	for p.pos < len(p.lines) && p.lines[p.pos].indent >= minIndent {
		ln := p.lines[p.pos]
		if !isListItem(ln.text) {
			if !strings.Contains(ln.text, ":") {
				return List{}, syntaxError(ln.num, "cannot classify %q", ln.text)
			}
			return List{}, syntaxError(ln.num, "mapping entry %q inside a list", ln.text)
		}
		l.items = append(l.items, coerce(strings.TrimSpace(ln.text[2:])))
		p.pos++
	}
	return l, nil
}

// listFollows reports whether the next line opens a list nested under a key
// at indent.
func (p *parser) listFollows(indent int) bool {
	if p.pos >= len(p.lines) {
		return false
	}
	next := p.lines[p.pos]
	return next.indent > indent && isListItem(next.text)
}

func isListItem(text string) bool {
	return strings.HasPrefix(text, "- ")
}

func coerce(s string) Scalar {
	if isDigits(s) {
		if n, err := strconv.Atoi(s); err == nil {
			return IntScalar(n)
		}
	}
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return StringScalar(s[1 : len(s)-1])
	}
	switch strings.ToLower(s) {
	case "true":
		return BoolScalar(true)
	case "false":
		return BoolScalar(false)
	}
	return StringScalar(s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func syntaxError(num int, format string, args ...any) error {
	return errkind.New(errkind.Syntax, fmt.Sprintf("line %d", num), format, args...)
}
