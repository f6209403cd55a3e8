package simpleyaml

import "strconv"

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindMapping Kind = iota
	KindList
	KindString
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindMapping:
		return "mapping"
	case KindList:
		return "list"
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// Value is a node of a parsed document: a Mapping, a List or a Scalar.
// Values are never modified after Parse returns them.
type Value interface {
	Kind() Kind
	sealed()
}

// Mapping is an ordered set of keys, each bound to a Value.
type Mapping struct {
	keys    []string
	entries map[string]Value
}

func (Mapping) Kind() Kind { return KindMapping }
func (Mapping) sealed()    {}

// Len returns the number of keys.
func (m Mapping) Len() int { return len(m.keys) }

// Keys returns the keys in the order they first appeared.
func (m Mapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the value bound to key.
func (m Mapping) Get(key string) (Value, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// Mapping returns the value bound to key when it is a mapping.
func (m Mapping) Mapping(key string) (Mapping, bool) {
	v, ok := m.entries[key].(Mapping)
	return v, ok
}

// List returns the value bound to key when it is a list.
func (m Mapping) List(key string) (List, bool) {
	v, ok := m.entries[key].(List)
	return v, ok
}

// String returns the value bound to key when it is a string scalar.
func (m Mapping) String(key string) (string, bool) {
	v, ok := m.entries[key].(Scalar)
	if !ok {
		return "", false
	}
	return v.Text()
}

// List is an ordered sequence of values.
type List struct {
	items []Value
}

func (List) Kind() Kind { return KindList }
func (List) sealed()    {}

// Len returns the number of items.
func (l List) Len() int { return len(l.items) }

// At returns the i-th item.
func (l List) At(i int) Value { return l.items[i] }

// Items returns a copy of the items.
func (l List) Items() []Value {
	out := make([]Value, len(l.items))
	copy(out, l.items)
	return out
}

// Strings returns the items rendered as text, in order.
func (l List) Strings() []string {
	out := make([]string, 0, len(l.items))
	for _, item := range l.items {
		if s, ok := item.(Scalar); ok {
			out = append(out, s.String())
		}
	}
	return out
}

// Scalar is a string, integer or boolean leaf.
type Scalar struct {
	kind Kind
	text string
	num  int
	flag bool
}

func (s Scalar) Kind() Kind { return s.kind }
func (Scalar) sealed()      {}

// StringScalar, IntScalar and BoolScalar build leaves directly.
func StringScalar(s string) Scalar { return Scalar{kind: KindString, text: s} }
func IntScalar(n int) Scalar       { return Scalar{kind: KindInt, num: n} }
func BoolScalar(b bool) Scalar     { return Scalar{kind: KindBool, flag: b} }

// Text returns the string content of a string scalar.
func (s Scalar) Text() (string, bool) {
	return s.text, s.kind == KindString
}

// Int returns the content of an integer scalar.
func (s Scalar) Int() (int, bool) {
	return s.num, s.kind == KindInt
}

// Bool returns the content of a boolean scalar.
func (s Scalar) Bool() (bool, bool) {
	return s.flag, s.kind == KindBool
}

// String renders the scalar whatever its kind.
func (s Scalar) String() string {
	switch s.kind {
	case KindInt:
		return strconv.Itoa(s.num)
	case KindBool:
		return strconv.FormatBool(s.flag)
	default:
		return s.text
	}
}

// Interface converts v into plain Go values: map[string]any, []any,
// string, int and bool.
func Interface(v Value) any {
	switch t := v.(type) {
	case Mapping:
		out := make(map[string]any, len(t.keys))
		for _, k := range t.keys {
			out[k] = Interface(t.entries[k])
		}
		return out
	case List:
		out := make([]any, len(t.items))
		for i, item := range t.items {
			out[i] = Interface(item)
		}
		return out
	case Scalar:
		switch t.kind {
		case KindInt:
			return t.num
		case KindBool:
			return t.flag
		default:
			return t.text
		}
	default:
		return nil
	}
}
