// ABOUTME: Tag model for the specifier of one vCard line (group, name, params).
// ABOUTME: Parses best-effort, serializes canonically, and hashes the result.

package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spaolacci/murmur3"
)

var (
	errEmptyProp      = errors.New("empty property name")
	errMissingAttrSep = errors.New("attribute without '='")
)

// Tag is the parsed specifier of a single content line: an optional group,
// the property name and a multi-valued attribute map. The value payload is
// not part of the tag.
type Tag struct {
	group string
	prop  string
	keys  []string
	attr  map[string][]string
	hash  uint32
}

// NewTag parses a raw content line. Everything after the first unescaped
// ':' is ignored. A malformed line yields an empty tag rather than an error;
// check IsEmpty to detect it.
func NewTag(raw string) *Tag {
	t := &Tag{attr: make(map[string][]string)}
	if err := t.parse(raw); err != nil {
		t.reset()
		return t
	}
	t.hash = hashString(t.String())
	return t
}

func (t *Tag) parse(raw string) error {
	if raw == "" {
		return nil
	}
	spec := raw
	if i := IndexUnescaped(raw, ValueDelimiter); i >= 0 {
		spec = raw[:i]
	}

	tokens := strings.Split(spec, ";")
	frags := strings.Split(tokens[0], ".")
	if len(frags) > 1 {
		t.group = frags[0]
		t.prop = strings.ToUpper(frags[1])
	} else {
		t.prop = strings.ToUpper(frags[0])
	}
	if t.prop == "" {
		return errEmptyProp
	}

	for _, token := range tokens[1:] {
		name, values, ok := strings.Cut(token, "=")
		if !ok {
			return fmt.Errorf("%w: %q", errMissingAttrSep, token)
		}
		t.SetAttr(name, strings.Split(values, ",")...)
	}
	return nil
}

func (t *Tag) reset() {
	t.group = ""
	t.prop = ""
	t.keys = nil
	t.attr = make(map[string][]string)
	t.hash = 0
}

// SetAttr merges values into the attribute key. The key is upper-cased;
// values already present are not repeated, so merging is idempotent.
func (t *Tag) SetAttr(key string, values ...string) {
	key = strings.ToUpper(key)
	existing, ok := t.attr[key]
	if !ok {
		t.keys = append(t.keys, key)
	}
	for _, v := range values {
		if !containsString(existing, v) {
			existing = append(existing, v)
		}
	}
	if existing == nil {
		existing = []string{}
	}
	t.attr[key] = existing
}

// Group returns the group prefix, or "".
func (t *Tag) Group() string { return t.group }

// SetGroup replaces the group prefix.
func (t *Tag) SetGroup(group string) { t.group = group }

// Prop returns the property name.
func (t *Tag) Prop() string { return t.prop }

// SetProp replaces the property name verbatim.
func (t *Tag) SetProp(prop string) { t.prop = prop }

// Hash is the MurmurHash3 of the canonical form taken at construction.
// It is 0 for tags that failed to parse.
func (t *Tag) Hash() uint32 { return t.hash }

// Sum hashes the tag's current canonical form. Unlike Hash it reflects
// changes made through the setters.
func (t *Tag) Sum() uint32 { return hashString(t.String()) }

// IsEmpty reports whether the tag has no property name, which is also how a
// failed parse presents itself.
func (t *Tag) IsEmpty() bool { return t.prop == "" }

// Attr returns the values stored under key (case-insensitive).
func (t *Tag) Attr(key string) []string {
	vals := t.attr[strings.ToUpper(key)]
	if vals == nil {
		return nil
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// HasAttr reports whether key is present (case-insensitive).
func (t *Tag) HasAttr(key string) bool {
	_, ok := t.attr[strings.ToUpper(key)]
	return ok
}

// AttrKeys returns attribute keys in insertion order.
func (t *Tag) AttrKeys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Attributes returns a copy of the attribute map.
func (t *Tag) Attributes() map[string][]string {
	out := make(map[string][]string, len(t.keys))
	for _, k := range t.keys {
		out[k] = t.Attr(k)
	}
	return out
}

// String renders the canonical form: group.PROP;KEY=v1,v2;...
func (t *Tag) String() string {
	if t.prop == "" {
		return ""
	}
	var sb strings.Builder
	if t.group != "" {
		sb.WriteString(t.group)
		sb.WriteByte('.')
	}
	sb.WriteString(t.prop)
	for _, k := range t.keys {
		sb.WriteByte(';')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(strings.Join(t.attr[k], ","))
	}
	return sb.String()
}

func hashString(s string) uint32 {
	if s == "" {
		return 0
	}
	return murmur3.Sum32([]byte(s))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
