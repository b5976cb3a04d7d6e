// ABOUTME: Generic typed property wrappers: Atom (single value) and Bag (fields).
// ABOUTME: Every wrapper owns exactly one Tag plus its parsed value.

package models

import "strings"

// Member is anything a card slot can hold: a typed Property or an embedded
// *Card.
type Member interface {
	isMember()
}

// Property is a typed wrapper around one content line.
type Property interface {
	Member
	// Tag returns the wrapper's tag. It is never nil.
	Tag() *Tag
	// Value returns the escaped value text.
	Value() string
	// String returns the full content line.
	String() string
}

type base struct {
	tag *Tag
}

func (b *base) Tag() *Tag { return b.tag }
func (b *base) isMember() {}

// splitRaw parses a raw line into its tag and value. A line without a value
// delimiter is treated as a bare value with an empty tag, which the router
// later backfills with the slot name.
func splitRaw(raw string) (*Tag, string) {
	if _, value, ok := SplitLine(raw); ok {
		return NewTag(raw), value
	}
	return NewTag(""), raw
}

func line(t *Tag, value string) string {
	return t.String() + ":" + value
}

// Atom holds a single scalar value.
type Atom struct {
	base
	value string
}

// NewAtom builds an Atom from a raw line.
func NewAtom(raw string) *Atom {
	return newAtom(splitRaw(raw))
}

func newAtom(t *Tag, value string) *Atom {
	return &Atom{base: base{tag: t}, value: value}
}

func (a *Atom) Value() string  { return a.value }
func (a *Atom) String() string { return line(a.tag, a.value) }

// Text returns the unescaped value.
func (a *Atom) Text() string { return Unescape(a.value) }

// Bag holds a value made of ';'-separated fields.
type Bag struct {
	base
	fields []string
}

// NewBag builds a Bag from a raw line.
func NewBag(raw string) *Bag {
	return newBag(splitRaw(raw))
}

func newBag(t *Tag, value string) *Bag {
	return &Bag{base: base{tag: t}, fields: SplitEscaped(value, FieldDelimiter)}
}

func (b *Bag) Value() string  { return strings.Join(b.fields, string(FieldDelimiter)) }
func (b *Bag) String() string { return line(b.tag, b.Value()) }

// Len returns the number of fields.
func (b *Bag) Len() int { return len(b.fields) }

// Field returns the unescaped field at i, or "" when out of range.
func (b *Bag) Field(i int) string {
	if i < 0 || i >= len(b.fields) {
		return ""
	}
	return Unescape(b.fields[i])
}

// Fields returns every field unescaped.
func (b *Bag) Fields() []string {
	out := make([]string, len(b.fields))
	for i := range b.fields {
		out[i] = b.Field(i)
	}
	return out
}

// Components splits field i on unescaped ',' and unescapes each part.
func (b *Bag) Components(i int) []string {
	if i < 0 || i >= len(b.fields) || b.fields[i] == "" {
		return nil
	}
	parts := SplitEscaped(b.fields[i], ListDelimiter)
	for j := range parts {
		parts[j] = Unescape(parts[j])
	}
	return parts
}
