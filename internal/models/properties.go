// ABOUTME: Named property wrappers (ADR, N, TEL, CATEGORIES) and the dispatch table.
// ABOUTME: NewProperty picks the wrapper for a property name and value.

package models

import "strings"

// VCardCategories is the property name routed to Categories.
const VCardCategories = "CATEGORIES"

// Address wraps an ADR line: PO box; extended; street; locality; region;
// postal code; country.
type Address struct {
	Bag
}

func NewAddress(raw string) *Address { return newAddress(splitRaw(raw)) }

func newAddress(t *Tag, value string) *Address {
	return &Address{Bag: *newBag(t, value)}
}

func (a *Address) POBox() string      { return a.Field(0) }
func (a *Address) Extended() string   { return a.Field(1) }
func (a *Address) Street() string     { return a.Field(2) }
func (a *Address) Locality() string   { return a.Field(3) }
func (a *Address) Region() string     { return a.Field(4) }
func (a *Address) PostalCode() string { return a.Field(5) }
func (a *Address) Country() string    { return a.Field(6) }

// Name wraps an N line: family; given; additional; prefixes; suffixes.
type Name struct {
	Bag
}

func NewName(raw string) *Name { return newName(splitRaw(raw)) }

func newName(t *Tag, value string) *Name {
	return &Name{Bag: *newBag(t, value)}
}

func (n *Name) Family() string       { return n.Field(0) }
func (n *Name) Given() string        { return n.Field(1) }
func (n *Name) Additional() []string { return n.Components(2) }
func (n *Name) Prefixes() []string   { return n.Components(3) }
func (n *Name) Suffixes() []string   { return n.Components(4) }

// Formatted joins the name parts in display order.
func (n *Name) Formatted() string {
	var parts []string
	parts = append(parts, n.Prefixes()...)
	if g := n.Given(); g != "" {
		parts = append(parts, g)
	}
	parts = append(parts, n.Additional()...)
	if f := n.Family(); f != "" {
		parts = append(parts, f)
	}
	parts = append(parts, n.Suffixes()...)
	return strings.Join(parts, " ")
}

// Phone wraps a TEL line.
type Phone struct {
	Atom
}

func NewPhone(raw string) *Phone { return newPhone(splitRaw(raw)) }

func newPhone(t *Tag, value string) *Phone {
	return &Phone{Atom: *newAtom(t, value)}
}

// Number returns the number without a tel: URI scheme.
func (p *Phone) Number() string {
	text := p.Text()
	if len(text) >= 4 && strings.EqualFold(text[:4], "tel:") {
		return text[4:]
	}
	return text
}

// Types returns the TYPE attribute values, lower-cased.
func (p *Phone) Types() []string {
	types := p.tag.Attr("TYPE")
	for i := range types {
		types[i] = strings.ToLower(types[i])
	}
	return types
}

// Categories wraps a CATEGORIES line: a ','-separated list.
type Categories struct {
	base
	items []string
}

func NewCategories(raw string) *Categories { return newCategories(splitRaw(raw)) }

func newCategories(t *Tag, value string) *Categories {
	c := &Categories{base: base{tag: t}}
	if value == "" {
		return c
	}
	for _, item := range SplitEscaped(value, ListDelimiter) {
		if !containsString(c.items, item) {
			c.items = append(c.items, item)
		}
	}
	return c
}

func (c *Categories) Value() string {
	return strings.Join(c.items, string(ListDelimiter))
}

func (c *Categories) String() string { return line(c.tag, c.Value()) }

// Items returns the unescaped categories.
func (c *Categories) Items() []string {
	out := make([]string, len(c.items))
	for i, item := range c.items {
		out[i] = Unescape(item)
	}
	return out
}

type constructor func(t *Tag, value string) Property

var dispatch = map[string]constructor{
	"ADR":           func(t *Tag, v string) Property { return newAddress(t, v) },
	VCardCategories: func(t *Tag, v string) Property { return newCategories(t, v) },
	"N":             func(t *Tag, v string) Property { return newName(t, v) },
	"TEL":           func(t *Tag, v string) Property { return newPhone(t, v) },
}

// NewProperty builds the wrapper that the property name calls for. Names
// outside the dispatch table get a Bag when the value has several fields and
// an Atom otherwise.
func NewProperty(name string, t *Tag, value string) Property {
	if build, ok := dispatch[name]; ok {
		return build(t, value)
	}
	if IsBag(value) {
		return newBag(t, value)
	}
	return newAtom(t, value)
}

// ParseProperty routes a raw line for the named property.
func ParseProperty(name, raw string) Property {
	t, value := splitRaw(raw)
	if name != "" && !t.IsEmpty() && !strings.EqualFold(t.Prop(), name) {
		// A colon inside a bare value ("https://...", "10:30") is not a
		// delimiter unless the text before it names this property.
		t, value = NewTag(""), raw
	}
	return NewProperty(name, t, value)
}
