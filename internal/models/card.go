// ABOUTME: Card container and the property router that populates it.
// ABOUTME: Slots are named, auto-created, set-valued collections of members.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReservedPrefix marks slot names that are hidden from Get, Has and Keys.
const ReservedPrefix = "_"

// ValueKind identifies which case of Value is populated.
type ValueKind int

const (
	RawValue ValueKind = iota
	PropertyValue
	CardValue
)

// Value is what Card.Set accepts: a raw line, a built Property, or a
// nested card.
type Value struct {
	kind ValueKind
	raw  string
	prop Property
	card *Card
}

// Raw wraps a raw content line (or a bare value).
func Raw(line string) Value { return Value{kind: RawValue, raw: line} }

// Typed wraps an already-built property.
func Typed(p Property) Value { return Value{kind: PropertyValue, prop: p} }

// Embedded wraps a nested card, as used by AGENT.
func Embedded(c *Card) Value { return Value{kind: CardValue, card: c} }

// Kind returns the populated case.
func (v Value) Kind() ValueKind { return v.kind }

// Card is a contact record: named slots each holding a set of members.
// A Card is not safe for concurrent mutation.
type Card struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time

	slots map[string][]Member
	order []string
}

func NewCard() *Card {
	now := time.Now()
	return &Card{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		slots:     make(map[string][]Member),
	}
}

func (c *Card) isMember() {}

// Touch marks the card as modified.
func (c *Card) Touch() {
	c.UpdatedAt = time.Now()
}

// Set adds value to the slot name, creating the slot when needed. Raw lines
// are routed to a typed wrapper by property name; a typed wrapper with an
// empty tag name takes the slot name. Set always reports true.
func (c *Card) Set(name string, value Value) bool {
	switch {
	case value.kind == CardValue && value.card == nil:
		return true
	case value.kind == PropertyValue && value.prop == nil:
		return true
	}
	if c.slots == nil {
		c.slots = make(map[string][]Member)
	}
	if _, ok := c.slots[name]; !ok {
		c.slots[name] = []Member{}
		c.order = append(c.order, name)
	}

	var m Member
	switch value.kind {
	case CardValue:
		m = value.card
	case PropertyValue:
		if value.prop.Tag().Prop() == "" {
			value.prop.Tag().SetProp(name)
		}
		m = value.prop
	default:
		p := ParseProperty(name, value.raw)
		if p.Tag().Prop() == "" {
			p.Tag().SetProp(name)
		}
		m = p
	}
	for _, existing := range c.slots[name] {
		if existing == m {
			return true
		}
	}
	c.slots[name] = append(c.slots[name], m)
	return true
}

// Get returns the members of the slot name in insertion order. Reserved and
// unknown names report false.
func (c *Card) Get(name string) ([]Member, bool) {
	if strings.HasPrefix(name, ReservedPrefix) {
		return nil, false
	}
	members, ok := c.slots[name]
	if !ok {
		return nil, false
	}
	out := make([]Member, len(members))
	copy(out, members)
	return out, true
}

// Has reports whether the slot exists and is not reserved.
func (c *Card) Has(name string) bool {
	if strings.HasPrefix(name, ReservedPrefix) {
		return false
	}
	_, ok := c.slots[name]
	return ok
}

// Keys returns the non-reserved slot names in creation order.
func (c *Card) Keys() []string {
	keys := make([]string, 0, len(c.order))
	for _, k := range c.order {
		if !strings.HasPrefix(k, ReservedPrefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Delete removes the slot name. Deleting a missing slot is a no-op; Delete
// always reports true.
func (c *Card) Delete(name string) bool {
	if _, ok := c.slots[name]; !ok {
		return true
	}
	delete(c.slots, name)
	for i, k := range c.order {
		if k == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Properties returns the typed members of the slot name, skipping embedded
// cards.
func (c *Card) Properties(name string) []Property {
	members, _ := c.Get(name)
	var props []Property
	for _, m := range members {
		if p, ok := m.(Property); ok {
			props = append(props, p)
		}
	}
	return props
}

// First returns the first typed member of the slot name.
func (c *Card) First(name string) (Property, bool) {
	props := c.Properties(name)
	if len(props) == 0 {
		return nil, false
	}
	return props[0], true
}

// Embedded returns the nested cards held in the slot name.
func (c *Card) Embedded(name string) []*Card {
	members, _ := c.Get(name)
	var cards []*Card
	for _, m := range members {
		if nested, ok := m.(*Card); ok {
			cards = append(cards, nested)
		}
	}
	return cards
}

// Lines returns every property line in slot order. Nested cards are skipped.
func (c *Card) Lines() []string {
	var lines []string
	for _, k := range c.Keys() {
		for _, p := range c.Properties(k) {
			lines = append(lines, p.String())
		}
	}
	return lines
}

// DisplayName picks FN, then a formatted N, then the first EMAIL.
func (c *Card) DisplayName() string {
	if p, ok := c.First("FN"); ok {
		if a, ok := p.(*Atom); ok && a.Text() != "" {
			return a.Text()
		}
		if v := Unescape(p.Value()); v != "" {
			return v
		}
	}
	if p, ok := c.First("N"); ok {
		if n, ok := p.(*Name); ok && n.Formatted() != "" {
			return n.Formatted()
		}
	}
	if p, ok := c.First("EMAIL"); ok {
		return Unescape(p.Value())
	}
	return ""
}
