// ABOUTME: Structured (JSON/YAML) form of a Card for storage, sync and export.
// ABOUTME: Rebuilding goes through FromObject and the property router.

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CardData is the serialized form of a Card.
type CardData struct {
	ID         string         `json:"id" yaml:"id"`
	Properties []PropertyData `json:"properties" yaml:"properties"`
	CreatedAt  int64          `json:"created_at" yaml:"created_at"`
	UpdatedAt  int64          `json:"updated_at" yaml:"updated_at"`
}

// PropertyData is one slot member. Exactly one of Tag or Card is set.
type PropertyData struct {
	Name  string    `json:"name" yaml:"name"`
	Tag   *TagData  `json:"tag,omitempty" yaml:"tag,omitempty"`
	Value string    `json:"value,omitempty" yaml:"value,omitempty"`
	Card  *CardData `json:"card,omitempty" yaml:"card,omitempty"`
}

// ToData converts a Card to its serialized form.
func ToData(c *Card) *CardData {
	data := &CardData{
		ID:         c.ID.String(),
		Properties: []PropertyData{},
		CreatedAt:  c.CreatedAt.Unix(),
		UpdatedAt:  c.UpdatedAt.Unix(),
	}
	for _, name := range c.order {
		for _, m := range c.slots[name] {
			switch v := m.(type) {
			case *Card:
				data.Properties = append(data.Properties, PropertyData{Name: name, Card: ToData(v)})
			case Property:
				tag := v.Tag().ToObject()
				data.Properties = append(data.Properties, PropertyData{Name: name, Tag: &tag, Value: v.Value()})
			}
		}
	}
	return data
}

// ToModel rebuilds the Card.
func (d *CardData) ToModel() (*Card, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parse card ID: %w", err)
	}
	c := &Card{
		ID:        id,
		CreatedAt: time.Unix(d.CreatedAt, 0),
		UpdatedAt: time.Unix(d.UpdatedAt, 0),
		slots:     make(map[string][]Member),
	}
	for _, p := range d.Properties {
		switch {
		case p.Card != nil:
			nested, err := p.Card.ToModel()
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", p.Name, err)
			}
			c.Set(p.Name, Embedded(nested))
		case p.Tag != nil:
			tag, err := FromObject(*p.Tag)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", p.Name, err)
			}
			c.Set(p.Name, Typed(NewProperty(p.Name, tag, p.Value)))
		default:
			c.Set(p.Name, Raw(p.Value))
		}
	}
	return c, nil
}
