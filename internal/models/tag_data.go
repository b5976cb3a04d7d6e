// ABOUTME: Structured (JSON/YAML) form of a Tag and the FromObject entry point.
// ABOUTME: Attribute values decode from either a single string or a list.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ReferenceError reports a required field missing from structured input.
type ReferenceError struct {
	Field string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("missing %q field", e.Field)
}

// TagData is the structured form of a Tag.
type TagData struct {
	Group *string `json:"group,omitempty" yaml:"group,omitempty"`
	Prop  *string `json:"prop,omitempty" yaml:"prop,omitempty"`
	Attr  AttrMap `json:"attr,omitempty" yaml:"attr,omitempty"`
}

// AttrValues is a list of attribute values. A bare string decodes as a
// one-element list.
type AttrValues []string

func (v *AttrValues) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = AttrValues{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("attribute values: %w", err)
	}
	*v = list
	return nil
}

func (v *AttrValues) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*v = AttrValues{node.Value}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return fmt.Errorf("attribute values: %w", err)
	}
	*v = list
	return nil
}

// AttrEntry is one key of an AttrMap.
type AttrEntry struct {
	Key    string
	Values AttrValues
}

// AttrMap keeps attribute keys in document order so a decoded tag
// serializes, and hashes, the same way as the source it came from.
type AttrMap []AttrEntry

func (m AttrMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		vals, err := json.Marshal([]string(e.Values))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(vals)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *AttrMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("attr: expected object, got %v", tok)
	}
	var out AttrMap
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("attr: expected key, got %v", tok)
		}
		var vals AttrValues
		if err := dec.Decode(&vals); err != nil {
			return fmt.Errorf("attr %q: %w", key, err)
		}
		out = append(out, AttrEntry{Key: key, Values: vals})
	}
	*m = out
	return nil
}

func (m AttrMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range m {
		var val yaml.Node
		if err := val.Encode([]string(e.Values)); err != nil {
			return nil, err
		}
		val.Style = yaml.FlowStyle
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Key},
			&val,
		)
	}
	return node, nil
}

func (m *AttrMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("attr: expected mapping at line %d", node.Line)
	}
	var out AttrMap
	for i := 0; i+1 < len(node.Content); i += 2 {
		var vals AttrValues
		if err := node.Content[i+1].Decode(&vals); err != nil {
			return fmt.Errorf("attr %q: %w", node.Content[i].Value, err)
		}
		out = append(out, AttrEntry{Key: node.Content[i].Value, Values: vals})
	}
	*m = out
	return nil
}

// FromObject rebuilds a Tag from structured data. Prop is required and is
// taken verbatim, without the upper-casing the string parser applies.
func FromObject(data TagData) (*Tag, error) {
	if data.Prop == nil {
		return nil, &ReferenceError{Field: "prop"}
	}

	t := NewTag("")
	t.SetProp(*data.Prop)
	if data.Group != nil {
		t.SetGroup(*data.Group)
	}
	for _, e := range data.Attr {
		t.SetAttr(e.Key, e.Values...)
	}
	t.hash = hashString(t.String())
	return t, nil
}

// ToObject returns the structured form of t.
func (t *Tag) ToObject() TagData {
	prop := t.prop
	data := TagData{Prop: &prop}
	if t.group != "" {
		group := t.group
		data.Group = &group
	}
	for _, k := range t.keys {
		data.Attr = append(data.Attr, AttrEntry{Key: k, Values: t.Attr(k)})
	}
	return data
}
