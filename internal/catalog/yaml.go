// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// serviceFile is the on-disk layout of descriptors/<service>.yaml.
type serviceFile struct {
	// Service is the AWS service identifier used by the client factory.
	Service string `yaml:"service"`

	// Key prefixes operation IDs. Defaults to the lowercased service.
	Key string `yaml:"key"`

	// Shared holds anchored field definitions that operations reference
	// with aliases. It is not read directly.
	Shared yaml.Node `yaml:"shared"`

	Operations []operationEntry `yaml:"operations"`
}

type operationEntry struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Config      FieldMap `yaml:"config"`
	Result      FieldMap `yaml:"result"`
}

// UnmarshalYAML decodes a mapping node keeping the key order.
func (m *FieldMap) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of fields", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		var f Field
		if err := f.UnmarshalYAML(value); err != nil {
			return fmt.Errorf("field %q: %w", key.Value, err)
		}
		f.Name = key.Value
		if _, dup := m.Get(f.Name); dup {
			return fmt.Errorf("line %d: duplicate field %q", key.Line, f.Name)
		}
		m.Set(f)
	}
	return nil
}

// UnmarshalYAML accepts either a full field mapping or a bare type shorthand
// such as `Name: string`.
func (f *Field) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if node.Kind == yaml.ScalarNode {
		return f.Type.UnmarshalYAML(node)
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a field mapping or type name", node.Line)
	}

	var raw struct {
		Label       string    `yaml:"label"`
		Description string    `yaml:"description"`
		Required    bool      `yaml:"required"`
		Type        yaml.Node `yaml:"type"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.Type.Kind == 0 {
		return fmt.Errorf("line %d: type is required", node.Line)
	}
	f.Label = raw.Label
	f.Description = strings.TrimSpace(raw.Description)
	f.Required = raw.Required
	return f.Type.UnmarshalYAML(&raw.Type)
}

// UnmarshalYAML decodes a type. Scalars use the shorthand grammar:
//
//	string | number | boolean | object | timestamp | []<type>
//
// Mappings may set kind, format, enum, items and fields explicitly.
func (v *ValueType) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		parsed, err := parseTypeShorthand(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*v = parsed
		return nil

	case yaml.MappingNode:
		var raw struct {
			Kind   string     `yaml:"kind"`
			Format string     `yaml:"format"`
			Enum   []string   `yaml:"enum"`
			Items  *ValueType `yaml:"items"`
			Fields FieldMap   `yaml:"fields"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		kind := Kind(raw.Kind)
		if kind == "" {
			switch {
			case raw.Items != nil:
				kind = KindArray
			case raw.Fields.Len() > 0:
				kind = KindObject
			default:
				kind = KindString
			}
		}
		*v = ValueType{
			Kind:   kind,
			Format: raw.Format,
			Enum:   raw.Enum,
			Items:  raw.Items,
			Fields: raw.Fields,
		}
		return nil

	default:
		return fmt.Errorf("line %d: expected a type name or mapping", node.Line)
	}
}

// resolveAlias follows *anchor references so shared field definitions can be
// declared once per file.
func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func parseTypeShorthand(s string) (ValueType, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "[]"); ok {
		item, err := parseTypeShorthand(rest)
		if err != nil {
			return ValueType{}, err
		}
		return ValueType{Kind: KindArray, Items: &item}, nil
	}
	switch s {
	case "string", "number", "boolean", "object":
		return ValueType{Kind: Kind(s)}, nil
	case "timestamp":
		return ValueType{Kind: KindString, Format: "date-time"}, nil
	case "":
		return ValueType{}, fmt.Errorf("empty type")
	default:
		return ValueType{}, fmt.Errorf("unknown type %q", s)
	}
}
