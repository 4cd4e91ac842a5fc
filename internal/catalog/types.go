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
)

// Kind is the variant tag of a ValueType.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// RegionField is the event field that selects the AWS region.
// It is never part of a descriptor's config and never reaches the provider.
const RegionField = "region"

// ValueType describes the type of a config or result field.
// Items is set for arrays, Fields for objects.
type ValueType struct {
	Kind Kind

	// Format is an optional JSON Schema format hint for strings (e.g. "date-time").
	Format string

	// Enum restricts a string to a fixed set of values.
	Enum []string

	Items  *ValueType
	Fields FieldMap
}

// String returns a compact representation such as "[]string" or "object{Name,Value}".
func (v ValueType) String() string {
	switch v.Kind {
	case KindArray:
		if v.Items == nil {
			return "[]?"
		}
		return "[]" + v.Items.String()
	case KindObject:
		return "object{" + strings.Join(v.Fields.Names(), ",") + "}"
	default:
		return string(v.Kind)
	}
}

// Validate checks the type is well formed. path is used in error messages.
func (v ValueType) Validate(path string) error {
	switch v.Kind {
	case KindString, KindNumber, KindBoolean:
		if len(v.Enum) > 0 && v.Kind != KindString {
			return fmt.Errorf("%s: enum is only supported on strings", path)
		}
		if v.Items != nil || v.Fields.Len() > 0 {
			return fmt.Errorf("%s: scalar type %q cannot have items or fields", path, v.Kind)
		}
	case KindArray:
		if v.Items == nil {
			return fmt.Errorf("%s: array type requires items", path)
		}
		return v.Items.Validate(path + "[]")
	case KindObject:
		for _, f := range v.Fields.All() {
			if err := f.Validate(path + "." + f.Name); err != nil {
				return err
			}
		}
	case "":
		return fmt.Errorf("%s: type is required", path)
	default:
		return fmt.Errorf("%s: unknown type %q", path, v.Kind)
	}
	return nil
}

// Field is a named configuration or result field.
type Field struct {
	Name        string
	Label       string
	Description string
	Required    bool
	Type        ValueType
}

// DisplayLabel returns the label, deriving one from the name when unset.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return LabelFromName(f.Name)
}

// Validate checks the field is well formed.
func (f Field) Validate(path string) error {
	if f.Name == "" {
		return fmt.Errorf("%s: field name is required", path)
	}
	return f.Type.Validate(path)
}

// FieldMap is an insertion-ordered mapping of field name to Field.
// The zero value is an empty map ready to use.
type FieldMap struct {
	order  []string
	fields map[string]Field
}

// NewFieldMap builds a FieldMap from fields in the given order.
func NewFieldMap(fields ...Field) FieldMap {
	var m FieldMap
	for _, f := range fields {
		m.Set(f)
	}
	return m
}

// Set adds or replaces a field. Replacing keeps the original position.
func (m *FieldMap) Set(f Field) {
	if m.fields == nil {
		m.fields = make(map[string]Field)
	}
	if _, exists := m.fields[f.Name]; !exists {
		m.order = append(m.order, f.Name)
	}
	m.fields[f.Name] = f
}

// Get returns the named field.
func (m FieldMap) Get(name string) (Field, bool) {
	f, ok := m.fields[name]
	return f, ok
}

// Len returns the number of fields.
func (m FieldMap) Len() int {
	return len(m.order)
}

// Names returns field names in declaration order.
func (m FieldMap) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// All returns the fields in declaration order.
func (m FieldMap) All() []Field {
	out := make([]Field, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.fields[name])
	}
	return out
}

// Required returns the names of required fields in declaration order.
func (m FieldMap) Required() []string {
	var out []string
	for _, name := range m.order {
		if m.fields[name].Required {
			out = append(out, name)
		}
	}
	return out
}

// Descriptor is the static description of one provider operation.
// Descriptors are shared by every invocation of the operation and never mutated.
type Descriptor struct {
	// ID is "<service key>.<Operation>", e.g. "cloudwatch.DeleteAlarms".
	ID string

	// Service is the AWS service identifier, e.g. "CloudWatch".
	Service string

	// Name is the provider operation name, e.g. "DeleteAlarms".
	Name string

	Description string

	Config FieldMap

	// Result is the advisory shape of a successful response.
	Result ValueType
}

// Validate checks the descriptor is well formed.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("descriptor name is required")
	}
	if d.Service == "" {
		return fmt.Errorf("%s: service is required", d.Name)
	}
	if _, clash := d.Config.Get(RegionField); clash {
		return fmt.Errorf("%s: %q is reserved and cannot be declared as a config field", d.ID, RegionField)
	}
	for _, f := range d.Config.All() {
		if err := f.Validate(d.ID + "." + f.Name); err != nil {
			return err
		}
	}
	if d.Result.Kind == "" {
		return nil
	}
	if d.Result.Kind != KindObject {
		return fmt.Errorf("%s: result must be an object, got %q", d.ID, d.Result.Kind)
	}
	return d.Result.Validate(d.ID + ".result")
}
