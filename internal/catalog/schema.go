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

// JSONSchema renders the type as a JSON Schema (draft-07) fragment.
// Objects nested inside config fields are closed (additionalProperties: false)
// when strict is true; result schemas are always open.
func (v ValueType) JSONSchema(strict bool) map[string]any {
	switch v.Kind {
	case KindArray:
		s := map[string]any{"type": "array"}
		if v.Items != nil {
			s["items"] = v.Items.JSONSchema(strict)
		}
		return s
	case KindObject:
		return objectSchema(v.Fields, strict)
	default:
		s := map[string]any{"type": string(v.Kind)}
		if v.Format != "" {
			s["format"] = v.Format
		}
		if len(v.Enum) > 0 {
			enum := make([]any, len(v.Enum))
			for i, e := range v.Enum {
				enum[i] = e
			}
			s["enum"] = enum
		}
		return s
	}
}

func fieldSchema(f Field, strict bool) map[string]any {
	s := f.Type.JSONSchema(strict)
	s["title"] = f.DisplayLabel()
	if f.Description != "" {
		s["description"] = f.Description
	}
	return s
}

func objectSchema(fields FieldMap, strict bool) map[string]any {
	s := map[string]any{"type": "object"}
	if fields.Len() == 0 {
		// A bare "object" carries arbitrary keys.
		s["additionalProperties"] = true
		return s
	}
	props := make(map[string]any, fields.Len())
	for _, f := range fields.All() {
		props[f.Name] = fieldSchema(f, strict)
	}
	s["properties"] = props
	if req := fields.Required(); len(req) > 0 {
		s["required"] = toAnySlice(req)
	}
	s["additionalProperties"] = !strict
	return s
}

// PayloadSchema is the schema of the command payload: the config fields only.
func (d *Descriptor) PayloadSchema() map[string]any {
	s := objectSchema(d.Config, true)
	s["$schema"] = "http://json-schema.org/draft-07/schema#"
	if _, ok := s["properties"]; !ok {
		s["properties"] = map[string]any{}
	}
	s["additionalProperties"] = false
	return s
}

// InputSchema is the schema of an event's inputConfig: the config fields plus
// the mandatory region.
func (d *Descriptor) InputSchema() map[string]any {
	s := d.PayloadSchema()
	props := s["properties"].(map[string]any)
	withRegion := make(map[string]any, len(props)+1)
	withRegion[RegionField] = map[string]any{
		"type":        "string",
		"minLength":   1,
		"title":       "Region",
		"description": "AWS region the request is sent to, e.g. us-east-1.",
	}
	for k, p := range props {
		withRegion[k] = p
	}
	s["properties"] = withRegion
	required := []any{RegionField}
	if existing, ok := s["required"].([]any); ok {
		required = append(required, existing...)
	}
	s["required"] = required
	return s
}

// OutputSchema is the advisory schema of the emitted result.
func (d *Descriptor) OutputSchema() map[string]any {
	s := objectSchema(d.Result.Fields, false)
	s["additionalProperties"] = true
	return s
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
