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
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// rootContext is how gojsonschema names the top-level object.
const rootContext = "(root)"

// Problem is one validation failure in a payload.
type Problem struct {
	// Field is the dotted path of the offending field ("AlarmNames", "Dimensions.0.Name").
	Field string

	// Kind is the gojsonschema error type ("required", "invalid_type", ...).
	Kind string

	Message string
}

func (p Problem) String() string {
	if p.Field == "" {
		return p.Message
	}
	return p.Field + ": " + p.Message
}

// Validator checks command payloads against descriptor schemas.
// Compiled schemas are cached per descriptor ID; Validator is safe for
// concurrent use.
type Validator struct {
	mu      sync.RWMutex
	schemas map[string]*gojsonschema.Schema
}

// NewValidator creates an empty validator.
func NewValidator() *Validator {
	return &Validator{schemas: make(map[string]*gojsonschema.Schema)}
}

// Validate returns the problems found in payload, or nil when it conforms.
// The returned error is only set when the descriptor schema cannot be compiled.
func (v *Validator) Validate(d *Descriptor, payload map[string]any) ([]Problem, error) {
	schema, err := v.compiled(d)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		payload = map[string]any{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("validate %s payload: %w", d.ID, err)
	}
	if result.Valid() {
		return nil, nil
	}

	problems := make([]Problem, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		problems = append(problems, toProblem(re))
	}
	sort.SliceStable(problems, func(i, j int) bool {
		return problems[i].Field < problems[j].Field
	})
	return problems, nil
}

func (v *Validator) compiled(d *Descriptor) (*gojsonschema.Schema, error) {
	v.mu.RLock()
	s, ok := v.schemas[d.ID]
	v.mu.RUnlock()
	if ok {
		return s, nil
	}

	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(d.PayloadSchema()))
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s: %w", d.ID, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if existing, ok := v.schemas[d.ID]; ok {
		return existing, nil
	}
	v.schemas[d.ID] = s
	return s, nil
}

func toProblem(re gojsonschema.ResultError) Problem {
	field := re.Field()
	if field == rootContext {
		field = ""
	}
	// required/additional_property errors report the parent; name the property itself.
	if prop, ok := re.Details()["property"].(string); ok && prop != "" {
		switch {
		case field == "":
			field = prop
		case field == prop || strings.HasSuffix(field, "."+prop):
		default:
			field = field + "." + prop
		}
	}

	msg := re.Description()
	switch re.Type() {
	case "required":
		msg = "is required"
	case "additional_property_not_allowed":
		msg = "is not a recognised field for this operation"
	}
	return Problem{Field: field, Kind: re.Type(), Message: msg}
}
