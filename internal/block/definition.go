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

package block

import "github.com/spacelift-io/flows-app-aws-api/internal/catalog"

// Definition is the manifest a host uses to present a block.
type Definition struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Category    string            `json:"category"`
	Inputs      map[string]Input  `json:"inputs"`
	Outputs     map[string]Output `json:"outputs"`
}

// Input describes one input channel.
type Input struct {
	// Config is the JSON schema of the event's inputConfig.
	Config map[string]any `json:"config"`
}

// Output describes one output channel.
type Output struct {
	Default bool           `json:"default"`
	Schema  map[string]any `json:"schema"`
}

// Definition renders the block manifest.
func (b *Block) Definition() Definition {
	return DefinitionOf(b.Descriptor)
}

// DefinitionOf renders the manifest of d.
func DefinitionOf(d *catalog.Descriptor) Definition {
	return Definition{
		ID:          d.ID,
		Name:        catalog.LabelFromName(d.Name),
		Description: d.Description,
		Category:    d.Service,
		Inputs: map[string]Input{
			DefaultChannel: {Config: d.InputSchema()},
		},
		Outputs: map[string]Output{
			DefaultChannel: {Default: true, Schema: d.OutputSchema()},
		},
	}
}

// AppConfigSchema is the JSON schema of the application-level configuration
// every block reads its execution context from.
func AppConfigSchema() map[string]any {
	return map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "object",
		"properties": map[string]any{
			"accessKeyId": map[string]any{
				"type":        "string",
				"title":       "Access Key ID",
				"description": "AWS access key ID.",
			},
			"secretAccessKey": map[string]any{
				"type":        "string",
				"title":       "Secret Access Key",
				"description": "AWS secret access key.",
				"writeOnly":   true,
			},
			"sessionToken": map[string]any{
				"type":        "string",
				"title":       "Session Token",
				"description": "Session token for temporary credentials.",
				"writeOnly":   true,
			},
			"endpoint": map[string]any{
				"type":        "string",
				"format":      "uri",
				"title":       "Endpoint",
				"description": "Custom endpoint URL, e.g. for LocalStack.",
			},
		},
		"required":             []any{"accessKeyId", "secretAccessKey"},
		"additionalProperties": false,
	}
}
