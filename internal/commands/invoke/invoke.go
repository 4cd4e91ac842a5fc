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

// Package invoke implements the invoke command, which runs one block from
// the command line.
package invoke

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spacelift-io/flows-app-aws-api/internal/block"
	"github.com/spacelift-io/flows-app-aws-api/internal/catalog"
	"github.com/spacelift-io/flows-app-aws-api/internal/commands/shared"
	"github.com/spacelift-io/flows-app-aws-api/internal/jq"
)

var (
	inputJSON string
	inputFile string
	setValues []string
	region    string
	query     string
)

// NewCommand creates the invoke command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke <block-id>",
		Short: "Invoke a block once",
		Long: `Invoke a block with an inputConfig built from flags and print the
emitted payload as JSON.

The inputConfig is assembled in order: --input or --input-file, then each
--set, then --region. --set values are parsed as JSON when they are valid
JSON and used as strings otherwise. When no region is given, AWS_REGION is
used.

Exit codes:
  0  success
  2  invalid configuration or input
  3  unknown block
  4  AWS request failed

Examples:
  flows-aws invoke ec2.DescribeRegions --region us-east-1 --set AllRegions=true
  flows-aws invoke cloudwatch.DescribeAlarms --region eu-west-1 --query '.MetricAlarms[].AlarmName'
  flows-aws invoke rds.DescribeDBInstances --input-file event.json`,
		Args: cobra.ExactArgs(1),
		RunE: runInvoke,
	}

	cmd.Flags().StringVar(&inputJSON, "input", "", "inputConfig as a JSON object")
	cmd.Flags().StringVarP(&inputFile, "input-file", "f", "", "Read the inputConfig JSON object from a file (- for stdin)")
	cmd.Flags().StringArrayVar(&setValues, "set", nil, "Set one inputConfig field (key=value, repeatable)")
	cmd.Flags().StringVarP(&region, "region", "r", "", "AWS region")
	cmd.Flags().StringVar(&query, "query", "", "jq expression applied to the payload")
	cmd.MarkFlagsMutuallyExclusive("input", "input-file")

	return cmd
}

// Response is the --json form of invoke.
type Response struct {
	shared.JSONResponse
	Block   string         `json:"block"`
	Payload map[string]any `json:"payload,omitempty"`
	Results []any          `json:"results,omitempty"`
}

func runInvoke(cmd *cobra.Command, args []string) error {
	err := invoke(cmd, args[0])
	if err == nil {
		return nil
	}
	if shared.GetJSON() {
		_ = shared.EmitJSONError(cmd.OutOrStdout(), "invoke", shared.NewJSONError(err))
	}
	return shared.ClassifyInvocationError(err)
}

func invoke(cmd *cobra.Command, id string) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}

	executor := jq.NewExecutor(0, 0)
	if err := executor.Validate(query); err != nil {
		return shared.NewConfigurationError("--query", err)
	}

	event, err := buildEvent(cmd.InOrStdin())
	if err != nil {
		return shared.NewConfigurationError("", err)
	}

	reg, err := shared.BuildRegistry(cfg, shared.RuntimeOptions{
		Logger: shared.NewLogger(cfg, cmd.ErrOrStderr()),
	})
	if err != nil {
		return err
	}

	payload, err := reg.Invoke(cmd.Context(), id, event)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if query == "" {
		if shared.GetJSON() {
			return shared.EmitJSON(out, Response{
				JSONResponse: shared.JSONResponse{Version: "1.0", Command: "invoke", Success: true},
				Block:        id,
				Payload:      payload,
			})
		}
		return shared.EmitJSON(out, payload)
	}

	results, err := executor.Execute(cmd.Context(), query, payload)
	if err != nil {
		return shared.NewConfigurationError("--query", err)
	}
	if shared.GetJSON() {
		return shared.EmitJSON(out, Response{
			JSONResponse: shared.JSONResponse{Version: "1.0", Command: "invoke", Success: true},
			Block:        id,
			Results:      results,
		})
	}
	for _, r := range results {
		if s, ok := r.(string); ok {
			fmt.Fprintln(out, s)
			continue
		}
		if err := shared.EmitJSON(out, r); err != nil {
			return err
		}
	}
	return nil
}

// buildEvent assembles the event from --input/--input-file, --set and
// --region.
func buildEvent(stdin io.Reader) (block.Event, error) {
	config := map[string]any{}

	var raw []byte
	switch {
	case inputJSON != "":
		raw = []byte(inputJSON)
	case inputFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return block.Event{}, fmt.Errorf("failed to read input from stdin: %w", err)
		}
		raw = data
	case inputFile != "":
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return block.Event{}, fmt.Errorf("failed to read input file: %w", err)
		}
		raw = data
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := decodeJSON(raw, &config); err != nil {
			return block.Event{}, fmt.Errorf("input must be a JSON object: %w", err)
		}
		if config == nil {
			config = map[string]any{}
		}
	}

	for _, kv := range setValues {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return block.Event{}, fmt.Errorf("--set %q must be key=value", kv)
		}
		config[key] = parseValue(value)
	}

	if region != "" {
		config[catalog.RegionField] = region
	} else if _, set := config[catalog.RegionField]; !set {
		if env := os.Getenv("AWS_REGION"); env != "" {
			config[catalog.RegionField] = env
		}
	}

	return block.Event{InputConfig: config}, nil
}

// parseValue decodes value as JSON, falling back to the literal string.
func parseValue(value string) any {
	var v any
	if err := decodeJSON([]byte(value), &v); err != nil {
		return value
	}
	return v
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}
