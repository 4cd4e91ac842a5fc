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

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/spacelift-io/flows-app-aws-api/internal/awsclient"
	"github.com/spacelift-io/flows-app-aws-api/internal/block"
	"github.com/spacelift-io/flows-app-aws-api/internal/catalog"
	flowserrors "github.com/spacelift-io/flows-app-aws-api/pkg/errors"
)

// ListBlocksTool is the name of the catalog browsing tool.
const ListBlocksTool = "list_blocks"

// ToolName converts a block ID to an MCP tool name
// ("cloudwatch.DeleteAlarms" -> "cloudwatch_DeleteAlarms").
func ToolName(blockID string) string {
	return strings.ReplaceAll(blockID, ".", "_")
}

func (s *Server) blockTool(b *block.Block) (server.ServerTool, error) {
	d := b.Descriptor
	schema, err := json.Marshal(d.InputSchema())
	if err != nil {
		return server.ServerTool{}, fmt.Errorf("encode input schema of %s: %w", d.ID, err)
	}

	description := d.Description
	if description == "" {
		description = catalog.LabelFromName(d.Name)
	}
	description = fmt.Sprintf("[AWS %s] %s", d.Service, description)

	return server.ServerTool{
		Tool:    mcp.NewToolWithRawSchema(ToolName(d.ID), description, schema),
		Handler: s.blockHandler(b),
	}, nil
}

// blockHandler creates an MCP tool handler that invokes b with the call
// arguments as inputConfig.
func (s *Server) blockHandler(b *block.Block) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !s.rateLimiter.AllowCall() {
			return mcp.NewToolResultError("Rate limit exceeded. Please try again later."), nil
		}

		s.logger.Debug("Invoking block via MCP", "block", b.ID())

		var rec block.Recorder
		if err := b.Handle(ctx, block.Event{InputConfig: request.GetArguments()}, &rec); err != nil {
			return errorResult(err), nil
		}

		last, _ := rec.Last()
		data, err := json.MarshalIndent(last.Payload, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// errorResult renders an invocation error for the model. Configuration
// errors list every offending field; provider errors carry the AWS code.
func errorResult(err error) *mcp.CallToolResult {
	message, suggestion := flowserrors.Describe(err)

	var b strings.Builder
	switch flowserrors.Type(err) {
	case flowserrors.TypeInternal:
		b.WriteString("Invocation failed: " + awsclient.SanitizeError(message))
	case "":
		d := awsclient.Describe(err)
		fmt.Fprintf(&b, "AWS request failed (%s)", d.Kind)
		if d.Code != "" {
			fmt.Fprintf(&b, ": %s", d.Code)
		}
		if d.Message != "" {
			fmt.Fprintf(&b, ": %s", d.Message)
		}
		if d.RequestID != "" {
			fmt.Fprintf(&b, " (request ID %s)", d.RequestID)
		}
	default:
		b.WriteString(message)
	}
	if suggestion != "" {
		b.WriteString("\n\nSuggestion: " + suggestion)
	}
	return mcp.NewToolResultError(b.String())
}

type blockSummary struct {
	Tool        string `json:"tool"`
	ID          string `json:"id"`
	Service     string `json:"service"`
	Description string `json:"description,omitempty"`
}

func (s *Server) listBlocksTool() server.ServerTool {
	return server.ServerTool{
		Tool: mcp.Tool{
			Name:        ListBlocksTool,
			Description: "List the AWS blocks available as tools. Optionally filter by service (cloudwatch, ec2, imagebuilder, rds, sts) or by glob pattern on the block ID.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"service": map[string]any{
						"type":        "string",
						"description": "Only list blocks of this service",
					},
					"match": map[string]any{
						"type":        "string",
						"description": "Glob pattern on the block ID, e.g. \"ec2.Describe*\"",
					},
				},
			},
		},
		Handler: s.handleListBlocks,
	}
}

func (s *Server) handleListBlocks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return mcp.NewToolResultError("Rate limit exceeded. Please try again later."), nil
	}

	reg := s.registry
	var filters [][]string
	if match := request.GetString("match", ""); match != "" {
		filters = append(filters, []string{match})
	}
	if svc := request.GetString("service", ""); svc != "" {
		filters = append(filters, []string{svc + ".*"})
	}
	for _, patterns := range filters {
		filtered, err := reg.Filter(patterns)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		reg = filtered
	}

	blocks := reg.List()
	out := make([]blockSummary, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blockSummary{
			Tool:        ToolName(b.ID()),
			ID:          b.ID(),
			Service:     b.Descriptor.Service,
			Description: b.Descriptor.Description,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode block list: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
