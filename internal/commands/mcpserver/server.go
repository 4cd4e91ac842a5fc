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

package mcpserver

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spacelift-io/flows-app-aws-api/internal/commands/shared"
	"github.com/spacelift-io/flows-app-aws-api/internal/mcp/server"
	"github.com/spacelift-io/flows-app-aws-api/internal/tracing"
)

// NewCommand creates the mcp-server command
func NewCommand() *cobra.Command {
	var callsPerMinute int

	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Start the flows-aws MCP server",
		Long: `Start the flows-aws MCP (Model Context Protocol) server.

The MCP server exposes every block selected by catalog.include as a tool
that AI assistants can call. Tool arguments are the block's inputConfig,
including region, and the result is the emitted payload as JSON. Each call
sends exactly one AWS request with the credentials from the app section.

The server runs in stdio mode, which is suitable for integration with AI
assistants via their MCP configuration:
  {
    "mcpServers": {
      "aws": {
        "command": "flows-aws",
        "args": ["mcp-server"]
      }
    }
  }

The server exposes these tools:
  - list_blocks: List available blocks (filter by service or glob)
  - <service>_<Operation>: One tool per block, e.g. ec2_DescribeRegions

Logs are written to stderr; stdout carries the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCPServer(cmd, callsPerMinute)
		},
	}

	cmd.Flags().IntVar(&callsPerMinute, "calls-per-minute", 120, "Tool call rate limit (negative disables)")

	return cmd
}

func runMCPServer(cmd *cobra.Command, callsPerMinute int) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	logger := shared.NewLogger(cfg, cmd.ErrOrStderr())
	versionStr, _, _ := shared.GetVersion()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := shared.BuildRegistry(cfg, shared.RuntimeOptions{
		Logger: logger,
		Tracer: tracing.Tracer(),
	})
	if err != nil {
		return err
	}

	srv, err := server.NewServer(server.ServerConfig{
		Name:           "flows-aws",
		Version:        versionStr,
		Registry:       reg,
		CallsPerMinute: callsPerMinute,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	return srv.Run(ctx)
}
