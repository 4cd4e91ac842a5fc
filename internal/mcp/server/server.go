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

// Package server implements an MCP server that exposes every block as a tool.
//
// Tool arguments are the block's inputConfig, so the tool input schema is the
// block's input schema. A successful call returns the emitted payload as JSON
// text; configuration and provider errors are returned as tool errors rather
// than protocol errors so the model can correct its arguments.
package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/spacelift-io/flows-app-aws-api/internal/block"
	"github.com/spacelift-io/flows-app-aws-api/internal/log"
)

// Server wraps the MCP server and the tools built from a block registry.
type Server struct {
	mcpServer   *server.MCPServer
	registry    *block.Registry
	tools       map[string]server.ServerTool
	name        string
	version     string
	rateLimiter *RateLimiter
	logger      *slog.Logger
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// Name is the server name (default: "flows-aws").
	Name string

	// Version is the flows-aws version.
	Version string

	// Registry provides the blocks exposed as tools.
	Registry *block.Registry

	// CallsPerMinute limits tool calls. Zero uses 120; negative disables.
	CallsPerMinute int

	// Logger must not write to stdout, which carries the protocol.
	Logger *slog.Logger
}

// NewServer creates a new MCP server instance.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Registry == nil {
		return nil, fmt.Errorf("block registry is required")
	}
	if config.Name == "" {
		config.Name = "flows-aws"
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	if config.CallsPerMinute == 0 {
		config.CallsPerMinute = 120
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		mcpServer: server.NewMCPServer(config.Name, config.Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		registry:    config.Registry,
		tools:       make(map[string]server.ServerTool),
		name:        config.Name,
		version:     config.Version,
		rateLimiter: NewRateLimiter(config.CallsPerMinute),
		logger:      log.WithComponent(logger, "mcp"),
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	return s, nil
}

// registerTools adds the catalog tool and one tool per block.
func (s *Server) registerTools() error {
	tools := []server.ServerTool{s.listBlocksTool()}
	for _, b := range s.registry.List() {
		tool, err := s.blockTool(b)
		if err != nil {
			return err
		}
		tools = append(tools, tool)
	}
	for _, t := range tools {
		s.tools[t.Tool.Name] = t
	}
	s.mcpServer.AddTools(tools...)
	return nil
}

// Tools returns the registered tools by name.
func (s *Server) Tools() map[string]server.ServerTool {
	return s.tools
}

// Run serves the protocol over stdin and stdout until the input closes or
// ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting flows-aws MCP server",
		slog.String("version", s.version),
		slog.Int("tools", len(s.tools)))

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	if err := stdio.Listen(ctx, stdinReader(), stdoutWriter()); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
