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

package main

import (
	"github.com/spacelift-io/flows-app-aws-api/internal/cli"
	"github.com/spacelift-io/flows-app-aws-api/internal/commands/blocks"
	"github.com/spacelift-io/flows-app-aws-api/internal/commands/config"
	"github.com/spacelift-io/flows-app-aws-api/internal/commands/credentials"
	"github.com/spacelift-io/flows-app-aws-api/internal/commands/invoke"
	"github.com/spacelift-io/flows-app-aws-api/internal/commands/mcpserver"
	"github.com/spacelift-io/flows-app-aws-api/internal/commands/secrets"
	"github.com/spacelift-io/flows-app-aws-api/internal/commands/serve"
	versioncmd "github.com/spacelift-io/flows-app-aws-api/internal/commands/version"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	rootCmd := cli.NewRootCommand()

	// Hosts
	rootCmd.AddCommand(serve.NewCommand())
	rootCmd.AddCommand(mcpserver.NewCommand())

	// Blocks
	rootCmd.AddCommand(blocks.NewCommand())
	rootCmd.AddCommand(invoke.NewCommand())

	// Configuration and credentials
	rootCmd.AddCommand(credentials.NewCommand())
	rootCmd.AddCommand(secrets.NewCommand())
	rootCmd.AddCommand(config.NewConfigCommand())

	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	// Custom help command with JSON support
	rootCmd.SetHelpCommand(cli.NewHelpCommand(rootCmd))

	if err := rootCmd.Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
