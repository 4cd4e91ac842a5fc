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

/*
Package cli provides the root command of the flows-aws CLI.

This package creates the main Cobra command tree and handles global concerns like
version information, persistent flags, and error handling. Individual commands
are implemented in the internal/commands subpackages.

# Command Tree

	flows-aws
	├── serve         Serve blocks over HTTP
	├── mcp-server    Serve blocks as MCP tools over stdio
	├── blocks        List and inspect blocks
	├── invoke        Invoke one block
	├── credentials   Verify AWS credentials
	├── secrets       Store credentials in the system keychain
	├── config        Show the effective configuration
	├── version       Show version
	└── help          Show help

# Global Flags

	--config    Path to config file (default: ~/.config/flows-aws/config.yaml)
	--json      Machine-readable output
	--verbose   Debug logging
	--quiet     Errors only
*/
package cli
