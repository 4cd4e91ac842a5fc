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

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/spacelift-io/flows-app-aws-api/internal/catalog"
	"github.com/spacelift-io/flows-app-aws-api/internal/commands/shared"
)

const docsURL = "https://github.com/spacelift-io/flows-app-aws-api#readme"

// Command groups used when a command carries no "group" annotation.
var commandGroups = map[string]string{
	"serve":       "hosts",
	"mcp-server":  "hosts",
	"blocks":      "blocks",
	"invoke":      "blocks",
	"credentials": "configuration",
	"secrets":     "configuration",
	"config":      "configuration",
}

// ExitCode documents one process exit status.
type ExitCode struct {
	Code    int    `json:"code"`
	Meaning string `json:"meaning"`
}

var exitCodes = []ExitCode{
	{shared.ExitSuccess, "success"},
	{shared.ExitInvocationFailed, "invocation failed (result normalization, client construction, emit, other errors)"},
	{shared.ExitConfiguration, "configuration error: invalid inputConfig, credentials or flags"},
	{shared.ExitNotFound, "block not found"},
	{shared.ExitProviderError, "AWS returned an error or could not be reached"},
}

// CommandMetadata describes a command for JSON output.
type CommandMetadata struct {
	Name        string         `json:"name"`
	Short       string         `json:"short"`
	Long        string         `json:"long,omitempty"`
	Usage       string         `json:"usage"`
	Flags       []FlagMetadata `json:"flags,omitempty"`
	Examples    string         `json:"examples,omitempty"`
	Subcommands []string       `json:"subcommands,omitempty"`
	Group       string         `json:"group,omitempty"`
	Aliases     []string       `json:"aliases,omitempty"`
}

// FlagMetadata describes a flag.
type FlagMetadata struct {
	Name      string `json:"name"`
	Shorthand string `json:"shorthand,omitempty"`
	Usage     string `json:"usage"`
	Default   string `json:"default,omitempty"`
	Required  bool   `json:"required"`
}

// ServiceHelp lists the blocks of one AWS service.
type ServiceHelp struct {
	Key    string   `json:"key"`
	Name   string   `json:"name"`
	Blocks []string `json:"blocks"`
}

// BlockHelp is the help for one block ID.
type BlockHelp struct {
	ID          string   `json:"id"`
	Service     string   `json:"service"`
	Description string   `json:"description,omitempty"`
	Required    []string `json:"required"`
	Optional    []string `json:"optional,omitempty"`
	Usage       string   `json:"usage"`
}

// HelpResponse is the JSON response of the help command.
type HelpResponse struct {
	shared.JSONResponse
	Commands    []CommandMetadata `json:"commands,omitempty"`
	Command     *CommandMetadata  `json:"command,omitempty"`
	Block       *BlockHelp        `json:"block,omitempty"`
	GlobalFlags []FlagMetadata    `json:"global_flags,omitempty"`
	Services    []ServiceHelp     `json:"services,omitempty"`
	ExitCodes   []ExitCode        `json:"exit_codes"`
	DocsURL     string            `json:"docs_url"`
}

// NewHelpCommand creates the help command. Besides commands it accepts a
// block ID, e.g. "flows-aws help ec2.StopInstances".
func NewHelpCommand(rootCmd *cobra.Command) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "help [command | block-id]",
		Short: "Help about any command or block",
		Long: `Help provides detailed information about commands, blocks and exit codes.

Run 'flows-aws help' to see all commands, the AWS services and exit codes.
Run 'flows-aws help <command>' for help on a command.
Run 'flows-aws help <block-id>' for the fields and invoke usage of a block.
Use --json for machine-readable output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			useJSON := shared.GetJSON() || jsonOutput
			out := cmd.OutOrStdout()
			cat, _ := catalog.Default()

			if len(args) == 0 {
				if useJSON {
					return shared.EmitJSON(out, HelpResponse{
						JSONResponse: shared.JSONResponse{Version: "1.0", Command: "help", Success: true},
						Commands:     visibleCommands(rootCmd),
						GlobalFlags:  extractGlobalFlags(rootCmd),
						Services:     serviceHelp(cat),
						ExitCodes:    exitCodes,
						DocsURL:      docsURL,
					})
				}
				if err := rootCmd.Help(); err != nil {
					return err
				}
				printExitCodes(out)
				return nil
			}

			if cat != nil {
				if d, ok := cat.Get(args[0]); ok {
					bh := blockHelp(d)
					if useJSON {
						return shared.EmitJSON(out, HelpResponse{
							JSONResponse: shared.JSONResponse{Version: "1.0", Command: "help " + d.ID, Success: true},
							Block:        &bh,
							ExitCodes:    exitCodes,
							DocsURL:      docsURL,
						})
					}
					printBlockHelp(out, bh)
					return nil
				}
			}

			targetCmd, _, err := rootCmd.Find(args)
			if err != nil {
				return fmt.Errorf("command or block %q not found", args[0])
			}
			if useJSON {
				metadata := extractCommandMetadata(targetCmd)
				return shared.EmitJSON(out, HelpResponse{
					JSONResponse: shared.JSONResponse{Version: "1.0", Command: "help " + targetCmd.Name(), Success: true},
					Command:      &metadata,
					GlobalFlags:  extractGlobalFlags(rootCmd),
					ExitCodes:    exitCodes,
					DocsURL:      docsURL,
				})
			}
			return targetCmd.Help()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func visibleCommands(rootCmd *cobra.Command) []CommandMetadata {
	commands := []CommandMetadata{}
	for _, c := range rootCmd.Commands() {
		if c.Hidden {
			continue
		}
		commands = append(commands, extractCommandMetadata(c))
	}
	return commands
}

// serviceHelp groups the catalog's block IDs by service key.
func serviceHelp(cat *catalog.Catalog) []ServiceHelp {
	if cat == nil {
		return nil
	}
	var out []ServiceHelp
	index := map[string]int{}
	for _, d := range cat.List() {
		key := catalog.ServiceKey(d.ID)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, ServiceHelp{Key: key, Name: d.Service})
		}
		out[i].Blocks = append(out[i].Blocks, d.ID)
	}
	return out
}

func blockHelp(d *catalog.Descriptor) BlockHelp {
	bh := BlockHelp{
		ID:          d.ID,
		Service:     d.Service,
		Description: strings.TrimSpace(d.Description),
		Required:    []string{catalog.RegionField},
	}

	usage := []string{"flows-aws invoke " + d.ID, "--set " + catalog.RegionField + "=us-east-1"}
	for _, f := range d.Config.All() {
		if !f.Required {
			bh.Optional = append(bh.Optional, f.Name)
			continue
		}
		bh.Required = append(bh.Required, f.Name)
		usage = append(usage, fmt.Sprintf("--set %s=<%s>", f.Name, f.Type))
	}
	bh.Usage = strings.Join(usage, " ")
	return bh
}

func printBlockHelp(w io.Writer, bh BlockHelp) {
	fmt.Fprintf(w, "%s %s (%s)\n", shared.RenderLabel("Block:"), bh.ID, bh.Service)
	if bh.Description != "" {
		fmt.Fprintf(w, "\n%s\n", bh.Description)
	}
	fmt.Fprintf(w, "\n%s %s\n", shared.RenderLabel("Required:"), strings.Join(bh.Required, ", "))
	if len(bh.Optional) > 0 {
		fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("Optional:"), strings.Join(bh.Optional, ", "))
	}
	fmt.Fprintf(w, "\n%s\n  %s\n", shared.RenderLabel("Usage:"), bh.Usage)
	fmt.Fprintf(w, "\nRun 'flows-aws blocks show %s' for field types and the result schema.\n", bh.ID)
}

func printExitCodes(w io.Writer) {
	fmt.Fprintf(w, "\n%s\n", shared.RenderLabel("Exit Codes:"))
	for _, ec := range exitCodes {
		fmt.Fprintf(w, "  %d  %s\n", ec.Code, ec.Meaning)
	}
}

// extractCommandMetadata extracts metadata from a cobra command
func extractCommandMetadata(cmd *cobra.Command) CommandMetadata {
	metadata := CommandMetadata{
		Name:     cmd.Name(),
		Short:    cmd.Short,
		Long:     cmd.Long,
		Usage:    cmd.UseLine(),
		Examples: cmd.Example,
		Aliases:  cmd.Aliases,
		Group:    commandGroups[cmd.Name()],
	}
	if group, ok := cmd.Annotations["group"]; ok {
		metadata.Group = group
	}

	flags := []FlagMetadata{}
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if flag.Hidden {
			return
		}
		flagMeta := FlagMetadata{
			Name:      flag.Name,
			Shorthand: flag.Shorthand,
			Usage:     flag.Usage,
			Default:   flag.DefValue,
		}
		if ann := flag.Annotations[cobra.BashCompOneRequiredFlag]; len(ann) > 0 && ann[0] == "true" {
			flagMeta.Required = true
		}
		flags = append(flags, flagMeta)
	})
	if len(flags) > 0 {
		metadata.Flags = flags
	}

	for _, sub := range cmd.Commands() {
		if !sub.Hidden {
			metadata.Subcommands = append(metadata.Subcommands, sub.Name())
		}
	}
	return metadata
}

func extractGlobalFlags(rootCmd *cobra.Command) []FlagMetadata {
	flags := []FlagMetadata{}
	rootCmd.PersistentFlags().VisitAll(func(flag *pflag.Flag) {
		if flag.Hidden {
			return
		}
		flags = append(flags, FlagMetadata{
			Name:      flag.Name,
			Shorthand: flag.Shorthand,
			Usage:     flag.Usage,
			Default:   flag.DefValue,
		})
	})
	return flags
}
