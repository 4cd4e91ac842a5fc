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

// Package blocks implements the blocks command, which lists and describes
// the AWS operations exposed as flow blocks.
package blocks

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spacelift-io/flows-app-aws-api/internal/block"
	"github.com/spacelift-io/flows-app-aws-api/internal/catalog"
	"github.com/spacelift-io/flows-app-aws-api/internal/commands/shared"
)

var (
	listService string
	listMatch   []string
)

// NewCommand creates the blocks command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "List and describe blocks",
		Long: `List and describe the AWS operations exposed as blocks.

Only blocks selected by catalog.include are shown.`,
	}

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newShowCommand())

	return cmd
}

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List blocks",
		Long: `List blocks, optionally narrowed by service and block ID patterns.

Examples:
  flows-aws blocks list
  flows-aws blocks list --service rds
  flows-aws blocks list --match 'ec2.Describe*' --match 'ec2.Get*'`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	cmd.Flags().StringVar(&listService, "service", "", "Only list blocks of this service (e.g. cloudwatch, ec2, rds)")
	cmd.Flags().StringArrayVar(&listMatch, "match", nil, "Glob matched against block IDs (repeatable)")

	return cmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Describe one block",
		Long: `Describe a block: its operation, config fields and result shape.

Use --json for the full block definition including JSON schemas.`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}
}

// Summary is one entry of the --json block list.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Service     string `json:"service"`
	Description string `json:"description,omitempty"`
}

// ListResponse is the --json form of blocks list.
type ListResponse struct {
	shared.JSONResponse
	Blocks []Summary `json:"blocks"`
	Count  int       `json:"count"`
}

// ShowResponse is the --json form of blocks show.
type ShowResponse struct {
	shared.JSONResponse
	Block block.Definition `json:"block"`
}

func loadRegistry() (*block.Registry, error) {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return nil, err
	}
	return shared.BuildRegistry(cfg, shared.RuntimeOptions{})
}

func runList(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	filters := [][]string{listMatch}
	if svc := strings.TrimSpace(listService); svc != "" {
		filters = append(filters, []string{svc + ".*"})
	}
	for _, patterns := range filters {
		if reg, err = reg.Filter(patterns); err != nil {
			return shared.NewConfigurationError("", err)
		}
	}

	blocks := reg.List()
	summaries := make([]Summary, 0, len(blocks))
	for _, b := range blocks {
		d := b.Descriptor
		summaries = append(summaries, Summary{
			ID:          d.ID,
			Name:        catalog.LabelFromName(d.Name),
			Service:     d.Service,
			Description: d.Description,
		})
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(out, ListResponse{
			JSONResponse: shared.JSONResponse{Version: "1.0", Command: "blocks list", Success: true},
			Blocks:       summaries,
			Count:        len(summaries),
		})
	}

	if len(summaries) == 0 {
		fmt.Fprintln(out, "No blocks match")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(out, "%s %-44s %s\n", shared.Service.Render(s.Service), s.ID, shared.Muted.Render(firstLine(s.Description)))
	}
	fmt.Fprintf(out, "\nTotal: %d block(s)\n", len(summaries))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	b, err := reg.Get(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(out, ShowResponse{
			JSONResponse: shared.JSONResponse{Version: "1.0", Command: "blocks show", Success: true},
			Block:        b.Definition(),
		})
	}
	printBlock(out, b.Descriptor)
	return nil
}

func printBlock(w io.Writer, d *catalog.Descriptor) {
	fmt.Fprintln(w, shared.Header.Render(catalog.LabelFromName(d.Name)))
	fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("ID:       "), d.ID)
	fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("Service:  "), d.Service)
	fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("Operation:"), d.Name)
	if d.Description != "" {
		fmt.Fprintf(w, "\n%s\n", d.Description)
	}

	fmt.Fprintf(w, "\n%s\n", shared.Header.Render("Config"))
	fmt.Fprintf(w, "  %-28s %-24s %s\n", catalog.RegionField, "string", shared.Muted.Render("optional, AWS region (e.g. us-east-1)"))
	for _, f := range d.Config.All() {
		printField(w, f)
	}

	fmt.Fprintf(w, "\n%s\n", shared.Header.Render("Result"))
	fmt.Fprintf(w, "  %s\n", d.Result.String())
}

func printField(w io.Writer, f catalog.Field) {
	req := "optional"
	if f.Required {
		req = "required"
	}
	note := req
	if desc := firstLine(f.Description); desc != "" {
		note += ", " + desc
	}
	if len(f.Type.Enum) > 0 {
		note += " [" + strings.Join(f.Type.Enum, "|") + "]"
	}
	fmt.Fprintf(w, "  %-28s %-24s %s\n", f.Name, f.Type.String(), shared.Muted.Render(note))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
