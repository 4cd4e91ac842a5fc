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

package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/spacelift-io/flows-app-aws-api/internal/commands/shared"
	"github.com/spacelift-io/flows-app-aws-api/internal/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View configuration",
		Long: `View the effective flows-aws configuration.

Subcommands:
  show - Display current configuration
  path - Show config file location`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigPathCommand())

	// If no subcommand provided, default to 'show'
	cmd.RunE = runConfigShow

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the effective configuration after defaults and environment
overrides are applied.

Credentials are masked. Secret references such as keychain:aws-secret are
shown as written. Use --json for machine-readable output.`,
		Args: cobra.NoArgs,
		RunE: runConfigShow,
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file location",
		Long:  `Display the path of the configuration file flows-aws reads.`,
		Args:  cobra.NoArgs,
		RunE:  runConfigPath,
	}
}

// ShowResponse is the --json form of config show.
type ShowResponse struct {
	shared.JSONResponse
	Path   string         `json:"path,omitempty"`
	Config map[string]any `json:"config"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}

	masked := maskSensitiveConfig(cfg)
	out := cmd.OutOrStdout()

	if shared.GetJSON() {
		data, err := toMap(masked)
		if err != nil {
			return err
		}
		return shared.EmitJSON(out, ShowResponse{
			JSONResponse: shared.JSONResponse{Version: "1.0", Command: "config show", Success: true},
			Path:         cfg.Path(),
			Config:       data,
		})
	}
	return outputConfigYAML(out, cfg.Path(), masked)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	cfgPath := shared.GetConfigPath()
	if cfgPath == "" {
		cfg, err := shared.LoadConfig()
		if err != nil {
			return err
		}
		cfgPath = cfg.Path()
	}
	if cfgPath == "" {
		var err error
		cfgPath, err = config.ConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), cfgPath)
	return nil
}

// maskSensitiveConfig returns a copy of cfg with credentials and tracing
// headers masked. Secret references are left readable.
func maskSensitiveConfig(cfg *config.Config) *config.Config {
	masked := *cfg
	secrets := cfg.SecretRegistry()

	mask := func(v string) string {
		if secrets.IsReference(v) {
			return v
		}
		return maskSecret(v)
	}

	masked.App.AccessKeyID = mask(cfg.App.AccessKeyID)
	masked.App.SecretAccessKey = mask(cfg.App.SecretAccessKey)
	masked.App.SessionToken = mask(cfg.App.SessionToken)

	if len(cfg.Tracing.Headers) > 0 {
		headers := make(map[string]string, len(cfg.Tracing.Headers))
		for k, v := range cfg.Tracing.Headers {
			headers[k] = mask(v)
		}
		masked.Tracing.Headers = headers
	}
	return &masked
}

// maskSecret keeps the first and last four characters of long values.
func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

// toMap round-trips cfg through YAML so JSON output uses the file's keys.
func toMap(cfg *config.Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return m, nil
}

func outputConfigYAML(w io.Writer, path string, cfg *config.Config) error {
	if path == "" {
		path = "(defaults)"
	}
	fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("Configuration:"), path)
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return encoder.Close()
}
