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

package secrets

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spacelift-io/flows-app-aws-api/internal/commands/shared"
	"github.com/spacelift-io/flows-app-aws-api/internal/secrets"
)

var (
	secretUnmask bool
	secretForce  bool
)

// NewCommand creates the secrets command for secret management.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage AWS credentials in the system keychain",
		Long: `Manage secrets referenced from the app section of the configuration.

Secrets are stored in the system keychain (macOS Keychain, Linux Secret
Service, Windows Credential Manager) and referenced as keychain:<key>:

  app:
    access_key_id: AKIA...
    secret_access_key: keychain:aws-secret

Commands:
  set       Store a secret in the keychain
  get       Resolve any secret reference
  delete    Remove a keychain entry

Examples:
  flows-aws secrets set aws-secret
  echo "wJalr..." | flows-aws secrets set aws-secret
  flows-aws secrets get keychain:aws-secret
  flows-aws secrets get env:AWS_SECRET_ACCESS_KEY --unmask
  flows-aws secrets delete aws-secret`,
	}

	cmd.AddCommand(newSecretsSetCommand())
	cmd.AddCommand(newSecretsGetCommand())
	cmd.AddCommand(newSecretsDeleteCommand())

	return cmd
}

func newSecretsSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key>",
		Short: "Store a secret in the keychain",
		Long: `Store a secret in the system keychain.

The value is read from a hidden prompt, or from standard input when it is
not a terminal. The command prints the reference to put in the config.`,
		Args: cobra.ExactArgs(1),
		RunE: runSecretsSet,
	}
}

func newSecretsGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <reference>",
		Short: "Resolve a secret reference",
		Long: `Resolve a secret reference (env:, file: or keychain:). A bare key is
treated as keychain:<key>.

By default, the value is masked. Use --unmask to show the full value.`,
		Args: cobra.ExactArgs(1),
		RunE: runSecretsGet,
	}

	cmd.Flags().BoolVar(&secretUnmask, "unmask", false, "Show full value (not masked)")

	return cmd
}

func newSecretsDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a keychain entry",
		Long: `Remove a secret from the system keychain.

Requires confirmation unless --force is used.`,
		Args: cobra.ExactArgs(1),
		RunE: runSecretsDelete,
	}

	cmd.Flags().BoolVar(&secretForce, "force", false, "Skip confirmation prompt")

	return cmd
}

func runSecretsSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if err := validateSecretKey(key); err != nil {
		return shared.NewConfigurationError("", err)
	}

	value, err := shared.ReadSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Enter secret value")
	if err != nil {
		return fmt.Errorf("failed to read secret value: %w", err)
	}
	if value == "" {
		return shared.NewConfigurationError("", errors.New("secret value cannot be empty"))
	}

	provider, err := keychainProvider()
	if err != nil {
		return err
	}
	ref, err := provider.Set(key, value)
	if err != nil {
		return fmt.Errorf("failed to set secret: %w", err)
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(out, secretResponse{
			JSONResponse: shared.JSONResponse{Version: "1.0", Command: "secrets set", Success: true},
			Reference:    ref,
		})
	}
	fmt.Fprintln(out, shared.RenderOK("Secret stored in keychain"))
	fmt.Fprintf(out, "%s %s\n", shared.RenderLabel("Reference:"), ref)
	return nil
}

func runSecretsGet(cmd *cobra.Command, args []string) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	registry := cfg.SecretRegistry()

	ref := args[0]
	if !registry.IsReference(ref) {
		ref = "keychain:" + ref
	}

	value, err := registry.Resolve(cmd.Context(), ref)
	if err != nil {
		if errors.Is(err, secrets.ErrSecretNotFound) {
			return fmt.Errorf("secret not found: %q\n\nSet it with: flows-aws secrets set <key>", ref)
		}
		return fmt.Errorf("failed to get secret: %w", err)
	}

	display := value
	if !secretUnmask {
		display = maskSecret(value)
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(out, secretResponse{
			JSONResponse: shared.JSONResponse{Version: "1.0", Command: "secrets get", Success: true},
			Reference:    ref,
			Value:        display,
		})
	}
	if secretUnmask {
		fmt.Fprintln(out, value)
		return nil
	}
	fmt.Fprintf(out, "%s (use --unmask to show full value)\n", display)
	return nil
}

func runSecretsDelete(cmd *cobra.Command, args []string) error {
	key := strings.TrimPrefix(args[0], "keychain:")
	out := cmd.OutOrStdout()

	if !secretForce {
		fmt.Fprintf(out, "Are you sure you want to delete secret %q? [y/N]: ", key)
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Deletion canceled")
			return nil
		}
	}

	provider, err := keychainProvider()
	if err != nil {
		return err
	}
	if err := provider.Delete(key); err != nil {
		if errors.Is(err, secrets.ErrSecretNotFound) {
			return fmt.Errorf("secret not found: %q", key)
		}
		return fmt.Errorf("failed to delete secret: %w", err)
	}

	fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("Secret %q deleted", key)))
	return nil
}

type secretResponse struct {
	shared.JSONResponse
	Reference string `json:"reference"`
	Value     string `json:"value,omitempty"`
}

// keychainProvider uses the keychain service named in the configuration.
func keychainProvider() (*secrets.KeychainProvider, error) {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return nil, err
	}
	return secrets.NewKeychainProvider(cfg.Secrets.KeychainService), nil
}

func maskSecret(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "..." + value[len(value)-4:]
}

func validateSecretKey(key string) error {
	if key == "" {
		return errors.New("secret key cannot be empty")
	}
	if strings.ContainsAny(key, " \t") {
		return errors.New("secret key cannot contain spaces")
	}
	if strings.Contains(key, ":") {
		return errors.New("secret key is a name, not a reference; drop the scheme prefix")
	}
	return nil
}
