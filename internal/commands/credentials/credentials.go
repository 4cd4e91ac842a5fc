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

// Package credentials implements the credentials command, which checks the
// AWS credentials in the app section of the configuration.
package credentials

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spacelift-io/flows-app-aws-api/internal/awsclient"
	"github.com/spacelift-io/flows-app-aws-api/internal/block"
	"github.com/spacelift-io/flows-app-aws-api/internal/commands/shared"
	"github.com/spacelift-io/flows-app-aws-api/internal/config"
)

// DefaultRegion is used when neither --region nor AWS_REGION is set.
const DefaultRegion = "us-east-1"

var verifyRegion string

// NewCommand creates the credentials command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Check AWS credentials",
		Long:  `Check the AWS credentials in the app section of the configuration.`,
	}

	cmd.AddCommand(newVerifyCommand())

	return cmd
}

func newVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify credentials with STS GetCallerIdentity",
		Long: `Resolve the app credentials, including secret references, and call
STS GetCallerIdentity once with them.

Exit codes:
  0  credentials are valid
  2  the app section is incomplete or a secret reference cannot be resolved
  4  AWS rejected the credentials or could not be reached`,
		Args: cobra.NoArgs,
		RunE: runVerify,
	}

	cmd.Flags().StringVarP(&verifyRegion, "region", "r", "", "AWS region for the STS call (default: $AWS_REGION or us-east-1)")

	return cmd
}

// VerifyResponse is the --json form of credentials verify.
type VerifyResponse struct {
	shared.JSONResponse
	Account   string `json:"account"`
	Arn       string `json:"arn"`
	UserID    string `json:"user_id"`
	Region    string `json:"region"`
	Temporary bool   `json:"temporary"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	err := verify(cmd)
	if err == nil {
		return nil
	}
	if shared.GetJSON() {
		_ = shared.EmitJSONError(cmd.OutOrStdout(), "credentials verify", shared.NewJSONError(err))
	}
	return shared.ClassifyInvocationError(err)
}

func verify(cmd *cobra.Command) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	logger := shared.NewLogger(cfg, cmd.ErrOrStderr())

	ec, err := block.ReadContext(cmd.Context(), config.NewAppSource(cfg), "")
	if err != nil {
		return err
	}

	region := strings.TrimSpace(verifyRegion)
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = DefaultRegion
	}

	id, err := awsclient.Verify(cmd.Context(), awsclient.NewSDKFactory(logger), region, ec)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(out, VerifyResponse{
			JSONResponse: shared.JSONResponse{Version: "1.0", Command: "credentials verify", Success: true},
			Account:      id.Account,
			Arn:          id.Arn,
			UserID:       id.UserID,
			Region:       region,
			Temporary:    ec.Credentials.IsTemporary(),
		})
	}

	fmt.Fprintln(out, shared.RenderOK("AWS credentials are valid"))
	fmt.Fprintf(out, "  %s %s\n", shared.RenderLabel("Account:"), id.Account)
	fmt.Fprintf(out, "  %s     %s\n", shared.RenderLabel("ARN:"), id.Arn)
	fmt.Fprintf(out, "  %s %s\n", shared.RenderLabel("User ID:"), id.UserID)
	if ec.Credentials.IsTemporary() {
		fmt.Fprintln(out, shared.RenderWarn("Using temporary credentials; they will expire"))
	}
	return nil
}
