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

package awsclient

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// VerifyTimeout bounds the STS call made by Verify.
const VerifyTimeout = 5 * time.Second

// Identity is the caller identity behind a set of credentials.
type Identity struct {
	Account string
	Arn     string
	UserID  string
}

// Verify checks ec by calling STS GetCallerIdentity through f.
func Verify(ctx context.Context, f Factory, region string, ec ExecutionContext) (*Identity, error) {
	client, err := f.NewClient(ctx, STS, region, ec)
	if err != nil {
		return nil, err
	}
	stsClient, ok := client.(*sts.Client)
	if !ok {
		return nil, fmt.Errorf("factory returned %T for %s", client, STS)
	}

	ctx, cancel := context.WithTimeout(ctx, VerifyTimeout)
	defer cancel()

	out, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("AWS credential validation failed: %w", err)
	}
	return &Identity{
		Account: aws.ToString(out.Account),
		Arn:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}, nil
}
