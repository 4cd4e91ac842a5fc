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
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/imagebuilder"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/spacelift-io/flows-app-aws-api/internal/log"
	"github.com/spacelift-io/flows-app-aws-api/pkg/httpclient"
)

// Factory builds a provider client for one invocation.
type Factory interface {
	// NewClient returns a new client bound to service and region. The region is
	// passed through verbatim. No network call is made.
	NewClient(ctx context.Context, service Service, region string, ec ExecutionContext) (any, error)
}

type constructor func(aws.Config) any

var constructors = map[Service]constructor{
	CloudWatch:   func(c aws.Config) any { return cloudwatch.NewFromConfig(c) },
	EC2:          func(c aws.Config) any { return ec2.NewFromConfig(c) },
	ImageBuilder: func(c aws.Config) any { return imagebuilder.NewFromConfig(c) },
	RDS:          func(c aws.Config) any { return rds.NewFromConfig(c) },
	STS:          func(c aws.Config) any { return sts.NewFromConfig(c) },
}

// SDKFactory builds aws-sdk-go-v2 clients. The zero value is ready to use.
type SDKFactory struct {
	// HTTPClient replaces the SDK's default HTTP client and logs each
	// request when set. One transport pool is shared by every client.
	HTTPClient *httpclient.Client

	// AppID is appended to the SDK user agent when set.
	AppID string

	// Logger receives a debug record per client built.
	Logger *slog.Logger
}

// NewSDKFactory creates a factory logging to logger. Requests go through
// an httpclient client that logs each one and never retries. If the HTTP
// client cannot be built the SDK default client is used and a warning is
// logged.
func NewSDKFactory(logger *slog.Logger) *SDKFactory {
	cfg := httpclient.DefaultConfig()
	cfg.Logger = logger
	f, err := NewSDKFactoryWithConfig(cfg)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("request logging disabled", log.Error(err))
		return &SDKFactory{Logger: cfg.Logger}
	}
	return f
}

// NewSDKFactoryWithConfig creates a factory whose requests go through an
// httpclient client built from cfg.
func NewSDKFactoryWithConfig(cfg httpclient.Config) (*SDKFactory, error) {
	client, err := httpclient.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("build http client: %w", err)
	}
	return &SDKFactory{HTTPClient: client, Logger: cfg.Logger}, nil
}

// Config builds the aws.Config for one client. Shared config and credentials
// files are ignored so credentials only ever come from ec. The SDK retryer is
// disabled: every command is sent exactly once.
func (f *SDKFactory) Config(ctx context.Context, region string, ec ExecutionContext) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			ec.Credentials.AccessKeyID,
			ec.Credentials.SecretAccessKey,
			ec.Credentials.SessionToken,
		)),
		config.WithSharedConfigFiles([]string{}),
		config.WithSharedCredentialsFiles([]string{}),
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	if ec.Endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(ec.Endpoint))
	}
	if f.HTTPClient != nil {
		opts = append(opts, config.WithHTTPClient(f.HTTPClient.Buildable()))
	}
	if f.AppID != "" {
		opts = append(opts, config.WithAppID(f.AppID))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS configuration: %w", err)
	}
	if f.HTTPClient != nil {
		cfg.HTTPClient = f.HTTPClient.Wrap(cfg.HTTPClient)
	}
	return cfg, nil
}

// NewClient implements Factory.
func (f *SDKFactory) NewClient(ctx context.Context, service Service, region string, ec ExecutionContext) (any, error) {
	build, ok := constructors[service]
	if !ok {
		return nil, fmt.Errorf("unsupported AWS service %q", service)
	}

	cfg, err := f.Config(ctx, region, ec)
	if err != nil {
		return nil, err
	}

	if f.Logger != nil {
		f.Logger.Debug("aws client built",
			log.ServiceKey, string(service),
			log.RegionKey, region,
			"context", ec,
		)
	}
	return build(cfg), nil
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(ctx context.Context, service Service, region string, ec ExecutionContext) (any, error)

// NewClient implements Factory.
func (fn FactoryFunc) NewClient(ctx context.Context, service Service, region string, ec ExecutionContext) (any, error) {
	return fn(ctx, service, region, ec)
}
