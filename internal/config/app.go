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
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spacelift-io/flows-app-aws-api/internal/awsclient"
	"github.com/spacelift-io/flows-app-aws-api/internal/secrets"
	flowserrors "github.com/spacelift-io/flows-app-aws-api/pkg/errors"
)

// AppSource reads the app section fresh on every call, so credential
// rotation takes effect on the next invocation without a restart.
type AppSource struct {
	// Path is the config file to read. Empty means environment only.
	Path string

	// Secrets resolves secret references in the app values.
	Secrets *secrets.Registry
}

// NewAppSource creates a source for cfg's file using cfg's secret settings.
func NewAppSource(cfg *Config) *AppSource {
	return &AppSource{Path: cfg.Path(), Secrets: cfg.SecretRegistry()}
}

// ExecutionContext implements block.ContextSource.
func (s *AppSource) ExecutionContext(ctx context.Context) (awsclient.ExecutionContext, error) {
	app, err := s.read()
	if err != nil {
		return awsclient.ExecutionContext{}, err
	}
	app = app.withEnv()

	reg := s.Secrets
	if reg == nil {
		reg = secrets.NewDefaultRegistry(secrets.Options{})
	}

	var problems []flowserrors.FieldProblem
	resolve := func(field, value string) string {
		if value == "" {
			return ""
		}
		out, err := reg.Resolve(ctx, value)
		if err != nil {
			problems = append(problems, flowserrors.FieldProblem{
				Source:  flowserrors.SourceApp,
				Field:   field,
				Message: err.Error(),
			})
		}
		return out
	}

	ec := awsclient.ExecutionContext{
		Credentials: awsclient.Credentials{
			AccessKeyID:     resolve("accessKeyId", app.AccessKeyID),
			SecretAccessKey: resolve("secretAccessKey", app.SecretAccessKey),
			SessionToken:    resolve("sessionToken", app.SessionToken),
		},
		Endpoint: resolve("endpoint", app.Endpoint),
	}
	if len(problems) > 0 {
		return awsclient.ExecutionContext{}, &flowserrors.ConfigurationError{Problems: problems}
	}
	return ec, nil
}

func (s *AppSource) read() (AppConfig, error) {
	if s.Path == "" {
		return AppConfig{}, nil
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return AppConfig{}, nil
		}
		return AppConfig{}, fmt.Errorf("read app configuration: %w", err)
	}

	var file struct {
		App AppConfig `yaml:"app"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return AppConfig{}, fmt.Errorf("parse app configuration in %s: %w", s.Path, err)
	}
	return file.App, nil
}
