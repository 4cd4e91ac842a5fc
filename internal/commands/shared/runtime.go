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

package shared

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/spacelift-io/flows-app-aws-api/internal/awsclient"
	"github.com/spacelift-io/flows-app-aws-api/internal/block"
	"github.com/spacelift-io/flows-app-aws-api/internal/catalog"
	"github.com/spacelift-io/flows-app-aws-api/internal/command"
	"github.com/spacelift-io/flows-app-aws-api/internal/config"
	"github.com/spacelift-io/flows-app-aws-api/internal/log"
	"github.com/spacelift-io/flows-app-aws-api/internal/metrics"
)

// LoadConfig loads configuration from the --config path, FLOWS_CONFIG or the
// default location.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigPath())
	if err != nil {
		return nil, NewConfigurationError("", err)
	}
	return cfg, nil
}

// NewLogger creates the command logger. --verbose forces debug and --quiet
// limits output to errors.
func NewLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	lc := cfg.LogConfig()
	lc.Output = out
	switch {
	case GetVerbose():
		lc.Level = "debug"
	case GetQuiet():
		lc.Level = "error"
	}
	return log.New(lc)
}

// RuntimeOptions are the optional collaborators of a block registry.
type RuntimeOptions struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Tracer   trace.Tracer
	Factory  awsclient.Factory
	Registry prometheus.Registerer
}

// BuildRegistry assembles the block registry described by cfg: the embedded
// catalog bound to the command table, filtered by catalog.include, reading
// its execution context from the app section on every invocation.
func BuildRegistry(cfg *config.Config, opts RuntimeOptions) (*block.Registry, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	factory := opts.Factory
	if factory == nil {
		factory = awsclient.NewSDKFactory(logger)
	}
	m := opts.Metrics
	if m == nil && opts.Registry != nil {
		m = metrics.New(opts.Registry)
	}

	reg, err := block.NewRegistry(cat, command.Table(), block.Options{
		Factory: factory,
		Source:  config.NewAppSource(cfg),
		Logger:  logger,
		Metrics: m,
		Tracer:  opts.Tracer,
	})
	if err != nil {
		return nil, err
	}

	filtered, err := reg.Filter(cfg.Catalog.Include)
	if err != nil {
		return nil, NewConfigurationError("catalog.include", err)
	}
	if filtered.Len() == 0 {
		return nil, NewConfigurationError("", fmt.Errorf("catalog.include %v matches no blocks", cfg.Catalog.Include))
	}
	return filtered, nil
}
