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

// Package serve implements the serve command, which runs the HTTP block
// host.
package serve

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/spacelift-io/flows-app-aws-api/internal/commands/shared"
	"github.com/spacelift-io/flows-app-aws-api/internal/host"
	"github.com/spacelift-io/flows-app-aws-api/internal/metrics"
	"github.com/spacelift-io/flows-app-aws-api/internal/tracing"
)

var (
	serveAddr string

	// onListen is called with the bound address once the host accepts
	// connections.
	onListen = func(string) {}
)

// NewCommand creates the serve command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP block host",
		Long: `Run the HTTP host that lists block definitions and invokes blocks.

Routes:
  GET  /health                  liveness probe
  GET  /v1/version              build information
  GET  /v1/app                  app configuration schema
  GET  /v1/blocks               block list (?service=, ?match=)
  GET  /v1/blocks/{id}          block definition
  POST /v1/blocks/{id}/invoke   invoke a block with {"inputConfig": {...}}
  GET  /metrics                 Prometheus metrics (when metrics.enabled)

The app section of the configuration file is re-read on every invocation,
so credentials can be rotated without a restart. The host stops gracefully
on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := shared.NewLogger(cfg, cmd.ErrOrStderr())
	version, commit, buildDate := shared.GetVersion()

	tp, err := tracing.NewProvider(ctx, cfg.Tracing, version, cmd.OutOrStdout())
	if err != nil {
		return shared.NewConfigurationError("tracing", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", slog.Any("error", err))
		}
	}()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	reg, err := shared.BuildRegistry(cfg, shared.RuntimeOptions{
		Logger:  logger,
		Metrics: metrics.New(promReg),
		Tracer:  tp.Tracer(tracing.InstrumentationName),
	})
	if err != nil {
		return err
	}

	routerCfg := host.RouterConfig{
		Registry:  reg,
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		Logger:    logger,
		Tracer:    tp.Tracer(tracing.HTTPInstrumentationName),
	}
	if cfg.Metrics.Enabled {
		routerCfg.Metrics = promhttp.HandlerFor(promReg, promhttp.HandlerOpts{Registry: promReg})
		routerCfg.MetricsPath = cfg.Metrics.Path
	}
	router := host.NewRouter(routerCfg)

	server := host.NewServer(host.ServerConfig{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, logger)
	if err := server.Listen(); err != nil {
		return shared.NewConfigurationError("server.addr", err)
	}

	logger.Info("serving blocks",
		slog.Int("blocks", reg.Len()),
		slog.String("version", version),
	)
	onListen(server.Addr())

	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("host failed: %w", err)
	}
	return nil
}
