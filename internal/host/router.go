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

// Package host exposes the block registry over HTTP.
//
// Routes:
//
//	GET  /health                   liveness and block count
//	GET  /v1/version               build information
//	GET  /v1/app                   application configuration schema
//	GET  /v1/blocks                block summaries, optionally filtered
//	GET  /v1/blocks/{id}           block manifest
//	POST /v1/blocks/{id}/invoke    handle one event and return its output
//	GET  /metrics                  Prometheus metrics, when enabled
package host

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/spacelift-io/flows-app-aws-api/internal/block"
	"github.com/spacelift-io/flows-app-aws-api/internal/catalog"
	"github.com/spacelift-io/flows-app-aws-api/internal/log"
	"github.com/spacelift-io/flows-app-aws-api/internal/tracing"
)

// maxEventBytes bounds the size of an invocation request body.
const maxEventBytes = 1 << 20

// RouterConfig holds configuration for the API router.
type RouterConfig struct {
	Registry *block.Registry

	Version   string
	Commit    string
	BuildDate string

	// Metrics serves MetricsPath when non-nil.
	Metrics     http.Handler
	MetricsPath string

	Logger *slog.Logger

	// Tracer receives a server span per request. Nil uses the global provider.
	Tracer trace.Tracer
}

// Router wraps an http.ServeMux with logging and tracing middleware.
type Router struct {
	mux      *http.ServeMux
	handler  http.Handler
	config   RouterConfig
	registry *block.Registry
	logger   *slog.Logger
}

// NewRouter creates a new HTTP router with all API endpoints.
func NewRouter(cfg RouterConfig) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		mux:      http.NewServeMux(),
		config:   cfg,
		registry: cfg.Registry,
		logger:   log.WithComponent(logger, "host"),
	}

	r.mux.HandleFunc("GET /health", r.handleHealth)
	r.mux.HandleFunc("GET /v1/version", r.handleVersion)
	r.mux.HandleFunc("GET /v1/app", r.handleApp)
	r.mux.HandleFunc("GET /v1/blocks", r.handleListBlocks)
	r.mux.HandleFunc("GET /v1/blocks/{id}", r.handleGetBlock)
	r.mux.HandleFunc("POST /v1/blocks/{id}/invoke", r.handleInvoke)

	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.mux.Handle("GET "+path, cfg.Metrics)
	}

	// Outermost first: trace context, then request logging.
	var handler http.Handler = r.mux
	handler = log.HTTPMiddleware(r.logger)(handler)
	handler = tracing.HTTPMiddleware(cfg.Tracer)(handler)
	r.handler = handler

	return r
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// Mux returns the underlying ServeMux for registering additional routes.
func (r *Router) Mux() *http.ServeMux {
	return r.mux
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"blocks": r.registry.Len(),
	})
}

func (r *Router) handleVersion(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":    r.config.Version,
		"commit":     r.config.Commit,
		"build_date": r.config.BuildDate,
	})
}

func (r *Router) handleApp(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"config": block.AppConfigSchema(),
	})
}

// BlockSummary is one entry of the block list.
type BlockSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Service     string `json:"service"`
	Description string `json:"description,omitempty"`
}

// handleListBlocks lists blocks. ?service=ec2 narrows by service and
// ?match=glob (repeatable) by block ID.
func (r *Router) handleListBlocks(w http.ResponseWriter, req *http.Request) {
	reg := r.registry
	filters := [][]string{req.URL.Query()["match"]}
	if svc := strings.TrimSpace(req.URL.Query().Get("service")); svc != "" {
		filters = append(filters, []string{svc + ".*"})
	}
	for _, patterns := range filters {
		filtered, err := reg.Filter(patterns)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		reg = filtered
	}

	blocks := reg.List()
	out := make([]BlockSummary, 0, len(blocks))
	for _, b := range blocks {
		d := b.Descriptor
		out = append(out, BlockSummary{
			ID:          d.ID,
			Name:        catalog.LabelFromName(d.Name),
			Service:     d.Service,
			Description: d.Description,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"blocks": out,
		"count":  len(out),
	})
}

func (r *Router) handleGetBlock(w http.ResponseWriter, req *http.Request) {
	b, err := r.registry.Get(req.PathValue("id"))
	if err != nil {
		status, body := errorResponse(err)
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, b.Definition())
}

// InvokeResponse is the body of a successful invocation.
type InvokeResponse struct {
	Block   string          `json:"block"`
	Outputs []block.Emitted `json:"outputs"`
}

func (r *Router) handleInvoke(w http.ResponseWriter, req *http.Request) {
	b, err := r.registry.Get(req.PathValue("id"))
	if err != nil {
		status, body := errorResponse(err)
		writeJSON(w, status, body)
		return
	}

	event, err := decodeEvent(http.MaxBytesReader(w, req.Body, maxEventBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var rec block.Recorder
	if err := b.Handle(req.Context(), event, &rec); err != nil {
		status, body := errorResponse(err)
		writeJSON(w, status, body)
		return
	}

	writeJSON(w, http.StatusOK, InvokeResponse{Block: b.ID(), Outputs: rec.Events()})
}

// decodeEvent reads an event body. An empty body is an event with no
// inputConfig, which fails validation downstream with a field-level error.
func decodeEvent(body io.Reader) (block.Event, error) {
	var event block.Event
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&event); err != nil {
		if err == io.EOF {
			return block.Event{}, nil
		}
		return block.Event{}, fmt.Errorf("invalid request body: %w", err)
	}
	return event, nil
}
