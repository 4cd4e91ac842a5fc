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

// Package tracing configures the OpenTelemetry tracer provider that block
// invocations report spans to.
//
// Spans are exported by one of:
//
//   - none: spans are created but dropped (the default)
//   - stdout: pretty-printed to a writer, for local debugging
//   - otlp-http: OTLP over HTTP, e.g. to an OpenTelemetry collector on :4318
//   - otlp-grpc: OTLP over gRPC, e.g. to a collector on :4317
//
// NewProvider installs the provider globally so that otel.Tracer returns
// tracers backed by it.
package tracing
