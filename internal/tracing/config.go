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

package tracing

import "fmt"

// Exporter names accepted in Config.Exporter.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPHTTP = "otlp-http"
	ExporterOTLPGRPC = "otlp-grpc"
)

// Config holds tracing configuration.
type Config struct {
	// Exporter selects where spans go. Empty means none.
	Exporter string `yaml:"exporter"`

	// Endpoint is the collector address for the OTLP exporters
	// (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS for the OTLP exporters.
	Insecure bool `yaml:"insecure"`

	// Headers are sent with every OTLP export request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// ServiceName identifies this service in traces.
	ServiceName string `yaml:"service_name"`

	// SampleRate is the fraction of traces to sample (0.0 - 1.0).
	// Zero means sample everything.
	SampleRate float64 `yaml:"sample_rate"`
}

// DefaultConfig returns tracing disabled.
func DefaultConfig() Config {
	return Config{
		Exporter:    ExporterNone,
		ServiceName: "flows-aws",
	}
}

// Enabled reports whether spans are exported anywhere.
func (c Config) Enabled() bool {
	return c.Exporter != "" && c.Exporter != ExporterNone
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Exporter {
	case "", ExporterNone, ExporterStdout:
	case ExporterOTLPHTTP, ExporterOTLPGRPC:
		if c.Endpoint == "" {
			return fmt.Errorf("tracing.endpoint is required for exporter %q", c.Exporter)
		}
	default:
		return fmt.Errorf("unknown tracing exporter %q (want none, stdout, otlp-http or otlp-grpc)", c.Exporter)
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1, got %v", c.SampleRate)
	}
	return nil
}
