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

// Package metrics holds the Prometheus instruments recorded by block
// invocations.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Invocation outcomes.
const (
	OutcomeSuccess       = "success"
	OutcomeConfiguration = "configuration_error"
	OutcomeClient        = "client_error"
	OutcomeProvider      = "provider_error"
	OutcomeNormalization = "normalization_error"
	OutcomeEmit          = "emit_error"
)

// Metrics records invocation counters, durations and in-flight gauges.
type Metrics struct {
	invocations    *prometheus.CounterVec
	providerErrors *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	inFlight       *prometheus.GaugeVec
}

// New registers the instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		invocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flows_aws_invocations_total",
				Help: "Total block invocations by outcome",
			},
			[]string{"block", "service", "outcome"},
		),
		providerErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flows_aws_provider_errors_total",
				Help: "Provider errors by service and error kind",
			},
			[]string{"service", "kind"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flows_aws_invocation_duration_seconds",
				Help:    "Duration of block invocations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"block", "outcome"},
		),
		inFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flows_aws_invocations_in_flight",
				Help: "Block invocations currently executing",
			},
			[]string{"block"},
		),
	}
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the instruments registered with the default Prometheus
// registry, which is what promhttp.Handler serves.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// Begin marks an invocation of block as executing. The returned function
// records its outcome and must be called exactly once.
func (m *Metrics) Begin(block, service string) func(outcome string) {
	start := time.Now()
	gauge := m.inFlight.WithLabelValues(block)
	gauge.Inc()

	var once sync.Once
	return func(outcome string) {
		once.Do(func() {
			gauge.Dec()
			m.invocations.WithLabelValues(block, service, outcome).Inc()
			m.duration.WithLabelValues(block, outcome).Observe(time.Since(start).Seconds())
		})
	}
}

// ProviderError counts one provider error of kind for service.
func (m *Metrics) ProviderError(service, kind string) {
	m.providerErrors.WithLabelValues(service, kind).Inc()
}
