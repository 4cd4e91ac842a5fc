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

package block

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/spacelift-io/flows-app-aws-api/internal/awsclient"
	"github.com/spacelift-io/flows-app-aws-api/internal/catalog"
	"github.com/spacelift-io/flows-app-aws-api/internal/command"
	"github.com/spacelift-io/flows-app-aws-api/internal/log"
	"github.com/spacelift-io/flows-app-aws-api/internal/metrics"
	"github.com/spacelift-io/flows-app-aws-api/internal/tracing"
	flowserrors "github.com/spacelift-io/flows-app-aws-api/pkg/errors"
)

// Block is one AWS operation exposed as a flow block.
type Block struct {
	Descriptor *catalog.Descriptor
	Command    command.Command
	Factory    awsclient.Factory
	Source     ContextSource
	Validator  *catalog.Validator

	// Optional; defaults are used when nil.
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Tracer  trace.Tracer
}

// ID returns the descriptor ID.
func (b *Block) ID() string {
	return b.Descriptor.ID
}

// Handle runs one invocation for event. On success exactly one event is
// emitted on DefaultChannel; on failure nothing is emitted.
func (b *Block) Handle(ctx context.Context, event Event, emitter Emitter) (err error) {
	invocationID := uuid.NewString()
	logger := log.WithInvocation(b.logger(), b.ID(), invocationID)
	m := b.metrics()
	service := string(b.Command.Service())

	ctx, span := b.tracer().Start(ctx, b.ID(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("block", b.ID()),
			attribute.String("invocation_id", invocationID),
			attribute.String("aws.service", service),
		),
	)
	defer span.End()

	start := time.Now()
	outcome := metrics.OutcomeSuccess
	done := m.Begin(b.ID(), service)
	defer func() {
		done(outcome)
		span.SetAttributes(attribute.String("outcome", outcome))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
	}()

	logger.Debug("invocation started")

	region, payload, err := Resolve(b.validator(), b.Descriptor, event)
	if err != nil {
		outcome = metrics.OutcomeConfiguration
		logger.Info("invocation rejected", log.Error(err))
		return err
	}
	span.SetAttributes(attribute.String("aws.region", region))
	logger = logger.With(slog.String(log.RegionKey, region))

	req, err := b.Command.Build(payload)
	if err != nil {
		outcome = metrics.OutcomeConfiguration
		err = decodeProblem(b.ID(), err)
		logger.Info("invocation rejected", log.Error(err))
		return err
	}

	ec, err := ReadContext(ctx, b.Source, b.ID())
	if err != nil {
		outcome = metrics.OutcomeConfiguration
		logger.Warn("execution context unusable", log.Error(err))
		return err
	}

	client, err := b.Factory.NewClient(ctx, b.Command.Service(), region, ec)
	if err != nil {
		outcome = metrics.OutcomeClient
		logger.Error("client construction failed", log.Error(err))
		return &flowserrors.InvocationError{Block: b.ID(), Stage: flowserrors.StageClient, Cause: err}
	}

	resp, err := req.Invoke(ctx, client)
	if err != nil {
		outcome = metrics.OutcomeProvider
		details := awsclient.Describe(err)
		m.ProviderError(service, string(details.Kind))
		span.SetAttributes(attribute.String("aws.error_kind", string(details.Kind)))
		if details.RequestID != "" {
			span.SetAttributes(attribute.String("aws.request_id", details.RequestID))
		}
		logger.Warn("provider call failed",
			slog.String("kind", string(details.Kind)),
			slog.String("code", details.Code),
			slog.Int("status", details.StatusCode),
			slog.String("request_id", details.RequestID),
			slog.String("message", details.Message),
			log.Duration("duration", time.Since(start).Milliseconds()),
		)
		return err
	}

	out, err := Normalize(resp)
	if err != nil {
		outcome = metrics.OutcomeNormalization
		err = &flowserrors.ResultNormalizationError{Block: b.ID(), Cause: err}
		logger.Error("result normalization failed", log.Error(err))
		return err
	}

	if err = emitter.Emit(ctx, DefaultChannel, out); err != nil {
		outcome = metrics.OutcomeEmit
		logger.Error("emit failed", log.Error(err))
		return &flowserrors.InvocationError{Block: b.ID(), Stage: flowserrors.StageEmit, Cause: err}
	}

	logger.Info("invocation completed",
		log.Duration("duration", time.Since(start).Milliseconds()),
	)
	return nil
}

func (b *Block) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

func (b *Block) metrics() *metrics.Metrics {
	if b.Metrics != nil {
		return b.Metrics
	}
	return metrics.Default()
}

func (b *Block) tracer() trace.Tracer {
	if b.Tracer != nil {
		return b.Tracer
	}
	return tracing.Tracer()
}

func (b *Block) validator() *catalog.Validator {
	if b.Validator != nil {
		return b.Validator
	}
	return sharedValidator
}

var sharedValidator = catalog.NewValidator()
