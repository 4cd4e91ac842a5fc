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
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spacelift-io/flows-app-aws-api/internal/awsclient"
	"github.com/spacelift-io/flows-app-aws-api/internal/catalog"
	"github.com/spacelift-io/flows-app-aws-api/internal/command"
	flowserrors "github.com/spacelift-io/flows-app-aws-api/pkg/errors"
)

// Event is the triggering event of an invocation.
type Event struct {
	InputConfig map[string]any `json:"inputConfig"`
}

// Resolve splits the event's inputConfig into the region and the command
// payload, validating both against d. Keys with a null value are treated as
// absent. All problems are reported together in one ConfigurationError.
func Resolve(v *catalog.Validator, d *catalog.Descriptor, event Event) (string, map[string]any, error) {
	var problems []flowserrors.FieldProblem
	eventProblem := func(field, msg string) {
		problems = append(problems, flowserrors.FieldProblem{
			Source:  flowserrors.SourceEvent,
			Field:   field,
			Message: msg,
		})
	}

	var region string
	switch raw := event.InputConfig[catalog.RegionField].(type) {
	case nil:
		eventProblem(catalog.RegionField, "is required")
	case string:
		if strings.TrimSpace(raw) == "" {
			eventProblem(catalog.RegionField, "must not be empty")
		}
		region = raw
	default:
		eventProblem(catalog.RegionField, fmt.Sprintf("must be a string, got %T", raw))
	}

	payload := make(map[string]any, len(event.InputConfig))
	for k, val := range event.InputConfig {
		if k == catalog.RegionField || val == nil {
			continue
		}
		payload[k] = val
	}

	found, err := v.Validate(d, payload)
	if err != nil {
		return "", nil, &flowserrors.ConfigurationError{Block: d.ID, Cause: err}
	}
	for _, p := range found {
		eventProblem(p.Field, p.Message)
	}

	if len(problems) > 0 {
		return "", nil, &flowserrors.ConfigurationError{Block: d.ID, Problems: problems}
	}
	return region, payload, nil
}

// decodeProblem turns a payload decode failure into a ConfigurationError.
func decodeProblem(blockID string, err error) error {
	var decErr *command.DecodeError
	if !errors.As(err, &decErr) {
		return err
	}
	return &flowserrors.ConfigurationError{
		Block: blockID,
		Problems: []flowserrors.FieldProblem{{
			Source:  flowserrors.SourceEvent,
			Field:   decErr.Field,
			Message: decErr.Err.Error(),
		}},
		Cause: decErr,
	}
}

// ContextSource supplies the application-level execution context. It is
// consulted on every invocation so configuration changes apply without a
// restart.
type ContextSource interface {
	ExecutionContext(ctx context.Context) (awsclient.ExecutionContext, error)
}

// StaticSource always returns the same execution context.
type StaticSource awsclient.ExecutionContext

// ExecutionContext implements ContextSource.
func (s StaticSource) ExecutionContext(context.Context) (awsclient.ExecutionContext, error) {
	return awsclient.ExecutionContext(s), nil
}

// ContextSourceFunc adapts a function to ContextSource.
type ContextSourceFunc func(ctx context.Context) (awsclient.ExecutionContext, error)

// ExecutionContext implements ContextSource.
func (f ContextSourceFunc) ExecutionContext(ctx context.Context) (awsclient.ExecutionContext, error) {
	return f(ctx)
}

// ReadContext fetches the execution context from src and checks it is
// usable. Problems are reported as a ConfigurationError for blockID.
func ReadContext(ctx context.Context, src ContextSource, blockID string) (awsclient.ExecutionContext, error) {
	ec, err := src.ExecutionContext(ctx)
	if err != nil {
		if cfgErr, ok := flowserrors.AsConfigurationError(err); ok {
			if cfgErr.Block == "" {
				cfgErr.Block = blockID
			}
			return ec, cfgErr
		}
		return ec, &flowserrors.ConfigurationError{Block: blockID, Cause: err}
	}

	found := ec.Problems()
	if len(found) == 0 {
		return ec, nil
	}
	fields := make([]string, 0, len(found))
	for f := range found {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	problems := make([]flowserrors.FieldProblem, 0, len(fields))
	for _, f := range fields {
		problems = append(problems, flowserrors.FieldProblem{
			Source:  flowserrors.SourceApp,
			Field:   f,
			Message: found[f],
		})
	}
	return ec, &flowserrors.ConfigurationError{Block: blockID, Problems: problems}
}
