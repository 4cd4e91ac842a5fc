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

package errors

import (
	"fmt"
	"strings"
)

// Error type identifiers returned by ErrorType.
const (
	TypeConfiguration       = "configuration"
	TypeResultNormalization = "result_normalization"
	TypeNotFound            = "not_found"
	TypeInternal            = "internal"
)

// Invocation stages that can fail without involving the provider.
const (
	StageClient = "client"
	StageEmit   = "emit"
)

// Source says where a misconfigured field lives.
type Source string

const (
	// SourceEvent is the triggering event's inputConfig.
	SourceEvent Source = "event"
	// SourceApp is the application-level configuration (credentials, endpoint).
	SourceApp Source = "app"
)

// FieldProblem is one invalid or missing field.
type FieldProblem struct {
	Source  Source `json:"source"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (p FieldProblem) String() string {
	if p.Field == "" {
		return p.Message
	}
	return p.Field + ": " + p.Message
}

// ConfigurationError reports that an invocation cannot be attempted because
// its input or the application configuration is missing or malformed. It is
// always raised before any client is built or any request is sent.
type ConfigurationError struct {
	// Block is the block ID the invocation targeted.
	Block string

	// Problems lists every field problem found.
	Problems []FieldProblem

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	msg := "configuration error"
	if e.Block != "" {
		msg += " for " + e.Block
	}
	if len(e.Problems) > 0 {
		parts := make([]string, len(e.Problems))
		for i, p := range e.Problems {
			parts[i] = p.String()
		}
		msg += ": " + strings.Join(parts, "; ")
	} else if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// Fields returns the names of the offending fields in order.
func (e *ConfigurationError) Fields() []string {
	out := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		out = append(out, p.Field)
	}
	return out
}

// HasField reports whether field is among the problems.
func (e *ConfigurationError) HasField(field string) bool {
	for _, p := range e.Problems {
		if p.Field == field {
			return true
		}
	}
	return false
}

// IsUserVisible implements UserVisibleError.
func (e *ConfigurationError) IsUserVisible() bool { return true }

// UserMessage implements UserVisibleError.
func (e *ConfigurationError) UserMessage() string { return e.Error() }

// Suggestion implements UserVisibleError.
func (e *ConfigurationError) Suggestion() string {
	var fromApp, fromEvent bool
	for _, p := range e.Problems {
		switch p.Source {
		case SourceApp:
			fromApp = true
		default:
			fromEvent = true
		}
	}
	switch {
	case fromApp && !fromEvent:
		return "Set accessKeyId, secretAccessKey and optionally endpoint in the app section of the configuration"
	case e.HasField("region") && len(e.Problems) == 1:
		return "Set inputConfig.region to an AWS region such as us-east-1"
	case e.Block != "":
		return fmt.Sprintf("Check the inputConfig against the block schema (flows-aws blocks show %s)", e.Block)
	default:
		return "Check the inputConfig against the block schema"
	}
}

// ErrorType implements ErrorClassifier.
func (e *ConfigurationError) ErrorType() string { return TypeConfiguration }

// IsRetryable implements ErrorClassifier.
func (e *ConfigurationError) IsRetryable() bool { return false }

// ResultNormalizationError reports a provider response that could not be
// turned into an output event.
type ResultNormalizationError struct {
	Block string
	Cause error
}

// Error implements the error interface.
func (e *ResultNormalizationError) Error() string {
	return fmt.Sprintf("normalize result of %s: %v", e.Block, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ResultNormalizationError) Unwrap() error {
	return e.Cause
}

// ErrorType implements ErrorClassifier.
func (e *ResultNormalizationError) ErrorType() string { return TypeResultNormalization }

// IsRetryable implements ErrorClassifier.
func (e *ResultNormalizationError) IsRetryable() bool { return false }

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	// Resource is the type of resource (e.g., "block").
	Resource string

	// ID is the identifier that was not found.
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// IsUserVisible implements UserVisibleError.
func (e *NotFoundError) IsUserVisible() bool { return true }

// UserMessage implements UserVisibleError.
func (e *NotFoundError) UserMessage() string { return e.Error() }

// Suggestion implements UserVisibleError.
func (e *NotFoundError) Suggestion() string {
	if e.Resource == "block" {
		return "Run 'flows-aws blocks list' to see available blocks"
	}
	return ""
}

// ErrorType implements ErrorClassifier.
func (e *NotFoundError) ErrorType() string { return TypeNotFound }

// IsRetryable implements ErrorClassifier.
func (e *NotFoundError) IsRetryable() bool { return false }

// InvocationError reports a failure of the adapter itself around the
// provider call: the client could not be built or the result could not be
// emitted. It never carries an AWS service error.
type InvocationError struct {
	Block string
	// Stage is StageClient or StageEmit.
	Stage string
	Cause error
}

// Error implements the error interface.
func (e *InvocationError) Error() string {
	switch e.Stage {
	case StageClient:
		return fmt.Sprintf("build client for %s: %v", e.Block, e.Cause)
	case StageEmit:
		return fmt.Sprintf("emit result of %s: %v", e.Block, e.Cause)
	default:
		return fmt.Sprintf("%s failed for %s: %v", e.Stage, e.Block, e.Cause)
	}
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *InvocationError) Unwrap() error {
	return e.Cause
}

// ErrorType implements ErrorClassifier.
func (e *InvocationError) ErrorType() string { return TypeInternal }

// IsRetryable implements ErrorClassifier.
func (e *InvocationError) IsRetryable() bool { return false }
