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

// Package jq filters block output with jq expressions.
package jq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/itchyny/gojq"
)

const (
	// DefaultTimeout bounds a single evaluation.
	DefaultTimeout = 5 * time.Second
	// DefaultMaxResults caps the number of values an expression may produce.
	DefaultMaxResults = 10000
)

// Executor evaluates jq expressions with a timeout and a result cap.
type Executor struct {
	timeout    time.Duration
	maxResults int
}

// NewExecutor creates a new jq executor. Zero values take the defaults.
func NewExecutor(timeout time.Duration, maxResults int) *Executor {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}
	return &Executor{timeout: timeout, maxResults: maxResults}
}

// Execute runs expression against data and returns every value it produces.
// An empty expression returns data unchanged. json.Number values are
// converted first, since gojq only understands native numbers.
func (e *Executor) Execute(ctx context.Context, expression string, data any) ([]any, error) {
	if strings.TrimSpace(expression) == "" {
		return []any{data}, nil
	}

	code, err := compile(expression)
	if err != nil {
		return nil, err
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var results []any
	iter := code.RunWithContext(execCtx, normalize(data))
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("jq execution timeout after %v", e.timeout)
			}
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}
			return nil, fmt.Errorf("jq: %w", err)
		}
		if len(results) == e.maxResults {
			return nil, fmt.Errorf("jq expression produced more than %d results", e.maxResults)
		}
		results = append(results, v)
	}
	return results, nil
}

// Validate reports whether expression parses and compiles.
func (e *Executor) Validate(expression string) error {
	if strings.TrimSpace(expression) == "" {
		return nil
	}
	_, err := compile(expression)
	return err
}

func compile(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("jq compilation failed: %w", err)
	}
	return code, nil
}

// normalize converts json.Number to int, *big.Int or float64 throughout v.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case json.Number:
		if i, err := t.Int64(); err == nil {
			if int64(int(i)) == i {
				return int(i)
			}
		}
		if !strings.ContainsAny(t.String(), ".eE") {
			if bi, ok := new(big.Int).SetString(t.String(), 10); ok {
				return bi
			}
		}
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	default:
		return v
	}
}
