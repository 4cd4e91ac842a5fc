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

// Package command dispatches validated payloads to AWS SDK operations.
//
// Every supported operation is one entry in a data table built with Bind,
// which wraps an SDK method expression such as
// (*cloudwatch.Client).DeleteAlarms. Bind is generic over the client, input,
// output and options types, so no operation needs code of its own.
package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/spacelift-io/flows-app-aws-api/internal/awsclient"
)

// Command is one bound SDK operation.
type Command interface {
	// Service is the service whose client the command needs.
	Service() awsclient.Service

	// Build decodes payload into a fresh SDK input value. It fails with a
	// *DecodeError when the payload does not fit the input type.
	Build(payload map[string]any) (Request, error)

	// InputFields returns the exported field names of the SDK input type.
	InputFields() []string

	// InputType is the SDK input struct type.
	InputType() reflect.Type
}

// Request is a built SDK input waiting to be sent.
type Request interface {
	// Invoke sends the request once using client. Provider errors are
	// returned unmodified. A nil output is returned as an untyped nil.
	Invoke(ctx context.Context, client any) (any, error)

	// Input returns the SDK input value.
	Input() any
}

// DecodeError reports a payload that could not be decoded into the SDK input.
type DecodeError struct {
	// Field is the offending field path when known.
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("field %s: %v", e.Field, e.Err)
	}
	return e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Call is the shape of every aws-sdk-go-v2 operation method expression.
type Call[C, In, Out, Opt any] func(C, context.Context, *In, ...func(*Opt)) (*Out, error)

// Bind turns an SDK method expression into a Command.
func Bind[C, In, Out, Opt any](service awsclient.Service, call func(C, context.Context, *In, ...func(*Opt)) (*Out, error)) Command {
	return &binding[C, In, Out, Opt]{service: service, call: call}
}

type binding[C, In, Out, Opt any] struct {
	service awsclient.Service
	call    Call[C, In, Out, Opt]
}

func (b *binding[C, In, Out, Opt]) Service() awsclient.Service {
	return b.service
}

func (b *binding[C, In, Out, Opt]) InputType() reflect.Type {
	return reflect.TypeOf((*In)(nil)).Elem()
}

func (b *binding[C, In, Out, Opt]) InputFields() []string {
	return exportedFields(b.InputType())
}

func (b *binding[C, In, Out, Opt]) Build(payload map[string]any) (Request, error) {
	in := new(In)
	if len(payload) > 0 {
		if err := decodeStrict(payload, in); err != nil {
			return nil, err
		}
	}
	return &request[C, In, Out, Opt]{call: b.call, input: in}, nil
}

type request[C, In, Out, Opt any] struct {
	call  Call[C, In, Out, Opt]
	input *In
}

func (r *request[C, In, Out, Opt]) Input() any {
	return r.input
}

func (r *request[C, In, Out, Opt]) Invoke(ctx context.Context, client any) (any, error) {
	c, ok := client.(C)
	if !ok {
		var want C
		return nil, fmt.Errorf("client is %T, want %T", client, want)
	}

	out, err := r.call(c, ctx, r.input)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	return out, nil
}

// decodeStrict round-trips payload through JSON into dst, rejecting fields
// dst does not declare.
func decodeStrict(payload map[string]any, dst any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return &DecodeError{Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &DecodeError{
				Field: typeErr.Field,
				Err:   fmt.Errorf("expected %s, got %s", typeErr.Type, typeErr.Value),
			}
		}
		return &DecodeError{Err: err}
	}
	return nil
}

func exportedFields(t reflect.Type) []string {
	var out []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		out = append(out, f.Name)
	}
	sort.Strings(out)
	return out
}
