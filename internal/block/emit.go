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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// DefaultChannel is the only output channel a block emits on.
const DefaultChannel = "default"

// resultMetadataKey is the SDK-internal middleware metadata on every output.
const resultMetadataKey = "ResultMetadata"

// Normalize converts a provider response into the output event payload.
// A nil response becomes an empty object. The response is otherwise passed
// through unshaped, apart from the SDK's ResultMetadata. Numbers are kept as
// json.Number so 64-bit values survive.
func Normalize(resp any) (map[string]any, error) {
	if isNil(resp) {
		return map[string]any{}, nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("response of type %T is not an object: %w", resp, err)
	}
	if out == nil {
		return map[string]any{}, nil
	}
	delete(out, resultMetadataKey)
	return out, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Interface, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// Emitter delivers output events to the host.
type Emitter interface {
	Emit(ctx context.Context, channel string, payload map[string]any) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, channel string, payload map[string]any) error

// Emit implements Emitter.
func (f EmitterFunc) Emit(ctx context.Context, channel string, payload map[string]any) error {
	return f(ctx, channel, payload)
}

// Emitted is one recorded output event.
type Emitted struct {
	Channel string         `json:"channel"`
	Payload map[string]any `json:"payload"`
}

// Recorder is an Emitter that keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Emitted
}

// Emit implements Emitter.
func (r *Recorder) Emit(_ context.Context, channel string, payload map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Emitted{Channel: channel, Payload: payload})
	return nil
}

// Events returns a copy of the recorded events in order.
func (r *Recorder) Events() []Emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Emitted(nil), r.events...)
}

// Last returns the most recent event.
func (r *Recorder) Last() (Emitted, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Emitted{}, false
	}
	return r.events[len(r.events)-1], true
}
