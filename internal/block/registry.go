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
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/trace"

	"github.com/spacelift-io/flows-app-aws-api/internal/awsclient"
	"github.com/spacelift-io/flows-app-aws-api/internal/catalog"
	"github.com/spacelift-io/flows-app-aws-api/internal/command"
	"github.com/spacelift-io/flows-app-aws-api/internal/metrics"
	flowserrors "github.com/spacelift-io/flows-app-aws-api/pkg/errors"
)

// Options are shared by every block in a registry.
type Options struct {
	Factory awsclient.Factory
	Source  ContextSource
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Tracer  trace.Tracer
}

// Registry holds the blocks built from a catalog and a command table.
type Registry struct {
	catalog *catalog.Catalog
	blocks  map[string]*Block
}

// NewRegistry pairs every descriptor in cat with its command. It fails when
// a descriptor has no command, a command has no descriptor, a descriptor
// names a different service than its command, or a descriptor field is not
// a field of the command's SDK input.
func NewRegistry(cat *catalog.Catalog, commands map[string]command.Command, opts Options) (*Registry, error) {
	if opts.Factory == nil {
		return nil, fmt.Errorf("registry requires a client factory")
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("registry requires an execution context source")
	}
	if err := Check(cat, commands); err != nil {
		return nil, err
	}

	validator := catalog.NewValidator()
	blocks := make(map[string]*Block, cat.Len())
	for _, d := range cat.List() {
		blocks[d.ID] = &Block{
			Descriptor: d,
			Command:    commands[d.ID],
			Factory:    opts.Factory,
			Source:     opts.Source,
			Validator:  validator,
			Logger:     opts.Logger,
			Metrics:    opts.Metrics,
			Tracer:     opts.Tracer,
		}
	}
	return &Registry{catalog: cat, blocks: blocks}, nil
}

// Check reports every inconsistency between cat and commands.
func Check(cat *catalog.Catalog, commands map[string]command.Command) error {
	var errs []error
	for _, d := range cat.List() {
		cmd, ok := commands[d.ID]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: no command bound", d.ID))
			continue
		}
		if string(cmd.Service()) != d.Service {
			errs = append(errs, fmt.Errorf("%s: descriptor service %q does not match command service %q", d.ID, d.Service, cmd.Service()))
		}
		inputFields := make(map[string]bool)
		for _, f := range cmd.InputFields() {
			inputFields[f] = true
		}
		for _, name := range d.Config.Names() {
			if !inputFields[name] {
				errs = append(errs, fmt.Errorf("%s: field %q is not a field of %s", d.ID, name, cmd.InputType()))
			}
		}
	}

	var extra []string
	for id := range commands {
		if _, ok := cat.Get(id); !ok {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		errs = append(errs, fmt.Errorf("%s: command has no descriptor", id))
	}
	return errors.Join(errs...)
}

// Filter returns a registry with only the blocks whose IDs match one of the
// glob patterns. An empty pattern list keeps everything.
func (r *Registry) Filter(patterns []string) (*Registry, error) {
	if len(patterns) == 0 {
		return r, nil
	}
	cat, err := r.catalog.Filter(patterns)
	if err != nil {
		return nil, err
	}
	blocks := make(map[string]*Block, cat.Len())
	for _, d := range cat.List() {
		blocks[d.ID] = r.blocks[d.ID]
	}
	return &Registry{catalog: cat, blocks: blocks}, nil
}

// Get returns the block with id.
func (r *Registry) Get(id string) (*Block, error) {
	b, ok := r.blocks[id]
	if !ok {
		return nil, &flowserrors.NotFoundError{Resource: "block", ID: id}
	}
	return b, nil
}

// List returns every block ordered by ID.
func (r *Registry) List() []*Block {
	descs := r.catalog.List()
	out := make([]*Block, 0, len(descs))
	for _, d := range descs {
		out = append(out, r.blocks[d.ID])
	}
	return out
}

// Len returns the number of blocks.
func (r *Registry) Len() int {
	return len(r.blocks)
}

// Catalog returns the descriptors backing the registry.
func (r *Registry) Catalog() *catalog.Catalog {
	return r.catalog
}

// Definitions renders the manifest of every block ordered by ID.
func (r *Registry) Definitions() []Definition {
	blocks := r.List()
	out := make([]Definition, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.Definition())
	}
	return out
}

// Invoke handles event with the block named id and returns the emitted
// payload.
func (r *Registry) Invoke(ctx context.Context, id string, event Event) (map[string]any, error) {
	b, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	var rec Recorder
	if err := b.Handle(ctx, event, &rec); err != nil {
		return nil, err
	}
	last, _ := rec.Last()
	return last.Payload, nil
}
