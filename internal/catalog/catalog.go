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

package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

//go:embed descriptors/*.yaml
var embedded embed.FS

// Catalog is an immutable, indexed set of descriptors.
type Catalog struct {
	byID     map[string]*Descriptor
	ids      []string
	services []string
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embedded, "descriptors")
		if err != nil {
			defaultErr = err
			return
		}
		defaultCat, defaultErr = Load(sub)
	})
	return defaultCat, defaultErr
}

// Load reads every *.yaml file at the root of fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var all []*Descriptor
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		descs, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		all = append(all, descs...)
	}
	return New(all...)
}

// Parse decodes one service file into descriptors.
func Parse(data []byte) ([]*Descriptor, error) {
	var file serviceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if file.Service == "" {
		return nil, fmt.Errorf("service is required")
	}
	key := file.Key
	if key == "" {
		key = strings.ToLower(file.Service)
	}

	out := make([]*Descriptor, 0, len(file.Operations))
	for _, op := range file.Operations {
		out = append(out, &Descriptor{
			ID:          key + "." + op.Name,
			Service:     file.Service,
			Name:        op.Name,
			Description: strings.TrimSpace(op.Description),
			Config:      op.Config,
			Result:      ValueType{Kind: KindObject, Fields: op.Result},
		})
	}
	return out, nil
}

// New builds a catalog from descriptors, validating each one.
func New(descs ...*Descriptor) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Descriptor, len(descs))}
	seenService := make(map[string]bool)
	for _, d := range descs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate descriptor %q", d.ID)
		}
		c.byID[d.ID] = d
		c.ids = append(c.ids, d.ID)
		if !seenService[d.Service] {
			seenService[d.Service] = true
			c.services = append(c.services, d.Service)
		}
	}
	sort.Strings(c.ids)
	sort.Strings(c.services)
	return c, nil
}

// Get returns the descriptor with the given ID.
func (c *Catalog) Get(id string) (*Descriptor, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// List returns all descriptors sorted by ID.
func (c *Catalog) List() []*Descriptor {
	out := make([]*Descriptor, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of descriptors.
func (c *Catalog) Len() int {
	return len(c.ids)
}

// Services returns the distinct service identifiers, sorted.
func (c *Catalog) Services() []string {
	return append([]string(nil), c.services...)
}

// Filter returns a catalog holding only descriptors whose ID matches one of
// the glob patterns (doublestar syntax, "." is not a separator). An empty
// pattern list returns c unchanged.
func (c *Catalog) Filter(patterns []string) (*Catalog, error) {
	if len(patterns) == 0 {
		return c, nil
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid block pattern %q", p)
		}
	}

	var keep []*Descriptor
	for _, d := range c.List() {
		if MatchAny(patterns, d.ID) {
			keep = append(keep, d)
		}
	}
	return New(keep...)
}

// MatchAny reports whether id matches any pattern. Matching is
// case-insensitive on the service key.
func MatchAny(patterns []string, id string) bool {
	for _, p := range patterns {
		// IDs contain no "/", so doublestar behaves like a plain glob here.
		if ok, _ := doublestar.Match(lowerKey(p), lowerKey(id)); ok {
			return true
		}
	}
	return false
}

func lowerKey(s string) string {
	key, rest, found := strings.Cut(s, ".")
	if !found {
		return strings.ToLower(s)
	}
	return strings.ToLower(key) + "." + rest
}

// ServiceKey returns the ID prefix of a descriptor ID ("cloudwatch" for
// "cloudwatch.DeleteAlarms").
func ServiceKey(id string) string {
	key, _, _ := strings.Cut(id, ".")
	return key
}
