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

package secrets

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Provider resolves keys of one scheme.
type Provider interface {
	Scheme() string
	Resolve(ctx context.Context, key string) (string, error)
}

// Registry routes secret references to providers by scheme.
type Registry struct {
	providers map[string]Provider
}

var (
	// legacyEnvVarRegex matches ${VAR_NAME} syntax
	legacyEnvVarRegex = regexp.MustCompile(`^\$\{([A-Z_][A-Z0-9_]*)\}$`)

	// schemeRegex matches scheme:reference format
	schemeRegex = regexp.MustCompile(`^([a-z][a-z0-9]*):(.+)$`)
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Options configure the default providers.
type Options struct {
	// KeychainService is the keychain service name entries are stored under.
	KeychainService string

	File FileConfig
}

// NewDefaultRegistry registers the env, file and keychain providers.
func NewDefaultRegistry(opts Options) *Registry {
	if opts.KeychainService == "" {
		opts.KeychainService = DefaultKeychainService
	}
	r := NewRegistry()
	_ = r.Register(NewEnvProvider())
	_ = r.Register(NewFileProvider(opts.File))
	_ = r.Register(NewKeychainProvider(opts.KeychainService))
	return r
}

// Register adds a provider. It fails when the scheme is already taken.
func (r *Registry) Register(p Provider) error {
	scheme := p.Scheme()
	if _, exists := r.providers[scheme]; exists {
		return fmt.Errorf("provider for scheme %q already registered", scheme)
	}
	r.providers[scheme] = p
	return nil
}

// IsReference reports whether value would be routed to a registered provider.
func (r *Registry) IsReference(value string) bool {
	scheme, _, ok := parseReference(value)
	if !ok {
		return false
	}
	_, registered := r.providers[scheme]
	return registered
}

// Resolve returns the secret behind reference. Values that are not a
// reference to a registered scheme are returned as-is.
func (r *Registry) Resolve(ctx context.Context, reference string) (string, error) {
	scheme, key, ok := parseReference(reference)
	if !ok {
		return reference, nil
	}
	p, registered := r.providers[scheme]
	if !registered {
		// "https://..." and similar plain values look like scheme:rest.
		return reference, nil
	}
	if strings.TrimSpace(key) == "" {
		return "", NewResolutionError(CategoryInvalidSyntax, reference, scheme, "empty key", nil)
	}

	value, err := p.Resolve(ctx, key)
	if err != nil {
		if _, isResolution := err.(*ResolutionError); isResolution {
			return "", err
		}
		return "", NewResolutionError(CategoryNotFound, reference, scheme, "secret resolution failed", err)
	}
	return value, nil
}

func parseReference(reference string) (scheme, key string, ok bool) {
	if m := legacyEnvVarRegex.FindStringSubmatch(reference); m != nil {
		return "env", m[1], true
	}
	if m := schemeRegex.FindStringSubmatch(reference); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}
