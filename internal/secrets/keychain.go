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
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultKeychainService is the keychain service flows-aws stores entries
// under.
const DefaultKeychainService = "flows-aws"

// KeychainProvider resolves keychain: references from the system keychain
// (macOS Keychain, Secret Service on Linux, Windows Credential Manager).
type KeychainProvider struct {
	service string
}

// NewKeychainProvider creates a keychain provider for service.
func NewKeychainProvider(service string) *KeychainProvider {
	return &KeychainProvider{service: service}
}

// Scheme returns "keychain".
func (k *KeychainProvider) Scheme() string {
	return "keychain"
}

// Resolve returns the keychain entry named key.
func (k *KeychainProvider) Resolve(_ context.Context, key string) (string, error) {
	value, err := keyring.Get(k.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", NewResolutionError(CategoryNotFound, "keychain:"+key, "keychain", "keychain entry not found", nil)
		}
		return "", NewResolutionError(CategoryAccessDenied, "keychain:"+key, "keychain", "keychain is locked or inaccessible", err)
	}
	return value, nil
}

// Set stores value under key and returns the reference that resolves it.
func (k *KeychainProvider) Set(key, value string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("keychain key is required")
	}
	if err := keyring.Set(k.service, key, value); err != nil {
		return "", fmt.Errorf("store keychain entry %q: %w", key, err)
	}
	return "keychain:" + key, nil
}

// Delete removes the entry named key.
func (k *KeychainProvider) Delete(key string) error {
	if err := keyring.Delete(k.service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return NewResolutionError(CategoryNotFound, "keychain:"+key, "keychain", "keychain entry not found", nil)
		}
		return fmt.Errorf("delete keychain entry %q: %w", key, err)
	}
	return nil
}
