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
	"errors"
	"fmt"
)

// ErrSecretNotFound is matched by errors.Is for every missing secret.
var ErrSecretNotFound = errors.New("secret not found")

// Category classifies a resolution failure.
type Category string

const (
	CategoryNotFound      Category = "NOT_FOUND"
	CategoryAccessDenied  Category = "ACCESS_DENIED"
	CategoryInvalidSyntax Category = "INVALID_SYNTAX"
)

// ResolutionError reports a failed secret lookup. Reference is truncated so
// that it is safe to log.
type ResolutionError struct {
	Category  Category
	Reference string
	Scheme    string
	Message   string
	Cause     error
}

// NewResolutionError builds a ResolutionError with a truncated reference.
func NewResolutionError(category Category, reference, scheme, message string, cause error) *ResolutionError {
	return &ResolutionError{
		Category:  category,
		Reference: TruncateReference(reference),
		Scheme:    scheme,
		Message:   message,
		Cause:     cause,
	}
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("secret resolution failed (%s): %s (ref: %s)", e.Category, e.Message, e.Reference)
}

func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// Is makes every NOT_FOUND error match ErrSecretNotFound.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrSecretNotFound && e.Category == CategoryNotFound
}

// TruncateReference keeps the scheme and a short prefix of the key.
func TruncateReference(ref string) string {
	const keep = 6
	if len(ref) <= keep+3 {
		return ref
	}
	return ref[:keep] + "***"
}
