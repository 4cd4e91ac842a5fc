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

// Package secrets resolves secret references in configuration values.
//
// A value is routed to a provider by its scheme:
//
//	env:AWS_SECRET_ACCESS_KEY      environment variable
//	${AWS_SECRET_ACCESS_KEY}       environment variable (legacy syntax)
//	file:/run/secrets/aws-secret   file contents, trailing whitespace trimmed
//	keychain:aws-secret-access-key system keychain entry
//
// Values without a known scheme are returned unchanged, so plain strings can
// sit next to references in the same file.
//
// Errors never contain the resolved value, and references are truncated
// before they appear in messages.
package secrets
