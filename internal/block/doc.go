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

// Package block runs AWS operations as flow blocks.
//
// A Block pairs one catalog descriptor with one bound SDK command. Handling
// an event goes through a fixed pipeline:
//
//	resolve inputConfig -> build SDK input -> read execution context ->
//	build client -> invoke once -> normalize response -> emit on "default"
//
// Every step before the client is built can only fail with a
// *errors.ConfigurationError, so a misconfigured event never reaches the
// network. Provider errors are returned unmodified and nothing is emitted.
//
// Blocks hold no per-invocation state and are safe for concurrent use.
package block
