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

// Package catalog holds the operation descriptors exposed as blocks.
//
// A descriptor is static data: the operation name, a human description,
// an ordered set of configuration fields and the advisory shape of the
// result. Descriptors live in YAML files under descriptors/, one file per
// AWS service, and are embedded into the binary.
//
// The field types form a small tagged schema (string, number, boolean,
// array-of-T, object-of-fields) that renders to JSON Schema for the host
// platform and is validated with gojsonschema before a request is built.
package catalog
