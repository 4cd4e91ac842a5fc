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

// Package httpclient provides the HTTP client AWS SDK clients send requests
// through.
//
// The client never retries: every request is sent once and failures are
// returned to the caller unchanged. It adds:
//   - TLS 1.2 minimum
//   - Connection pooling with bounded idle connections
//   - A User-Agent header when the request has none
//   - One structured log record per request, with sanitized URL, status,
//     duration and the active trace ID
//
// Basic usage:
//
//	client, err := httpclient.New(httpclient.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	cfg, err := config.LoadDefaultConfig(ctx, config.WithHTTPClient(client.Buildable()))
//	if err != nil {
//	    return err
//	}
//	cfg.HTTPClient = client.Wrap(cfg.HTTPClient)
//
// The SDK only applies AWS_CA_BUNDLE to its own buildable client, so logging
// is wrapped around whatever client LoadDefaultConfig settles on.
//
// Successful requests are logged at debug level, 4xx/5xx responses and
// transport errors at warn. Authorization headers are never logged and
// signing query parameters (X-Amz-Signature, X-Amz-Credential,
// X-Amz-Security-Token) are redacted.
package httpclient
