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

package httpclient

import (
	"crypto/tls"
	"log/slog"
	"net/http"
	"time"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
)

// Doer sends one HTTP request. aws.HTTPClient and *http.Client satisfy it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client carries the transport settings and request logging shared by every
// AWS client the factory builds.
type Client struct {
	base      *awshttp.BuildableClient
	userAgent string
	logger    *slog.Logger
}

// New creates a Client from cfg. It returns an error if the configuration
// is invalid.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := awshttp.NewBuildableClient().
		WithTimeout(cfg.Timeout).
		WithTransportOptions(transportOptions(cfg))

	return &Client{base: base, userAgent: cfg.UserAgent, logger: logger}, nil
}

// Buildable returns the unwrapped SDK client. The SDK can still apply its
// own transport options to it, such as a custom CA bundle from
// AWS_CA_BUNDLE.
func (c *Client) Buildable() *awshttp.BuildableClient {
	return c.base
}

// Wrap returns next with request logging and the default User-Agent.
func (c *Client) Wrap(next Doer) Doer {
	if next == nil {
		next = c.base
	}
	return &loggingClient{
		next:      next,
		userAgent: c.userAgent,
		logger:    c.logger,
	}
}

// Do sends req through the logged base client.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.Wrap(c.base).Do(req)
}

func transportOptions(cfg Config) func(*http.Transport) {
	return func(tr *http.Transport) {
		if tr.TLSClientConfig == nil {
			tr.TLSClientConfig = &tls.Config{}
		}
		if tr.TLSClientConfig.MinVersion < tls.VersionTLS12 {
			tr.TLSClientConfig.MinVersion = tls.VersionTLS12
		}

		tr.MaxIdleConns = 100
		tr.MaxIdleConnsPerHost = 10
		tr.IdleConnTimeout = 90 * time.Second
		tr.TLSHandshakeTimeout = 10 * time.Second
		tr.ResponseHeaderTimeout = cfg.Timeout
		tr.ExpectContinueTimeout = 1 * time.Second
	}
}
