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

// Package awsclient builds AWS SDK clients for a single invocation.
//
// A client is constructed from a service identifier, a region and an
// ExecutionContext holding the account credentials and optional endpoint
// override. Clients are never cached: every call to Factory.NewClient returns
// a fresh instance and no network traffic happens until a command is issued.
package awsclient

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/spacelift-io/flows-app-aws-api/internal/log"
)

// Service identifies an AWS service the factory can build clients for.
type Service string

const (
	CloudWatch   Service = "CloudWatch"
	EC2          Service = "EC2"
	ImageBuilder Service = "ImageBuilder"
	RDS          Service = "RDS"
	STS          Service = "STS"
)

// Services returns every supported service identifier.
func Services() []Service {
	return []Service{CloudWatch, EC2, ImageBuilder, RDS, STS}
}

// Supported reports whether the factory has a constructor for s.
func (s Service) Supported() bool {
	_, ok := constructors[s]
	return ok
}

// Credentials are static account credentials. SessionToken is only set for
// temporary credentials.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// IsTemporary reports whether the credentials carry a session token.
func (c Credentials) IsTemporary() bool {
	return c.SessionToken != ""
}

// ExecutionContext is the account-level connection context of an invocation.
// It comes from application configuration, never from the triggering event.
type ExecutionContext struct {
	Credentials Credentials

	// Endpoint overrides the service endpoint for every client built from this
	// context, e.g. "http://localhost:4566". Empty means default resolution.
	Endpoint string
}

// Problems returns the configuration problems of ec, keyed by the application
// config field name. An empty result means the context is usable.
func (ec ExecutionContext) Problems() map[string]string {
	problems := make(map[string]string)
	if strings.TrimSpace(ec.Credentials.AccessKeyID) == "" {
		problems["accessKeyId"] = "is required"
	}
	if strings.TrimSpace(ec.Credentials.SecretAccessKey) == "" {
		problems["secretAccessKey"] = "is required"
	}
	if ec.Endpoint != "" {
		u, err := url.Parse(ec.Endpoint)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			problems["endpoint"] = "must be an absolute http:// or https:// URL"
		}
	}
	return problems
}

// LogValue keeps secrets out of logs when an ExecutionContext is logged.
func (ec ExecutionContext) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("access_key_id", log.SanitizeAPIKey(ec.Credentials.AccessKeyID)),
		slog.Bool("temporary", ec.Credentials.IsTemporary()),
	}
	if ec.Endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", ec.Endpoint))
	}
	return slog.GroupValue(attrs...)
}
