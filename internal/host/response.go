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

package host

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spacelift-io/flows-app-aws-api/internal/awsclient"
	flowserrors "github.com/spacelift-io/flows-app-aws-api/pkg/errors"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error      string                     `json:"error"`
	Type       string                     `json:"type,omitempty"`
	Suggestion string                     `json:"suggestion,omitempty"`
	Problems   []flowserrors.FieldProblem `json:"problems,omitempty"`
	Provider   *ProviderError             `json:"provider,omitempty"`
}

// ProviderError carries what is known about an AWS service error.
type ProviderError struct {
	Kind       awsclient.ErrorKind `json:"kind"`
	Code       string              `json:"code,omitempty"`
	Message    string              `json:"message,omitempty"`
	StatusCode int                 `json:"statusCode,omitempty"`
	RequestID  string              `json:"requestId,omitempty"`
}

// writeJSON writes a JSON response with the given status code and data.
// If encoding fails, it logs the error.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", slog.Any("error", err))
	}
}

// writeError writes a plain JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// errorResponse maps an invocation error to a status code and body.
//
//   - configuration errors: 400 with every field problem
//   - unknown block: 404
//   - result normalization, client construction or emit failure: 500
//   - anything else came from the provider: 502, or 504 on timeout
func errorResponse(err error) (int, ErrorResponse) {
	message, suggestion := flowserrors.Describe(err)
	body := ErrorResponse{
		Error:      message,
		Type:       flowserrors.Type(err),
		Suggestion: suggestion,
	}

	if cfgErr, ok := flowserrors.AsConfigurationError(err); ok {
		body.Problems = cfgErr.Problems
		return http.StatusBadRequest, body
	}
	if flowserrors.IsNotFound(err) {
		return http.StatusNotFound, body
	}
	var normErr *flowserrors.ResultNormalizationError
	if errors.As(err, &normErr) {
		return http.StatusInternalServerError, body
	}
	var invErr *flowserrors.InvocationError
	if errors.As(err, &invErr) {
		body.Error = awsclient.SanitizeError(err.Error())
		return http.StatusInternalServerError, body
	}

	d := awsclient.Describe(err)
	body.Type = "provider"
	body.Provider = &ProviderError{
		Kind:       d.Kind,
		Code:       d.Code,
		Message:    d.Message,
		StatusCode: d.StatusCode,
		RequestID:  d.RequestID,
	}
	body.Error = awsclient.SanitizeError(err.Error())
	if d.Kind == awsclient.KindTimeout {
		return http.StatusGatewayTimeout, body
	}
	return http.StatusBadGateway, body
}
