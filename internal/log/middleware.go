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

package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader is read from incoming requests and echoed on responses.
const RequestIDHeader = "X-Request-ID"

// HTTPRequest describes an incoming HTTP request for logging purposes.
type HTTPRequest struct {
	Method     string
	Path       string
	RequestID  string
	RemoteAddr string
}

// HTTPResponse describes a completed HTTP response for logging purposes.
type HTTPResponse struct {
	Status     int
	Bytes      int
	DurationMs int64
}

// LogHTTPRequest logs an incoming request at debug level.
func LogHTTPRequest(logger *slog.Logger, req *HTTPRequest) {
	logger.Debug("http request received",
		EventKey, "http_request",
		"method", req.Method,
		"path", req.Path,
		"request_id", req.RequestID,
		"remote", req.RemoteAddr,
	)
}

// LogHTTPResponse logs a completed request. 5xx responses are logged at error level.
func LogHTTPResponse(logger *slog.Logger, req *HTTPRequest, resp *HTTPResponse) {
	level := slog.LevelInfo
	message := "http request completed"
	if resp.Status >= 500 {
		level = slog.LevelError
		message = "http request failed"
	}

	logger.Log(context.Background(), level, message,
		EventKey, "http_response",
		"method", req.Method,
		"path", req.Path,
		"status", resp.Status,
		"bytes", resp.Bytes,
		DurationKey, resp.DurationMs,
		"request_id", req.RequestID,
	)
}

// HTTPMiddleware wraps a handler with request/response logging. A request ID
// is taken from X-Request-ID or generated, and echoed back on the response.
func HTTPMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			req := &HTTPRequest{
				Method:     r.Method,
				Path:       r.URL.Path,
				RequestID:  requestID,
				RemoteAddr: r.RemoteAddr,
			}
			LogHTTPRequest(logger, req)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			LogHTTPResponse(logger, req, &HTTPResponse{
				Status:     rec.status,
				Bytes:      rec.bytes,
				DurationMs: time.Since(start).Milliseconds(),
			})
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}
