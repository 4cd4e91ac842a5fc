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

package shared

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spacelift-io/flows-app-aws-api/internal/awsclient"
	flowserrors "github.com/spacelift-io/flows-app-aws-api/pkg/errors"
)

// Exit codes
const (
	ExitSuccess          = 0
	ExitInvocationFailed = 1
	ExitConfiguration    = 2
	ExitNotFound         = 3
	ExitProviderError    = 4
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		if e.Message == "" {
			return e.Cause.Error()
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates an error for invalid input or configuration.
func NewConfigurationError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitConfiguration, Message: msg, Cause: cause}
}

// NewProviderError creates an error for AWS service failures.
func NewProviderError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitProviderError, Message: msg, Cause: cause}
}

// ClassifyInvocationError wraps an invocation error with the exit code
// matching its category.
func ClassifyInvocationError(err error) *ExitError {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	switch {
	case flowserrors.IsConfigurationError(err):
		return &ExitError{Code: ExitConfiguration, Cause: err}
	case flowserrors.IsNotFound(err):
		return &ExitError{Code: ExitNotFound, Cause: err}
	case flowserrors.Type(err) != "":
		return &ExitError{Code: ExitInvocationFailed, Cause: err}
	default:
		return &ExitError{Code: ExitProviderError, Message: "AWS request failed", Cause: err}
	}
}

// ErrorCode returns the JSON error code for err.
func ErrorCode(err error) string {
	if t := flowserrors.Type(err); t != "" {
		return t
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code == ExitProviderError {
		return "provider." + string(awsclient.Classify(err))
	}
	return "error"
}

// HandleExitError prints err with any suggestion and exits with its code.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	code := PrintError(os.Stderr, err)
	os.Exit(code)
}

// PrintError writes err and its suggestion to w and returns the exit code.
func PrintError(w io.Writer, err error) int {
	code := ExitInvocationFailed
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
	}

	fmt.Fprintln(w, RenderError("Error: "+err.Error()))
	if _, suggestion := flowserrors.Describe(err); suggestion != "" {
		fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
	}
	return code
}
