package awsclient

import (
	"context"
	"errors"
	"net"
	"strings"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// ErrorKind labels a provider error for logs, metrics and host responses.
// Classification never changes the error that is returned to callers.
type ErrorKind string

const (
	KindAuth       ErrorKind = "auth"
	KindThrottling ErrorKind = "throttling"
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindDryRun     ErrorKind = "dry_run"
	KindTimeout    ErrorKind = "timeout"
	KindCancelled  ErrorKind = "cancelled"
	KindConnection ErrorKind = "connection"
	KindServer     ErrorKind = "server"
	KindClient     ErrorKind = "client"
	KindUnknown    ErrorKind = "unknown"
)

// ErrorDetails is what can be learned about a provider error without
// unwrapping it by hand.
type ErrorDetails struct {
	Kind       ErrorKind
	Code       string
	Message    string
	StatusCode int
	RequestID  string
}

// Describe extracts ErrorDetails from err. Message is sanitized.
func Describe(err error) ErrorDetails {
	d := ErrorDetails{Kind: Classify(err)}
	if err == nil {
		return d
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		d.Code = apiErr.ErrorCode()
		d.Message = SanitizeError(apiErr.ErrorMessage())
	} else {
		d.Message = SanitizeError(err.Error())
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		d.StatusCode = respErr.HTTPStatusCode()
		d.RequestID = respErr.ServiceRequestID()
	}
	return d
}

// Classify categorizes err by AWS error code, then HTTP status, then
// transport failure.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, context.Canceled):
		return KindCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if kind := classifyCode(apiErr.ErrorCode()); kind != "" {
			return kind
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		status := respErr.HTTPStatusCode()
		switch {
		case status == 429:
			return KindThrottling
		case status == 401 || status == 403:
			return KindAuth
		case status == 404:
			return KindNotFound
		case status >= 500:
			return KindServer
		case status >= 400:
			return KindClient
		}
	}

	var sendErr *smithyhttp.RequestSendError
	if errors.As(err, &sendErr) {
		return KindConnection
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindConnection
	}

	if apiErr != nil && apiErr.ErrorFault() == smithy.FaultServer {
		return KindServer
	}
	if apiErr != nil {
		return KindClient
	}
	return KindUnknown
}

func classifyCode(code string) ErrorKind {
	switch code {
	case "":
		return ""
	case "SignatureDoesNotMatch", "InvalidSignatureException", "InvalidAccessKeyId",
		"InvalidClientTokenId", "UnrecognizedClientException", "ExpiredToken",
		"ExpiredTokenException", "AuthFailure", "AccessDenied", "AccessDeniedException",
		"UnauthorizedOperation":
		return KindAuth
	case "RequestLimitExceeded", "Throttling", "ThrottlingException",
		"TooManyRequestsException", "RequestThrottled":
		return KindThrottling
	case "RequestTimeout", "RequestTimeoutException":
		return KindTimeout
	case "DryRunOperation":
		return KindDryRun
	case "ValidationError", "ValidationException", "InvalidParameterValue",
		"InvalidParameterCombination", "InvalidParameter", "InvalidParameterException",
		"MissingParameter", "InvalidRequestException", "InvalidFormat":
		return KindValidation
	}

	switch {
	case strings.HasSuffix(code, ".NotFound"), strings.HasSuffix(code, "NotFound"),
		strings.HasSuffix(code, "NotFoundFault"), strings.HasSuffix(code, "NotFoundException"):
		return KindNotFound
	case strings.HasSuffix(code, ".Malformed"):
		return KindValidation
	}
	return ""
}

// SanitizeError redacts AWS access key IDs (AKIA/ASIA followed by 16
// characters) from msg.
func SanitizeError(msg string) string {
	for _, prefix := range []string{"AKIA", "ASIA"} {
		searchPos := 0
		for {
			pos := strings.Index(msg[searchPos:], prefix)
			if pos == -1 {
				break
			}
			pos += searchPos

			end := pos + 20
			if end > len(msg) {
				end = len(msg)
			}
			redacted := prefix + "****"
			msg = msg[:pos] + redacted + msg[end:]
			searchPos = pos + len(redacted)
		}
	}
	return msg
}
