// Package apierror defines the error taxonomy for the Ledgerline client.
//
// Every failure the client can surface (transport errors, HTTP error
// bodies, raw values from application code) is normalized into one
// uniform Error shape before it reaches callers. Codes are machine-readable;
// messages default from a fixed status table when the server body carries
// nothing usable.
package apierror

import (
	"fmt"
	"net/http"
	"time"
)

// Code is a machine-readable error identifier.
type Code string

// Transport-level codes. Status is 0 for both: no server response exists.
const (
	NetworkError Code = "NETWORK_ERROR"
	RequestError Code = "REQUEST_ERROR"
)

// HTTP status codes.
const (
	BadRequest          Code = "BAD_REQUEST"
	Unauthorized        Code = "UNAUTHORIZED"
	Forbidden           Code = "FORBIDDEN"
	NotFound            Code = "NOT_FOUND"
	Conflict            Code = "CONFLICT"
	ValidationError     Code = "VALIDATION_ERROR"
	RateLimited         Code = "RATE_LIMITED"
	InternalServerError Code = "INTERNAL_SERVER_ERROR"
	BadGateway          Code = "BAD_GATEWAY"
	ServiceUnavailable  Code = "SERVICE_UNAVAILABLE"
	GatewayTimeout      Code = "GATEWAY_TIMEOUT"
)

// Client-side catch-all codes.
const (
	InternalError   Code = "INTERNAL_ERROR"
	UnknownError    Code = "UNKNOWN_ERROR"
	UnexpectedError Code = "UNEXPECTED_ERROR"
)

// Error is the single uniform error shape. Status is always present (0 when
// no transport response was received) and Code is always non-empty.
type Error struct {
	Message   string
	Status    int
	Code      Code
	Details   any
	Timestamp time.Time
	RequestID string
	Field     string
	Validation map[string][]string

	// Context tags the operation that surfaced the error, e.g.
	// "Invoicing: GET /invoices".
	Context string

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("[%s] %s (status %d, %s)", e.Code, e.Message, e.Status, e.Context)
	}
	return fmt.Sprintf("[%s] %s (status %d)", e.Code, e.Message, e.Status)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Retryable reports whether an operation that failed with err is worth
// retrying. Client errors other than rate limiting are not; everything else
// (network failures, 5xx, 429, non-normalized errors) is.
func Retryable(err error) bool {
	apiErr, ok := err.(*Error)
	if !ok {
		return true
	}
	if apiErr.Status >= 400 && apiErr.Status < 500 && apiErr.Status != http.StatusTooManyRequests {
		return false
	}
	return true
}

// HTTPError carries a server error response into Normalize.
type HTTPError struct {
	Status    int
	Body      []byte
	RequestID string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d", e.Status)
}

// BuildError marks a failure to construct or send a request (as opposed to
// a failure of the request itself). Normalizes to REQUEST_ERROR.
type BuildError struct {
	Err error
}

// Error implements the error interface.
func (e *BuildError) Error() string { return "request error: " + e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *BuildError) Unwrap() error { return e.Err }

// Default messages keyed by HTTP status.
var statusMessages = map[int]string{
	http.StatusBadRequest:          "Bad request. Please verify the submitted data.",
	http.StatusUnauthorized:        "Authentication required. Please sign in again.",
	http.StatusForbidden:           "Access denied. You do not have permission to perform this action.",
	http.StatusNotFound:            "Resource not found.",
	http.StatusConflict:            "Conflict. The resource was changed by another request.",
	http.StatusUnprocessableEntity: "Validation failed. Please check your input.",
	http.StatusTooManyRequests:     "Too many requests. Please slow down and try again.",
	http.StatusInternalServerError: "Internal server error. Please try again later.",
	http.StatusBadGateway:          "Bad gateway. The server received an invalid upstream response.",
	http.StatusServiceUnavailable:  "Service unavailable. Please try again later.",
	http.StatusGatewayTimeout:      "Gateway timeout. The server took too long to respond.",
}

// Codes keyed by HTTP status.
var statusCodes = map[int]Code{
	http.StatusBadRequest:          BadRequest,
	http.StatusUnauthorized:        Unauthorized,
	http.StatusForbidden:           Forbidden,
	http.StatusNotFound:            NotFound,
	http.StatusConflict:            Conflict,
	http.StatusUnprocessableEntity: ValidationError,
	http.StatusTooManyRequests:     RateLimited,
	http.StatusInternalServerError: InternalServerError,
	http.StatusBadGateway:          BadGateway,
	http.StatusServiceUnavailable:  ServiceUnavailable,
	http.StatusGatewayTimeout:      GatewayTimeout,
}

const (
	genericMessage = "An unexpected error occurred. Please try again."
	networkMessage = "Network error. Please check your connection and try again."
)

// statusMessage returns the default message for an HTTP status.
func statusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return genericMessage
}

// statusCode returns the code for an HTTP status.
func statusCode(status int) Code {
	if code, ok := statusCodes[status]; ok {
		return code
	}
	return UnknownError
}
