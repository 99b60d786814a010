package apierror

import (
	"net/http"
	"testing"
)

func TestStatusTables(t *testing.T) {
	cases := []struct {
		status  int
		code    Code
		message string
	}{
		{http.StatusBadRequest, BadRequest, "Bad request. Please verify the submitted data."},
		{http.StatusUnauthorized, Unauthorized, "Authentication required. Please sign in again."},
		{http.StatusForbidden, Forbidden, "Access denied. You do not have permission to perform this action."},
		{http.StatusNotFound, NotFound, "Resource not found."},
		{http.StatusConflict, Conflict, "Conflict. The resource was changed by another request."},
		{http.StatusUnprocessableEntity, ValidationError, "Validation failed. Please check your input."},
		{http.StatusTooManyRequests, RateLimited, "Too many requests. Please slow down and try again."},
		{http.StatusInternalServerError, InternalServerError, "Internal server error. Please try again later."},
		{http.StatusBadGateway, BadGateway, "Bad gateway. The server received an invalid upstream response."},
		{http.StatusServiceUnavailable, ServiceUnavailable, "Service unavailable. Please try again later."},
		{http.StatusGatewayTimeout, GatewayTimeout, "Gateway timeout. The server took too long to respond."},
	}
	for _, c := range cases {
		if got := statusCode(c.status); got != c.code {
			t.Errorf("statusCode(%d) = %s, want %s", c.status, got, c.code)
		}
		if got := statusMessage(c.status); got != c.message {
			t.Errorf("statusMessage(%d) = %q, want %q", c.status, got, c.message)
		}
	}
}

func TestStatusTablesUnknownStatus(t *testing.T) {
	if got := statusCode(418); got != UnknownError {
		t.Errorf("statusCode(418) = %s, want %s", got, UnknownError)
	}
	if got := statusMessage(418); got != genericMessage {
		t.Errorf("statusMessage(418) = %q, want generic message", got)
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil status network", &Error{Status: 0, Code: NetworkError}, true},
		{"404", &Error{Status: 404, Code: NotFound}, false},
		{"422", &Error{Status: 422, Code: ValidationError}, false},
		{"429", &Error{Status: 429, Code: RateLimited}, true},
		{"500", &Error{Status: 500, Code: InternalServerError}, true},
		{"503", &Error{Status: 503, Code: ServiceUnavailable}, true},
		{"plain error", http.ErrBodyNotAllowed, true},
	}
	for _, c := range cases {
		if got := Retryable(c.err); got != c.want {
			t.Errorf("%s: Retryable = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestErrorString(t *testing.T) {
	e := &Error{Message: "nope", Status: 403, Code: Forbidden}
	if got := e.Error(); got != "[FORBIDDEN] nope (status 403)" {
		t.Errorf("Error() = %q", got)
	}

	e.Context = "Invoicing: GET /invoices"
	if got := e.Error(); got != "[FORBIDDEN] nope (status 403, Invoicing: GET /invoices)" {
		t.Errorf("Error() with context = %q", got)
	}
}
