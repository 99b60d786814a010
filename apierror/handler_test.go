package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"
)

func TestNormalizeHTTPErrorWithBody(t *testing.T) {
	h := NewHandler()
	raw := &HTTPError{
		Status:    http.StatusConflict,
		Body:      []byte(`{"message":"invoice already posted","code":"ALREADY_POSTED","field":"status"}`),
		RequestID: "req-1",
	}

	got := h.Normalize(raw, "Invoicing: POST /invoices")

	if got.Message != "invoice already posted" {
		t.Errorf("Message = %q", got.Message)
	}
	if got.Code != Code("ALREADY_POSTED") {
		t.Errorf("Code = %s", got.Code)
	}
	if got.Field != "status" {
		t.Errorf("Field = %q", got.Field)
	}
	if got.Status != http.StatusConflict {
		t.Errorf("Status = %d", got.Status)
	}
	if got.RequestID != "req-1" {
		t.Errorf("RequestID = %q", got.RequestID)
	}
	if got.Context != "Invoicing: POST /invoices" {
		t.Errorf("Context = %q", got.Context)
	}
}

func TestNormalizeHTTPErrorEmptyBodyUsesTable(t *testing.T) {
	h := NewHandler()
	got := h.Normalize(&HTTPError{Status: http.StatusUnprocessableEntity}, "ctx")

	if got.Message != "Validation failed. Please check your input." {
		t.Errorf("Message = %q", got.Message)
	}
	if got.Code != ValidationError {
		t.Errorf("Code = %s", got.Code)
	}
}

func TestNormalizeValidationBody(t *testing.T) {
	h := NewHandler()
	body := `{"message":"bad","validation":{"email":["required","invalid"],"name":"too short"}}`
	got := h.Normalize(&HTTPError{Status: http.StatusBadRequest, Body: []byte(body)}, "ctx")

	if got.Code != ValidationError {
		t.Errorf("Code = %s, want %s", got.Code, ValidationError)
	}
	if got.Message != "Validation failed" {
		t.Errorf("Message = %q", got.Message)
	}
	if len(got.Validation["email"]) != 2 {
		t.Errorf("Validation[email] = %v", got.Validation["email"])
	}
	if len(got.Validation["name"]) != 1 || got.Validation["name"][0] != "too short" {
		t.Errorf("Validation[name] = %v", got.Validation["name"])
	}
}

func TestNormalizeBuildError(t *testing.T) {
	h := NewHandler()
	got := h.Normalize(&BuildError{Err: errors.New("marshal failed")}, "ctx")

	if got.Code != RequestError || got.Status != 0 {
		t.Errorf("got code %s status %d, want %s status 0", got.Code, got.Status, RequestError)
	}
}

func TestNormalizeTransportError(t *testing.T) {
	h := NewHandler()
	urlErr := &url.Error{Op: "Get", URL: "https://api.example.com", Err: errors.New("connection refused")}
	got := h.Normalize(fmt.Errorf("do request: %w", urlErr), "ctx")

	if got.Code != NetworkError || got.Status != 0 {
		t.Errorf("got code %s status %d, want %s status 0", got.Code, got.Status, NetworkError)
	}
	if got.Message != networkMessage {
		t.Errorf("Message = %q", got.Message)
	}
}

func TestNormalizeString(t *testing.T) {
	h := NewHandler()
	got := h.Normalize("something odd", "ctx")

	if got.Code != UnknownError || got.Status != http.StatusInternalServerError {
		t.Errorf("got code %s status %d", got.Code, got.Status)
	}
	if got.Message != "something odd" {
		t.Errorf("Message = %q", got.Message)
	}
}

func TestNormalizeMap(t *testing.T) {
	h := NewHandler()
	got := h.Normalize(map[string]any{"message": "boom", "status": float64(502), "code": "UPSTREAM"}, "ctx")

	if got.Message != "boom" || got.Status != 502 || got.Code != Code("UPSTREAM") {
		t.Errorf("got %q/%d/%s", got.Message, got.Status, got.Code)
	}
}

func TestNormalizeUnknownShape(t *testing.T) {
	h := NewHandler()
	got := h.Normalize(42, "ctx")

	if got.Code != UnexpectedError || got.Status != http.StatusInternalServerError {
		t.Errorf("got code %s status %d", got.Code, got.Status)
	}
}

func TestNormalizePassthroughDoesNotRecordTwice(t *testing.T) {
	h := NewHandler()
	first := h.Normalize(&HTTPError{Status: 500}, "Client: GET /x")
	second := h.Normalize(first, "Accounting: GET /x")

	if second != first {
		t.Error("already normalized error was rebuilt")
	}
	if second.Context != "Client: GET /x" {
		t.Errorf("Context = %q, want original preserved", second.Context)
	}
	if got := len(h.Log()); got != 1 {
		t.Errorf("log length = %d, want 1", got)
	}
}

func TestBoundedLogEvictsOldest(t *testing.T) {
	h := NewHandler()
	for i := 0; i < 150; i++ {
		h.Normalize(&HTTPError{Status: 500, RequestID: fmt.Sprintf("req-%d", i)}, "ctx")
	}

	log := h.Log()
	if len(log) != DefaultLogCapacity {
		t.Fatalf("log length = %d, want %d", len(log), DefaultLogCapacity)
	}
	if log[0].RequestID != "req-50" {
		t.Errorf("oldest entry = %s, want req-50", log[0].RequestID)
	}
	if log[len(log)-1].RequestID != "req-149" {
		t.Errorf("newest entry = %s, want req-149", log[len(log)-1].RequestID)
	}
}

func TestNotifierSuppressedFor401(t *testing.T) {
	var notified []string
	h := NewHandler(WithNotifier(func(msg string) { notified = append(notified, msg) }))

	h.Normalize(&HTTPError{Status: http.StatusUnauthorized}, "ctx")
	h.Normalize(&HTTPError{Status: http.StatusForbidden}, "ctx")

	if len(notified) != 1 {
		t.Fatalf("notified %d times, want 1", len(notified))
	}
	if notified[0] != statusMessage(http.StatusForbidden) {
		t.Errorf("notified with %q", notified[0])
	}
}

func TestCallbackPanicIsRecovered(t *testing.T) {
	var calls int
	h := NewHandler()
	h.OnError(func(*Error) { panic("bad callback") })
	h.OnError(func(*Error) { calls++ })

	got := h.Normalize(&HTTPError{Status: 500}, "ctx")
	if got == nil {
		t.Fatal("Normalize returned nil")
	}
	if calls != 1 {
		t.Errorf("second callback ran %d times, want 1", calls)
	}
}

func TestTelemetryReceivesEveryError(t *testing.T) {
	var seen []*Error
	h := NewHandler(WithTelemetry(func(e *Error) { seen = append(seen, e) }))

	h.Normalize(&HTTPError{Status: 500}, "a")
	h.Normalize(&HTTPError{Status: http.StatusUnauthorized}, "b")

	if len(seen) != 2 {
		t.Errorf("telemetry saw %d errors, want 2", len(seen))
	}
}
