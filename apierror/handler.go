package apierror

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ledgerline/erpclient/logger"
)

// DefaultLogCapacity bounds the in-memory error log.
const DefaultLogCapacity = 100

// Notifier receives the human-readable message of surfaced errors.
type Notifier func(message string)

// Telemetry receives every normalized error, best-effort.
type Telemetry func(*Error)

// Callback is invoked for every normalized error. Panics are recovered and
// do not propagate.
type Callback func(*Error)

// Handler normalizes heterogeneous failures into *Error and fans them out
// to the notification and telemetry sinks. Construct one per client
// composition root and inject it; there is no package-level instance.
type Handler struct {
	mu        sync.Mutex
	log       []*Error
	capacity  int
	callbacks []Callback

	notify    Notifier
	telemetry Telemetry
	logger    *logger.Logger

	now func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithNotifier sets the user-facing notification sink.
func WithNotifier(n Notifier) Option {
	return func(h *Handler) { h.notify = n }
}

// WithTelemetry sets the crash-reporting sink.
func WithTelemetry(t Telemetry) Option {
	return func(h *Handler) { h.telemetry = t }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logger.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithLogCapacity overrides the bounded log capacity.
func WithLogCapacity(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.capacity = n
		}
	}
}

// NewHandler creates a Handler.
func NewHandler(opts ...Option) *Handler {
	h := &Handler{
		capacity: DefaultLogCapacity,
		logger:   logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnError registers a callback invoked for every normalized error.
func (h *Handler) OnError(cb Callback) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callbacks = append(h.callbacks, cb)
}

// Log returns a snapshot of the bounded error log, oldest first.
func (h *Handler) Log() []*Error {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Error, len(h.log))
	copy(out, h.log)
	return out
}

// Normalize maps any failure value into a uniform *Error and records it.
// Already-normalized errors pass through with the context attached and are
// not re-recorded, so a façade re-wrapping a client error does not notify
// the user twice.
func (h *Handler) Normalize(raw any, errContext string) *Error {
	if apiErr, ok := raw.(*Error); ok && apiErr != nil {
		if apiErr.Context == "" {
			apiErr.Context = errContext
		}
		return apiErr
	}

	apiErr := h.build(raw)
	apiErr.Context = errContext
	h.record(apiErr)
	return apiErr
}

// build performs the shape dispatch.
func (h *Handler) build(raw any) *Error {
	switch v := raw.(type) {
	case *HTTPError:
		return h.fromResponse(v)
	case error:
		return h.fromError(v)
	case string:
		return &Error{
			Message:   v,
			Status:    http.StatusInternalServerError,
			Code:      UnknownError,
			Timestamp: h.now().UTC(),
		}
	case map[string]any:
		return h.fromMap(v)
	default:
		return &Error{
			Message:   genericMessage,
			Status:    http.StatusInternalServerError,
			Code:      UnexpectedError,
			Details:   raw,
			Timestamp: h.now().UTC(),
		}
	}
}

// fromResponse builds an Error from a server error response, preferring
// body-supplied message/code over the status table defaults.
func (h *Handler) fromResponse(resp *HTTPError) *Error {
	apiErr := &Error{
		Message:   statusMessage(resp.Status),
		Status:    resp.Status,
		Code:      statusCode(resp.Status),
		Timestamp: h.now().UTC(),
		RequestID: resp.RequestID,
		cause:     resp,
	}
	if len(resp.Body) == 0 || !gjson.ValidBytes(resp.Body) {
		return apiErr
	}

	body := gjson.ParseBytes(resp.Body)
	if msg := firstString(body, "message", "detail", "error"); msg != "" {
		apiErr.Message = msg
	}
	if code := body.Get("code").String(); code != "" {
		apiErr.Code = Code(code)
	}
	if field := body.Get("field").String(); field != "" {
		apiErr.Field = field
	}
	if details := body.Get("details"); details.Exists() {
		apiErr.Details = details.Value()
	}

	if validation := body.Get("validation"); validation.IsObject() && resp.Status == http.StatusBadRequest {
		apiErr.Message = "Validation failed"
		apiErr.Code = ValidationError
		apiErr.Validation = validationMap(validation)
	}
	return apiErr
}

// fromError classifies Go errors: request-build failures, transport
// failures without a response, and everything else as a client-side
// internal error.
func (h *Handler) fromError(err error) *Error {
	var buildErr *BuildError
	if errors.As(err, &buildErr) {
		return &Error{
			Message:   "The request could not be sent.",
			Status:    0,
			Code:      RequestError,
			Details:   buildErr.Err.Error(),
			Timestamp: h.now().UTC(),
			cause:     err,
		}
	}

	if isTransportError(err) {
		return &Error{
			Message:   networkMessage,
			Status:    0,
			Code:      NetworkError,
			Details:   err.Error(),
			Timestamp: h.now().UTC(),
			cause:     err,
		}
	}

	return &Error{
		Message: err.Error(),
		Status:  http.StatusInternalServerError,
		Code:    InternalError,
		Details: map[string]any{
			"error": err.Error(),
			"stack": string(debug.Stack()),
		},
		Timestamp: h.now().UTC(),
		cause:     err,
	}
}

// fromMap does best-effort extraction from an ad-hoc map shape.
func (h *Handler) fromMap(m map[string]any) *Error {
	apiErr := &Error{
		Message:   genericMessage,
		Status:    http.StatusInternalServerError,
		Code:      UnknownError,
		Timestamp: h.now().UTC(),
	}
	found := false
	if msg, ok := m["message"].(string); ok && msg != "" {
		apiErr.Message = msg
		found = true
	}
	if status, ok := m["status"].(float64); ok {
		apiErr.Status = int(status)
		found = true
	} else if status, ok := m["status"].(int); ok {
		apiErr.Status = status
		found = true
	}
	if code, ok := m["code"].(string); ok && code != "" {
		apiErr.Code = Code(code)
		found = true
	}
	if !found {
		apiErr.Details = m
	}
	return apiErr
}

// record appends to the bounded log and fans out to sinks. Notification is
// suppressed for 401s: the refresh/redirect flow already handles those.
func (h *Handler) record(apiErr *Error) {
	h.mu.Lock()
	h.log = append(h.log, apiErr)
	if len(h.log) > h.capacity {
		h.log = h.log[len(h.log)-h.capacity:]
	}
	callbacks := make([]Callback, len(h.callbacks))
	copy(callbacks, h.callbacks)
	notify := h.notify
	telemetry := h.telemetry
	h.mu.Unlock()

	h.logger.Error("api error",
		"code", string(apiErr.Code),
		"status", apiErr.Status,
		"context", apiErr.Context,
		"request_id", apiErr.RequestID,
	)

	for _, cb := range callbacks {
		safeInvoke(func() { cb(apiErr) })
	}
	if telemetry != nil {
		safeInvoke(func() { telemetry(apiErr) })
	}
	if notify != nil && apiErr.Status != http.StatusUnauthorized {
		safeInvoke(func() { notify(apiErr.Message) })
	}
}

func safeInvoke(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

func firstString(body gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := body.Get(p); v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func validationMap(v gjson.Result) map[string][]string {
	out := make(map[string][]string)
	v.ForEach(func(key, value gjson.Result) bool {
		if value.IsArray() {
			for _, item := range value.Array() {
				out[key.String()] = append(out[key.String()], item.String())
			}
		} else {
			out[key.String()] = []string{value.String()}
		}
		return true
	})
	return out
}

// isTransportError reports whether err means the request went out but no
// response came back.
func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
