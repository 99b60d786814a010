package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ledgerline/erpclient/apierror"
	"github.com/ledgerline/erpclient/tokenstore"
)

func newTestClient(t *testing.T, handler http.Handler, cfg Config) (*Client, *tokenstore.Store) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tokens := tokenstore.New(nil)
	cfg.BaseURL = server.URL
	cfg.Tokens = tokens

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, tokens
}

func TestGetAttachesTokenAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		if r.URL.Path != "/api/v1/things" {
			t.Errorf("path = %s, want /api/v1/things", r.URL.Path)
		}
		w.Write([]byte(`{"ok":true}`))
	})

	c, tokens := newTestClient(t, handler, Config{})
	tokens.SetTokens("valid-token", "refresh-token", time.Hour)

	body, err := c.Get(context.Background(), "/things")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
	if gotAuth != "Bearer valid-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestExpiredTokenOmittedFromRequest(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/refresh":
			json.NewEncoder(w).Encode(Session{AccessToken: "fresh", RefreshToken: "r2", ExpiresIn: 3600})
		default:
			gotAuth = r.Header.Get("Authorization")
			if gotAuth == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{}`))
		}
	})

	c, tokens := newTestClient(t, handler, Config{})
	// An expired access token must not be sent; the 401 path handles it.
	tokens.SetTokens("stale", "refresh-token", 0)

	if _, err := c.Get(context.Background(), "/things"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotAuth != "Bearer fresh" {
		t.Errorf("final Authorization = %q, want Bearer fresh", gotAuth)
	}
}

func TestUnauthorizedTriggersRefreshAndReplay(t *testing.T) {
	var refreshCalls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/refresh":
			refreshCalls.Add(1)
			var req map[string]string
			json.NewDecoder(r.Body).Decode(&req)
			if req["refresh"] != "refresh-token" {
				t.Errorf("refresh body = %v", req)
			}
			json.NewEncoder(w).Encode(Session{AccessToken: "new-token", RefreshToken: "new-refresh", ExpiresIn: 3600})
		default:
			if r.Header.Get("Authorization") == "Bearer new-token" {
				w.Write([]byte(`{"data":"yes"}`))
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
		}
	})

	c, tokens := newTestClient(t, handler, Config{})
	tokens.SetTokens("old-token", "refresh-token", time.Hour)

	body, err := c.Get(context.Background(), "/things")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != `{"data":"yes"}` {
		t.Errorf("body = %s", body)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
	if tokens.AccessToken() != "new-token" || tokens.RefreshToken() != "new-refresh" {
		t.Error("refreshed credential pair not persisted")
	}
}

func TestConcurrentUnauthorizedSharesOneRefresh(t *testing.T) {
	const workers = 8

	var arrivals sync.WaitGroup
	arrivals.Add(workers)
	var refreshCalls atomic.Int32

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/refresh":
			refreshCalls.Add(1)
			time.Sleep(100 * time.Millisecond)
			json.NewEncoder(w).Encode(Session{AccessToken: "new-token", RefreshToken: "r2", ExpiresIn: 3600})
		default:
			if r.Header.Get("Authorization") == "Bearer new-token" {
				w.Write([]byte(`{}`))
				return
			}
			// Hold every first attempt until all workers have arrived, so
			// the 401s land together and race into the refresh path.
			arrivals.Done()
			arrivals.Wait()
			w.WriteHeader(http.StatusUnauthorized)
		}
	})

	c, tokens := newTestClient(t, handler, Config{})
	tokens.SetTokens("old-token", "refresh-token", time.Hour)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Get(context.Background(), "/things")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("worker %d: %v", i, err)
		}
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
}

func TestForbiddenForcesLogoutWithoutRefresh(t *testing.T) {
	var refreshCalls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/refresh" {
			refreshCalls.Add(1)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	})

	var navigations []string
	c, tokens := newTestClient(t, handler, Config{
		Navigate: func(route string) { navigations = append(navigations, route) },
	})
	tokens.SetTokens("tok", "ref", time.Hour)

	_, err := c.Get(context.Background(), "/things")
	apiErr, ok := err.(*apierror.Error)
	if !ok || apiErr.Code != apierror.Forbidden {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}
	if refreshCalls.Load() != 0 {
		t.Error("403 must not trigger a refresh")
	}
	if tokens.AccessToken() != "" {
		t.Error("tokens not cleared on 403")
	}
	if len(navigations) != 1 || navigations[0] != "/login" {
		t.Errorf("navigations = %v, want one to /login", navigations)
	}
}

func TestRefreshFailureForcesLogout(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/refresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})

	var navigated bool
	c, tokens := newTestClient(t, handler, Config{
		Navigate: func(string) { navigated = true },
	})
	tokens.SetTokens("tok", "ref", time.Hour)

	if _, err := c.Get(context.Background(), "/things"); err == nil {
		t.Fatal("Get succeeded, want error")
	}
	if !navigated {
		t.Error("no navigation after failed refresh")
	}
	if tokens.AccessToken() != "" {
		t.Error("tokens not cleared after failed refresh")
	}
}

func TestUnauthorizedAfterRefreshForcesLogout(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/refresh" {
			json.NewEncoder(w).Encode(Session{AccessToken: "still-bad", RefreshToken: "r", ExpiresIn: 3600})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})

	var navigations int
	c, tokens := newTestClient(t, handler, Config{
		Navigate: func(string) { navigations++ },
	})
	tokens.SetTokens("tok", "ref", time.Hour)

	if _, err := c.Get(context.Background(), "/things"); err == nil {
		t.Fatal("Get succeeded, want error")
	}
	if navigations != 1 {
		t.Errorf("navigations = %d, want 1", navigations)
	}
}

func TestServerErrorIsNormalized(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"maintenance window"}`))
	})

	c, tokens := newTestClient(t, handler, Config{})
	tokens.SetTokens("tok", "ref", time.Hour)

	_, err := c.Get(context.Background(), "/things")
	apiErr, ok := err.(*apierror.Error)
	if !ok {
		t.Fatalf("err = %T, want *apierror.Error", err)
	}
	if apiErr.Code != apierror.ServiceUnavailable || apiErr.Message != "maintenance window" {
		t.Errorf("got %s / %q", apiErr.Code, apiErr.Message)
	}
	if apiErr.RequestID == "" {
		t.Error("RequestID not carried into the normalized error")
	}
}

func TestTransportErrorIsNormalized(t *testing.T) {
	tokens := tokenstore.New(nil)
	c, err := New(Config{BaseURL: "http://127.0.0.1:1", Tokens: tokens})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Get(context.Background(), "/things")
	apiErr, ok := err.(*apierror.Error)
	if !ok || apiErr.Code != apierror.NetworkError || apiErr.Status != 0 {
		t.Fatalf("err = %v, want NETWORK_ERROR with status 0", err)
	}
}

func TestUnmarshalableBodyIsRequestError(t *testing.T) {
	c, tokens := newTestClient(t, http.NotFoundHandler(), Config{})
	tokens.SetTokens("tok", "ref", time.Hour)

	_, err := c.Post(context.Background(), "/things", func() {})
	apiErr, ok := err.(*apierror.Error)
	if !ok || apiErr.Code != apierror.RequestError {
		t.Fatalf("err = %v, want REQUEST_ERROR", err)
	}
}

func TestGetAsDecodes(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"inv-1","total":12.5}`))
	})
	c, tokens := newTestClient(t, handler, Config{})
	tokens.SetTokens("tok", "ref", time.Hour)

	type invoice struct {
		ID    string  `json:"id"`
		Total float64 `json:"total"`
	}
	got, err := GetAs[invoice](context.Background(), c, "/invoices/inv-1")
	if err != nil {
		t.Fatalf("GetAs: %v", err)
	}
	if got.ID != "inv-1" || got.Total != 12.5 {
		t.Errorf("got %+v", got)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(Config{Tokens: tokenstore.New(nil)}); err == nil {
		t.Error("New accepted an empty BaseURL")
	}
	if _, err := New(Config{BaseURL: "http://x"}); err == nil {
		t.Error("New accepted a nil token store")
	}
}
