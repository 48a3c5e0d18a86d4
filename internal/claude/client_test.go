// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package claude

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newTestServer returns a server answering every request with the given
// status and body, and a client pointed at it.
func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client := NewClient("sk-ant-test").
		WithBaseURL(srv.URL).
		WithHTTPClient(srv.Client()).
		WithMaxRetries(1)
	return srv, client
}

func okBody(text string) string {
	resp := Response{ID: "msg_1", Model: "claude-3-haiku-20240307", Role: "assistant"}
	resp.Content = []ContentBlock{{Type: "text", Text: text}}
	resp.Usage.InputTokens = 10
	resp.Usage.OutputTokens = 5
	data, _ := json.Marshal(resp)
	return string(data)
}

// =============================================================================
// CONFIGURATION TESTS
// =============================================================================

func TestNotConfigured(t *testing.T) {
	client := NewClient("")

	_, err := client.Complete(context.Background(), Request{Model: "m", MaxTokens: 10})
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Complete without key = %v, want ErrNotConfigured", err)
	}
}

func TestAPIKeyMasked(t *testing.T) {
	client := NewClient("sk-ant-secret-key")

	masked := client.APIKeyMasked()
	if strings.Contains(masked, "secret") {
		t.Errorf("masked key leaks material: %q", masked)
	}
	if !strings.Contains(masked, "REDACTED") {
		t.Errorf("masked key missing REDACTED marker: %q", masked)
	}

	if got := NewClient("").APIKeyMasked(); got != "[not set]" {
		t.Errorf("empty key masked = %q, want [not set]", got)
	}
}

// =============================================================================
// COMPLETION TESTS
// =============================================================================

func TestCompleteSuccess(t *testing.T) {
	_, client := newTestServer(t, http.StatusOK, okBody("hello there"))

	resp, err := client.Complete(context.Background(), Request{
		Model:     "claude-3-haiku-20240307",
		MaxTokens: 100,
		Messages:  []Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got := resp.Text(); got != "hello there" {
		t.Errorf("Text() = %q, want %q", got, "hello there")
	}
	if resp.Usage.InputTokens != 10 {
		t.Errorf("InputTokens = %d, want 10", resp.Usage.InputTokens)
	}
}

func TestCompleteSendsHeaders(t *testing.T) {
	var gotKey, gotVersion atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey.Store(r.Header.Get("x-api-key"))
		gotVersion.Store(r.Header.Get("anthropic-version"))
		w.Write([]byte(okBody("ok")))
	}))
	defer srv.Close()

	client := NewClient("sk-ant-test").WithBaseURL(srv.URL).WithHTTPClient(srv.Client())
	if _, err := client.Complete(context.Background(), Request{Model: "m", MaxTokens: 1}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if gotKey.Load() != "sk-ant-test" {
		t.Errorf("x-api-key = %v, want sk-ant-test", gotKey.Load())
	}
	if gotVersion.Load() != APIVersion {
		t.Errorf("anthropic-version = %v, want %s", gotVersion.Load(), APIVersion)
	}
}

func TestCompleteEmptyContent(t *testing.T) {
	_, client := newTestServer(t, http.StatusOK, `{"id":"msg_1","content":[],"usage":{}}`)

	_, err := client.Complete(context.Background(), Request{Model: "m", MaxTokens: 1})
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("empty content error = %v, want ErrEmptyCompletion", err)
	}
}

func TestCompleteWhitespaceContent(t *testing.T) {
	_, client := newTestServer(t, http.StatusOK, okBody("   \n "))

	_, err := client.Complete(context.Background(), Request{Model: "m", MaxTokens: 1})
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Errorf("whitespace content error = %v, want ErrEmptyCompletion", err)
	}
}

func TestCompleteMalformedBody(t *testing.T) {
	_, client := newTestServer(t, http.StatusOK, `{not json`)

	_, err := client.Complete(context.Background(), Request{Model: "m", MaxTokens: 1})
	if !errors.Is(err, ErrUnexpectedResponse) {
		t.Errorf("malformed body error = %v, want ErrUnexpectedResponse", err)
	}
}

// =============================================================================
// ERROR MAPPING TESTS
// =============================================================================

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"type":"authentication_error","message":"bad key"}}`, ErrAuthFailed},
		{"forbidden", http.StatusForbidden, `{"error":{"type":"permission_error","message":"nope"}}`, ErrAuthFailed},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"type":"rate_limit_error","message":"slow down"}}`, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newTestServer(t, tt.status, tt.body)
			_, err := client.Complete(context.Background(), Request{Model: "m", MaxTokens: 1})
			if !errors.Is(err, tt.want) {
				t.Errorf("status %d error = %v, want %v", tt.status, err, tt.want)
			}
		})
	}
}

func TestAPIErrorOnBadRequest(t *testing.T) {
	_, client := newTestServer(t, http.StatusBadRequest, `{"error":{"type":"invalid_request_error","message":"max_tokens required"}}`)

	_, err := client.Complete(context.Background(), Request{Model: "m", MaxTokens: 1})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", apiErr.Status)
	}
	if !strings.Contains(apiErr.Error(), "max_tokens required") {
		t.Errorf("Error() missing API message: %q", apiErr.Error())
	}
}

// =============================================================================
// RETRY TESTS
// =============================================================================

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"type":"api_error","message":"boom"}}`))
			return
		}
		w.Write([]byte(okBody("recovered")))
	}))
	defer srv.Close()

	client := NewClient("sk-ant-test").
		WithBaseURL(srv.URL).
		WithHTTPClient(srv.Client()).
		WithMaxRetries(3)

	resp, err := client.Complete(context.Background(), Request{Model: "m", MaxTokens: 1})
	if err != nil {
		t.Fatalf("Complete failed after retries: %v", err)
	}
	if resp.Text() != "recovered" {
		t.Errorf("Text() = %q, want recovered", resp.Text())
	}
	if calls.Load() != 3 {
		t.Errorf("server saw %d calls, want 3", calls.Load())
	}
}

func TestRetriesExhausted(t *testing.T) {
	_, client := newTestServer(t, http.StatusInternalServerError, `{"error":{"type":"api_error","message":"down"}}`)
	client.WithMaxRetries(2)

	start := time.Now()
	_, err := client.Complete(context.Background(), Request{Model: "m", MaxTokens: 1})
	if err == nil {
		t.Fatal("Complete succeeded, want error")
	}
	if !strings.Contains(err.Error(), "max retries exceeded") {
		t.Errorf("error = %v, want max retries exceeded", err)
	}
	// One backoff of 500ms between the two attempts.
	if elapsed := time.Since(start); elapsed < retryBaseDelay {
		t.Errorf("retries finished in %v, expected at least one backoff", elapsed)
	}
}

func TestNoRetryOnAuthFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"type":"authentication_error","message":"bad"}}`))
	}))
	defer srv.Close()

	client := NewClient("sk-ant-test").
		WithBaseURL(srv.URL).
		WithHTTPClient(srv.Client()).
		WithMaxRetries(3)

	_, err := client.Complete(context.Background(), Request{Model: "m", MaxTokens: 1})
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("error = %v, want ErrAuthFailed", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server saw %d calls, want 1 (no retry on auth failure)", calls.Load())
	}
}
