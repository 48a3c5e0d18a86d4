// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package claude

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Configuration constants for the Anthropic API.
const (
	// DefaultBaseURL is the base URL for the Anthropic API.
	DefaultBaseURL = "https://api.anthropic.com"

	// APIVersion is the anthropic-version header value.
	APIVersion = "2023-06-01"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of attempts for transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

// PERFORMANCE: Shared HTTP client with connection pooling for all requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
	Timeout: DefaultTimeout,
}

// Error variables for common Anthropic API failures.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("Anthropic API key not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrOverloaded indicates the API is temporarily overloaded.
	ErrOverloaded = errors.New("API overloaded")

	// ErrEmptyCompletion indicates the model returned no usable text.
	ErrEmptyCompletion = errors.New("empty completion")

	// ErrUnexpectedResponse indicates the response body did not match the
	// expected structure.
	ErrUnexpectedResponse = errors.New("unexpected response shape")
)

// APIError represents a structured error from the Anthropic API.
type APIError struct {
	Type    string
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("Anthropic error [%s] (HTTP %d): %s", e.Type, e.Status, e.Message)
	}
	return fmt.Sprintf("Anthropic error (HTTP %d): %s", e.Status, e.Message)
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// Message is a single conversation message on the wire.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Request is a request to the messages endpoint.
type Request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

// ContentBlock is one block of a response body.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Response is a response from the messages endpoint.
type Response struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Text returns the text of the first content block, or empty string.
func (r *Response) Text() string {
	if len(r.Content) > 0 {
		return r.Content[0].Text
	}
	return ""
}

// apiErrorResponse is the error envelope the API returns on failure.
type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a client for the Anthropic Messages API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	maxRetries int
	timeout    time.Duration
}

// NewClient creates a new Anthropic client with the given API key.
//
// If the key is empty the client is still created, but Complete requests fail
// with ErrNotConfigured.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		httpClient: sharedHTTPClient,
		maxRetries: DefaultMaxRetries,
		timeout:    DefaultTimeout,
	}
}

// WithBaseURL sets a custom base URL for the API.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.timeout = timeout
	return c
}

// WithMaxRetries sets the maximum number of attempts.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	c.maxRetries = maxRetries
	return c
}

// WithHTTPClient sets a custom HTTP client (used by tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// IsConfigured returns true if the client has an API key.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// APIKeyMasked returns a display-safe description of the API key.
// SECURITY: Never exposes key fragments; only length and a hash fingerprint.
func (c *Client) APIKeyMasked() string {
	if c.apiKey == "" {
		return "[not set]"
	}
	h := sha256.Sum256([]byte(c.apiKey))
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(c.apiKey), hex.EncodeToString(h[:4]))
}

// =============================================================================
// COMPLETION
// =============================================================================

// Complete performs a non-streaming messages request.
//
// Transient failures (5xx, 429, network errors) are retried with exponential
// backoff up to the configured attempt count. A response with no text content
// fails with ErrEmptyCompletion.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	url := c.baseURL + "/v1/messages"

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoffDelay(attempt)):
			}
		}

		resp, err := c.doRequest(ctx, url, req)
		if err != nil {
			if isRetryable(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return resp, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return nil, errors.New("max retries exceeded")
}

// backoffDelay computes the exponential backoff delay for an attempt,
// capped at retryMaxDelay.
func backoffDelay(attempt int) time.Duration {
	delay := retryBaseDelay << (attempt - 1)
	if delay > retryMaxDelay {
		return retryMaxDelay
	}
	return delay
}

// isRetryable reports whether an error is worth another attempt.
func isRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrOverloaded) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	// Network-level errors (timeouts, resets) are retryable.
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return true
	}
	return false
}

// doRequest performs a single HTTP request to the messages endpoint.
func (c *Client) doRequest(ctx context.Context, requestURL string, reqBody Request) (*Response, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	log.Printf("API request: POST %s model=%s messages=%d", req.URL.Path, reqBody.Model, len(reqBody.Messages))
	start := time.Now()

	resp, err := c.httpClient.Do(req)

	// SECURITY: Clear auth header immediately after the request so request
	// dumps can never leak it.
	req.Header.Del("x-api-key")

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("API response: %d (%v)", resp.StatusCode, time.Since(start).Round(time.Millisecond))

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp.StatusCode, body)
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if len(out.Content) == 0 || strings.TrimSpace(out.Text()) == "" {
		return nil, ErrEmptyCompletion
	}

	return &out, nil
}

// setHeaders sets the required headers for Anthropic API requests.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", APIVersion)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "relaybot/0.1.0")
}

// readResponse reads the response body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse maps HTTP error responses to the package error taxonomy.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	message := ""
	errType := ""
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
		errType = apiErr.Error.Type
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrAuthFailed, message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, message)
	case 529:
		return fmt.Errorf("%w: %s", ErrOverloaded, message)
	default:
		return &APIError{Type: errType, Message: message, Status: statusCode}
	}
}
