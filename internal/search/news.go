// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants for the news search gateway.
const (
	// DefaultBaseURL is the NewsAPI "everything" endpoint.
	DefaultBaseURL = "https://newsapi.org/v2/everything"

	// DefaultMaxResults caps how many hits a search returns.
	DefaultMaxResults = 5

	// DefaultTimeout bounds a single provider request.
	DefaultTimeout = 15 * time.Second

	// RequestsPerMinute is the process-wide search quota.
	RequestsPerMinute = 5

	// maxResponseSize limits provider response reads.
	maxResponseSize = 5 * 1024 * 1024 // 5MB
)

// Error variables for search failures.
var (
	// ErrRateLimited indicates the process-wide search quota is exhausted.
	// No provider request is made when this fires.
	ErrRateLimited = errors.New("rate limit exceeded for news searches")

	// ErrProvider indicates the upstream search call failed. Callers must
	// treat this as a hard failure of the turn, not as "no results".
	ErrProvider = errors.New("news search provider error")
)

// Result is a single normalized search hit.
type Result struct {
	Title       string
	Link        string
	Source      string
	PublishedAt string
	Snippet     string
}

// =============================================================================
// GATEWAY
// =============================================================================

// Gateway performs rate-limited news searches against NewsAPI.
type Gateway struct {
	apiKey     string
	baseURL    string
	maxResults int
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewGateway creates a gateway with the default quota of
// RequestsPerMinute searches per rolling minute.
func NewGateway(apiKey string) *Gateway {
	return &Gateway{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		maxResults: DefaultMaxResults,
		timeout:    DefaultTimeout,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(float64(RequestsPerMinute)/60.0), RequestsPerMinute),
	}
}

// WithBaseURL sets a custom provider endpoint (used by tests).
func (g *Gateway) WithBaseURL(url string) *Gateway {
	g.baseURL = url
	return g
}

// WithMaxResults caps the number of results per search.
func (g *Gateway) WithMaxResults(n int) *Gateway {
	if n > 0 {
		g.maxResults = n
	}
	return g
}

// WithLimiter substitutes the rate limiter (used by tests).
func (g *Gateway) WithLimiter(l *rate.Limiter) *Gateway {
	g.limiter = l
	return g
}

// =============================================================================
// SEARCH
// =============================================================================

// newsAPIResponse is NewsAPI's wire format, parsed defensively.
type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Search performs a news search for the query.
//
// If the process-wide quota is exhausted it fails immediately with
// ErrRateLimited, consuming nothing upstream. Any provider-level failure
// (network, HTTP status, malformed body, API-reported error) wraps
// ErrProvider.
func (g *Gateway) Search(ctx context.Context, query string) ([]Result, error) {
	if !g.limiter.Allow() {
		log.Printf("search: rate limit exceeded for query %q", query)
		return nil, ErrRateLimited
	}

	log.Printf("search: querying provider for %q", query)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("apiKey", g.apiKey)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", fmt.Sprint(g.maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrProvider, resp.StatusCode)
	}

	var parsed newsAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrProvider, err)
	}
	if parsed.Status != "ok" {
		return nil, fmt.Errorf("%w: %s: %s", ErrProvider, parsed.Code, parsed.Message)
	}

	results := make([]Result, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		results = append(results, Result{
			Title:       a.Title,
			Link:        a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
			Snippet:     a.Description,
		})
		if len(results) >= g.maxResults {
			break
		}
	}

	log.Printf("search: %d results for %q", len(results), query)
	return results, nil
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatResults renders results as the numbered blocks fed to the model:
//
//	[1] Title
//	Source: ...
//	Published: ...
//	URL: ...
//	Summary: ...
//
// joined by blank lines. Missing snippets get a fixed placeholder.
func FormatResults(results []Result) string {
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		snippet := r.Snippet
		if snippet == "" {
			snippet = "No summary available."
		}
		blocks = append(blocks, fmt.Sprintf(
			"[%d] %s\nSource: %s\nPublished: %s\nURL: %s\nSummary: %s\n",
			i+1, r.Title, r.Source, r.PublishedAt, r.Link, snippet,
		))
	}
	return strings.TrimSpace(strings.Join(blocks, "\n"))
}
