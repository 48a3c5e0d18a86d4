// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DECISION PROTOCOL
// =============================================================================

// SearchPrefix is the literal prefix the routing model uses to request a
// search. Everything after it, trimmed, is the search query.
const SearchPrefix = "SEARCH:"

// NoSearchSentinel is the routing model's explicit "no search needed" reply.
const NoSearchSentinel = "NO_SEARCH"

// TimeFormat renders the current date/time inside system prompts.
const TimeFormat = "January 2, 2006 15:04:05"

// Decision is a parsed routing reply.
type Decision struct {
	Search bool
	Query  string
}

// ParseDecision interprets the routing model's reply. A reply starting with
// SearchPrefix yields a search decision with the trimmed remainder as the
// query; the exact no-search sentinel and any malformed reply both yield
// no-search. An empty query after the prefix also falls back to no-search.
func ParseDecision(reply string) Decision {
	trimmed := strings.TrimSpace(reply)
	if strings.HasPrefix(trimmed, SearchPrefix) {
		query := strings.TrimSpace(trimmed[len(SearchPrefix):])
		if query != "" {
			return Decision{Search: true, Query: query}
		}
	}
	return Decision{Search: false}
}

// =============================================================================
// SYSTEM PROMPTS
// =============================================================================

// SystemPrompt returns the routing instruction for the cheap model tier.
func SystemPrompt(now time.Time) string {
	return fmt.Sprintf(
		"You are an AI assistant. The current date and time is %s. "+
			"Determine if the user's query requires current or future information "+
			"that would benefit from a web search. If so, respond with 'SEARCH:query', "+
			"where 'query' is a concise search term. Otherwise, respond with 'NO_SEARCH'.",
		now.Format(TimeFormat),
	)
}

// ChatSystemPrompt returns the primary completion system prompt,
// parameterized by the current date/time.
func ChatSystemPrompt(now time.Time) string {
	return fmt.Sprintf(
		`You are a friendly, genius chatbot assistant. The current date and time is %s. Your task is to provide brief, accurate answers to user queries.

  IMPORTANT:
  1. Always be aware of the current date and use it as a reference point.
  2. Use web search results as your primary source for current information, and provide source link.
  3. If search results are insufficient, simply state that you don't have enough information to answer accurately.`,
		now.Format(TimeFormat),
	)
}
