// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router decides whether a user turn needs a live web search.
//
// The decision itself is made by a cheap model call: the orchestrator sends
// the conversation plus the routing system prompt from this package, and the
// model answers either "SEARCH:<query>" or "NO_SEARCH". ParseDecision turns
// that reply into a Decision, failing open toward no-search on anything
// malformed so a bad routing reply never blocks the primary answer.
package router
