// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator runs the per-request pipeline: append the user turn,
// ask the routing model whether a web search is warranted, optionally fetch
// and inline search results, call the primary model, account tokens and cost,
// and commit the assistant turn.
//
// Requests for one identity are serialized for the full pipeline duration;
// different identities proceed independently. Failures never escape as raw
// errors: callers always receive either an Outcome or a *Failure carrying a
// short user-safe message.
package orchestrator
