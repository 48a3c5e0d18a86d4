// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package claude implements the HTTP client for the Anthropic Messages API.
//
// The client is deliberately thin: non-streaming completions only, with
// retry/backoff for transient failures, bounded response reads, and a small
// sentinel error taxonomy the orchestrator maps to user-facing outcomes.
package claude
