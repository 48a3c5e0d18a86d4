// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import "fmt"

// =============================================================================
// USER-FACING FAILURE
// =============================================================================

// Fixed user-facing apology strings. These are the only texts a failure ever
// relays; internal detail stays in the process log.
const (
	genericApology = "Sorry, I encountered an error while processing your request. Please try again later."

	rateLimitApology = "Sorry, I've hit the rate limit for web searches. Please wait a moment and try again."

	searchApologyFormat = "Sorry, the web search for \"%s\" failed. Please try again later."
)

// Failure is the error shape Handle returns. It wraps the internal cause and
// carries the polite fixed-style message to relay to the user.
type Failure struct {
	userMessage string
	cause       error
}

func newFailure(userMessage string, cause error) *Failure {
	return &Failure{userMessage: userMessage, cause: cause}
}

// Error reports the internal cause for logs. Never show this to users.
func (f *Failure) Error() string {
	if f.cause == nil {
		return f.userMessage
	}
	return fmt.Sprintf("request failed: %v", f.cause)
}

// Unwrap exposes the internal cause for errors.Is / errors.As.
func (f *Failure) Unwrap() error {
	return f.cause
}

// UserMessage returns the text safe to relay to the chat surface.
func (f *Failure) UserMessage() string {
	return f.userMessage
}
