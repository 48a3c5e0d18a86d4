// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import "strings"

// =============================================================================
// TOKEN ESTIMATION
// =============================================================================

// EstimateTokens approximates the token count of a block of text as its
// whitespace-delimited word count. This is a deliberately coarse proxy, not a
// tokenizer-exact count; it only feeds cost accounting, never request limits.
func EstimateTokens(text string) int {
	return len(strings.Fields(text))
}

// =============================================================================
// PRICING
// =============================================================================

// Pricing holds per-million-token prices in dollars.
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// EstimateCost computes the linear dollar cost for a token count pair.
func EstimateCost(inputTokens, outputTokens int, p Pricing) float64 {
	inputCost := float64(inputTokens) / 1e6 * p.InputPerMillion
	outputCost := float64(outputTokens) / 1e6 * p.OutputPerMillion
	return inputCost + outputCost
}

// =============================================================================
// PER-REQUEST USAGE
// =============================================================================

// Usage is the token and cost breakdown for a single relayed request.
type Usage struct {
	InitialInputTokens int
	WebSearchTokens    int
	FinalInputTokens   int
	OutputTokens       int

	InitialCost   float64
	WebSearchCost float64
	FinalCost     float64
	TotalCost     float64
}

// ComputeUsage fills a Usage from the four accounting points of a request.
// The initial and web-search legs are priced as input-only; the final leg
// carries the completion's output tokens.
func ComputeUsage(initialInput, webSearch, finalInput, output int, p Pricing) Usage {
	u := Usage{
		InitialInputTokens: initialInput,
		WebSearchTokens:    webSearch,
		FinalInputTokens:   finalInput,
		OutputTokens:       output,

		InitialCost:   EstimateCost(initialInput, 0, p),
		WebSearchCost: EstimateCost(webSearch, 0, p),
		FinalCost:     EstimateCost(finalInput, output, p),
	}
	u.TotalCost = u.InitialCost + u.WebSearchCost + u.FinalCost
	return u
}
