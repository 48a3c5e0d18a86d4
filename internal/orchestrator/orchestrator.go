// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/relaybot/internal/claude"
	"github.com/jeranaias/relaybot/internal/model"
	"github.com/jeranaias/relaybot/internal/router"
	"github.com/jeranaias/relaybot/internal/search"
	"github.com/jeranaias/relaybot/internal/telemetry"
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// Completer is the slice of the Claude client the pipeline needs.
type Completer interface {
	Complete(ctx context.Context, req claude.Request) (*claude.Response, error)
}

// Searcher is the slice of the search gateway the pipeline needs.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Settings holds the model tiers, output budgets, and pricing the pipeline
// uses. All fields are read-only after construction.
type Settings struct {
	RoutingModel     string
	ChatModel        string
	RoutingMaxTokens int
	ChatMaxTokens    int
	Pricing          telemetry.Pricing
}

// Orchestrator drives a request through routing, optional search, completion,
// accounting, and commit. Safe for concurrent use: requests for the same
// identity queue behind a per-identity lock, other identities run in parallel.
type Orchestrator struct {
	store     *model.Store
	completer Completer
	searcher  Searcher
	settings  Settings

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New constructs an orchestrator with all collaborators injected.
func New(store *model.Store, completer Completer, searcher Searcher, settings Settings) *Orchestrator {
	return &Orchestrator{
		store:     store,
		completer: completer,
		searcher:  searcher,
		settings:  settings,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Outcome is the result of a successfully handled request.
type Outcome struct {
	RequestID string
	Text      string
	Usage     telemetry.Usage

	ProcessingTime     time.Duration
	Model              string
	WebSearchPerformed bool
	SearchSummary      string
}

// identityLock returns the mutex serializing requests for one identity,
// creating it on first use. Locks are never discarded; the identity space is
// a single allow-listed pair in practice.
func (o *Orchestrator) identityLock(identity string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.locks[identity]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[identity] = lock
	}
	return lock
}

// Handle runs the full pipeline for one inbound message. It returns either
// an Outcome or a *Failure; raw errors and panics never cross this boundary.
func (o *Orchestrator) Handle(ctx context.Context, identity, rawText string) (outcome *Outcome, err error) {
	lock := o.identityLock(identity)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	requestID := uuid.NewString()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[%s] panic in request pipeline: %v\n%s", requestID, r, debug.Stack())
			outcome = nil
			err = newFailure(genericApology, fmt.Errorf("panic: %v", r))
		}
	}()

	history := o.store.AppendUserTurn(identity, rawText)

	// Request-scoped working copy. Search results augment this copy only;
	// the stored turns keep the original user text so future replays stay
	// free of stale search payloads.
	working := make([]model.Turn, len(history))
	copy(working, history)

	initialInput := telemetry.EstimateTokens(model.MarshalHistory(working))
	now := time.Now()

	reply, routeErr := o.route(ctx, working, now)
	if routeErr != nil {
		log.Printf("[%s] routing call failed: %v", requestID, routeErr)
		return nil, newFailure(genericApology, routeErr)
	}
	decision := router.ParseDecision(reply)

	webSearchPerformed := false
	webSearchTokens := 0
	searchSummary := fmt.Sprintf("No web search performed. Initial response: %s", strings.TrimSpace(reply))

	if decision.Search {
		results, searchErr := o.searcher.Search(ctx, decision.Query)
		if searchErr != nil {
			log.Printf("[%s] news search failed for %q: %v", requestID, decision.Query, searchErr)
			if errors.Is(searchErr, search.ErrRateLimited) {
				return nil, newFailure(rateLimitApology, searchErr)
			}
			return nil, newFailure(fmt.Sprintf(searchApologyFormat, decision.Query), searchErr)
		}

		formatted := search.FormatResults(results)
		last := len(working) - 1
		working[last].Content += fmt.Sprintf("\n\n\nWeb search results for \"%s\":\n\n%s", decision.Query, formatted)
		searchSummary = fmt.Sprintf("Search results for \"%s\":\n%s", decision.Query, formatted)
		webSearchPerformed = true
		webSearchTokens = telemetry.EstimateTokens(formatted)
	}

	finalInput := telemetry.EstimateTokens(model.MarshalHistory(working))

	resp, completeErr := o.completer.Complete(ctx, claude.Request{
		Model:     o.settings.ChatModel,
		MaxTokens: o.settings.ChatMaxTokens,
		System:    router.ChatSystemPrompt(now),
		Messages:  trimmedMessages(working),
	})
	if completeErr != nil {
		log.Printf("[%s] completion call failed: %v", requestID, completeErr)
		return nil, newFailure(genericApology, completeErr)
	}

	finalText := strings.TrimSpace(resp.Text())
	if finalText == "" {
		log.Printf("[%s] completion returned no usable text", requestID)
		return nil, newFailure(genericApology, claude.ErrEmptyCompletion)
	}

	outputTokens := telemetry.EstimateTokens(finalText)
	usage := telemetry.ComputeUsage(initialInput, webSearchTokens, finalInput, outputTokens, o.settings.Pricing)

	o.store.AppendAssistantTurn(identity, finalText)

	return &Outcome{
		RequestID:          requestID,
		Text:               finalText,
		Usage:              usage,
		ProcessingTime:     time.Since(start),
		Model:              o.settings.ChatModel,
		WebSearchPerformed: webSearchPerformed,
		SearchSummary:      searchSummary,
	}, nil
}

// route asks the cheap model tier whether the latest message needs a web
// search and returns its raw reply.
func (o *Orchestrator) route(ctx context.Context, working []model.Turn, now time.Time) (string, error) {
	resp, err := o.completer.Complete(ctx, claude.Request{
		Model:     o.settings.RoutingModel,
		MaxTokens: o.settings.RoutingMaxTokens,
		System:    router.SystemPrompt(now),
		Messages:  toMessages(working),
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func toMessages(turns []model.Turn) []claude.Message {
	messages := make([]claude.Message, len(turns))
	for i, turn := range turns {
		messages[i] = claude.Message{Role: turn.Role.String(), Content: turn.Content}
	}
	return messages
}

// trimmedMessages converts the working history for the completion call with
// each turn's content trimmed.
func trimmedMessages(turns []model.Turn) []claude.Message {
	messages := make([]claude.Message, len(turns))
	for i, turn := range turns {
		messages[i] = claude.Message{Role: turn.Role.String(), Content: strings.TrimSpace(turn.Content)}
	}
	return messages
}
