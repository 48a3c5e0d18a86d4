// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"sync"
)

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// DefaultMaxHistory is the default bound on turns kept per identity.
const DefaultMaxHistory = 10

// Store holds per-identity conversation histories. It is safe for concurrent
// use; identities never interact. Construct one per process and pass it by
// reference so tests can substitute an isolated instance.
type Store struct {
	mu         sync.Mutex
	histories  map[string][]Turn
	maxHistory int
}

// NewStore creates a store bounding each history to maxHistory turns.
// A non-positive maxHistory falls back to DefaultMaxHistory.
func NewStore(maxHistory int) *Store {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Store{
		histories:  make(map[string][]Turn),
		maxHistory: maxHistory,
	}
}

// AppendUserTurn trims text, appends it as a user turn to the identity's
// history (creating the history if absent), applies the eviction policy, and
// returns the resulting sequence. Callers must not mutate the returned slice
// outside the store.
func (s *Store) AppendUserTurn(identity, text string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.histories[identity], NewUserTurn(strings.TrimSpace(text)))
	history = s.evict(history)
	s.histories[identity] = history
	return history
}

// AppendAssistantTurn appends an assistant turn to the identity's history,
// creating it in the degenerate absent case. The eviction policy applies here
// too, so the stored length never exceeds the bound between requests.
func (s *Store) AppendAssistantTurn(identity, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.histories[identity], NewAssistantTurn(text))
	s.histories[identity] = s.evict(history)
}

// Clear removes the identity's history and reports whether one existed.
// Calling Clear on an absent identity is a harmless no-op.
func (s *Store) Clear(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.histories[identity]; !ok {
		return false
	}
	delete(s.histories, identity)
	return true
}

// Len returns the number of turns stored for an identity.
func (s *Store) Len(identity string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.histories[identity])
}

// History returns a copy of the identity's stored sequence.
func (s *Store) History(identity string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.histories[identity]
	out := make([]Turn, len(history))
	copy(out, history)
	return out
}

// evict bounds a history to maxHistory turns while keeping the sequence
// role-valid. If orphaned assistant turns precede the first user turn, the
// survivors are that first user turn plus the last maxHistory-1 elements;
// otherwise simply the last maxHistory elements. Either way the result opens
// with a user turn whenever the history contains one.
func (s *Store) evict(history []Turn) []Turn {
	if len(history) <= s.maxHistory {
		return history
	}

	firstUser := -1
	for i, turn := range history {
		if turn.Role == RoleUser {
			firstUser = i
			break
		}
	}

	if firstUser > 0 {
		kept := make([]Turn, 0, s.maxHistory)
		kept = append(kept, history[firstUser])
		kept = append(kept, history[len(history)-s.maxHistory+1:]...)
		return kept
	}

	kept := history[len(history)-s.maxHistory:]
	// Drop assistant turns orphaned at the head of the window so the
	// survivors still open with a user turn.
	for i, turn := range kept {
		if turn.Role == RoleUser {
			return kept[i:]
		}
	}
	return kept
}
