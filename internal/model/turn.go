// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "encoding/json"

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role identifies the sender of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn is a single exchange in a conversation. Turns are immutable once
// appended: the stored sequence is the literal history replayed to the model.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserTurn creates a user turn.
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// NewAssistantTurn creates an assistant turn.
func NewAssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// MarshalHistory serializes a turn sequence to JSON. Token accounting runs
// over this serialized form, so the count reflects what the wire actually
// carries, roles and framing included.
func MarshalHistory(turns []Turn) string {
	data, err := json.Marshal(turns)
	if err != nil {
		// Turn contains only strings; Marshal cannot fail in practice.
		return ""
	}
	return string(data)
}
