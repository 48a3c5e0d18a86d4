// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the conversation data structures for relaybot.
//
// A conversation is a per-identity ordered sequence of turns. The Store keeps
// one sequence per identity, bounds its length, and guarantees the sequence
// always replays cleanly to the model API: empty, or opening with a user
// turn. Nothing in this package is persisted; histories live for the process
// lifetime.
package model
