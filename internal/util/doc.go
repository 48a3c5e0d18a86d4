// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string helpers shared across relaybot.
//
// Everything here is rune-aware: Discord messages and search snippets
// routinely carry multi-byte UTF-8, and byte-indexed slicing would corrupt
// them mid-character.
package util
