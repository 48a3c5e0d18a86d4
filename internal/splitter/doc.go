// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package splitter reflows long replies into size-bounded chunks for the
// chat surface.
//
// Fenced code blocks are kept intact: a block that fits in a chunk is never
// split mid-block, and a block too large for any chunk is turned into a file
// attachment with a placeholder line in its place. An unterminated fence is
// treated as plain text.
package splitter
