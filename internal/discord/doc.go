// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package discord adapts the request pipeline to the Discord gateway. It
// listens for messages from a single allow-listed guild/author pair, handles
// the !clear command, and delivers responses through the segmentation layer
// so long replies and oversized code blocks arrive intact.
package discord
