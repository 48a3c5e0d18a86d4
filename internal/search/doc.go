// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package search provides the rate-limited news search gateway.
//
// Results come from NewsAPI and are normalized into the Result shape before
// anything downstream sees them. The quota (5 requests per rolling minute)
// is process-wide: it reflects a shared provider-side limit, so it is
// intentionally not partitioned per identity.
package search
