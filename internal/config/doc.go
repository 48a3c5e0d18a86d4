// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for relaybot.
//
// Values come from three layers, lowest precedence first: built-in defaults,
// an optional TOML file named by RELAYBOT_CONFIG, and environment variables.
// A .env file in the working directory is loaded best-effort before the
// environment is read. All values are read once at startup.
package config
