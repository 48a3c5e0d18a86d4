// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "discord-token-value")
	t.Setenv("GUILD_ID", "123456789")
	t.Setenv("AUTHORIZED_USER_ID", "987654321")
	t.Setenv("CLAUDE_API_KEY", "sk-ant-test-key-value")
	t.Setenv("NEWS_API_KEY", "news-key-value-long")
	t.Setenv("RELAYBOT_CONFIG", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "claude-3-5-sonnet-20240620", cfg.Claude.RoutingModel)
	require.Equal(t, "claude-3-haiku-20240307", cfg.Claude.ChatModel)
	require.Equal(t, 100, cfg.Claude.RoutingMaxTokens)
	require.Equal(t, 1500, cfg.Claude.ChatMaxTokens)
	require.Equal(t, 0.25, cfg.Pricing.InputPerMTok)
	require.Equal(t, 1.25, cfg.Pricing.OutputPerMTok)
	require.Equal(t, 10, cfg.MaxHistory)
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CHAT_MODEL", "claude-3-opus-20240229")
	t.Setenv("CHAT_MAX_TOKENS", "2000")
	t.Setenv("COST_OUTPUT_PER_MTOK", "15.0")
	t.Setenv("MAX_HISTORY", "6")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "claude-3-opus-20240229", cfg.Claude.ChatModel)
	require.Equal(t, 2000, cfg.Claude.ChatMaxTokens)
	require.Equal(t, 15.0, cfg.Pricing.OutputPerMTok)
	require.Equal(t, 6, cfg.MaxHistory)
}

func TestLoadTOMLFileThenEnvWins(t *testing.T) {
	setRequiredEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "relaybot.toml")
	body := `max_history = 4

[claude]
chat_model = "claude-3-sonnet-from-file"
chat_max_tokens = 800
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("RELAYBOT_CONFIG", path)
	t.Setenv("CHAT_MAX_TOKENS", "1200")

	cfg, err := Load()
	require.NoError(t, err)

	// From the file.
	require.Equal(t, "claude-3-sonnet-from-file", cfg.Claude.ChatModel)
	require.Equal(t, 4, cfg.MaxHistory)
	// Env overrides the file.
	require.Equal(t, 1200, cfg.Claude.ChatMaxTokens)
}

func TestLoadMissingConfigFile(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RELAYBOT_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	_, err := Load()
	require.Error(t, err, "a named config file that does not exist must fail loudly")
}

func TestValidateMissingCredentials(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)

	var errs ValidateErrors
	require.True(t, errors.As(err, &errs))

	fields := make(map[string]bool)
	for _, e := range errs {
		fields[e.Field] = true
	}
	for _, field := range []string{"discord.token", "claude.api_key", "search.api_key"} {
		require.True(t, fields[field], "expected a validation error for %s", field)
	}
}

func TestValidateNonPositiveNumbers(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CHAT_MAX_TOKENS", "0")
	t.Setenv("MAX_HISTORY", "-3")

	_, err := Load()
	require.Error(t, err)
}

func TestStringMasksSecrets(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	rendered := cfg.String()
	for _, secret := range []string{"discord-token-value", "sk-ant-test-key-value", "news-key-value-long"} {
		require.False(t, strings.Contains(rendered, secret), "String() leaks secret %q", secret)
	}
	require.Contains(t, rendered, "claude-3-haiku-20240307")
}
