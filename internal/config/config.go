// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete relaybot configuration.
type Config struct {
	// Discord holds the chat surface credentials and allow-list.
	Discord DiscordConfig `toml:"discord"`

	// Claude holds the model provider credentials and tier settings.
	Claude ClaudeConfig `toml:"claude"`

	// Search holds the news search provider settings.
	Search SearchConfig `toml:"search"`

	// Pricing holds per-million-token prices in dollars.
	Pricing PricingConfig `toml:"pricing"`

	// MaxHistory bounds the turns kept per conversation.
	MaxHistory int `toml:"max_history"`
}

// DiscordConfig contains the bot token and the single allow-listed pair.
type DiscordConfig struct {
	// Token is the Discord bot token.
	Token string `toml:"token"`
	// GuildID is the only guild the bot answers in.
	GuildID string `toml:"guild_id"`
	// AuthorizedUserID is the only author the bot answers.
	AuthorizedUserID string `toml:"authorized_user_id"`
}

// ClaudeConfig contains the Anthropic credentials and the two model tiers.
type ClaudeConfig struct {
	// APIKey is the Anthropic API key.
	APIKey string `toml:"api_key"`
	// RoutingModel decides whether a turn needs a web search.
	RoutingModel string `toml:"routing_model"`
	// ChatModel produces the final answer.
	ChatModel string `toml:"chat_model"`
	// RoutingMaxTokens is the output budget for the routing call.
	RoutingMaxTokens int `toml:"routing_max_tokens"`
	// ChatMaxTokens is the output budget for the completion call.
	ChatMaxTokens int `toml:"chat_max_tokens"`
}

// SearchConfig contains the news search provider credentials.
type SearchConfig struct {
	// APIKey is the NewsAPI key.
	APIKey string `toml:"api_key"`
}

// PricingConfig contains linear cost-model prices.
type PricingConfig struct {
	// InputPerMTok is the dollar price per million input tokens.
	InputPerMTok float64 `toml:"input_per_mtok"`
	// OutputPerMTok is the dollar price per million output tokens.
	OutputPerMTok float64 `toml:"output_per_mtok"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values. Credentials have no
// defaults and must come from the file or the environment.
func Default() *Config {
	return &Config{
		Claude: ClaudeConfig{
			RoutingModel:     "claude-3-5-sonnet-20240620",
			ChatModel:        "claude-3-haiku-20240307",
			RoutingMaxTokens: 100,
			ChatMaxTokens:    1500,
		},
		Pricing: PricingConfig{
			InputPerMTok:  0.25,
			OutputPerMTok: 1.25,
		},
		MaxHistory: 10,
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load builds the configuration: defaults, then the optional TOML file named
// by RELAYBOT_CONFIG, then environment variables. A .env file is loaded
// best-effort first so local runs need no exported environment.
func Load() (*Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("RELAYBOT_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies environment variables on top of the current
// values. Unset and empty variables leave the existing value in place.
func (c *Config) ApplyEnvOverrides() {
	// DISCORD_TOKEN
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		c.Discord.Token = token
	}

	// GUILD_ID
	if id := os.Getenv("GUILD_ID"); id != "" {
		c.Discord.GuildID = id
	}

	// AUTHORIZED_USER_ID
	if id := os.Getenv("AUTHORIZED_USER_ID"); id != "" {
		c.Discord.AuthorizedUserID = id
	}

	// CLAUDE_API_KEY
	if key := os.Getenv("CLAUDE_API_KEY"); key != "" {
		c.Claude.APIKey = key
	}

	// NEWS_API_KEY
	if key := os.Getenv("NEWS_API_KEY"); key != "" {
		c.Search.APIKey = key
	}

	// ROUTING_MODEL / CHAT_MODEL
	if m := os.Getenv("ROUTING_MODEL"); m != "" {
		c.Claude.RoutingModel = m
	}
	if m := os.Getenv("CHAT_MODEL"); m != "" {
		c.Claude.ChatModel = m
	}

	// ROUTING_MAX_TOKENS / CHAT_MAX_TOKENS
	if v := os.Getenv("ROUTING_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Claude.RoutingMaxTokens = n
		}
	}
	if v := os.Getenv("CHAT_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Claude.ChatMaxTokens = n
		}
	}

	// COST_INPUT_PER_MTOK / COST_OUTPUT_PER_MTOK
	if v := os.Getenv("COST_INPUT_PER_MTOK"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Pricing.InputPerMTok = f
		}
	}
	if v := os.Getenv("COST_OUTPUT_PER_MTOK"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Pricing.OutputPerMTok = f
		}
	}

	// MAX_HISTORY
	if v := os.Getenv("MAX_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxHistory = n
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks that credentials are present and numeric settings positive.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Discord.Token == "" {
		errs = append(errs, ValidationError{"discord.token", "must be set (DISCORD_TOKEN)"})
	}
	if c.Discord.GuildID == "" {
		errs = append(errs, ValidationError{"discord.guild_id", "must be set (GUILD_ID)"})
	}
	if c.Discord.AuthorizedUserID == "" {
		errs = append(errs, ValidationError{"discord.authorized_user_id", "must be set (AUTHORIZED_USER_ID)"})
	}
	if c.Claude.APIKey == "" {
		errs = append(errs, ValidationError{"claude.api_key", "must be set (CLAUDE_API_KEY)"})
	}
	if c.Search.APIKey == "" {
		errs = append(errs, ValidationError{"search.api_key", "must be set (NEWS_API_KEY)"})
	}
	if c.Claude.RoutingModel == "" {
		errs = append(errs, ValidationError{"claude.routing_model", "must not be empty"})
	}
	if c.Claude.ChatModel == "" {
		errs = append(errs, ValidationError{"claude.chat_model", "must not be empty"})
	}
	if c.Claude.RoutingMaxTokens <= 0 {
		errs = append(errs, ValidationError{"claude.routing_max_tokens", "must be positive"})
	}
	if c.Claude.ChatMaxTokens <= 0 {
		errs = append(errs, ValidationError{"claude.chat_max_tokens", "must be positive"})
	}
	if c.Pricing.InputPerMTok < 0 {
		errs = append(errs, ValidationError{"pricing.input_per_mtok", "must not be negative"})
	}
	if c.Pricing.OutputPerMTok < 0 {
		errs = append(errs, ValidationError{"pricing.output_per_mtok", "must not be negative"})
	}
	if c.MaxHistory <= 0 {
		errs = append(errs, ValidationError{"max_history", "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// DISPLAY
// =============================================================================

// maskSecret renders a secret for logs: first four characters plus a fixed
// tail, or a placeholder when unset.
func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****"
}

// String renders the configuration for startup logs with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"discord token=%s guild=%s user=%s | claude key=%s routing=%s chat=%s budgets=%d/%d | news key=%s | pricing in=%.2f out=%.2f | max_history=%d",
		maskSecret(c.Discord.Token), c.Discord.GuildID, c.Discord.AuthorizedUserID,
		maskSecret(c.Claude.APIKey), c.Claude.RoutingModel, c.Claude.ChatModel,
		c.Claude.RoutingMaxTokens, c.Claude.ChatMaxTokens,
		maskSecret(c.Search.APIKey),
		c.Pricing.InputPerMTok, c.Pricing.OutputPerMTok,
		c.MaxHistory,
	)
}
