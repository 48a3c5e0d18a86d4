// relaybot - A single-tenant Discord relay to the Claude API with optional
// news-search grounding.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/relaybot/internal/claude"
	"github.com/jeranaias/relaybot/internal/config"
	"github.com/jeranaias/relaybot/internal/discord"
	"github.com/jeranaias/relaybot/internal/model"
	"github.com/jeranaias/relaybot/internal/orchestrator"
	"github.com/jeranaias/relaybot/internal/search"
	"github.com/jeranaias/relaybot/internal/telemetry"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

func main() {
	log.SetPrefix("relaybot ")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	log.Printf("starting %s (%s) with %s", Version, GitCommit, cfg)

	store := model.NewStore(cfg.MaxHistory)
	client := claude.NewClient(cfg.Claude.APIKey)
	gateway := search.NewGateway(cfg.Search.APIKey)

	orch := orchestrator.New(store, client, gateway, orchestrator.Settings{
		RoutingModel:     cfg.Claude.RoutingModel,
		ChatModel:        cfg.Claude.ChatModel,
		RoutingMaxTokens: cfg.Claude.RoutingMaxTokens,
		ChatMaxTokens:    cfg.Claude.ChatMaxTokens,
		Pricing: telemetry.Pricing{
			InputPerMillion:  cfg.Pricing.InputPerMTok,
			OutputPerMillion: cfg.Pricing.OutputPerMTok,
		},
	})

	bot, err := discord.New(cfg, store, orch)
	if err != nil {
		log.Fatalf("failed to build Discord gateway: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("claude key %s, models routing=%s chat=%s",
		client.APIKeyMasked(), cfg.Claude.RoutingModel, cfg.Claude.ChatModel)

	if err := bot.Run(ctx); err != nil {
		log.Fatalf("gateway stopped: %v", err)
	}
	log.Println("shutdown complete")
}
