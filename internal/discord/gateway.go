// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/jeranaias/relaybot/internal/config"
	"github.com/jeranaias/relaybot/internal/model"
	"github.com/jeranaias/relaybot/internal/orchestrator"
	"github.com/jeranaias/relaybot/internal/splitter"
	"github.com/jeranaias/relaybot/internal/util"
)

// =============================================================================
// GATEWAY
// =============================================================================

// Fixed replies for the !clear command.
const (
	clearedReply   = "Conversation history cleared."
	noHistoryReply = "No conversation history found."
)

// Gateway connects the pipeline to a Discord session.
type Gateway struct {
	session *discordgo.Session
	orch    *orchestrator.Orchestrator
	store   *model.Store

	guildID          string
	authorizedUserID string
}

// New builds a gateway with the session configured but not yet opened.
func New(cfg *config.Config, store *model.Store, orch *orchestrator.Orchestrator) (*Gateway, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	g := &Gateway{
		session:          session,
		orch:             orch,
		store:            store,
		guildID:          cfg.Discord.GuildID,
		authorizedUserID: cfg.Discord.AuthorizedUserID,
	}
	session.AddHandler(g.onMessageCreate)
	return g, nil
}

// Run opens the session and blocks until the context is cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	log.Printf("Discord session open, watching guild %s", g.guildID)

	<-ctx.Done()
	return g.session.Close()
}

// =============================================================================
// MESSAGE HANDLING
// =============================================================================

func (g *Gateway) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if !g.allowed(m) {
		return
	}

	if isClearCommand(m.Content) {
		g.reply(s, m, clearReply(g.store.Clear(m.Author.ID)))
		return
	}

	log.Printf("message received author=%s content=%q", m.Author.ID, util.TruncateRunes(m.Content, 120))
	_ = s.ChannelTyping(m.ChannelID)

	outcome, err := g.orch.Handle(context.Background(), m.Author.ID, m.Content)
	if err != nil {
		log.Printf("request failed for author=%s: %v", m.Author.ID, err)
		g.reply(s, m, userMessage(err))
		return
	}

	logUsage(m.Author.ID, outcome)

	sender := &channelSender{session: s, channelID: m.ChannelID}
	if err := splitter.SendSplit(sender, outcome.Text); err != nil {
		log.Printf("failed to deliver response for author=%s: %v", m.Author.ID, err)
	}
}

// allowed reports whether the pipeline should see this message at all: not
// from a bot, and matching the single allow-listed guild/author pair.
func (g *Gateway) allowed(m *discordgo.MessageCreate) bool {
	if m.Author == nil || m.Author.Bot {
		return false
	}
	return m.GuildID == g.guildID && m.Author.ID == g.authorizedUserID
}

// isClearCommand matches the reserved command: case-insensitive, exact.
func isClearCommand(content string) bool {
	return strings.EqualFold(content, "!clear")
}

func clearReply(existed bool) string {
	if existed {
		return clearedReply
	}
	return noHistoryReply
}

// userMessage extracts the user-safe text from a pipeline error. The
// orchestrator contract always returns a *Failure; anything else still gets
// a generic reply rather than leaking.
func userMessage(err error) string {
	var failure *orchestrator.Failure
	if errors.As(err, &failure) {
		return failure.UserMessage()
	}
	return "Sorry, an error occurred."
}

func (g *Gateway) reply(s *discordgo.Session, m *discordgo.MessageCreate, text string) {
	if _, err := s.ChannelMessageSendReply(m.ChannelID, text, m.Reference()); err != nil {
		log.Printf("failed to send reply: %v", err)
	}
}

func logUsage(authorID string, o *orchestrator.Outcome) {
	u := o.Usage
	log.Printf(
		"request %s done author=%s tokens initial=%d search=%d final=%d output=%d "+
			"costs initial=%.6f search=%.6f final=%.6f total=%.6f "+
			"time=%s model=%s web_search=%t",
		o.RequestID, authorID,
		u.InitialInputTokens, u.WebSearchTokens, u.FinalInputTokens, u.OutputTokens,
		u.InitialCost, u.WebSearchCost, u.FinalCost, u.TotalCost,
		o.ProcessingTime, o.Model, o.WebSearchPerformed,
	)
}

// =============================================================================
// CHANNEL SENDER
// =============================================================================

// channelSender delivers segmented output to one channel.
type channelSender struct {
	session   *discordgo.Session
	channelID string
}

func (c *channelSender) SendText(text string) error {
	_, err := c.session.ChannelMessageSend(c.channelID, text)
	return mapSendError(err)
}

func (c *channelSender) SendFiles(files []splitter.File) error {
	attachments := make([]*discordgo.File, len(files))
	for i, f := range files {
		attachments[i] = &discordgo.File{
			Name:        f.Name,
			ContentType: "text/plain",
			Reader:      bytes.NewReader(f.Data),
		}
	}
	_, err := c.session.ChannelMessageSendComplex(c.channelID, &discordgo.MessageSend{Files: attachments})
	return err
}

// mapSendError converts Discord's over-length rejection into the sentinel the
// delivery fallback keys on. Other errors pass through unchanged.
func mapSendError(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Message != nil && rest.Message.Code == discordgo.ErrCodeInvalidFormBody {
		return fmt.Errorf("%w: %s", splitter.ErrTooLong, rest.Message.Message)
	}
	if strings.Contains(err.Error(), "Must be 2000 or fewer in length") {
		return fmt.Errorf("%w: %v", splitter.ErrTooLong, err)
	}
	return err
}
