// Package bot wires the rewrite → execute → render pipeline to a Discord
// slash command. Every per-request failure becomes a chat reply; nothing
// here is process-fatal.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/clickbot-dev/clickbot/pkg/executor"
	"github.com/clickbot-dev/clickbot/pkg/query"
)

const (
	commandName = "query"
	optionQuery = "query"

	// Discord caps messages at 2000 characters; leave room for the
	// truncation marker.
	maxReplyLen = 1990

	promptReply  = "Please provide a query"
	failureReply = "Query failed, please try again later"
	renderReply  = "Query succeeded but the result could not be rendered"
)

// Rewriter validates and bounds raw query text. *query.Rewriter satisfies
// this.
type Rewriter interface {
	Rewrite(raw string) (string, error)
}

// Runner executes a finalized query. *executor.Executor satisfies this.
type Runner interface {
	Run(ctx context.Context, q string) (string, error)
}

// RenderFunc converts a response body into reply text.
type RenderFunc func(body string) (string, error)

// Bot owns the Discord session and the per-command pipeline.
type Bot struct {
	session  *discordgo.Session
	rewriter Rewriter
	runner   Runner
	render   RenderFunc
	timeout  time.Duration
	logger   *zap.Logger
}

// New builds a Bot and attaches its gateway handlers. Start must be called
// before the bot serves commands.
func New(token string, rewriter Rewriter, runner Runner, render RenderFunc, timeout time.Duration, logger *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsAllWithoutPrivileged

	b := &Bot{
		session:  session,
		rewriter: rewriter,
		runner:   runner,
		render:   render,
		timeout:  timeout,
		logger:   logger,
	}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	return b, nil
}

// Start opens the gateway connection and registers the slash command
// globally.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}

	cmd := &discordgo.ApplicationCommand{
		Name:        commandName,
		Description: "Run a SQL query against ClickHouse",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        optionQuery,
				Description: "Query",
				Required:    false,
			},
		},
	}
	if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd); err != nil {
		return fmt.Errorf("register /%s command: %w", commandName, err)
	}
	return nil
}

// Close shuts the gateway connection down.
func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("discord gateway ready", zap.String("user", r.User.Username))
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != commandName {
		return
	}

	raw, ok := stringOption(data.Options, optionQuery)
	if !ok || strings.TrimSpace(raw) == "" {
		b.respond(s, i, promptReply)
		return
	}

	finalized, err := b.rewriter.Rewrite(raw)
	if err != nil {
		rejectionsTotal.WithLabelValues(string(query.KindOf(err))).Inc()
		// Rejection messages are written for the user.
		b.respond(s, i, err.Error())
		return
	}

	// The query can take a while; acknowledge now, deliver via followup.
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		b.logger.Warn("deferring interaction failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	b.followup(s, i, b.reply(ctx, finalized))
}

// reply runs the finalized query and renders the response, mapping failures
// to user-facing text.
func (b *Bot) reply(ctx context.Context, finalized string) string {
	body, err := b.runner.Run(ctx, finalized)
	if err != nil {
		var dbErr *executor.DatabaseError
		if errors.As(err, &dbErr) {
			return "Query failed: " + dbErr.Body
		}
		b.logger.Warn("query execution failed", zap.Error(err))
		return failureReply
	}

	text, err := b.render(body)
	if err != nil {
		b.logger.Warn("rendering result failed", zap.Error(err))
		return renderReply
	}
	return truncate(text, maxReplyLen)
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	})
	if err != nil {
		b.logger.Warn("interaction response failed", zap.Error(err))
	}
}

func (b *Bot) followup(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Content: content}); err != nil {
		b.logger.Warn("followup message failed", zap.Error(err))
	}
}

func stringOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) (string, bool) {
	for _, opt := range opts {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue(), true
		}
	}
	return "", false
}

// truncate cuts s to max bytes while keeping the closing code fence intact
// and never splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	const tail = "\n…\n```"
	cut := max - len(tail)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + tail
}
