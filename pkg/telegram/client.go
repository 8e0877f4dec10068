// Copyright 2024-2026 Aiku AI

// Package telegram connects the monitor to Telegram through the Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/aiku/telegram-keyword-bot/pkg/monitor"
	"github.com/aiku/telegram-keyword-bot/pkg/peer"
	"github.com/aiku/telegram-keyword-bot/pkg/telegram/tgfmt"
)

const (
	defaultPollTimeout = 60
	defaultPeerCache   = 4096
)

// Options configure a Client.
type Options struct {
	Token string
	// Endpoint is the Bot API URL format; tgbotapi.APIEndpoint when empty.
	Endpoint   string
	HTTPClient tgbotapi.HTTPClient
	// PollTimeout is the getUpdates long-poll timeout in seconds. Zero uses
	// the default, a negative value disables long polling.
	PollTimeout int
	// PeerCacheSize bounds how many chats are remembered for id resolution.
	PeerCacheSize int
}

// Client is the Bot API transport of the monitor.
type Client struct {
	api         *tgbotapi.BotAPI
	peers       *lru.Cache[int64, int64]
	pollTimeout int
	log         zerolog.Logger
}

var _ monitor.Transport = (*Client)(nil)

// New connects to the Bot API and checks the token with getMe.
func New(opts Options, log zerolog.Logger) (*Client, error) {
	log = log.With().Str("component", "telegram").Logger()
	if err := tgbotapi.SetLogger(botLogger{log: log}); err != nil {
		return nil, err
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	api, err := tgbotapi.NewBotAPIWithClient(opts.Token, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect bot: %w", err)
	}

	size := opts.PeerCacheSize
	if size <= 0 {
		size = defaultPeerCache
	}
	peers, err := lru.New[int64, int64](size)
	if err != nil {
		return nil, err
	}

	pollTimeout := opts.PollTimeout
	switch {
	case pollTimeout == 0:
		pollTimeout = defaultPollTimeout
	case pollTimeout < 0:
		pollTimeout = 0
	}

	log.Info().Str("username", api.Self.UserName).Int64("id", api.Self.ID).Msg("Bot connected")
	return &Client{api: api, peers: peers, pollTimeout: pollTimeout, log: log}, nil
}

// Self returns the bot identity.
func (c *Client) Self() tgbotapi.User {
	return c.api.Self
}

// Run polls for updates and splits them into the observation and command
// streams.
func (c *Client) Run(ctx context.Context, observed chan<- *monitor.IncomingMessage, commands chan<- *monitor.InboundCommand) error {
	defer close(observed)
	defer close(commands)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.pollTimeout
	u.AllowedUpdates = []string{"message", "channel_post"}
	updates := c.api.GetUpdatesChan(u)
	defer c.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg, cmd := c.route(update)
			if msg != nil {
				select {
				case observed <- msg:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			if cmd != nil {
				select {
				case commands <- cmd:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

// resolve turns a configured id into the marked id the Bot API expects.
// Negative ids are taken as already marked; canonical ids are looked up
// among the chats seen so far and otherwise treated as user ids.
func (c *Client) resolve(target int64) int64 {
	if target < 0 {
		return target
	}
	if marked, ok := c.peers.Get(target); ok {
		return marked
	}
	return target
}

func (c *Client) remember(chat *tgbotapi.Chat) {
	if chat == nil {
		return
	}
	c.peers.Add(peer.Canonical(chat.ID), chat.ID)
}

// Send delivers text to target. Markdown is converted to Telegram HTML; when
// Telegram rejects the markup the text is sent once more as plain text.
func (c *Client) Send(ctx context.Context, target int64, text string, opts monitor.SendOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID := c.resolve(target)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = opts.DisableLinkPreview
	msg.ReplyToMessageID = int(opts.ReplyTo)
	msg.AllowSendingWithoutReply = true

	if opts.Markdown {
		if parsed := tgfmt.Parse(text); parsed.HasFormatting() {
			msg.Text = parsed.HTML
			msg.ParseMode = tgbotapi.ModeHTML
		}
	}

	_, err := c.api.Send(msg)
	if err != nil && msg.ParseMode != "" && isEntityError(err) {
		c.log.Warn().Err(err).Int64("chat_id", chatID).Msg("Telegram rejected formatting, resending as plain text")
		msg.Text = tgfmt.PlainText(text)
		msg.ParseMode = ""
		_, err = c.api.Send(msg)
	}
	if err != nil {
		return fmt.Errorf("failed to send message to %d: %w", chatID, err)
	}
	return nil
}

func isEntityError(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "can't parse entities")
}

// botLogger routes tgbotapi's own logging into zerolog.
type botLogger struct {
	log zerolog.Logger
}

func (l botLogger) Println(v ...any) {
	l.log.Warn().Msg(strings.TrimSpace(fmt.Sprintln(v...)))
}

func (l botLogger) Printf(format string, v ...any) {
	l.log.Warn().Msgf(format, v...)
}
