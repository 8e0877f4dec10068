// Copyright 2024-2026 Aiku AI

package telegram

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aiku/telegram-keyword-bot/pkg/monitor"
	"github.com/aiku/telegram-keyword-bot/pkg/peer"
)

// route converts one update. Private chats only feed the command stream;
// everything else is observed, and group commands addressed to this bot are
// additionally passed to the command stream.
func (c *Client) route(update tgbotapi.Update) (*monitor.IncomingMessage, *monitor.InboundCommand) {
	msg := update.Message
	if msg == nil {
		msg = update.ChannelPost
	}
	if msg == nil || msg.Chat == nil {
		return nil, nil
	}
	c.remember(msg.Chat)
	if msg.SenderChat != nil {
		c.remember(msg.SenderChat)
	}

	if msg.Chat.IsPrivate() {
		if msg.Text == "" {
			return nil, nil
		}
		return nil, toCommand(msg, true)
	}

	var cmd *monitor.InboundCommand
	if c.addressedToSelf(msg) {
		cmd = toCommand(msg, false)
	}
	return toIncoming(msg), cmd
}

func (c *Client) addressedToSelf(msg *tgbotapi.Message) bool {
	if !msg.IsCommand() {
		return false
	}
	_, mention, found := strings.Cut(msg.CommandWithAt(), "@")
	return !found || strings.EqualFold(mention, c.api.Self.UserName)
}

func toCommand(msg *tgbotapi.Message, direct bool) *monitor.InboundCommand {
	return &monitor.InboundCommand{
		Request: monitor.CommandRequest{
			SenderID: peer.Canonical(msg.Chat.ID),
			Direct:   direct,
			RawText:  msg.Text,
		},
		ChatID:    msg.Chat.ID,
		MessageID: int64(msg.MessageID),
	}
}

func toIncoming(msg *tgbotapi.Message) *monitor.IncomingMessage {
	sender := senderInfo(msg)
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	return &monitor.IncomingMessage{
		SourceID:       peer.Canonical(msg.Chat.ID),
		SenderID:       sender.ID,
		Sender:         sender,
		Text:           text,
		AttachmentName: attachmentName(msg),
		MessageID:      int64(msg.MessageID),
		ChatTitle:      chatTitle(msg.Chat),
		ChatUsername:   msg.Chat.UserName,
	}
}

func senderInfo(msg *tgbotapi.Message) monitor.SenderInfo {
	switch {
	case msg.From != nil:
		return monitor.SenderInfo{
			ID:          msg.From.ID,
			Username:    msg.From.UserName,
			IsBot:       msg.From.IsBot,
			DisplayName: strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName),
		}
	case msg.SenderChat != nil:
		return chatSender(msg.SenderChat)
	default:
		return chatSender(msg.Chat)
	}
}

func chatSender(chat *tgbotapi.Chat) monitor.SenderInfo {
	return monitor.SenderInfo{
		ID:          peer.Canonical(chat.ID),
		Username:    chat.UserName,
		DisplayName: chatTitle(chat),
	}
}

func chatTitle(chat *tgbotapi.Chat) string {
	switch {
	case chat.Title != "":
		return chat.Title
	case chat.UserName != "":
		return chat.UserName
	default:
		return strconv.FormatInt(peer.Canonical(chat.ID), 10)
	}
}

func attachmentName(msg *tgbotapi.Message) string {
	switch {
	case msg.Document != nil:
		return msg.Document.FileName
	case msg.Audio != nil:
		return msg.Audio.FileName
	case msg.Video != nil:
		return msg.Video.FileName
	default:
		return ""
	}
}
