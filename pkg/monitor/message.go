// Copyright 2024-2026 Aiku AI

package monitor

import (
	"context"
	"strconv"
)

// SenderInfo describes who posted a message. The transport fills it in once;
// Username is empty when the sender has no public username.
type SenderInfo struct {
	ID          int64
	Username    string
	IsBot       bool
	DisplayName string
}

// Label renders the sender as "Name(@username)" or "Name(id)".
func (s SenderInfo) Label() string {
	if s.Username != "" {
		return s.DisplayName + "(@" + s.Username + ")"
	}
	return s.DisplayName + "(" + strconv.FormatInt(s.ID, 10) + ")"
}

// IncomingMessage is one message seen on the observation stream. All ids are
// canonical. ChatTitle is never empty; ChatUsername is empty when the chat has
// no public username.
type IncomingMessage struct {
	SourceID       int64
	SenderID       int64
	Sender         SenderInfo
	Text           string
	AttachmentName string
	MessageID      int64
	ChatTitle      string
	ChatUsername   string
}

// ScanText is the text rules are evaluated against: the message text with the
// attachment file name appended.
func (m *IncomingMessage) ScanText() string {
	if m.AttachmentName == "" {
		return m.Text
	}
	return m.Text + " " + m.AttachmentName
}

// InboundCommand is one message addressed to the bot identity.
type InboundCommand struct {
	Request   CommandRequest
	ChatID    int64
	MessageID int64
}

// SendOptions control how a text is delivered.
type SendOptions struct {
	ReplyTo            int64
	DisableLinkPreview bool
	Markdown           bool
}

// Messenger sends text to a chat identified by its configured id.
type Messenger interface {
	Send(ctx context.Context, targetID int64, text string, opts SendOptions) error
}

// Transport delivers both streams and sends replies. Run blocks until ctx is
// done or the transport fails, and closes both channels before returning.
type Transport interface {
	Messenger
	Run(ctx context.Context, observed chan<- *IncomingMessage, commands chan<- *InboundCommand) error
}

// Sink is an extra notification destination outside the result chats.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, text string) error
}
