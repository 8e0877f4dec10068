// Copyright 2024-2026 Aiku AI

package mirror

import (
	"context"
	"fmt"
	"strings"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/aiku/telegram-keyword-bot/pkg/config"
	"github.com/aiku/telegram-keyword-bot/pkg/telegram/tgfmt"
)

// MatrixSink posts notifications to one Matrix room as m.notice events.
type MatrixSink struct {
	client *mautrix.Client
	roomID id.RoomID
}

// NewMatrixSinks returns one sink per configured room, sharing one client.
func NewMatrixSinks(cfg config.MatrixMirrorConfig) ([]*MatrixSink, error) {
	client, err := mautrix.NewClient(cfg.Homeserver, id.UserID(cfg.UserID), cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Matrix client: %w", err)
	}
	sinks := make([]*MatrixSink, 0, len(cfg.RoomIDs))
	for _, room := range cfg.RoomIDs {
		sinks = append(sinks, &MatrixSink{client: client, roomID: id.RoomID(room)})
	}
	return sinks, nil
}

func (s *MatrixSink) Name() string {
	return "matrix:" + s.roomID.String()
}

// Content builds the event content for a markdown notification.
func Content(text string) *event.MessageEventContent {
	content := &event.MessageEventContent{
		MsgType: event.MsgNotice,
		Body:    tgfmt.PlainText(text),
	}
	if parsed := tgfmt.Parse(text); parsed.HasFormatting() {
		content.Format = event.FormatHTML
		content.FormattedBody = strings.ReplaceAll(parsed.HTML, "\n", "<br/>")
	}
	return content
}

func (s *MatrixSink) Deliver(ctx context.Context, text string) error {
	_, err := s.client.SendMessageEvent(ctx, s.roomID, event.EventMessage, Content(text))
	if err != nil {
		return fmt.Errorf("failed to send to Matrix room %s: %w", s.roomID, err)
	}
	return nil
}
