// Copyright 2024-2026 Aiku AI

package mirror

import (
	"context"
	"fmt"

	"github.com/mattermost/mattermost/server/public/model"

	"github.com/aiku/telegram-keyword-bot/pkg/config"
)

// MattermostSink posts notifications to one Mattermost channel. Mattermost
// renders the markdown itself, so the text is posted unchanged.
type MattermostSink struct {
	client    *model.Client4
	channelID string
}

// NewMattermostSinks returns one sink per configured channel, sharing one
// client.
func NewMattermostSinks(cfg config.MattermostMirrorConfig) []*MattermostSink {
	client := model.NewAPIv4Client(cfg.ServerURL)
	client.SetToken(cfg.Token)
	sinks := make([]*MattermostSink, 0, len(cfg.ChannelIDs))
	for _, ch := range cfg.ChannelIDs {
		sinks = append(sinks, &MattermostSink{client: client, channelID: ch})
	}
	return sinks
}

func (s *MattermostSink) Name() string {
	return "mattermost:" + s.channelID
}

func (s *MattermostSink) Deliver(ctx context.Context, text string) error {
	_, _, err := s.client.CreatePost(ctx, &model.Post{
		ChannelId: s.channelID,
		Message:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to post to Mattermost channel %s: %w", s.channelID, err)
	}
	return nil
}
