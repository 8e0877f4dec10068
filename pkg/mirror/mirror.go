// Copyright 2024-2026 Aiku AI

// Package mirror delivers keyword notifications to chat systems other than
// Telegram.
package mirror

import (
	"github.com/rs/zerolog"

	"github.com/aiku/telegram-keyword-bot/pkg/config"
	"github.com/aiku/telegram-keyword-bot/pkg/monitor"
)

var (
	_ monitor.Sink = (*MatrixSink)(nil)
	_ monitor.Sink = (*MattermostSink)(nil)
)

// FromConfig builds every configured mirror sink. It returns no sinks when
// no mirror is enabled.
func FromConfig(cfg config.MirrorConfig, log zerolog.Logger) ([]monitor.Sink, error) {
	var sinks []monitor.Sink
	if cfg.Matrix.Enabled() {
		matrix, err := NewMatrixSinks(cfg.Matrix)
		if err != nil {
			return nil, err
		}
		for _, s := range matrix {
			sinks = append(sinks, s)
		}
	}
	if cfg.Mattermost.Enabled() {
		for _, s := range NewMattermostSinks(cfg.Mattermost) {
			sinks = append(sinks, s)
		}
	}
	for _, s := range sinks {
		log.Info().Str("sink", s.Name()).Msg("Mirroring notifications")
	}
	return sinks, nil
}
