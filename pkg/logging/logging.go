// Copyright 2024-2026 Aiku AI

// Package logging sets up the process logger: human-readable console output
// plus a daily log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/aiku/telegram-keyword-bot/pkg/config"
)

// DefaultDir is used when the config leaves logger.path empty.
const DefaultDir = "logs"

// FileName returns the name of the log file for the given day.
func FileName(day time.Time) string {
	return "telegram_bot_" + day.Format("20060102") + ".log"
}

// ParseLevel maps the configured level to zerolog. Empty means info;
// "warning" is accepted as an alias of warn.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	case "critical":
		return zerolog.FatalLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(level))
}

// Setup builds the logger. The returned closer flushes and closes the log
// file; it must be called on shutdown.
func Setup(cfg config.LoggerConfig, console io.Writer, now time.Time) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("invalid logger.level %q: %w", cfg.Level, err)
	}

	dir := cfg.Path
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file := &lumberjack.Logger{
		Filename:   filepath.Join(dir, FileName(now)),
		MaxSize:    100,
		MaxBackups: 7,
		Compress:   true,
	}

	consoleWriter := zerolog.ConsoleWriter{Out: console, TimeFormat: time.DateTime}
	log := zerolog.New(zerolog.MultiLevelWriter(consoleWriter, file)).
		Level(level).
		With().Timestamp().
		Logger()
	log.Debug().Str("file", file.Filename).Str("level", level.String()).Msg("Logger initialized")
	return log, file, nil
}
