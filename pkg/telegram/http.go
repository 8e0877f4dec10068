// Copyright 2024-2026 Aiku AI

package telegram

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/aiku/telegram-keyword-bot/pkg/config"
)

// requestTimeout must stay above the long-poll timeout of getUpdates.
const requestTimeout = 90 * time.Second

// leveledZerolog adapts zerolog to retryablehttp.LeveledLogger. Errors are
// logged as warnings since the request is retried.
type leveledZerolog struct {
	log zerolog.Logger
}

func (l leveledZerolog) Error(msg string, keysAndValues ...any) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Warn(msg string, keysAndValues ...any) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Debug(msg string, keysAndValues ...any) {
	l.log.Trace().Fields(keysAndValues).Msg(msg)
}

// NewHTTPClient builds the client used for Bot API calls. It retries
// connection errors and 5xx responses and goes through the configured proxy.
func NewHTTPClient(proxy config.ProxyConfig, log zerolog.Logger) (*http.Client, error) {
	transport := cleanhttp.DefaultPooledTransport()
	if proxy.Enabled() {
		u, err := proxy.URL()
		if err != nil {
			return nil, fmt.Errorf("failed to build proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
		log.Info().Str("proxy", u.Redacted()).Msg("Using proxy for Telegram")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Transport = transport
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(leveledZerolog{
		log: log.With().Str("component", "telegram_http").Logger(),
	})

	client := retryClient.StandardClient()
	client.Timeout = requestTimeout
	return client, nil
}
