// Copyright 2024-2026 Aiku AI

package monitor

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// previewLength is how many characters of the original message are quoted in
// a notification.
const previewLength = 200

// DeepLink builds the t.me link to the original message. Public chats are
// linked by username, private ones by their canonical id.
func DeepLink(msg *IncomingMessage) string {
	msgID := strconv.FormatInt(msg.MessageID, 10)
	if msg.ChatUsername != "" {
		return "https://t.me/" + msg.ChatUsername + "/" + msgID
	}
	return "https://t.me/c/" + strconv.FormatInt(msg.SourceID, 10) + "/" + msgID
}

func chatInfo(msg *IncomingMessage) string {
	if msg.ChatUsername != "" {
		return "(@" + msg.ChatUsername + ")"
	}
	return "(" + strconv.FormatInt(msg.SourceID, 10) + ")"
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// RenderNotification formats the notification for a triggered message.
func RenderNotification(msg *IncomingMessage, matched string) string {
	return fmt.Sprintf(`[#FOUND](%s) "**%s**" IN **%s**%s FROM %s`,
		DeepLink(msg), matched, msg.ChatTitle, chatInfo(msg), msg.Sender.Label()) +
		"\n" + truncateRunes(msg.ScanText(), previewLength)
}

// DispatchResult counts delivery attempts of one notification.
type DispatchResult struct {
	Sent   int
	Failed int
}

// Dispatcher fans a notification out to every result chat and mirror sink.
type Dispatcher struct {
	messenger Messenger
	reg       *Registry
	mirrors   []Sink
	metrics   *Metrics
	log       zerolog.Logger
}

func NewDispatcher(messenger Messenger, reg *Registry, metrics *Metrics, log zerolog.Logger, mirrors ...Sink) *Dispatcher {
	return &Dispatcher{
		messenger: messenger,
		reg:       reg,
		mirrors:   mirrors,
		metrics:   metrics,
		log:       log.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch delivers body to all destinations concurrently. A failing or slow
// destination does not affect the others.
func (d *Dispatcher) Dispatch(ctx context.Context, body string) DispatchResult {
	var sent, failed atomic.Int64
	var wg sync.WaitGroup

	deliver := func(name string, fn func() error) {
		defer wg.Done()
		defer func() {
			if p := recover(); p != nil {
				failed.Add(1)
				d.metrics.recordDelivery(name, false)
				d.log.Error().Interface("panic", p).Str("sink", name).Msg("Panic while sending notification")
			}
		}()
		if err := fn(); err != nil {
			failed.Add(1)
			d.metrics.recordDelivery(name, false)
			d.log.Error().Err(err).Str("sink", name).Msg("Failed to send notification")
			return
		}
		sent.Add(1)
		d.metrics.recordDelivery(name, true)
		d.log.Info().Str("sink", name).Msg("Notification sent")
	}

	opts := SendOptions{DisableLinkPreview: true, Markdown: true}
	for _, target := range d.reg.ResultSinks() {
		wg.Add(1)
		go deliver("telegram:"+strconv.FormatInt(target, 10), func() error {
			return d.messenger.Send(ctx, target, body, opts)
		})
	}
	for _, sink := range d.mirrors {
		wg.Add(1)
		go deliver(sink.Name(), func() error {
			return sink.Deliver(ctx, body)
		})
	}
	wg.Wait()
	return DispatchResult{Sent: int(sent.Load()), Failed: int(failed.Load())}
}
