// Copyright 2024-2026 Aiku AI

package monitor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aiku/telegram-keyword-bot/pkg/rules"
)

const (
	streamMessages = "messages"
	streamCommands = "commands"

	defaultMaxInFlight = 32
)

// Params wires a Bot together.
type Params struct {
	Transport Transport
	Store     *rules.Store
	Registry  *Registry
	Metrics   *Metrics
	Mirrors   []Sink
	Logger    zerolog.Logger

	// Admin is served on AdminAddr when both are set.
	Admin     *AdminAPI
	AdminAddr string

	// MaxInFlight bounds concurrently handled events per stream.
	MaxInFlight int
}

// Bot runs the observation and command streams against a shared rule store.
type Bot struct {
	transport  Transport
	store      *rules.Store
	reg        *Registry
	router     *Router
	dispatcher *Dispatcher
	metrics    *Metrics
	admin      *AdminAPI
	adminAddr  string
	inFlight   int
	log        zerolog.Logger
}

func NewBot(p Params) *Bot {
	inFlight := p.MaxInFlight
	if inFlight <= 0 {
		inFlight = defaultMaxInFlight
	}
	p.Metrics.recordRules(p.Store.Snapshot())
	return &Bot{
		transport:  p.Transport,
		store:      p.Store,
		reg:        p.Registry,
		router:     NewRouter(p.Registry, p.Store, p.Metrics, p.Logger),
		dispatcher: NewDispatcher(p.Transport, p.Registry, p.Metrics, p.Logger, p.Mirrors...),
		metrics:    p.Metrics,
		admin:      p.Admin,
		adminAddr:  p.AdminAddr,
		inFlight:   inFlight,
		log:        p.Logger.With().Str("component", "bot").Logger(),
	}
}

// Run starts the transport and both stream supervisors and blocks until ctx
// is cancelled or the transport fails.
func (b *Bot) Run(ctx context.Context) error {
	observed := make(chan *IncomingMessage, b.inFlight)
	commands := make(chan *InboundCommand, b.inFlight)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.transport.Run(ctx, observed, commands)
	})
	g.Go(func() error {
		supervise[*IncomingMessage](ctx, b, streamMessages, observed, b.HandleMessage)
		return nil
	})
	g.Go(func() error {
		supervise[*InboundCommand](ctx, b, streamCommands, commands, b.HandleCommand)
		return nil
	})
	if b.admin != nil && b.adminAddr != "" {
		srv := b.admin.Server(b.adminAddr)
		g.Go(func() error {
			b.log.Info().Str("addr", b.adminAddr).Msg("Starting admin API")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				b.log.Error().Err(err).Msg("Admin API error")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	b.log.Info().Msg("Listening for messages")
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// supervise consumes one stream until it is closed or ctx is done. Every
// event runs on its own goroutine; a panic drops only that event.
func supervise[T any](ctx context.Context, b *Bot, stream string, in <-chan T, handle func(context.Context, T)) {
	var tasks errgroup.Group
	tasks.SetLimit(b.inFlight)
	defer tasks.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-in:
			if !ok {
				return
			}
			tasks.Go(func() error {
				defer func() {
					if p := recover(); p != nil {
						b.metrics.recordPanic(stream)
						b.log.Error().Interface("panic", p).Str("stream", stream).Msg("Panic while handling event, event dropped")
					}
				}()
				handle(ctx, evt)
				return nil
			})
		}
	}
}

// HandleMessage classifies one observed message and dispatches a
// notification when it triggers.
func (b *Bot) HandleMessage(ctx context.Context, msg *IncomingMessage) {
	start := time.Now()
	outcome := Classify(msg, b.reg, b.store.Snapshot())
	b.metrics.recordOutcome(outcome, time.Since(start))

	log := b.log.With().
		Int64("source_id", msg.SourceID).
		Int64("message_id", msg.MessageID).
		Logger()
	if !outcome.Triggered() {
		log.Debug().Str("reason", string(outcome.Reason)).Msg("Message skipped")
		return
	}

	body := RenderNotification(msg, outcome.Matched)
	res := b.dispatcher.Dispatch(ctx, body)
	log.Info().
		Str("matched", outcome.Matched).
		Str("chat_title", msg.ChatTitle).
		Str("sender", msg.Sender.Label()).
		Int("sent", res.Sent).
		Int("failed", res.Failed).
		Msg("Keyword matched")
}

// HandleCommand runs one command and replies in the chat it came from.
func (b *Bot) HandleCommand(ctx context.Context, cmd *InboundCommand) {
	reply := b.router.Handle(cmd.Request)
	if reply.Ignored {
		return
	}
	err := b.transport.Send(ctx, cmd.ChatID, reply.Text, SendOptions{ReplyTo: cmd.MessageID})
	if err != nil {
		b.log.Error().Err(err).Int64("chat_id", cmd.ChatID).Msg("Failed to send command reply")
	}
}
