// Copyright 2024-2026 Aiku AI

package monitor

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aiku/telegram-keyword-bot/pkg/config"
	"github.com/aiku/telegram-keyword-bot/pkg/rules"
)

const (
	testCommander int64 = 111
	testResult    int64 = 222
	testSource    int64 = 333
	testBlocked   int64 = 444
)

func testData() config.DataConfig {
	return config.DataConfig{
		CommandIDList:         []int64{testCommander},
		ResultIDList:          []int64{testResult},
		SourceFilter:          true,
		SourceFilterBlockList: []int64{testBlocked},
		BlockBotMsg:           true,
	}
}

func newTestStore(include, exclude []string) *rules.Store {
	return rules.NewStore(include, exclude, nil, zerolog.Nop())
}

func newTestMessage(text string) *IncomingMessage {
	return &IncomingMessage{
		SourceID:  testSource,
		SenderID:  555,
		Sender:    SenderInfo{ID: 555, Username: "alice", DisplayName: "Alice"},
		Text:      text,
		MessageID: 42,
		ChatTitle: "Deals",
	}
}

type sentMessage struct {
	Target int64
	Text   string
	Opts   SendOptions
}

// mockTransport records sends and replays queued events from Run.
type mockTransport struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[int64]error

	messages []*IncomingMessage
	commands []*InboundCommand
}

func (m *mockTransport) Send(_ context.Context, target int64, text string, opts SendOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[target]; err != nil {
		return err
	}
	m.sent = append(m.sent, sentMessage{Target: target, Text: text, Opts: opts})
	return nil
}

func (m *mockTransport) Run(ctx context.Context, observed chan<- *IncomingMessage, commands chan<- *InboundCommand) error {
	defer close(observed)
	defer close(commands)
	for _, msg := range m.messages {
		select {
		case observed <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for _, cmd := range m.commands {
		select {
		case commands <- cmd:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (m *mockTransport) Sent() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// mockSink is a mirror destination that records deliveries.
type mockSink struct {
	name  string
	mu    sync.Mutex
	texts []string
	err   error
	panic bool
}

func (s *mockSink) Name() string { return s.name }

func (s *mockSink) Deliver(_ context.Context, text string) error {
	if s.panic {
		panic("sink exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.texts = append(s.texts, text)
	return nil
}

func (s *mockSink) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

var errSendFailed = errors.New("send failed")
