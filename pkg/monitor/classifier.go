// Copyright 2024-2026 Aiku AI

package monitor

import (
	"github.com/aiku/telegram-keyword-bot/pkg/rules"
)

// SkipReason says why a message did not trigger a notification.
type SkipReason string

const (
	SkipBlocked        SkipReason = "blocked"
	SkipLoopPrevention SkipReason = "loop_prevention"
	SkipBotSender      SkipReason = "bot_sender"
	SkipEmpty          SkipReason = "empty"
	SkipNoMatch        SkipReason = "no_match"
	SkipExcluded       SkipReason = "excluded"
)

// Outcome is the result of classifying one message: either a skip with a
// reason or a trigger with the matched substring.
type Outcome struct {
	Reason  SkipReason
	Matched string
}

func Skip(reason SkipReason) Outcome { return Outcome{Reason: reason} }

func Trigger(matched string) Outcome { return Outcome{Matched: matched} }

// Triggered reports whether the message should be forwarded.
func (o Outcome) Triggered() bool { return o.Reason == "" }

func (o Outcome) String() string {
	if o.Triggered() {
		return "trigger"
	}
	return string(o.Reason)
}

// Classify decides whether msg triggers a notification. The cheap source
// checks run first so that the bot's own command and notification chats are
// never scanned, whatever their text.
func Classify(msg *IncomingMessage, reg *Registry, rs *rules.RuleSet) Outcome {
	if reg.IsBlocked(msg.SourceID) {
		return Skip(SkipBlocked)
	}
	if reg.IsCommandSender(msg.SourceID) || reg.IsResultSink(msg.SourceID) {
		return Skip(SkipLoopPrevention)
	}
	if reg.BlockBotMessages() && msg.Sender.IsBot {
		return Skip(SkipBotSender)
	}

	text := msg.ScanText()
	if text == "" {
		return Skip(SkipEmpty)
	}
	matched, ok := rs.FirstInclude(text)
	if !ok {
		return Skip(SkipNoMatch)
	}
	if rs.AnyExclude(text) {
		return Skip(SkipExcluded)
	}
	return Trigger(matched)
}
