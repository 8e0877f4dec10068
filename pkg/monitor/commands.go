// Copyright 2024-2026 Aiku AI

package monitor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/aiku/telegram-keyword-bot/pkg/rules"
)

// CommandRequest is a command as received by the bot. SenderID is the
// canonical id of the chat the command was sent from; Direct is true for a
// private chat with the bot.
type CommandRequest struct {
	SenderID int64
	Direct   bool
	RawText  string
}

// Command is a parsed CommandRequest.
type Command struct {
	Verb     string
	Argument string
}

// ParseCommand splits the trimmed text into the verb and the rest. A
// "@botname" suffix on the verb, as sent by clients in group chats, is dropped.
func ParseCommand(raw string) Command {
	text := strings.TrimSpace(raw)
	verb, arg := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		verb, arg = text[:i], text[i:]
	}
	if at := strings.IndexByte(verb, '@'); at > 0 && strings.HasPrefix(verb, "/") {
		verb = verb[:at]
	}
	return Command{Verb: verb, Argument: strings.TrimSpace(arg)}
}

const (
	VerbStart         = "/start"
	VerbAddKeyword    = "/add_keyword"
	VerbRemoveKeyword = "/remove_keyword"
	VerbAddExclude    = "/add_exclude"
	VerbRemoveExclude = "/remove_exclude"
	VerbListKeywords  = "/list_keywords"
)

const helpText = `✨ Telegram keyword watch bot

🔧 Commands:
/add_keyword <regex> - add a keyword
/remove_keyword <regex> - remove a keyword
/add_exclude <regex> - add an exclude keyword
/remove_exclude <regex> - remove an exclude keyword
/list_keywords - list all keywords`

const (
	replyMissingKeyword = "❌ Missing keyword"
	replyNotFound       = "❌ Keyword not found"
	replyInvalidCommand = "❌ Invalid command or wrong command format"
	warnNotSaved        = "⚠️ Failed to save config, the change is active but will be lost on restart"
	warnInvalidPattern  = "⚠️ Pattern does not compile and is inactive"
)

// Reply is the answer to a command. Ignored replies must not be sent.
type Reply struct {
	Text    string
	Ignored bool
}

// RuleStore is the part of rules.Store the router mutates.
type RuleStore interface {
	Snapshot() *rules.RuleSet
	AddInclude(text string) error
	RemoveInclude(text string) (bool, error)
	AddExclude(text string) error
	RemoveExclude(text string) (bool, error)
}

// Router handles bot commands. It keeps no state between commands.
type Router struct {
	reg     *Registry
	store   RuleStore
	metrics *Metrics
	log     zerolog.Logger
}

func NewRouter(reg *Registry, store RuleStore, metrics *Metrics, log zerolog.Logger) *Router {
	return &Router{
		reg:     reg,
		store:   store,
		metrics: metrics,
		log:     log.With().Str("component", "command_router").Logger(),
	}
}

// Handle authorizes and executes one command.
func (r *Router) Handle(req CommandRequest) Reply {
	// A result group or channel echoing into the bot's stream is never
	// answered, even when its id is also an authorized command sender.
	if !req.Direct && r.reg.IsResultSink(req.SenderID) {
		r.log.Debug().Int64("sender_id", req.SenderID).Msg("Ignoring command from result chat (loop prevention)")
		return Reply{Ignored: true}
	}

	cmd := ParseCommand(req.RawText)
	if !r.reg.IsCommandSender(req.SenderID) {
		r.log.Info().Int64("sender_id", req.SenderID).Str("verb", cmd.Verb).Msg("Rejected command from unauthorized sender")
		r.metrics.recordCommand(cmd.Verb, "unauthorized")
		return Reply{Text: fmt.Sprintf("❌ %d is not authorized to use this bot", req.SenderID)}
	}

	log := r.log.With().Int64("sender_id", req.SenderID).Str("verb", cmd.Verb).Logger()
	var reply Reply
	result := "ok"
	switch cmd.Verb {
	case VerbStart:
		reply = Reply{Text: helpText}
	case VerbAddKeyword:
		reply, result = r.add(cmd.Argument, rules.Include, r.store.AddInclude)
	case VerbRemoveKeyword:
		reply, result = r.remove(cmd.Argument, rules.Include, r.store.RemoveInclude)
	case VerbAddExclude:
		reply, result = r.add(cmd.Argument, rules.Exclude, r.store.AddExclude)
	case VerbRemoveExclude:
		reply, result = r.remove(cmd.Argument, rules.Exclude, r.store.RemoveExclude)
	case VerbListKeywords:
		reply = Reply{Text: FormatKeywordList(r.store.Snapshot())}
	default:
		reply, result = Reply{Text: replyInvalidCommand}, "invalid"
	}
	r.metrics.recordCommand(cmd.Verb, result)
	r.metrics.recordRules(r.store.Snapshot())
	log.Info().Str("argument", cmd.Argument).Str("result", result).Msg("Handled command")
	return reply
}

func kindLabel(kind rules.Kind) string {
	if kind == rules.Exclude {
		return "exclude keyword"
	}
	return "keyword"
}

func (r *Router) add(text string, kind rules.Kind, add func(string) error) (Reply, string) {
	if text == "" {
		return Reply{Text: replyMissingKeyword}, "missing_argument"
	}
	result := "ok"
	lines := []string{fmt.Sprintf("✅ Added %s: `%s`", kindLabel(kind), text)}
	if err := add(text); err != nil {
		r.log.Error().Err(err).Str("pattern", text).Msg("Failed to persist added keyword")
		lines = append(lines, warnNotSaved)
		result = "persist_failed"
	}
	if r.store.Snapshot().Failed(text) {
		lines = append(lines, warnInvalidPattern)
	}
	return Reply{Text: strings.Join(lines, "\n")}, result
}

func (r *Router) remove(text string, kind rules.Kind, remove func(string) (bool, error)) (Reply, string) {
	if text == "" {
		return Reply{Text: replyNotFound}, "not_found"
	}
	found, err := remove(text)
	if !found {
		return Reply{Text: replyNotFound}, "not_found"
	}
	reply := fmt.Sprintf("✅ Removed %s: `%s`", kindLabel(kind), text)
	if err != nil {
		r.log.Error().Err(err).Str("pattern", text).Msg("Failed to persist removed keyword")
		return Reply{Text: reply + "\n" + warnNotSaved}, "persist_failed"
	}
	return Reply{Text: reply}, "ok"
}

// FormatKeywordList renders both rule lists as numbered lists.
func FormatKeywordList(rs *rules.RuleSet) string {
	var sb strings.Builder
	sb.WriteString("📋 Keyword list\n\n🔍 Keywords:\n")
	writeNumbered(&sb, rs.IncludeTexts(), rs)
	sb.WriteString("\n🚫 Exclude keywords:\n")
	writeNumbered(&sb, rs.ExcludeTexts(), rs)
	return sb.String()
}

func writeNumbered(sb *strings.Builder, texts []string, rs *rules.RuleSet) {
	if len(texts) == 0 {
		sb.WriteString("none\n")
		return
	}
	for i, text := range texts {
		fmt.Fprintf(sb, "%d. `%s`", i+1, text)
		if rs.Failed(text) {
			sb.WriteString(" (invalid)")
		}
		sb.WriteByte('\n')
	}
}
