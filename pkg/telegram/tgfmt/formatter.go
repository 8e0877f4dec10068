// Copyright 2024-2026 Aiku AI

// Package tgfmt converts the markdown used in bot notifications to the HTML
// subset accepted by the Telegram Bot API.
package tgfmt

import (
	"regexp"
	"strconv"
	"strings"
)

// ParsedMessage holds the result of converting markdown to Telegram HTML.
// HTML is empty when the text has no formatting.
type ParsedMessage struct {
	Body string
	HTML string
}

// HasFormatting reports whether HTML should be sent instead of Body.
func (m *ParsedMessage) HasFormatting() bool {
	return m.HTML != ""
}

var (
	boldRe       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRe     = regexp.MustCompile(`__(.+?)__`)
	strikeRe     = regexp.MustCompile(`~~(.+?)~~`)
	codeRe       = regexp.MustCompile("`([^`\n]+)`")
	codeBlockRe  = regexp.MustCompile("(?s)```(\\w+)?\\n?(.*?)```")
	linkRe       = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)\)`)
	headingRe    = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	blockquoteRe = regexp.MustCompile(`(?m)^>\s+(.+)$`)
)

// Telegram only understands a handful of named entities; quotes stay literal
// outside attributes.
var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Escape escapes text for use in a Telegram HTML message.
func Escape(text string) string {
	return escaper.Replace(text)
}

type codeBlock struct {
	lang    string
	content string
}

func placeholder(idx int) string {
	return "\x00CODEBLOCK" + strconv.Itoa(idx) + "\x00"
}

// Parse converts markdown text to Telegram HTML.
func Parse(text string) *ParsedMessage {
	if text == "" {
		return &ParsedMessage{}
	}

	hasFormatting := boldRe.MatchString(text) ||
		italicRe.MatchString(text) ||
		strikeRe.MatchString(text) ||
		codeRe.MatchString(text) ||
		codeBlockRe.MatchString(text) ||
		linkRe.MatchString(text) ||
		headingRe.MatchString(text) ||
		blockquoteRe.MatchString(text)
	if !hasFormatting {
		return &ParsedMessage{Body: text}
	}

	// Code blocks are cut out first so nothing inside them is formatted.
	var blocks []codeBlock
	processed := codeBlockRe.ReplaceAllStringFunc(text, func(match string) string {
		parts := codeBlockRe.FindStringSubmatch(match)
		blocks = append(blocks, codeBlock{lang: parts[1], content: parts[2]})
		return placeholder(len(blocks) - 1)
	})

	lines := strings.Split(processed, "\n")
	for i, line := range lines {
		if m := blockquoteRe.FindStringSubmatch(line); m != nil {
			lines[i] = "<blockquote>" + Escape(m[1]) + "</blockquote>"
			continue
		}
		// Telegram has no heading tags.
		if m := headingRe.FindStringSubmatch(line); m != nil {
			lines[i] = "<b>" + Escape(m[1]) + "</b>"
			continue
		}
		lines[i] = Escape(line)
	}
	formatted := strings.Join(lines, "\n")

	formatted = codeRe.ReplaceAllString(formatted, "<code>$1</code>")
	formatted = boldRe.ReplaceAllString(formatted, "<b>$1</b>")
	formatted = italicRe.ReplaceAllString(formatted, "<i>$1</i>")
	formatted = strikeRe.ReplaceAllString(formatted, "<s>$1</s>")

	formatted = linkRe.ReplaceAllStringFunc(formatted, func(match string) string {
		parts := linkRe.FindStringSubmatch(match)
		label, href := parts[1], parts[2]
		lower := strings.ToLower(href)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "tg://") {
			return `<a href="` + strings.ReplaceAll(href, `"`, "&quot;") + `">` + label + `</a>`
		}
		return label
	})

	for i, cb := range blocks {
		var replacement string
		if cb.lang != "" {
			replacement = `<pre><code class="language-` + Escape(cb.lang) + `">` + Escape(cb.content) + `</code></pre>`
		} else {
			replacement = "<pre>" + Escape(cb.content) + "</pre>"
		}
		formatted = strings.Replace(formatted, placeholder(i), replacement, 1)
	}

	return &ParsedMessage{Body: text, HTML: formatted}
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

// PlainText strips the markdown markers from text, for use when Telegram
// rejects the HTML rendition.
func PlainText(text string) string {
	parsed := Parse(text)
	if !parsed.HasFormatting() {
		return text
	}
	plain := tagRe.ReplaceAllString(parsed.HTML, "")
	return strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&amp;", "&").Replace(plain)
}
