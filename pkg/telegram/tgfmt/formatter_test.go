// Copyright 2024-2026 Aiku AI

package tgfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEmpty(t *testing.T) {
	t.Parallel()
	result := Parse("")
	assert.Empty(t, result.Body)
	assert.False(t, result.HasFormatting())
}

func TestParsePlainText(t *testing.T) {
	t.Parallel()
	result := Parse("hello <world> & friends")
	assert.Equal(t, "hello <world> & friends", result.Body)
	assert.False(t, result.HasFormatting())
}

func TestParseInline(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"**bold text**", "<b>bold text</b>"},
		{"__italic__", "<i>italic</i>"},
		{"~~deleted~~", "<s>deleted</s>"},
		{"use `a<b`", "use <code>a&lt;b</code>"},
		{"# Title", "<b>Title</b>"},
		{"> quoted", "<blockquote>quoted</blockquote>"},
		{"[site](https://example.com/?a=1&b=2)", `<a href="https://example.com/?a=1&amp;b=2">site</a>`},
		{"[bad](javascript:alert)", "bad"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			result := Parse(tt.in)
			assert.Equal(t, tt.in, result.Body)
			assert.Equal(t, tt.want, result.HTML)
		})
	}
}

func TestParseCodeBlockNotFormatted(t *testing.T) {
	t.Parallel()
	result := Parse("```go\nx := **y**\n```")
	assert.Equal(t, "<pre><code class=\"language-go\">x := **y**\n</code></pre>", result.HTML)

	result = Parse("```\n<raw>```")
	assert.Equal(t, "<pre>&lt;raw&gt;</pre>", result.HTML)
}

func TestParseNotification(t *testing.T) {
	t.Parallel()
	in := `[#FOUND](https://t.me/c/333/42) "**foo**" IN **Deals & Co**(333) FROM Alice(@alice)` + "\nbig <foo> sale"
	want := `<a href="https://t.me/c/333/42">#FOUND</a> "<b>foo</b>" IN <b>Deals &amp; Co</b>(333) FROM Alice(@alice)` + "\nbig &lt;foo&gt; sale"
	assert.Equal(t, want, Parse(in).HTML)
}

func TestPlainText(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `#FOUND "foo" a<b`, PlainText(`[#FOUND](https://t.me/x/1) "**foo**" a<b`))
	assert.Equal(t, "no markup", PlainText("no markup"))
}
