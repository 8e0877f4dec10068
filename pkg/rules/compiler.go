// Copyright 2024-2026 Aiku AI

// Package rules compiles keyword patterns and owns the live include/exclude
// rule set.
//
// A pattern is either a plain regular expression or a delimited form
// /body/flags where flags may contain i (case-insensitive), m (multiline) and
// s (dot matches newline). Unknown flag characters are ignored.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrBadPattern is matched by every CompileError.
var ErrBadPattern = errors.New("bad pattern syntax")

// Flags are the regexp modifiers recognized in the /body/flags form.
type Flags struct {
	CaseInsensitive bool
	Multiline       bool
	DotAll          bool
}

// String renders the flags in canonical "ims" order.
func (f Flags) String() string {
	var sb strings.Builder
	if f.CaseInsensitive {
		sb.WriteByte('i')
	}
	if f.Multiline {
		sb.WriteByte('m')
	}
	if f.DotAll {
		sb.WriteByte('s')
	}
	return sb.String()
}

func parseFlags(s string) Flags {
	var f Flags
	for _, c := range s {
		switch c {
		case 'i':
			f.CaseInsensitive = true
		case 'm':
			f.Multiline = true
		case 's':
			f.DotAll = true
		}
	}
	return f
}

// CompiledPattern is an executable pattern. It is only produced by Compile.
type CompiledPattern struct {
	source string
	body   string
	flags  Flags
	re     *regexp.Regexp
}

// Source returns the rule text the pattern was compiled from.
func (p *CompiledPattern) Source() string { return p.source }

// Body returns the regular expression without delimiters or flags.
func (p *CompiledPattern) Body() string { return p.body }

func (p *CompiledPattern) Flags() Flags { return p.flags }

// Find returns the leftmost match in text. ok is false when there is none;
// an empty match is still a match.
func (p *CompiledPattern) Find(text string) (match string, ok bool) {
	loc := p.re.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return text[loc[0]:loc[1]], true
}

// Matches reports whether text contains a match.
func (p *CompiledPattern) Matches(text string) bool {
	return p.re.MatchString(text)
}

// CompileError reports a rule text that is not a valid pattern.
type CompileError struct {
	Text string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile pattern %q: %v", e.Text, e.Err)
}

func (e *CompileError) Unwrap() []error {
	return []error{ErrBadPattern, e.Err}
}

// splitDelimited splits "/body/flags". ok is false when text is not in the
// delimited form, in which case the whole text is the body.
func splitDelimited(text string) (body, flags string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return text, "", false
	}
	last := strings.LastIndex(text, "/")
	if last <= 0 {
		return text, "", false
	}
	return text[1:last], text[last+1:], true
}

// Compile turns a rule text into a CompiledPattern.
func Compile(text string) (*CompiledPattern, error) {
	body, flagStr, _ := splitDelimited(text)
	flags := parseFlags(flagStr)

	expr := body
	if mods := flags.String(); mods != "" {
		expr = "(?" + mods + ")" + body
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &CompileError{Text: text, Err: err}
	}
	return &CompiledPattern{source: text, body: body, flags: flags, re: re}, nil
}

// CompileAll compiles every text in order. Failed texts are left out of the
// returned patterns and reported separately; they never stop the batch.
func CompileAll(texts []string) ([]*CompiledPattern, []*CompileError) {
	patterns := make([]*CompiledPattern, 0, len(texts))
	var failures []*CompileError
	for _, text := range texts {
		p, err := Compile(text)
		if err != nil {
			var ce *CompileError
			if errors.As(err, &ce) {
				failures = append(failures, ce)
			}
			continue
		}
		patterns = append(patterns, p)
	}
	return patterns, failures
}
