// Copyright 2024-2026 Aiku AI

package rules

import (
	"slices"
)

// Kind distinguishes include rules from exclude rules.
type Kind int

const (
	Include Kind = iota
	Exclude
)

func (k Kind) String() string {
	switch k {
	case Include:
		return "include"
	case Exclude:
		return "exclude"
	default:
		return "unknown"
	}
}

// Rule is one compiled entry of a RuleSet.
type Rule struct {
	Text    string
	Kind    Kind
	Matcher *CompiledPattern
}

// RuleSet is an immutable, fully compiled view of both rule lists. It also
// keeps the text lists it was built from, including texts that failed to
// compile.
type RuleSet struct {
	Include  []Rule
	Exclude  []Rule
	Failures []*CompileError

	includeTexts []string
	excludeTexts []string
}

func buildRuleSet(include, exclude []string) *RuleSet {
	rs := &RuleSet{
		includeTexts: include,
		excludeTexts: exclude,
	}
	var failures []*CompileError
	rs.Include, failures = compileRules(include, Include)
	rs.Failures = append(rs.Failures, failures...)
	rs.Exclude, failures = compileRules(exclude, Exclude)
	rs.Failures = append(rs.Failures, failures...)
	return rs
}

func compileRules(texts []string, kind Kind) ([]Rule, []*CompileError) {
	patterns, failures := CompileAll(texts)
	out := make([]Rule, len(patterns))
	for i, p := range patterns {
		out[i] = Rule{Text: p.Source(), Kind: kind, Matcher: p}
	}
	return out, failures
}

// IncludeTexts returns a copy of the include rule texts in list order.
func (rs *RuleSet) IncludeTexts() []string {
	return slices.Clone(rs.includeTexts)
}

// ExcludeTexts returns a copy of the exclude rule texts in list order.
func (rs *RuleSet) ExcludeTexts() []string {
	return slices.Clone(rs.excludeTexts)
}

// FirstInclude returns the substring matched by the first include rule, in
// list order, that matches text.
func (rs *RuleSet) FirstInclude(text string) (matched string, ok bool) {
	for _, r := range rs.Include {
		if m, ok := r.Matcher.Find(text); ok {
			return m, true
		}
	}
	return "", false
}

// AnyExclude reports whether any exclude rule matches text.
func (rs *RuleSet) AnyExclude(text string) bool {
	for _, r := range rs.Exclude {
		if r.Matcher.Matches(text) {
			return true
		}
	}
	return false
}

// Failed reports whether text is in one of the lists but did not compile.
func (rs *RuleSet) Failed(text string) bool {
	for _, f := range rs.Failures {
		if f.Text == text {
			return true
		}
	}
	return false
}
