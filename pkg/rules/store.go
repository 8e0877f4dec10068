// Copyright 2024-2026 Aiku AI

package rules

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ErrPersist wraps errors from the Persister. The live rule set has already
// been replaced when it is returned.
var ErrPersist = errors.New("failed to persist keywords")

// Persister writes both rule text lists to durable storage.
type Persister interface {
	SaveKeywords(include, exclude []string) error
}

// Store holds the current RuleSet. Mutations are serialized by mu and publish
// a brand-new RuleSet with an atomic swap; Snapshot never takes mu.
type Store struct {
	mu        sync.Mutex
	current   atomic.Pointer[RuleSet]
	persister Persister
	log       zerolog.Logger
}

// NewStore compiles the initial lists. Compile failures are logged and the
// failed texts are kept in the lists but not in the active rules.
func NewStore(include, exclude []string, persister Persister, log zerolog.Logger) *Store {
	s := &Store{
		persister: persister,
		log:       log.With().Str("component", "rule_store").Logger(),
	}
	rs := buildRuleSet(slices.Clone(include), slices.Clone(exclude))
	s.logFailures(rs)
	s.current.Store(rs)
	return s
}

// Snapshot returns the current RuleSet. The result must be treated as
// read-only.
func (s *Store) Snapshot() *RuleSet {
	return s.current.Load()
}

func (s *Store) AddInclude(text string) error {
	_, err := s.mutate(Include, appendText(text))
	return err
}

// RemoveInclude removes the first occurrence of text. found is false, and
// nothing changes, when text is not in the list.
func (s *Store) RemoveInclude(text string) (found bool, err error) {
	return s.mutate(Include, removeText(text))
}

func (s *Store) AddExclude(text string) error {
	_, err := s.mutate(Exclude, appendText(text))
	return err
}

// RemoveExclude removes the first occurrence of text from the exclude list.
func (s *Store) RemoveExclude(text string) (found bool, err error) {
	return s.mutate(Exclude, removeText(text))
}

type listEdit func(list []string) ([]string, bool)

func appendText(text string) listEdit {
	return func(list []string) ([]string, bool) {
		return append(list, text), true
	}
}

func removeText(text string) listEdit {
	return func(list []string) ([]string, bool) {
		idx := slices.Index(list, text)
		if idx < 0 {
			return list, false
		}
		return slices.Delete(list, idx, idx+1), true
	}
}

func (s *Store) mutate(kind Kind, edit listEdit) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	include, exclude := cur.IncludeTexts(), cur.ExcludeTexts()
	var changed bool
	if kind == Include {
		include, changed = edit(include)
	} else {
		exclude, changed = edit(exclude)
	}
	if !changed {
		return false, nil
	}

	var persistErr error
	if s.persister != nil {
		if err := s.persister.SaveKeywords(include, exclude); err != nil {
			s.log.Error().Err(err).Str("kind", kind.String()).
				Msg("Failed to save keywords, live rules and config file now differ")
			persistErr = fmt.Errorf("%w: %w", ErrPersist, err)
		}
	}

	next := buildRuleSet(include, exclude)
	s.logFailures(next)
	s.current.Store(next)

	s.log.Info().
		Str("kind", kind.String()).
		Int("include", len(next.Include)).
		Int("exclude", len(next.Exclude)).
		Int("failed", len(next.Failures)).
		Msg("Rules recompiled")
	return true, persistErr
}

func (s *Store) logFailures(rs *RuleSet) {
	for _, f := range rs.Failures {
		s.log.Error().Err(f.Err).Str("pattern", f.Text).Msg("Failed to compile keyword pattern")
	}
}
