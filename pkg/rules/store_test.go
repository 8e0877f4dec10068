// Copyright 2024-2026 Aiku AI

package rules

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPersister records every save and can be told to fail.
type mockPersister struct {
	mu    sync.Mutex
	saves [][2][]string
	err   error
}

func (m *mockPersister) SaveKeywords(include, exclude []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, [2][]string{slices.Clone(include), slices.Clone(exclude)})
	return m.err
}

func (m *mockPersister) Saves() [][2][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.saves)
}

func newTestStore(include, exclude []string) (*Store, *mockPersister) {
	p := &mockPersister{}
	return NewStore(include, exclude, p, zerolog.Nop()), p
}

func TestStoreInitialSnapshot(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore([]string{"foo", "bad(", "bar"}, []string{"spam"})
	rs := s.Snapshot()

	assert.Equal(t, []string{"foo", "bad(", "bar"}, rs.IncludeTexts())
	require.Len(t, rs.Include, 2)
	assert.Equal(t, "foo", rs.Include[0].Text)
	assert.Equal(t, "bar", rs.Include[1].Text)
	assert.Equal(t, Include, rs.Include[0].Kind)
	require.Len(t, rs.Exclude, 1)
	assert.Equal(t, Exclude, rs.Exclude[0].Kind)
	require.Len(t, rs.Failures, 1)
	assert.True(t, rs.Failed("bad("))
}

func TestStoreAddInclude(t *testing.T) {
	t.Parallel()
	s, p := newTestStore([]string{"foo"}, nil)
	before := s.Snapshot()

	require.NoError(t, s.AddInclude("bar"))

	after := s.Snapshot()
	assert.NotSame(t, before, after)
	assert.Equal(t, []string{"foo"}, before.IncludeTexts(), "old snapshot must not change")
	assert.Equal(t, []string{"foo", "bar"}, after.IncludeTexts())
	m, ok := after.FirstInclude("a bar b")
	require.True(t, ok)
	assert.Equal(t, "bar", m)

	saves := p.Saves()
	require.Len(t, saves, 1)
	assert.Equal(t, []string{"foo", "bar"}, saves[0][0])
}

func TestStoreAddDuplicate(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore([]string{"foo"}, nil)
	require.NoError(t, s.AddInclude("foo"))
	assert.Equal(t, []string{"foo", "foo"}, s.Snapshot().IncludeTexts())

	found, err := s.RemoveInclude("foo")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"foo"}, s.Snapshot().IncludeTexts())
}

func TestStoreRemoveNotFound(t *testing.T) {
	t.Parallel()
	s, p := newTestStore([]string{"foo"}, []string{"spam"})
	before := s.Snapshot()

	found, err := s.RemoveInclude("nope")
	require.NoError(t, err)
	assert.False(t, found)
	found, err = s.RemoveExclude("nope")
	require.NoError(t, err)
	assert.False(t, found)

	assert.Same(t, before, s.Snapshot())
	assert.Empty(t, p.Saves())
}

func TestStoreExcludeLifecycle(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore([]string{"foo"}, nil)
	require.NoError(t, s.AddExclude("/SPAM/i"))
	assert.True(t, s.Snapshot().AnyExclude("foo spam"))

	found, err := s.RemoveExclude("/SPAM/i")
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, s.Snapshot().AnyExclude("foo spam"))
}

func TestStorePersistFailureStillUpdates(t *testing.T) {
	t.Parallel()
	s, p := newTestStore(nil, nil)
	p.err = errors.New("disk full")

	err := s.AddInclude("foo")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersist)
	assert.Equal(t, []string{"foo"}, s.Snapshot().IncludeTexts())
	require.Len(t, s.Snapshot().Include, 1)
}

func TestStoreAddInvalidPattern(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore([]string{"foo"}, nil)
	require.NoError(t, s.AddInclude("bad("))

	rs := s.Snapshot()
	assert.Equal(t, []string{"foo", "bad("}, rs.IncludeTexts())
	assert.Len(t, rs.Include, 1)
	assert.True(t, rs.Failed("bad("))
}

func TestStoreConcurrentMutationsDoNotLoseUpdates(t *testing.T) {
	t.Parallel()
	s, p := newTestStore(nil, nil)

	const n = 50
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.AddInclude(fmt.Sprintf("kw%d", i))
		}()
		go func() {
			defer wg.Done()
			rs := s.Snapshot()
			// A snapshot is always internally consistent.
			_, _ = rs.FirstInclude("kw1")
		}()
	}
	wg.Wait()

	texts := s.Snapshot().IncludeTexts()
	assert.Len(t, texts, n)
	assert.Len(t, s.Snapshot().Include, n)
	assert.Len(t, p.Saves(), n)

	for i := range n {
		assert.Contains(t, texts, fmt.Sprintf("kw%d", i))
	}
}

func TestStoreNilPersister(t *testing.T) {
	t.Parallel()
	s := NewStore(nil, nil, nil, zerolog.Nop())
	require.NoError(t, s.AddInclude("foo"))
	assert.Equal(t, []string{"foo"}, s.Snapshot().IncludeTexts())
}

func TestFirstIncludeOrder(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore([]string{"foo", "foobar"}, nil)
	m, ok := s.Snapshot().FirstInclude("xx foobar xx")
	require.True(t, ok)
	assert.Equal(t, "foo", m)
}
