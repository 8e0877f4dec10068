// Copyright 2024-2026 Aiku AI

package monitor

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminListKeywords(t *testing.T) {
	t.Parallel()
	store := newTestStore([]string{"foo", "("}, nil)
	srv := httptest.NewServer(NewAdminAPI(store, nil, zerolog.Nop()).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/keywords")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body KeywordsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, KeywordsResponse{
		Keywords: []string{"foo", "("},
		Excludes: []string{},
		Invalid:  []string{"("},
	}, body)
}

func TestAdminListKeywordsMethodNotAllowed(t *testing.T) {
	t.Parallel()
	api := NewAdminAPI(newTestStore(nil, nil), nil, zerolog.Nop())
	rec := httptest.NewRecorder()
	api.HandleListKeywords(rec, httptest.NewRequest(http.MethodPost, "/api/keywords", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAdminMetrics(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewPedanticRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)
	metrics.recordOutcome(Trigger("foo"), 0)

	srv := httptest.NewServer(NewAdminAPI(newTestStore(nil, nil), reg, zerolog.Nop()).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `keyword_bot_messages_total{outcome="trigger"} 1`)
}

func TestNilMetricsAreSafe(t *testing.T) {
	t.Parallel()
	m, err := NewMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.NotPanics(t, func() {
		m.recordOutcome(Skip(SkipEmpty), 0)
		m.recordCommand("/x", "ok")
		m.recordDelivery("telegram:1", true)
		m.recordRules(nil)
		m.recordPanic(streamCommands)
	})
}
