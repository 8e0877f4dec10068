// Copyright 2024-2026 Aiku AI

package monitor

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// KeywordsResponse is the body of GET /api/keywords.
type KeywordsResponse struct {
	Keywords []string `json:"keywords"`
	Excludes []string `json:"excludes"`
	Invalid  []string `json:"invalid"`
}

// AdminAPI serves /metrics and a read-only view of the rules. It never
// mutates the rule store; changes go through bot commands only.
type AdminAPI struct {
	store    RuleStore
	gatherer prometheus.Gatherer
	log      zerolog.Logger
}

func NewAdminAPI(store RuleStore, gatherer prometheus.Gatherer, log zerolog.Logger) *AdminAPI {
	return &AdminAPI{
		store:    store,
		gatherer: gatherer,
		log:      log.With().Str("component", "admin_api").Logger(),
	}
}

// Handler returns the HTTP routes of the admin API.
func (a *AdminAPI) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/keywords", a.HandleListKeywords)
	if a.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// Server wraps Handler in an http.Server listening on addr.
func (a *AdminAPI) Server(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      a.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// HandleListKeywords is the handler for GET /api/keywords.
func (a *AdminAPI) HandleListKeywords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rs := a.store.Snapshot()
	resp := KeywordsResponse{
		Keywords: rs.IncludeTexts(),
		Excludes: rs.ExcludeTexts(),
		Invalid:  []string{},
	}
	for _, f := range rs.Failures {
		resp.Invalid = append(resp.Invalid, f.Text)
	}
	if resp.Keywords == nil {
		resp.Keywords = []string{}
	}
	if resp.Excludes == nil {
		resp.Excludes = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		a.log.Warn().Err(err).Msg("Failed to write keywords response")
	}
}
