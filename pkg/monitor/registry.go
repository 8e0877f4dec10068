// Copyright 2024-2026 Aiku AI

package monitor

import (
	"slices"

	"github.com/aiku/telegram-keyword-bot/pkg/config"
	"github.com/aiku/telegram-keyword-bot/pkg/peer"
)

// Registry classifies chat identifiers against the configured roles. It is
// built once from the config and never changes.
//
// Configured ids may be given in canonical or marked form; membership is
// always checked on the canonical id.
type Registry struct {
	commandSenders map[int64]struct{}
	resultSinks    map[int64]struct{}
	blocked        map[int64]struct{}
	sinks          []int64

	sourceFilter bool
	blockBots    bool
}

func NewRegistry(data config.DataConfig) *Registry {
	return &Registry{
		commandSenders: idSet(data.CommandIDList),
		resultSinks:    idSet(data.ResultIDList),
		blocked:        idSet(data.SourceFilterBlockList),
		sinks:          slices.Clone(data.ResultIDList),
		sourceFilter:   data.SourceFilter,
		blockBots:      data.BlockBotMsg,
	}
}

func idSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[peer.Canonical(id)] = struct{}{}
	}
	return set
}

// IsBlocked is always false while the source filter is disabled.
func (r *Registry) IsBlocked(id int64) bool {
	if !r.sourceFilter {
		return false
	}
	_, ok := r.blocked[id]
	return ok
}

func (r *Registry) IsCommandSender(id int64) bool {
	_, ok := r.commandSenders[id]
	return ok
}

func (r *Registry) IsResultSink(id int64) bool {
	_, ok := r.resultSinks[id]
	return ok
}

// BlockBotMessages reports whether messages from bot accounts are ignored.
func (r *Registry) BlockBotMessages() bool {
	return r.blockBots
}

// ResultSinks returns the notification targets as written in the config.
func (r *Registry) ResultSinks() []int64 {
	return slices.Clone(r.sinks)
}
