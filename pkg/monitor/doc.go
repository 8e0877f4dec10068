// Copyright 2024-2026 Remi Philippe
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package monitor implements the keyword watch: it classifies observed
// messages against the live rule set, forwards matches to the result chats
// and handles the bot commands that edit the rules.
//
// # Core Types
//
// [Bot] supervises the two event streams delivered by a [Transport]. Every
// event is handled on its own goroutine, bounded per stream; a panic drops
// only the event that caused it.
//
// [Registry] answers role questions about chat ids (command sender, result
// sink, blocked source). Ids are compared in canonical form, see package peer.
//
// [Router] authorizes and executes commands against a [RuleStore].
//
// [Dispatcher] fans one notification out to every result chat and [Sink]
// concurrently.
//
// # Loop Prevention
//
// Messages from command chats and result chats are never classified, and
// commands that arrive through a result group or channel are never answered.
// Without these checks a notification posted to a result chat would be
// observed again and re-forwarded indefinitely. These checks run before any
// pattern is evaluated and must not be reordered.
//
// # Admin API
//
// [AdminAPI] optionally serves /metrics and a read-only GET /api/keywords.
package monitor
