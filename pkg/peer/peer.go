// Copyright 2024-2026 Aiku AI

// Package peer converts between Telegram's marked chat identifiers, as used on
// the wire, and the canonical identifiers shown in clients and used in the
// config file.
//
// A marked id is positive for users, -id for basic groups and
// -(1000000000000+id) for channels and supergroups.
package peer

import "strconv"

// Kind is the type of chat an identifier refers to.
type Kind int

const (
	User Kind = iota
	Chat
	Channel
)

func (k Kind) String() string {
	switch k {
	case User:
		return "user"
	case Chat:
		return "chat"
	case Channel:
		return "channel"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

const channelOffset int64 = 1_000_000_000_000

// Resolve converts a marked id to its canonical id and kind.
func Resolve(marked int64) (int64, Kind) {
	if marked >= 0 {
		return marked, User
	}
	id := -marked
	if id > channelOffset {
		return id - channelOffset, Channel
	}
	return id, Chat
}

// Canonical returns only the canonical part of Resolve.
func Canonical(marked int64) int64 {
	id, _ := Resolve(marked)
	return id
}

// Mark converts a canonical id of the given kind back to a marked id.
func Mark(id int64, kind Kind) int64 {
	switch kind {
	case Chat:
		return -id
	case Channel:
		return -(channelOffset + id)
	default:
		return id
	}
}
