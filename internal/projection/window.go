// Package projection shapes chat logs into what a caller is allowed to
// see: a bounded window of the log, per-chat previews and response views.
package projection

import (
	"sort"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
)

const DefaultWindowSize = 100

// Window returns the last n entries of log in chronological order.
// log is assumed ordered by position; it is never modified.
func Window(log []domain.ChatMessage, n int) []domain.ChatMessage {
	if n <= 0 {
		n = DefaultWindowSize
	}
	start := 0
	if len(log) > n {
		start = len(log) - n
	}
	out := make([]domain.ChatMessage, len(log)-start)
	copy(out, log[start:])
	return out
}

// Latest is the one-entry preview used by chat listings.
func Latest(log []domain.ChatMessage) []domain.ChatMessage {
	return Window(log, 1)
}

// SortByRecency orders chats by their latest entry, newest first. Chats
// without entries use their creation time. Ties fall back to id.
func SortByRecency(chats []*domain.Chat) []*domain.Chat {
	out := make([]*domain.Chat, len(chats))
	copy(out, chats)
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := out[i].LastActivity(), out[j].LastActivity()
		if !ai.Equal(aj) {
			return ai.After(aj)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
