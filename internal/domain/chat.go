package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const MinChatMembers = 2

// Chat Invariants:
// 1. Membership: at least two distinct users, fixed at creation.
// 2. Log: append-only, totally ordered by Position.
// 3. Uniqueness: one chat per normalized member set (MemberKey).
type Chat struct {
	ID        string
	Members   []string
	Messages  []ChatMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatMessage is an entry of a chat log. Entries are immutable once appended.
type ChatMessage struct {
	ID        string
	ChatID    string
	SenderID  string
	Content   string
	Position  int64
	CreatedAt time.Time
}

func NewChat(id string, members []string, now time.Time) (*Chat, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	normalized := NormalizeMembers(members)
	if len(normalized) < MinChatMembers {
		return nil, ErrInvalidMembership
	}
	return &Chat{
		ID:        id,
		Members:   normalized,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func NewChatMessage(id, chatID, senderID, content string, now time.Time) (*ChatMessage, error) {
	if id == "" || chatID == "" || senderID == "" {
		return nil, ErrInvalidMessage
	}
	if err := ValidateContent("content", content).OrNil(); err != nil {
		return nil, err
	}
	return &ChatMessage{
		ID:        id,
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   NormalizeContent(content),
		CreatedAt: now,
	}, nil
}

func (c *Chat) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// LastMessage returns the most recent log entry, if any.
func (c *Chat) LastMessage() (ChatMessage, bool) {
	if len(c.Messages) == 0 {
		return ChatMessage{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// LastActivity is the time of the latest entry, or creation time for an empty log.
func (c *Chat) LastActivity() time.Time {
	if last, ok := c.LastMessage(); ok {
		return last.CreatedAt
	}
	return c.CreatedAt
}

// NormalizeMembers sorts and de-duplicates member ids, dropping blanks.
func NormalizeMembers(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MemberKey is the unordered identity of a member set.
func MemberKey(ids []string) string {
	return "members:" + strings.Join(NormalizeMembers(ids), ":")
}

// SeedContent is the system line written as the first entry of a new chat.
func SeedContent(creator Profile, added []Profile) string {
	names := make([]string, 0, len(added))
	for _, p := range added {
		names = append(names, p.FirstName)
	}
	return fmt.Sprintf("%s added %s to this chat room.", creator.FirstName, joinNames(names))
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
