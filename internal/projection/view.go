package projection

import (
	"time"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
)

// MemberProfile is the minimal public profile attached to chats.
type MemberProfile struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar,omitempty"`
}

type EntryView struct {
	ID        string        `json:"id"`
	Sender    MemberProfile `json:"sender"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
	IsSender  bool          `json:"isSender"`
}

type ChatView struct {
	ID        string          `json:"id"`
	Users     []MemberProfile `json:"users"`
	Messages  []EntryView     `json:"messages"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// View renders chat for caller. isSender is computed here and never stored.
// Ids missing from profiles render with the id only.
func View(caller domain.Caller, chat *domain.Chat, profiles map[string]domain.Profile) *ChatView {
	v := &ChatView{
		ID:        chat.ID,
		Users:     make([]MemberProfile, 0, len(chat.Members)),
		Messages:  make([]EntryView, 0, len(chat.Messages)),
		CreatedAt: chat.CreatedAt,
		UpdatedAt: chat.UpdatedAt,
	}
	for _, id := range chat.Members {
		v.Users = append(v.Users, memberProfile(id, profiles))
	}
	for _, m := range chat.Messages {
		v.Messages = append(v.Messages, EntryView{
			ID:        m.ID,
			Sender:    memberProfile(m.SenderID, profiles),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			IsSender:  m.SenderID == caller.ID,
		})
	}
	return v
}

// ProfileIDs collects every user id View needs a profile for.
func ProfileIDs(chats ...*domain.Chat) []string {
	ids := make([]string, 0)
	for _, c := range chats {
		ids = append(ids, c.Members...)
		for _, m := range c.Messages {
			ids = append(ids, m.SenderID)
		}
	}
	return domain.NormalizeMembers(ids)
}

func memberProfile(id string, profiles map[string]domain.Profile) MemberProfile {
	p := profiles[id]
	return MemberProfile{
		ID:        id,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Avatar:    p.Avatar,
	}
}
