package authz

import (
	"strings"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
)

const editUnchangedMsg = "Edited content must differ from the previous content"

func CreateMessage(caller domain.Caller, content string) Decision {
	if caller.IsZero() {
		return deny(Forbidden, domain.ErrUnauthenticated)
	}
	if err := domain.ValidateContent("content", content).OrNil(); err != nil {
		return deny(Invalid, err)
	}
	return allow()
}

// ListMessages only lets callers list conversations they sent. It runs
// before any store access.
func ListMessages(caller domain.Caller, senderID string) Decision {
	if caller.IsZero() {
		return deny(Forbidden, domain.ErrUnauthenticated)
	}
	if senderID != caller.ID {
		return deny(Forbidden, domain.ErrSenderMismatch)
	}
	return allow()
}

// ListMessagesResult turns an empty result into NotFound.
func ListMessagesResult(n int) Decision {
	if n == 0 {
		return deny(NotFound, domain.ErrNoMessages)
	}
	return allow()
}

// MutateMessage guards edit and delete. Existence is checked before
// ownership so a missing message is never reported as forbidden.
func MutateMessage(caller domain.Caller, msg *domain.Message) Decision {
	if msg == nil {
		return deny(NotFound, domain.ErrMessageNotFound)
	}
	if caller.IsZero() || msg.SenderID != caller.ID {
		return deny(Forbidden, domain.ErrNotSender)
	}
	return allow()
}

func EditMessage(caller domain.Caller, msg *domain.Message, content string) Decision {
	if d := MutateMessage(caller, msg); !d.Allowed() {
		return d
	}
	if domain.NormalizeContent(content) == msg.Content {
		return deny(Invalid, domain.NewValidationError("content", "body", content, editUnchangedMsg))
	}
	return allow()
}

// CreateChat rejects empty requests and chats with oneself before any
// handle is resolved.
func CreateChat(caller domain.Caller, handles []string) Decision {
	if caller.IsZero() {
		return deny(Forbidden, domain.ErrUnauthenticated)
	}
	requested := NormalizeHandles(handles)
	if len(requested) == 0 {
		return deny(Invalid, domain.NewValidationError("username", "body", "", "Username must not be empty"))
	}
	for _, h := range requested {
		if h == caller.Handle {
			return deny(Invalid, domain.ErrSelfChat)
		}
	}
	return allow()
}

// CreateChatTargets checks that every requested handle resolved to a user.
func CreateChatTargets(requested []string, resolved []domain.User) Decision {
	found := make(map[string]struct{}, len(resolved))
	for _, u := range resolved {
		found[u.Handle] = struct{}{}
	}
	for _, h := range NormalizeHandles(requested) {
		if _, ok := found[h]; !ok {
			return deny(NotFound, domain.ErrUserNotFound)
		}
	}
	return allow()
}

func ReadChat(caller domain.Caller, chat *domain.Chat) Decision {
	if chat == nil {
		return deny(NotFound, domain.ErrChatNotFound)
	}
	if caller.IsZero() || !chat.HasMember(caller.ID) {
		return deny(Forbidden, domain.ErrNotMember)
	}
	return allow()
}

// ListChats is scoped by the store query itself.
func ListChats(caller domain.Caller) Decision {
	if caller.IsZero() {
		return deny(Forbidden, domain.ErrUnauthenticated)
	}
	return allow()
}

// AppendChatMessage answers Forbidden both for a missing chat and for a
// non-member, so posting never reveals whether a chat id exists.
func AppendChatMessage(caller domain.Caller, members []string, found bool) Decision {
	if !found || caller.IsZero() {
		return deny(Forbidden, domain.ErrNotMember)
	}
	for _, m := range members {
		if m == caller.ID {
			return allow()
		}
	}
	return deny(Forbidden, domain.ErrNotMember)
}

// NormalizeHandles trims and de-duplicates requested handles, keeping order.
func NormalizeHandles(handles []string) []string {
	out := make([]string, 0, len(handles))
	seen := make(map[string]struct{}, len(handles))
	for _, h := range handles {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}

