package application

import (
	"context"
	"fmt"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/authz"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/projection"
)

type ListChatsQuery struct {
	Caller domain.Caller
}

// ListChats returns every chat of the caller with a one-entry preview,
// most recently active first. No chats is an empty list, not an error.
func (s *Service) ListChats(
	ctx context.Context,
	q ListChatsQuery,
) ([]*projection.ChatView, error) {

	if err := s.decide(ctx, "list_chats", q.Caller, authz.ListChats(q.Caller)); err != nil {
		return nil, err
	}

	chats, err := s.chats.ListChatsForMember(ctx, q.Caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	for _, c := range chats {
		c.Messages = projection.Latest(c.Messages)
	}
	chats = projection.SortByRecency(chats)

	views := make([]*projection.ChatView, 0, len(chats))
	if len(chats) == 0 {
		return views, nil
	}

	profiles, err := s.users.GetProfiles(ctx, projection.ProfileIDs(chats...))
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	for _, c := range chats {
		views = append(views, projection.View(q.Caller, c, profiles))
	}
	return views, nil
}
