package application

import (
	"context"
	"fmt"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/authz"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/projection"
)

type GetChatQuery struct {
	Caller domain.Caller
	ChatID string
}

// GetChat returns a chat with the latest window of its log.
func (s *Service) GetChat(
	ctx context.Context,
	q GetChatQuery,
) (*projection.ChatView, error) {

	chat, err := s.chats.GetChat(ctx, q.ChatID, s.windowSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat: %w", err)
	}

	if err := s.decide(ctx, "get_chat", q.Caller, authz.ReadChat(q.Caller, chat)); err != nil {
		return nil, err
	}

	chat.Messages = projection.Window(chat.Messages, s.windowSize)
	return s.view(ctx, q.Caller, chat)
}
