package application

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/authz"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/observability"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/projection"
	"go.uber.org/zap"
)

type PostChatMessageCommand struct {
	Caller  domain.Caller
	ChatID  string
	Content string
}

// PostChatMessage appends to a chat log and returns the updated chat.
// Missing chats and foreign chats are both Forbidden.
func (s *Service) PostChatMessage(
	ctx context.Context,
	cmd PostChatMessageCommand,
) (*projection.ChatView, error) {

	if err := domain.ValidateContent("content", cmd.Content).OrNil(); err != nil {
		return nil, err
	}

	members, found, err := s.chats.ChatMembers(ctx, cmd.ChatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat members: %w", err)
	}

	if err := s.decide(ctx, "post_chat_message", cmd.Caller, authz.AppendChatMessage(cmd.Caller, members, found)); err != nil {
		return nil, err
	}

	entry, err := domain.NewChatMessage(s.newID(), cmd.ChatID, cmd.Caller.ID, cmd.Content, s.now())
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		appended, err := s.chats.AppendChatMessage(ctx, tx, entry)
		if err != nil {
			return err
		}
		if !appended {
			// membership is re-checked by the append itself
			observability.AuthzDecisionsTotal.WithLabelValues("post_chat_message_store", "deny_forbidden").Inc()
			return domain.ErrNotMember
		}
		return s.emit(ctx, tx, AggregateChat, entry.ChatID, EventChatMessagePosted, ChatMessageEvent{
			ChatID:    entry.ChatID,
			EntryID:   entry.ID,
			SenderID:  entry.SenderID,
			Content:   entry.Content,
			Position:  entry.Position,
			CreatedAt: entry.CreatedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("chat_message_posted",
		zap.String("chat_id", entry.ChatID),
		zap.String("entry_id", entry.ID),
	)

	chat, err := s.chats.GetChat(ctx, cmd.ChatID, s.windowSize)
	if err != nil {
		return nil, fmt.Errorf("failed to reload chat: %w", err)
	}
	if chat == nil {
		return nil, domain.ErrChatNotFound
	}
	chat.Messages = projection.Window(chat.Messages, s.windowSize)
	return s.view(ctx, cmd.Caller, chat)
}
