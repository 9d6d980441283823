package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/authz"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/projection"
	"go.uber.org/zap"
)

type CreateChatCommand struct {
	Caller  domain.Caller
	Handles []string
}

// CreateChat opens a chat between the caller and the users behind Handles.
// It is idempotent: a member set that already has a chat gets that chat back.
func (s *Service) CreateChat(
	ctx context.Context,
	cmd CreateChatCommand,
) (*projection.ChatView, error) {

	if err := s.decide(ctx, "create_chat", cmd.Caller, authz.CreateChat(cmd.Caller, cmd.Handles)); err != nil {
		return nil, err
	}

	handles := authz.NormalizeHandles(cmd.Handles)
	resolved := make([]domain.User, 0, len(handles))
	for _, h := range handles {
		u, err := s.users.GetUserByHandle(ctx, h)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve handle: %w", err)
		}
		if u != nil {
			resolved = append(resolved, *u)
		}
	}

	if err := s.decide(ctx, "create_chat_targets", cmd.Caller, authz.CreateChatTargets(handles, resolved)); err != nil {
		return nil, err
	}

	ids := []string{cmd.Caller.ID}
	added := make([]domain.Profile, 0, len(resolved))
	for _, u := range resolved {
		ids = append(ids, u.ID)
		added = append(added, u.Profile)
	}
	key := domain.MemberKey(ids)

	existing, err := s.chats.GetChatByMembership(ctx, nil, key, s.windowSize)
	if err != nil {
		return nil, fmt.Errorf("failed to look up chat: %w", err)
	}
	if existing != nil {
		return s.view(ctx, cmd.Caller, existing)
	}

	now := s.now()
	chat, err := domain.NewChat(s.newID(), ids, now)
	if err != nil {
		return nil, err
	}
	seed, err := domain.NewChatMessage(s.newID(), chat.ID, cmd.Caller.ID, domain.SeedContent(cmd.Caller.Profile, added), now)
	if err != nil {
		return nil, err
	}
	chat.Messages = []domain.ChatMessage{*seed}

	err = s.tx.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.chats.InsertChat(ctx, tx, chat); err != nil {
			return err
		}
		return s.emit(ctx, tx, AggregateChat, chat.ID, EventChatCreated, ChatEvent{
			ChatID:  chat.ID,
			Members: chat.Members,
		})
	})

	// Lost a race with a concurrent create for the same members.
	if errors.Is(err, domain.ErrChatExists) {
		existing, rerr := s.chats.GetChatByMembership(ctx, nil, key, s.windowSize)
		if rerr != nil || existing == nil {
			return nil, domain.ErrChatExists
		}
		return s.view(ctx, cmd.Caller, existing)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	s.log.Info("chat_created",
		zap.String("chat_id", chat.ID),
		zap.Int("members", len(chat.Members)),
	)
	return s.view(ctx, cmd.Caller, chat)
}

func (s *Service) view(ctx context.Context, caller domain.Caller, chat *domain.Chat) (*projection.ChatView, error) {
	profiles, err := s.users.GetProfiles(ctx, projection.ProfileIDs(chat))
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	return projection.View(caller, chat, profiles), nil
}
