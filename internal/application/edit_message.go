package application

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/authz"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"go.uber.org/zap"
)

type EditMessageCommand struct {
	Caller    domain.Caller
	MessageID string
	Content   string
}

func (s *Service) EditMessage(
	ctx context.Context,
	cmd EditMessageCommand,
) (*domain.Message, error) {

	if err := domain.ValidateContent("content", cmd.Content).OrNil(); err != nil {
		return nil, err
	}

	var result *domain.Message

	err := s.tx.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {

		msg, err := s.messages.GetMessage(ctx, tx, cmd.MessageID)
		if err != nil {
			return fmt.Errorf("failed to load message: %w", err)
		}

		if err := s.decide(ctx, "edit_message", cmd.Caller, authz.EditMessage(cmd.Caller, msg, cmd.Content)); err != nil {
			return err
		}

		if err := msg.Edit(cmd.Content, s.now()); err != nil {
			return err
		}

		if err := s.messages.UpdateMessageContent(ctx, tx, msg); err != nil {
			return fmt.Errorf("failed to update message: %w", err)
		}

		if err := s.emit(ctx, tx, AggregateMessage, msg.ID, EventMessageEdited, messageEvent(msg, msg.UpdatedAt)); err != nil {
			return err
		}

		result = msg
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("message_edited", zap.String("message_id", result.ID))
	return result, nil
}
