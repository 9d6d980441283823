package application

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/authz"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"go.uber.org/zap"
)

type CreateMessageCommand struct {
	Caller     domain.Caller
	ReceiverID string
	Content    string
}

// CreateMessage stores a direct message. The sender is always the caller.
func (s *Service) CreateMessage(
	ctx context.Context,
	cmd CreateMessageCommand,
) (*domain.Message, error) {

	if err := domain.ValidateMessageInput(cmd.ReceiverID, cmd.Content); err != nil {
		return nil, err
	}

	if err := s.decide(ctx, "create_message", cmd.Caller, authz.CreateMessage(cmd.Caller, cmd.Content)); err != nil {
		return nil, err
	}

	msg, err := domain.NewMessage(s.newID(), cmd.Caller.ID, cmd.ReceiverID, cmd.Content, s.now())
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.messages.InsertMessage(ctx, tx, msg); err != nil {
			return fmt.Errorf("failed to save message: %w", err)
		}
		return s.emit(ctx, tx, AggregateMessage, msg.ID, EventMessageCreated, messageEvent(msg, msg.CreatedAt))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("message_created",
		zap.String("message_id", msg.ID),
		zap.String("sender_id", msg.SenderID),
	)
	return msg, nil
}
