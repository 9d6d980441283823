package application

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/authz"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"go.uber.org/zap"
)

type DeleteMessageCommand struct {
	Caller    domain.Caller
	MessageID string
}

// DeleteMessage removes a direct message. Deletion is terminal.
func (s *Service) DeleteMessage(
	ctx context.Context,
	cmd DeleteMessageCommand,
) error {

	err := s.tx.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {

		msg, err := s.messages.GetMessage(ctx, tx, cmd.MessageID)
		if err != nil {
			return fmt.Errorf("failed to load message: %w", err)
		}

		if err := s.decide(ctx, "delete_message", cmd.Caller, authz.MutateMessage(cmd.Caller, msg)); err != nil {
			return err
		}

		if err := s.messages.DeleteMessage(ctx, tx, msg.ID); err != nil {
			return fmt.Errorf("failed to delete message: %w", err)
		}

		return s.emit(ctx, tx, AggregateMessage, msg.ID, EventMessageDeleted, MessageEvent{
			MessageID:  msg.ID,
			SenderID:   msg.SenderID,
			ReceiverID: msg.ReceiverID,
			At:         s.now(),
		})
	})
	if err != nil {
		return err
	}

	s.log.Info("message_deleted", zap.String("message_id", cmd.MessageID))
	return nil
}
