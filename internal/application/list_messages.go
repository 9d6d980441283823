package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/authz"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
)

type ListMessagesQuery struct {
	Caller     domain.Caller
	SenderID   string
	ReceiverID string
}

// ListMessages returns the messages SenderID sent to ReceiverID, oldest
// first. Only the sender may list them, and a foreign sender is Forbidden
// whatever else the query holds. An empty result is NotFound.
func (s *Service) ListMessages(
	ctx context.Context,
	q ListMessagesQuery,
) ([]*domain.Message, error) {

	if err := s.decide(ctx, "list_messages", q.Caller, authz.ListMessages(q.Caller, q.SenderID)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(q.ReceiverID) == "" {
		return nil, domain.NewValidationError("receiverId", "query", q.ReceiverID, "receiverId must not be empty")
	}

	messages, err := s.messages.ListMessagesByParties(ctx, q.SenderID, q.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	if err := s.decide(ctx, "list_messages_result", q.Caller, authz.ListMessagesResult(len(messages))); err != nil {
		return nil, err
	}
	return messages, nil
}
