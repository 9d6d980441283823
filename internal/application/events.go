package application

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	AggregateMessage = "message"
	AggregateChat    = "chat"

	EventMessageCreated    = "MESSAGE_CREATED"
	EventMessageEdited     = "MESSAGE_EDITED"
	EventMessageDeleted    = "MESSAGE_DELETED"
	EventChatCreated       = "CHAT_CREATED"
	EventChatMessagePosted = "CHAT_MESSAGE_POSTED"
)

const schemaVersion = 1

// EventEnvelope is the JSON document stored in the outbox and published as-is.
type EventEnvelope struct {
	EventType     string          `json:"eventType"`
	SchemaVersion int             `json:"schemaVersion"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Payload       json.RawMessage `json:"payload"`
}

type MessageEvent struct {
	MessageID  string    `json:"messageId"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content,omitempty"`
	Status     string    `json:"status,omitempty"`
	At         time.Time `json:"at"`
}

type ChatEvent struct {
	ChatID  string   `json:"chatId"`
	Members []string `json:"members"`
}

type ChatMessageEvent struct {
	ChatID    string    `json:"chatId"`
	EntryID   string    `json:"entryId"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

func messageEvent(m *domain.Message, at time.Time) MessageEvent {
	return MessageEvent{
		MessageID:  m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Status:     string(m.Status),
		At:         at,
	}
}

func (s *Service) emit(
	ctx context.Context,
	tx *sql.Tx,
	aggregateType, aggregateID, eventType string,
	payload interface{},
) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	env, err := json.Marshal(EventEnvelope{
		EventType:     eventType,
		SchemaVersion: schemaVersion,
		OccurredAt:    s.now(),
		Payload:       body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	if err := s.outbox.InsertOutbox(ctx, tx, aggregateType, aggregateID, eventType, env); err != nil {
		return fmt.Errorf("failed to save outbox event: %w", err)
	}
	return nil
}

func requestID(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}
