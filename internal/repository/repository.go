package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
)

// Lookups return (nil, nil) when the row does not exist. A nil tx reads
// outside any transaction.

type MessageStore interface {
	InsertMessage(ctx context.Context, tx *sql.Tx, msg *domain.Message) error
	GetMessage(ctx context.Context, tx *sql.Tx, id string) (*domain.Message, error)
	ListMessagesByParties(ctx context.Context, senderID, receiverID string) ([]*domain.Message, error)
	UpdateMessageContent(ctx context.Context, tx *sql.Tx, msg *domain.Message) error
	DeleteMessage(ctx context.Context, tx *sql.Tx, id string) error
}

type ChatStore interface {
	// InsertChat stores the chat, its members and its initial log.
	// Returns domain.ErrChatExists when the member set already has a chat.
	InsertChat(ctx context.Context, tx *sql.Tx, chat *domain.Chat) error
	GetChatByMembership(ctx context.Context, tx *sql.Tx, memberKey string, windowSize int) (*domain.Chat, error)
	// GetChat loads the chat with at most windowSize of its latest entries.
	GetChat(ctx context.Context, id string, windowSize int) (*domain.Chat, error)
	// ListChatsForMember loads every chat memberID belongs to, each with
	// its latest entry only.
	ListChatsForMember(ctx context.Context, memberID string) ([]*domain.Chat, error)
	// ChatMembers reports the member ids of a chat and whether it exists.
	ChatMembers(ctx context.Context, id string) ([]string, bool, error)
	// AppendChatMessage appends entry only if entry.SenderID is a member of
	// entry.ChatID, in a single statement. It reports whether the append
	// happened and fills entry.Position on success.
	AppendChatMessage(ctx context.Context, tx *sql.Tx, entry *domain.ChatMessage) (bool, error)
}

// UserDirectory is a read-only view of users owned by the identity service.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByHandle(ctx context.Context, handle string) (*domain.User, error)
	GetProfiles(ctx context.Context, ids []string) (map[string]domain.Profile, error)
}

type OutboxEvent struct {
	ID            int64
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
	RetryCount    int
}

type OutboxStore interface {
	InsertOutbox(ctx context.Context, tx *sql.Tx, aggregateType, aggregateID, eventType string, payload []byte) error
	// FetchUnpublished locks up to limit pending events for the duration of tx.
	FetchUnpublished(ctx context.Context, tx *sql.Tx, limit int) ([]OutboxEvent, error)
	MarkPublished(ctx context.Context, tx *sql.Tx, id int64) error
	MarkFailed(ctx context.Context, tx *sql.Tx, id int64, reason string) error
	MoveToDLQ(ctx context.Context, tx *sql.Tx, e OutboxEvent, reason string) error
}
