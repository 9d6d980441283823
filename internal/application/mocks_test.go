package application

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) InsertMessage(ctx context.Context, tx *sql.Tx, msg *domain.Message) error {
	return m.Called(ctx, tx, msg).Error(0)
}
func (m *MockMessageStore) GetMessage(ctx context.Context, tx *sql.Tx, id string) (*domain.Message, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}
func (m *MockMessageStore) ListMessagesByParties(ctx context.Context, senderID, receiverID string) ([]*domain.Message, error) {
	args := m.Called(ctx, senderID, receiverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}
func (m *MockMessageStore) UpdateMessageContent(ctx context.Context, tx *sql.Tx, msg *domain.Message) error {
	return m.Called(ctx, tx, msg).Error(0)
}
func (m *MockMessageStore) DeleteMessage(ctx context.Context, tx *sql.Tx, id string) error {
	return m.Called(ctx, tx, id).Error(0)
}

type MockChatStore struct {
	mock.Mock
}

func (m *MockChatStore) InsertChat(ctx context.Context, tx *sql.Tx, chat *domain.Chat) error {
	return m.Called(ctx, tx, chat).Error(0)
}
func (m *MockChatStore) GetChatByMembership(ctx context.Context, tx *sql.Tx, memberKey string, windowSize int) (*domain.Chat, error) {
	args := m.Called(ctx, tx, memberKey, windowSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}
func (m *MockChatStore) GetChat(ctx context.Context, id string, windowSize int) (*domain.Chat, error) {
	args := m.Called(ctx, id, windowSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}
func (m *MockChatStore) ListChatsForMember(ctx context.Context, memberID string) ([]*domain.Chat, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chat), args.Error(1)
}
func (m *MockChatStore) ChatMembers(ctx context.Context, id string) ([]string, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]string), args.Bool(1), args.Error(2)
}
func (m *MockChatStore) AppendChatMessage(ctx context.Context, tx *sql.Tx, entry *domain.ChatMessage) (bool, error) {
	args := m.Called(ctx, tx, entry)
	return args.Bool(0), args.Error(1)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserDirectory) GetUserByHandle(ctx context.Context, handle string) (*domain.User, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserDirectory) GetProfiles(ctx context.Context, ids []string) (map[string]domain.Profile, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Profile), args.Error(1)
}

type MockOutbox struct {
	mock.Mock
}

func (m *MockOutbox) InsertOutbox(ctx context.Context, tx *sql.Tx, aggregateType, aggregateID, eventType string, payload []byte) error {
	return m.Called(ctx, tx, aggregateType, aggregateID, eventType, payload).Error(0)
}
func (m *MockOutbox) FetchUnpublished(ctx context.Context, tx *sql.Tx, limit int) ([]repository.OutboxEvent, error) {
	args := m.Called(ctx, tx, limit)
	return args.Get(0).([]repository.OutboxEvent), args.Error(1)
}
func (m *MockOutbox) MarkPublished(ctx context.Context, tx *sql.Tx, id int64) error {
	return m.Called(ctx, tx, id).Error(0)
}
func (m *MockOutbox) MarkFailed(ctx context.Context, tx *sql.Tx, id int64, reason string) error {
	return m.Called(ctx, tx, id, reason).Error(0)
}
func (m *MockOutbox) MoveToDLQ(ctx context.Context, tx *sql.Tx, e repository.OutboxEvent, reason string) error {
	return m.Called(ctx, tx, e, reason).Error(0)
}

// MockTransactor runs fn without a real transaction.
type MockTransactor struct{}

func (m *MockTransactor) WithTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	return fn(ctx, nil)
}

type fixture struct {
	svc      *Service
	messages *MockMessageStore
	chats    *MockChatStore
	users    *MockUserDirectory
	outbox   *MockOutbox
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		messages: new(MockMessageStore),
		chats:    new(MockChatStore),
		users:    new(MockUserDirectory),
		outbox:   new(MockOutbox),
		now:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = New(Stores{
		Messages: f.messages,
		Chats:    f.chats,
		Users:    f.users,
		Outbox:   f.outbox,
	}, &MockTransactor{}, nil, 100)
	f.svc.now = func() time.Time { return f.now }

	seq := 0
	f.svc.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}

	t.Cleanup(func() {
		f.messages.AssertExpectations(t)
		f.chats.AssertExpectations(t)
		f.users.AssertExpectations(t)
		f.outbox.AssertExpectations(t)
	})
	return f
}

var (
	alice = domain.Caller{ID: "u-alice", Handle: "alice", Profile: domain.Profile{FirstName: "Alice", LastName: "A"}}
	bob   = domain.Caller{ID: "u-bob", Handle: "bob", Profile: domain.Profile{FirstName: "Bob", LastName: "B"}}
	carol = domain.Caller{ID: "u-carol", Handle: "carol", Profile: domain.Profile{FirstName: "Carol"}}
)

func userOf(c domain.Caller) *domain.User {
	return &domain.User{ID: c.ID, Handle: c.Handle, Profile: c.Profile}
}
