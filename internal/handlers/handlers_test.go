package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/application"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/middleware"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/projection"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMessageService struct{ mock.Mock }

func (m *MockMessageService) CreateMessage(ctx context.Context, cmd application.CreateMessageCommand) (*domain.Message, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageService) ListMessages(ctx context.Context, q application.ListMessagesQuery) ([]*domain.Message, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *MockMessageService) EditMessage(ctx context.Context, cmd application.EditMessageCommand) (*domain.Message, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageService) DeleteMessage(ctx context.Context, cmd application.DeleteMessageCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockChatService struct{ mock.Mock }

func (m *MockChatService) CreateChat(ctx context.Context, cmd application.CreateChatCommand) (*projection.ChatView, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*projection.ChatView), args.Error(1)
}

func (m *MockChatService) GetChat(ctx context.Context, q application.GetChatQuery) (*projection.ChatView, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*projection.ChatView), args.Error(1)
}

func (m *MockChatService) ListChats(ctx context.Context, q application.ListChatsQuery) ([]*projection.ChatView, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*projection.ChatView), args.Error(1)
}

func (m *MockChatService) PostChatMessage(ctx context.Context, cmd application.PostChatMessageCommand) (*projection.ChatView, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*projection.ChatView), args.Error(1)
}

var alice = domain.Caller{ID: "u1", Handle: "alice", Profile: domain.Profile{FirstName: "Alice"}}

// serve routes req through a chi mux so URL params resolve, with alice
// already authenticated.
func serve(method, pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req.WithContext(middleware.WithCaller(req.Context(), alice)))
	return rec
}

func TestCreateMessage(t *testing.T) {
	svc := new(MockMessageService)
	h := NewMessageHandler(svc)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	svc.On("CreateMessage", mock.Anything, application.CreateMessageCommand{
		Caller: alice, ReceiverID: "u2", Content: "hi",
	}).Return(&domain.Message{
		ID: "m1", SenderID: "u1", ReceiverID: "u2", Content: "hi",
		Status: domain.MessageSent, CreatedAt: now, UpdatedAt: now,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/message", strings.NewReader(`{"receiver":"u2","content":"hi"}`))
	rec := serve(http.MethodPost, "/v1/message", h.CreateMessage, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Message messageDTO `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "m1", body.Message.ID)
	assert.Equal(t, "u1", body.Message.SenderID)
	assert.Equal(t, "sent", body.Message.Status)
	svc.AssertExpectations(t)
}

func TestCreateMessageValidationErrors(t *testing.T) {
	svc := new(MockMessageService)
	h := NewMessageHandler(svc)

	svc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, domain.NewValidationError("content", "body", "", "Content must not be empty"))

	req := httptest.NewRequest(http.MethodPost, "/v1/message", strings.NewReader(`{"receiver":"u2","content":"  "}`))
	rec := serve(http.MethodPost, "/v1/message", h.CreateMessage, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"errors"`)
	assert.Contains(t, rec.Body.String(), "Content must not be empty")
}

func TestListMessages(t *testing.T) {
	t.Run("missing receiver", func(t *testing.T) {
		svc := new(MockMessageService)
		h := NewMessageHandler(svc)
		svc.On("ListMessages", mock.Anything, application.ListMessagesQuery{
			Caller: alice, SenderID: "u1", ReceiverID: "",
		}).Return(nil, domain.NewValidationError("receiverId", "query", "", "receiverId must not be empty"))

		req := httptest.NewRequest(http.MethodGet, "/v1/messages?senderId=u1", nil)
		rec := serve(http.MethodGet, "/v1/messages", h.ListMessages, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "receiverId must not be empty")
	})

	t.Run("foreign sender without receiver is forbidden", func(t *testing.T) {
		svc := new(MockMessageService)
		h := NewMessageHandler(svc)
		svc.On("ListMessages", mock.Anything, application.ListMessagesQuery{
			Caller: alice, SenderID: "u2", ReceiverID: "",
		}).Return(nil, domain.ErrSenderMismatch)

		req := httptest.NewRequest(http.MethodGet, "/v1/messages?senderId=u2", nil)
		rec := serve(http.MethodGet, "/v1/messages", h.ListMessages, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("sender mismatch", func(t *testing.T) {
		svc := new(MockMessageService)
		h := NewMessageHandler(svc)
		svc.On("ListMessages", mock.Anything, application.ListMessagesQuery{
			Caller: alice, SenderID: "u2", ReceiverID: "u1",
		}).Return(nil, domain.ErrSenderMismatch)

		req := httptest.NewRequest(http.MethodGet, "/v1/messages?senderId=u2&receiverId=u1", nil)
		rec := serve(http.MethodGet, "/v1/messages", h.ListMessages, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no messages", func(t *testing.T) {
		svc := new(MockMessageService)
		h := NewMessageHandler(svc)
		svc.On("ListMessages", mock.Anything, mock.Anything).Return(nil, domain.ErrNoMessages)

		req := httptest.NewRequest(http.MethodGet, "/v1/messages?senderId=u1&receiverId=u2", nil)
		rec := serve(http.MethodGet, "/v1/messages", h.ListMessages, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("listed", func(t *testing.T) {
		svc := new(MockMessageService)
		h := NewMessageHandler(svc)
		svc.On("ListMessages", mock.Anything, mock.Anything).Return([]*domain.Message{
			{ID: "m1", SenderID: "u1", ReceiverID: "u2", Content: "a"},
			{ID: "m2", SenderID: "u1", ReceiverID: "u2", Content: "b"},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/messages?senderId=u1&receiverId=u2", nil)
		rec := serve(http.MethodGet, "/v1/messages", h.ListMessages, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Messages []messageDTO `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "m1", body.Messages[0].ID)
	})
}

func TestEditMessageUsesPathParam(t *testing.T) {
	svc := new(MockMessageService)
	h := NewMessageHandler(svc)

	svc.On("EditMessage", mock.Anything, application.EditMessageCommand{
		Caller: alice, MessageID: "m9", Content: "fixed",
	}).Return(nil, domain.ErrNotSender)

	req := httptest.NewRequest(http.MethodPatch, "/v1/message/m9", strings.NewReader(`{"content":"fixed"}`))
	rec := serve(http.MethodPatch, "/v1/message/{messageId}", h.EditMessage, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	svc.AssertExpectations(t)
}

func TestDeleteMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"deleted", nil, http.StatusOK},
		{"missing", domain.ErrMessageNotFound, http.StatusNotFound},
		{"not sender", domain.ErrNotSender, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockMessageService)
			h := NewMessageHandler(svc)
			svc.On("DeleteMessage", mock.Anything, application.DeleteMessageCommand{
				Caller: alice, MessageID: "m1",
			}).Return(tt.err)

			req := httptest.NewRequest(http.MethodDelete, "/v1/message/m1", nil)
			rec := serve(http.MethodDelete, "/v1/message/{messageId}", h.DeleteMessage, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCreateChatMergesUsernames(t *testing.T) {
	svc := new(MockChatService)
	h := NewChatHandler(svc)

	svc.On("CreateChat", mock.Anything, application.CreateChatCommand{
		Caller: alice, Handles: []string{"bob", "carol"},
	}).Return(&projection.ChatView{ID: "c1"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"username":"bob","usernames":["carol"]}`))
	rec := serve(http.MethodPost, "/v1/chat", h.CreateChat, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"c1"`)
	svc.AssertExpectations(t)
}

func TestCreateChatErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"self chat", domain.ErrSelfChat, http.StatusBadRequest},
		{"unknown user", domain.ErrUserNotFound, http.StatusNotFound},
		{"lost race", domain.ErrChatExists, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockChatService)
			h := NewChatHandler(svc)
			svc.On("CreateChat", mock.Anything, mock.Anything).Return(nil, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"username":"bob"}`))
			rec := serve(http.MethodPost, "/v1/chat", h.CreateChat, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestGetChat(t *testing.T) {
	svc := new(MockChatService)
	h := NewChatHandler(svc)

	svc.On("GetChat", mock.Anything, application.GetChatQuery{Caller: alice, ChatID: "c1"}).
		Return(nil, domain.ErrNotMember)

	req := httptest.NewRequest(http.MethodGet, "/v1/chat/c1", nil)
	rec := serve(http.MethodGet, "/v1/chat/{chatId}", h.GetChat, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	svc.AssertExpectations(t)
}

func TestListChatsEmpty(t *testing.T) {
	svc := new(MockChatService)
	h := NewChatHandler(svc)

	svc.On("ListChats", mock.Anything, application.ListChatsQuery{Caller: alice}).
		Return([]*projection.ChatView{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/chats", nil)
	rec := serve(http.MethodGet, "/v1/chats", h.ListChats, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestPostChatMessage(t *testing.T) {
	t.Run("chat id required", func(t *testing.T) {
		svc := new(MockChatService)
		h := NewChatHandler(svc)

		req := httptest.NewRequest(http.MethodPost, "/v1/chat/message", strings.NewReader(`{"content":"hi"}`))
		rec := serve(http.MethodPost, "/v1/chat/message", h.PostChatMessage, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "chatId must not be empty")
		svc.AssertNotCalled(t, "PostChatMessage", mock.Anything, mock.Anything)
	})

	t.Run("not a member", func(t *testing.T) {
		svc := new(MockChatService)
		h := NewChatHandler(svc)
		svc.On("PostChatMessage", mock.Anything, application.PostChatMessageCommand{
			Caller: alice, ChatID: "c1", Content: "hi",
		}).Return(nil, domain.ErrNotMember)

		req := httptest.NewRequest(http.MethodPost, "/v1/chat/message", strings.NewReader(`{"chatId":"c1","content":"hi"}`))
		rec := serve(http.MethodPost, "/v1/chat/message", h.PostChatMessage, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := new(MockChatService)
		h := NewChatHandler(svc)

		req := httptest.NewRequest(http.MethodPost, "/v1/chat/message", strings.NewReader(`{"chatId":`))
		rec := serve(http.MethodPost, "/v1/chat/message", h.PostChatMessage, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
