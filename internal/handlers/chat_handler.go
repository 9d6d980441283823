package handlers

import (
	"context"
	"net/http"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/application"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/middleware"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/projection"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/transport"
	"github.com/go-chi/chi/v5"
)

type ChatService interface {
	CreateChat(ctx context.Context, cmd application.CreateChatCommand) (*projection.ChatView, error)
	GetChat(ctx context.Context, q application.GetChatQuery) (*projection.ChatView, error)
	ListChats(ctx context.Context, q application.ListChatsQuery) ([]*projection.ChatView, error)
	PostChatMessage(ctx context.Context, cmd application.PostChatMessageCommand) (*projection.ChatView, error)
}

type ChatHandler struct {
	svc ChatService
}

func NewChatHandler(s ChatService) *ChatHandler {
	return &ChatHandler{svc: s}
}

// CreateChat POST /v1/chat
//
// Accepts a single "username" or a "usernames" list for group chats.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username  string   `json:"username" validate:"max=64"`
		Usernames []string `json:"usernames" validate:"max=50,dive,max=64"`
	}
	if err := transport.DecodeJSON(w, r, &req); err != nil {
		transport.WriteDomainError(w, r, err)
		return
	}

	handles := req.Usernames
	if req.Username != "" {
		handles = append([]string{req.Username}, handles...)
	}

	chat, err := h.svc.CreateChat(r.Context(), application.CreateChatCommand{
		Caller:  middleware.CallerFrom(r.Context()),
		Handles: handles,
	})
	if err != nil {
		transport.WriteDomainError(w, r, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, chat)
}

// GetChat GET /v1/chat/{chatId}
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	chat, err := h.svc.GetChat(r.Context(), application.GetChatQuery{
		Caller: middleware.CallerFrom(r.Context()),
		ChatID: chi.URLParam(r, "chatId"),
	})
	if err != nil {
		transport.WriteDomainError(w, r, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, chat)
}

// ListChats GET /v1/chats
func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.svc.ListChats(r.Context(), application.ListChatsQuery{
		Caller: middleware.CallerFrom(r.Context()),
	})
	if err != nil {
		transport.WriteDomainError(w, r, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, chats)
}

// PostChatMessage POST /v1/chat/message
func (h *ChatHandler) PostChatMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChatID  string `json:"chatId" validate:"required"`
		Content string `json:"content"`
	}
	if err := transport.DecodeJSON(w, r, &req); err != nil {
		transport.WriteDomainError(w, r, err)
		return
	}

	chat, err := h.svc.PostChatMessage(r.Context(), application.PostChatMessageCommand{
		Caller:  middleware.CallerFrom(r.Context()),
		ChatID:  req.ChatID,
		Content: req.Content,
	})
	if err != nil {
		transport.WriteDomainError(w, r, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, chat)
}
