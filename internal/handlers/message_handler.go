package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/application"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/middleware"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/transport"
	"github.com/go-chi/chi/v5"
)

type MessageService interface {
	CreateMessage(ctx context.Context, cmd application.CreateMessageCommand) (*domain.Message, error)
	ListMessages(ctx context.Context, q application.ListMessagesQuery) ([]*domain.Message, error)
	EditMessage(ctx context.Context, cmd application.EditMessageCommand) (*domain.Message, error)
	DeleteMessage(ctx context.Context, cmd application.DeleteMessageCommand) error
}

// MessageHandler serves the direct message routes.
type MessageHandler struct {
	svc MessageService
}

func NewMessageHandler(s MessageService) *MessageHandler {
	return &MessageHandler{svc: s}
}

type messageDTO struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toMessageDTO(m *domain.Message) messageDTO {
	return messageDTO{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Status:     string(m.Status),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// CreateMessage POST /v1/message
func (h *MessageHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Receiver string `json:"receiver" validate:"max=128"`
		Content  string `json:"content"`
	}
	if err := transport.DecodeJSON(w, r, &req); err != nil {
		transport.WriteDomainError(w, r, err)
		return
	}

	msg, err := h.svc.CreateMessage(r.Context(), application.CreateMessageCommand{
		Caller:     middleware.CallerFrom(r.Context()),
		ReceiverID: req.Receiver,
		Content:    req.Content,
	})
	if err != nil {
		transport.WriteDomainError(w, r, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": toMessageDTO(msg)})
}

// ListMessages GET /v1/messages?senderId=&receiverId=
//
// Parameters go to the service unchecked: a foreign senderId must be
// Forbidden even when receiverId is missing.
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.svc.ListMessages(r.Context(), application.ListMessagesQuery{
		Caller:     middleware.CallerFrom(r.Context()),
		SenderID:   r.URL.Query().Get("senderId"),
		ReceiverID: r.URL.Query().Get("receiverId"),
	})
	if err != nil {
		transport.WriteDomainError(w, r, err)
		return
	}

	out := make([]messageDTO, 0, len(messages))
	for _, m := range messages {
		out = append(out, toMessageDTO(m))
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": out})
}

// EditMessage PATCH /v1/message/{messageId}
func (h *MessageHandler) EditMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if err := transport.DecodeJSON(w, r, &req); err != nil {
		transport.WriteDomainError(w, r, err)
		return
	}

	msg, err := h.svc.EditMessage(r.Context(), application.EditMessageCommand{
		Caller:    middleware.CallerFrom(r.Context()),
		MessageID: chi.URLParam(r, "messageId"),
		Content:   req.Content,
	})
	if err != nil {
		transport.WriteDomainError(w, r, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": toMessageDTO(msg)})
}

// DeleteMessage DELETE /v1/message/{messageId}
func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteMessage(r.Context(), application.DeleteMessageCommand{
		Caller:    middleware.CallerFrom(r.Context()),
		MessageID: chi.URLParam(r, "messageId"),
	})
	if err != nil {
		transport.WriteDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
