package transport

import (
	"context"
	"errors"
	"net/http"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/observability"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// StatusFor maps an error to its HTTP status. Validation problems are
// answered with 200 and an error list, matching what clients expect.
func StatusFor(err error) int {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusOK
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrMessageNotFound),
		errors.Is(err, domain.ErrNoMessages),
		errors.Is(err, domain.ErrChatNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotSender),
		errors.Is(err, domain.ErrSenderMismatch),
		errors.Is(err, domain.ErrNotMember):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrSelfChat),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidMembership),
		errors.Is(err, domain.ErrInvalidMessage):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrChatExists):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func WriteDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	var verr *domain.ValidationError
	switch status {
	case http.StatusOK:
		errors.As(err, &verr)
		WriteJSON(w, http.StatusOK, map[string]interface{}{"errors": verr.Problems})
	case http.StatusUnauthorized:
		WriteError(w, status, "unauthorized", "authentication failed")
	case http.StatusConflict:
		WriteError(w, status, "already_exists", err.Error())
	case http.StatusGatewayTimeout:
		WriteError(w, status, "timeout", "request timed out")
	case http.StatusInternalServerError:
		observability.GetLogger(r.Context()).Error("internal_error",
			zap.Error(err),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
		WriteError(w, status, "internal_error", "an unexpected error occurred")
	default:
		WriteStatus(w, status)
	}
}
