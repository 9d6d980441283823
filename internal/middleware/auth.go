package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/observability"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/transport"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type CallerResolver interface {
	Resolve(ctx context.Context, authorization string) (domain.Caller, error)
}

// Authenticate resolves the caller from the Authorization header before any
// handler runs. Requests without a valid caller never reach the service.
func Authenticate(resolver CallerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				log := observability.GetLogger(r.Context())
				reqID := chimw.GetReqID(r.Context())

				if errors.Is(err, domain.ErrUnauthenticated) {
					log.Info("auth_rejected", zap.String("request_id", reqID), zap.Error(err))
					transport.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication failed")
					return
				}

				log.Error("caller_lookup_failed", zap.String("request_id", reqID), zap.Error(err))
				transport.WriteError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}
