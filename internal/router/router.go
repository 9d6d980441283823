package router

import (
	"net/http"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/config"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/handlers"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/middleware"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/observability"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func NewRouter(
	msgH *handlers.MessageHandler,
	chatH *handlers.ChatHandler,
	resolver middleware.CallerResolver,
	db observability.Pinger,
	cfg config.Config,
) http.Handler {

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(observability.MetricsMiddleware(cfg.ServiceName))
	r.Use(observability.Recovery())
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health/live", observability.HealthLiveHandler)
	r.Get("/health/ready", observability.HealthReadyHandler(db))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/v1", http.StatusFound)
	})

	r.Route("/v1", func(v chi.Router) {
		v.Use(middleware.Authenticate(resolver))

		v.Post("/message", msgH.CreateMessage)
		v.Get("/messages", msgH.ListMessages)
		v.Patch("/message/{messageId}", msgH.EditMessage)
		v.Delete("/message/{messageId}", msgH.DeleteMessage)

		v.Post("/chat", chatH.CreateChat)
		v.Get("/chat/{chatId}", chatH.GetChat)
		v.Get("/chats", chatH.ListChats)
		v.Post("/chat/message", chatH.PostChatMessage)
	})

	return otelhttp.NewHandler(r, cfg.ServiceName)
}
