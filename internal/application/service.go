package application

import (
	"context"
	"time"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/authz"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/observability"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/projection"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/repository"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/tx"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Stores struct {
	Messages repository.MessageStore
	Chats    repository.ChatStore
	Users    repository.UserDirectory
	Outbox   repository.OutboxStore
}

// Service runs every message and chat operation as: validate input,
// ask authz, touch the stores only when allowed, then project the result.
type Service struct {
	messages repository.MessageStore
	chats    repository.ChatStore
	users    repository.UserDirectory
	outbox   repository.OutboxStore
	tx       tx.Transactor
	log      *zap.Logger

	windowSize int
	now        func() time.Time
	newID      func() string
}

func New(stores Stores, transactor tx.Transactor, log *zap.Logger, windowSize int) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if windowSize <= 0 {
		windowSize = projection.DefaultWindowSize
	}
	return &Service{
		messages:   stores.Messages,
		chats:      stores.Chats,
		users:      stores.Users,
		outbox:     stores.Outbox,
		tx:         transactor,
		log:        log,
		windowSize: windowSize,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// decide records the decision and turns a denial into its error.
func (s *Service) decide(ctx context.Context, op string, caller domain.Caller, d authz.Decision) error {
	observability.AuthzDecisionsTotal.WithLabelValues(op, d.Label()).Inc()
	if d.Allowed() {
		return nil
	}
	s.log.Info("authz_denied",
		zap.String("operation", op),
		zap.String("reason", string(d.Reason)),
		zap.String("caller_id", caller.ID),
		zap.String("request_id", requestID(ctx)),
	)
	return d.Error()
}
