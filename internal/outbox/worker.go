package outbox

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/observability"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/repository"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/tx"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Worker relays committed outbox events to Kafka. Events of a batch are
// published in id order; the first failure ends the batch so later events
// never overtake it.
type Worker struct {
	Store       repository.OutboxStore
	Tx          tx.Transactor
	Producer    Publisher
	TopicPrefix string
	BatchSize   int
	PollDelay   time.Duration
	MaxRetries  int
}

func (w *Worker) Start(ctx context.Context) {
	log := observability.GetLogger(ctx)
	log.Info("outbox worker started")

	for {
		n, err := w.processBatch(ctx)
		if err != nil {
			log.Error("outbox error", zap.Error(err))
		}

		if err == nil && n > 0 {
			select {
			case <-ctx.Done():
				log.Info("outbox worker stopping")
				return
			default:
				continue
			}
		}

		select {
		case <-ctx.Done():
			log.Info("outbox worker stopping")
			return
		case <-time.After(w.pollDelay()):
		}
	}
}

// processBatch publishes one batch and reports how many events it handled.
func (w *Worker) processBatch(ctx context.Context) (int, error) {
	var handled int
	var publishErr error

	err := w.Tx.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		events, err := w.Store.FetchUnpublished(ctx, tx, w.batchSize())
		if err != nil {
			return err
		}

		for _, e := range events {
			topic := Topic(w.TopicPrefix, e.EventType)

			if err := w.Producer.Publish(ctx, topic, []byte(e.AggregateID), e.Payload); err != nil {
				observability.OutboxPublishFailuresTotal.WithLabelValues(observability.ServiceName(), topic).Inc()

				if e.RetryCount+1 >= w.maxRetries() {
					if dbErr := w.Store.MoveToDLQ(ctx, tx, e, err.Error()); dbErr != nil {
						return dbErr
					}
				} else if dbErr := w.Store.MarkFailed(ctx, tx, e.ID, err.Error()); dbErr != nil {
					return dbErr
				}

				handled++
				publishErr = err
				return nil
			}

			if err := w.Store.MarkPublished(ctx, tx, e.ID); err != nil {
				return err
			}
			observability.OutboxPublishedTotal.WithLabelValues(observability.ServiceName(), topic).Inc()
			handled++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return handled, publishErr
}

// Topic maps an event type such as CHAT_MESSAGE_POSTED to chat.message.posted.
func Topic(prefix, eventType string) string {
	return prefix + strings.ReplaceAll(strings.ToLower(eventType), "_", ".")
}

func (w *Worker) batchSize() int {
	if w.BatchSize <= 0 {
		return 50
	}
	return w.BatchSize
}

func (w *Worker) pollDelay() time.Duration {
	if w.PollDelay <= 0 {
		return 2 * time.Second
	}
	return w.PollDelay
}

func (w *Worker) maxRetries() int {
	if w.MaxRetries <= 0 {
		return 3
	}
	return w.MaxRetries
}
