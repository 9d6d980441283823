package postgres

import (
	"context"
	"database/sql"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/repository"
)

func (r *Repository) InsertOutbox(
	ctx context.Context,
	tx *sql.Tx,
	aggregateType, aggregateID, eventType string,
	payload []byte,
) error {
	_, err := r.getter(tx).ExecContext(ctx, `
		INSERT INTO outbox_events (aggregate_type, aggregate_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
	`, aggregateType, aggregateID, eventType, payload)
	return err
}

func (r *Repository) FetchUnpublished(
	ctx context.Context,
	tx *sql.Tx,
	limit int,
) ([]repository.OutboxEvent, error) {
	rows, err := r.getter(tx).QueryContext(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at, retry_count
		FROM outbox_events
		WHERE processed_at IS NULL
		ORDER BY id
		FOR UPDATE SKIP LOCKED
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []repository.OutboxEvent
	for rows.Next() {
		var e repository.OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt, &e.RetryCount); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *Repository) MarkPublished(ctx context.Context, tx *sql.Tx, id int64) error {
	_, err := r.getter(tx).ExecContext(ctx, `
		UPDATE outbox_events
		SET processed_at = now()
		WHERE id = $1
	`, id)
	return err
}

func (r *Repository) MarkFailed(ctx context.Context, tx *sql.Tx, id int64, reason string) error {
	_, err := r.getter(tx).ExecContext(ctx, `
		UPDATE outbox_events
		SET retry_count = retry_count + 1, error = $2
		WHERE id = $1
	`, id, reason)
	return err
}

func (r *Repository) MoveToDLQ(ctx context.Context, tx *sql.Tx, e repository.OutboxEvent, reason string) error {
	q := r.getter(tx)
	if _, err := q.ExecContext(ctx, `
		INSERT INTO outbox_dlq (id, aggregate_type, aggregate_id, event_type, payload, created_at, failed_at, error, retry_count)
		VALUES ($1, $2, $3, $4, $5, $6, now(), $7, $8)
	`, e.ID, e.AggregateType, e.AggregateID, e.EventType, e.Payload, e.CreatedAt, reason, e.RetryCount+1); err != nil {
		return err
	}
	_, err := q.ExecContext(ctx, `DELETE FROM outbox_events WHERE id = $1`, e.ID)
	return err
}

var (
	_ repository.MessageStore  = (*Repository)(nil)
	_ repository.ChatStore     = (*Repository)(nil)
	_ repository.UserDirectory = (*Repository)(nil)
	_ repository.OutboxStore   = (*Repository)(nil)
)
