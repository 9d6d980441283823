package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/observability"
)

func (r *Repository) InsertMessage(
	ctx context.Context,
	tx *sql.Tx,
	msg *domain.Message,
) error {
	defer observability.ObserveQuery("insert_message")()

	q := r.getter(tx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO messages (
			id, sender_id, receiver_id, content, status, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		msg.ID,
		msg.SenderID,
		msg.ReceiverID,
		msg.Content,
		string(msg.Status),
		msg.CreatedAt,
		msg.UpdatedAt,
	)
	return err
}

// GetMessage locks the row when called inside a transaction.
func (r *Repository) GetMessage(
	ctx context.Context,
	tx *sql.Tx,
	id string,
) (*domain.Message, error) {
	defer observability.ObserveQuery("get_message")()

	query := `
		SELECT id, sender_id, receiver_id, content, status, created_at, updated_at
		FROM messages
		WHERE id = $1
	`
	if tx != nil {
		query += " FOR UPDATE"
	}

	var msg domain.Message
	var status string
	err := r.getter(tx).QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.SenderID,
		&msg.ReceiverID,
		&msg.Content,
		&status,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	msg.Status = domain.MessageStatus(status)
	return &msg, nil
}

func (r *Repository) ListMessagesByParties(
	ctx context.Context,
	senderID, receiverID string,
) ([]*domain.Message, error) {
	defer observability.ObserveQuery("list_messages")()

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, content, status, created_at, updated_at
		FROM messages
		WHERE sender_id = $1
		  AND receiver_id = $2
		ORDER BY created_at ASC, id ASC
	`, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		var msg domain.Message
		var status string
		if err := rows.Scan(
			&msg.ID,
			&msg.SenderID,
			&msg.ReceiverID,
			&msg.Content,
			&status,
			&msg.CreatedAt,
			&msg.UpdatedAt,
		); err != nil {
			return nil, err
		}
		msg.Status = domain.MessageStatus(status)
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

func (r *Repository) UpdateMessageContent(
	ctx context.Context,
	tx *sql.Tx,
	msg *domain.Message,
) error {
	defer observability.ObserveQuery("update_message")()

	res, err := r.getter(tx).ExecContext(ctx, `
		UPDATE messages
		SET content = $2, status = $3, updated_at = $4
		WHERE id = $1
	`, msg.ID, msg.Content, string(msg.Status), msg.UpdatedAt)
	if err != nil {
		return err
	}
	return expectOneRow(res, domain.ErrMessageNotFound)
}

func (r *Repository) DeleteMessage(
	ctx context.Context,
	tx *sql.Tx,
	id string,
) error {
	defer observability.ObserveQuery("delete_message")()

	res, err := r.getter(tx).ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, domain.ErrMessageNotFound)
}

func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
