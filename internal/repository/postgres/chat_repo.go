package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/observability"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const chatMemberKeyIndex = "chats_member_key_idx"

func (r *Repository) InsertChat(
	ctx context.Context,
	tx *sql.Tx,
	chat *domain.Chat,
) error {
	defer observability.ObserveQuery("insert_chat")()

	q := r.getter(tx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO chats (id, member_key, next_position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, chat.ID, domain.MemberKey(chat.Members), len(chat.Messages), chat.CreatedAt, chat.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, chatMemberKeyIndex) {
			return domain.ErrChatExists
		}
		return err
	}

	for _, m := range chat.Members {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO chat_members (chat_id, user_id)
			VALUES ($1, $2)
		`, chat.ID, m); err != nil {
			return err
		}
	}

	for i := range chat.Messages {
		e := &chat.Messages[i]
		e.Position = int64(i + 1)
		if _, err := q.ExecContext(ctx, `
			INSERT INTO chat_messages (id, chat_id, position, sender_id, content, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.ID, chat.ID, e.Position, e.SenderID, e.Content, e.CreatedAt); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) GetChatByMembership(
	ctx context.Context,
	tx *sql.Tx,
	memberKey string,
	windowSize int,
) (*domain.Chat, error) {
	defer observability.ObserveQuery("get_chat_by_membership")()

	var id string
	err := r.getter(tx).QueryRowContext(ctx, `
		SELECT id FROM chats WHERE member_key = $1
	`, memberKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.loadChat(ctx, r.getter(tx), id, windowSize)
}

func (r *Repository) GetChat(
	ctx context.Context,
	id string,
	windowSize int,
) (*domain.Chat, error) {
	defer observability.ObserveQuery("get_chat")()
	return r.loadChat(ctx, r.DB, id, windowSize)
}

func (r *Repository) loadChat(
	ctx context.Context,
	q queryable,
	id string,
	windowSize int,
) (*domain.Chat, error) {
	var chat domain.Chat
	err := q.QueryRowContext(ctx, `
		SELECT id, created_at, updated_at FROM chats WHERE id = $1
	`, id).Scan(&chat.ID, &chat.CreatedAt, &chat.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	members, err := queryMembers(ctx, q, id)
	if err != nil {
		return nil, err
	}
	chat.Members = members

	rows, err := q.QueryContext(ctx, `
		SELECT id, chat_id, sender_id, content, position, created_at
		FROM (
			SELECT id, chat_id, sender_id, content, position, created_at
			FROM chat_messages
			WHERE chat_id = $1
			ORDER BY position DESC
			LIMIT $2
		) w
		ORDER BY position ASC
	`, id, windowSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		chat.Messages = append(chat.Messages, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *Repository) ListChatsForMember(
	ctx context.Context,
	memberID string,
) ([]*domain.Chat, error) {
	defer observability.ObserveQuery("list_chats")()

	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.created_at, c.updated_at
		FROM chats c
		JOIN chat_members m ON m.chat_id = c.id
		WHERE m.user_id = $1
	`, memberID)
	if err != nil {
		return nil, err
	}

	var chats []*domain.Chat
	byID := make(map[string]*domain.Chat)
	for rows.Next() {
		var c domain.Chat
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		chats = append(chats, &c)
		byID[c.ID] = &c
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(chats) == 0 {
		return chats, nil
	}

	ids := make([]string, 0, len(chats))
	for _, c := range chats {
		ids = append(ids, c.ID)
	}

	memberRows, err := r.DB.QueryContext(ctx, `
		SELECT chat_id, user_id
		FROM chat_members
		WHERE chat_id = ANY($1)
		ORDER BY chat_id, user_id
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	for memberRows.Next() {
		var chatID, userID string
		if err := memberRows.Scan(&chatID, &userID); err != nil {
			memberRows.Close()
			return nil, err
		}
		if c, ok := byID[chatID]; ok {
			c.Members = append(c.Members, userID)
		}
	}
	memberRows.Close()
	if err := memberRows.Err(); err != nil {
		return nil, err
	}
	for _, c := range chats {
		c.Members = domain.NormalizeMembers(c.Members)
	}

	latestRows, err := r.DB.QueryContext(ctx, `
		SELECT DISTINCT ON (chat_id) id, chat_id, sender_id, content, position, created_at
		FROM chat_messages
		WHERE chat_id = ANY($1)
		ORDER BY chat_id, position DESC
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer latestRows.Close()

	for latestRows.Next() {
		e, err := scanEntry(latestRows)
		if err != nil {
			return nil, err
		}
		if c, ok := byID[e.ChatID]; ok {
			c.Messages = []domain.ChatMessage{e}
		}
	}
	return chats, latestRows.Err()
}

// ChatMembers reads through the cache. Membership is immutable, so a
// cached set never goes stale.
func (r *Repository) ChatMembers(
	ctx context.Context,
	id string,
) ([]string, bool, error) {
	log := observability.GetLogger(ctx)

	if r.Cache != nil {
		members, ok, err := r.Cache.GetMembers(ctx, id)
		if err != nil {
			log.Warn("members_cache_read_failed", zap.String("chat_id", id), zap.Error(err))
		} else if ok {
			observability.CacheLookupsTotal.WithLabelValues("members", "hit").Inc()
			return members, true, nil
		}
		observability.CacheLookupsTotal.WithLabelValues("members", "miss").Inc()
	}

	defer observability.ObserveQuery("chat_members")()

	var exists bool
	if err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM chats WHERE id = $1)
	`, id).Scan(&exists); err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}

	members, err := queryMembers(ctx, r.DB, id)
	if err != nil {
		return nil, false, err
	}

	if r.Cache != nil {
		if err := r.Cache.SetMembers(ctx, id, members); err != nil {
			log.Warn("members_cache_write_failed", zap.String("chat_id", id), zap.Error(err))
		}
	}
	return members, true, nil
}

// AppendChatMessage takes the next position of the chat and inserts the
// entry in one statement, guarded by the sender's membership. The counter
// update locks the chat row until commit, so positions follow commit order.
func (r *Repository) AppendChatMessage(
	ctx context.Context,
	tx *sql.Tx,
	entry *domain.ChatMessage,
) (bool, error) {
	defer observability.ObserveQuery("append_chat_message")()

	var position int64
	err := r.getter(tx).QueryRowContext(ctx, `
		WITH bump AS (
			UPDATE chats
			SET next_position = next_position + 1,
			    updated_at = GREATEST(updated_at, $5::timestamptz)
			WHERE id = $2::text
			  AND EXISTS (
				SELECT 1 FROM chat_members
				WHERE chat_id = $2::text AND user_id = $3::text
			  )
			RETURNING id, next_position
		), ins AS (
			INSERT INTO chat_messages (id, chat_id, position, sender_id, content, created_at)
			SELECT $1::text, bump.id, bump.next_position, $3::text, $4::text, $5::timestamptz
			FROM bump
			RETURNING position
		)
		SELECT position FROM ins
	`, entry.ID, entry.ChatID, entry.SenderID, entry.Content, entry.CreatedAt).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("append chat message: %w", err)
	}
	entry.Position = position
	return true, nil
}

func queryMembers(ctx context.Context, q queryable, chatID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT user_id FROM chat_members WHERE chat_id = $1 ORDER BY user_id
	`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return domain.NormalizeMembers(members), nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (domain.ChatMessage, error) {
	var e domain.ChatMessage
	err := s.Scan(&e.ID, &e.ChatID, &e.SenderID, &e.Content, &e.Position, &e.CreatedAt)
	return e, err
}
