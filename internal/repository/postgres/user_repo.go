package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/observability"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

func (r *Repository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	defer observability.ObserveQuery("get_user")()
	return scanUser(r.DB.QueryRowContext(ctx, `
		SELECT id, handle, first_name, last_name, avatar
		FROM users
		WHERE id = $1
	`, id))
}

func (r *Repository) GetUserByHandle(ctx context.Context, handle string) (*domain.User, error) {
	defer observability.ObserveQuery("get_user_by_handle")()
	return scanUser(r.DB.QueryRowContext(ctx, `
		SELECT id, handle, first_name, last_name, avatar
		FROM users
		WHERE handle = $1
	`, handle))
}

// GetProfiles resolves ids to profiles, serving what it can from the
// cache. Unknown ids are absent from the result.
func (r *Repository) GetProfiles(ctx context.Context, ids []string) (map[string]domain.Profile, error) {
	log := observability.GetLogger(ctx)
	ids = domain.NormalizeMembers(ids)
	profiles := make(map[string]domain.Profile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	missing := ids
	if r.Cache != nil {
		found, miss, err := r.Cache.GetProfiles(ctx, ids)
		if err != nil {
			log.Warn("profile_cache_read_failed", zap.Error(err))
		} else {
			for id, p := range found {
				profiles[id] = p
			}
			missing = miss
			observability.CacheLookupsTotal.WithLabelValues("profile", "hit").Add(float64(len(found)))
			observability.CacheLookupsTotal.WithLabelValues("profile", "miss").Add(float64(len(miss)))
		}
	}
	if len(missing) == 0 {
		return profiles, nil
	}

	defer observability.ObserveQuery("get_profiles")()

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, first_name, last_name, avatar
		FROM users
		WHERE id = ANY($1)
	`, pq.Array(missing))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loaded := make(map[string]domain.Profile, len(missing))
	for rows.Next() {
		var id string
		var p domain.Profile
		if err := rows.Scan(&id, &p.FirstName, &p.LastName, &p.Avatar); err != nil {
			return nil, err
		}
		loaded[id] = p
		profiles[id] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if r.Cache != nil {
		if err := r.Cache.SetProfiles(ctx, loaded); err != nil {
			log.Warn("profile_cache_write_failed", zap.Error(err))
		}
	}
	return profiles, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Handle, &u.Profile.FirstName, &u.Profile.LastName, &u.Profile.Avatar)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
