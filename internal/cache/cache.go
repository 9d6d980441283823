package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	// Membership never changes after creation, so it can live long.
	membersTTL = 24 * time.Hour
	profileTTL = time.Hour
)

type Cache struct {
	Client *redis.Client
}

func New(addr string) *Cache {
	return &Cache{
		Client: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
	}
}

func membersKey(chatID string) string { return "chat:members:" + chatID }
func profileKey(userID string) string { return "profile:" + userID }

// GetMembers returns the cached members of a chat. ok is false on a miss.
func (c *Cache) GetMembers(ctx context.Context, chatID string) ([]string, bool, error) {
	members, err := c.Client.SMembers(ctx, membersKey(chatID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(members) == 0 {
		return nil, false, nil
	}
	return domain.NormalizeMembers(members), true, nil
}

func (c *Cache) SetMembers(ctx context.Context, chatID string, members []string) error {
	if len(members) == 0 {
		return nil
	}
	vals := make([]interface{}, 0, len(members))
	for _, m := range members {
		vals = append(vals, m)
	}
	key := membersKey(chatID)
	_, err := c.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.SAdd(ctx, key, vals...)
		p.Expire(ctx, key, membersTTL)
		return nil
	})
	return err
}

// GetProfiles returns the cached profiles among ids and the ids it missed.
func (c *Cache) GetProfiles(ctx context.Context, ids []string) (map[string]domain.Profile, []string, error) {
	found := make(map[string]domain.Profile, len(ids))
	if len(ids) == 0 {
		return found, nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = profileKey(id)
	}

	vals, err := c.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, err
	}

	var missing []string
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var p domain.Profile
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		found[ids[i]] = p
	}
	return found, missing, nil
}

func (c *Cache) SetProfiles(ctx context.Context, profiles map[string]domain.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	_, err := c.Client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for id, prof := range profiles {
			val, err := json.Marshal(prof)
			if err != nil {
				return err
			}
			p.Set(ctx, profileKey(id), val, profileTTL)
		}
		return nil
	})
	return err
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.Client.Close()
}
