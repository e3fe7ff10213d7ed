package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tandemhq/tandem/internal/domain"
)

// profileTTL bounds staleness of cached profiles. Reads through this cache
// are allowed to lag profile updates; the cache is invalidated on write.
const profileTTL = 5 * time.Minute

func Connect(addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to ping redis at %s: %w", addr, err)
	}

	return rdb, nil
}

// ProfileCache is a read-through cache for user profiles.
type ProfileCache struct {
	rdb *redis.Client
}

func NewProfileCache(rdb *redis.Client) *ProfileCache {
	return &ProfileCache{rdb: rdb}
}

// GetUser returns the cached profile, or nil on a miss.
func (c *ProfileCache) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	data, err := c.rdb.Get(ctx, profileKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("decoding cached profile: %w", err)
	}
	return &user, nil
}

func (c *ProfileCache) SetUser(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	return c.rdb.Set(ctx, profileKey(user.ID), data, profileTTL).Err()
}

func (c *ProfileCache) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return c.rdb.Del(ctx, profileKey(id)).Err()
}

func profileKey(id uuid.UUID) string {
	return "profile:" + id.String()
}
