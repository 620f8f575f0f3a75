package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/templatecore/core/internal/users"
)

const (
	snapshotKeyPrefix   = "core:identity:user:"
	generationKeyPrefix = "core:identity:gen:"
	epochKey            = "core:identity:epoch"
)

// IdentityCache keeps short lived identity snapshots in Redis.
//
// Every invalidation bumps a generation counter. A snapshot is only written
// when the counters still match the Stamp taken before the store read, so a
// lookup that raced with a deactivation cannot restore the old record.
type IdentityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdentityCache builds a cache. A nil client disables caching.
func NewIdentityCache(client *redis.Client, ttl time.Duration) *IdentityCache {
	return &IdentityCache{client: client, ttl: ttl}
}

// Stamp records the invalidation counters seen before a store read.
type Stamp struct {
	epoch      string
	generation string
	valid      bool
}

type identitySnapshot struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	IsActive bool            `json:"active"`
	Roles    []users.RoleRef `json:"roles"`
}

func snapshotKey(id int64) string {
	return snapshotKeyPrefix + strconv.FormatInt(id, 10)
}

func generationKey(id int64) string {
	return generationKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *IdentityCache) enabled() bool {
	return c != nil && c.client != nil
}

// Get returns the cached identity, or (nil, nil) on a miss.
func (c *IdentityCache) Get(ctx context.Context, id int64) (*users.User, error) {
	if !c.enabled() {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, snapshotKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth: cache get: %w", err)
	}
	var snap identitySnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("auth: cache decode: %w", err)
	}
	return &users.User{
		ID:       snap.ID,
		Username: snap.Username,
		Email:    snap.Email,
		IsActive: snap.IsActive,
		Roles:    snap.Roles,
	}, nil
}

// Stamp reads the counters guarding the snapshot of id. Take it before
// reading the store and hand it to Put.
func (c *IdentityCache) Stamp(ctx context.Context, id int64) (Stamp, error) {
	if !c.enabled() {
		return Stamp{}, nil
	}
	epoch, generation, err := readCounters(ctx, c.client, id)
	if err != nil {
		return Stamp{}, fmt.Errorf("auth: cache stamp: %w", err)
	}
	return Stamp{epoch: epoch, generation: generation, valid: true}, nil
}

// Put stores a snapshot of user unless an invalidation happened after
// stamp was taken. It reports whether the snapshot was written. Password
// hashes are never cached.
func (c *IdentityCache) Put(ctx context.Context, user *users.User, stamp Stamp) (bool, error) {
	if !c.enabled() || user == nil || c.ttl <= 0 || !stamp.valid {
		return false, nil
	}
	raw, err := json.Marshal(identitySnapshot{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsActive: user.IsActive,
		Roles:    user.Roles,
	})
	if err != nil {
		return false, fmt.Errorf("auth: cache encode: %w", err)
	}

	written := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		epoch, generation, err := readCounters(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		if epoch != stamp.epoch || generation != stamp.generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, snapshotKey(user.ID), raw, c.ttl)
			return nil
		})
		if err == nil {
			written = true
		}
		return err
	}, epochKey, generationKey(user.ID))
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("auth: cache set: %w", err)
	}
	return written, nil
}

// Invalidate drops the snapshot for one user and fences off lookups that
// started before the call.
func (c *IdentityCache) Invalidate(ctx context.Context, userID int64) error {
	if !c.enabled() {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(userID))
		pipe.Del(ctx, snapshotKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("auth: cache invalidate: %w", err)
	}
	return nil
}

// InvalidateAll drops every identity snapshot and fences off lookups that
// started before the call.
func (c *IdentityCache) InvalidateAll(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	if err := c.client.Incr(ctx, epochKey).Err(); err != nil {
		return fmt.Errorf("auth: cache invalidate all: %w", err)
	}
	iter := c.client.Scan(ctx, 0, snapshotKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("auth: cache scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("auth: cache invalidate all: %w", err)
	}
	return nil
}

type counterReader interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

func readCounters(ctx context.Context, c counterReader, id int64) (epoch, generation string, err error) {
	vals, err := c.MGet(ctx, epochKey, generationKey(id)).Result()
	if err != nil {
		return "", "", err
	}
	return counterValue(vals[0]), counterValue(vals[1]), nil
}

func counterValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "0"
}
