package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/templatecore/core/internal/users"
)

// DefaultLookupTimeout bounds a single identity store lookup.
const DefaultLookupTimeout = 2 * time.Second

// UserLookup is the slice of the identity store the resolver needs.
type UserLookup interface {
	FindByID(ctx context.Context, id int64) (*users.User, error)
}

// Resolver maps a verified subject to its identity record.
type Resolver struct {
	store   UserLookup
	cache   *IdentityCache
	timeout time.Duration
	logger  *slog.Logger
	group   singleflight.Group
}

// NewResolver builds a Resolver. cache may be nil.
func NewResolver(store UserLookup, cache *IdentityCache, timeout time.Duration, logger *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, cache: cache, timeout: timeout, logger: logger}
}

// Resolve returns the identity for id, or ErrIdentityNotFound.
func (r *Resolver) Resolve(ctx context.Context, id int64) (*users.User, error) {
	if cached, err := r.cache.Get(ctx, id); err != nil {
		r.logger.Warn("identity cache read", slog.Int64("user_id", id), slog.Any("error", err))
	} else if cached != nil {
		return cached, nil
	}

	ch := r.group.DoChan(strconv.FormatInt(id, 10), func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		stamp, err := r.cache.Stamp(lookupCtx, id)
		if err != nil {
			r.logger.Warn("identity cache stamp", slog.Int64("user_id", id), slog.Any("error", err))
		}
		user, err := r.store.FindByID(lookupCtx, id)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				return nil, ErrIdentityNotFound
			}
			return nil, fmt.Errorf("auth: resolve identity %d: %w", id, err)
		}
		if _, err := r.cache.Put(lookupCtx, user, stamp); err != nil {
			r.logger.Warn("identity cache write", slog.Int64("user_id", id), slog.Any("error", err))
		}
		return user, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		user := *res.Val.(*users.User)
		return &user, nil
	}
}
