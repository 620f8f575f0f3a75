package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templatecore/core/internal/users"
)

type stubLookup struct {
	mu    sync.Mutex
	users map[int64]users.User
	calls atomic.Int32
	block chan struct{}
	// read is signalled once the row was copied; hold then stalls the lookup.
	read chan struct{}
	hold chan struct{}
	err  error
}

func newStubLookup(list ...users.User) *stubLookup {
	s := &stubLookup{users: make(map[int64]users.User)}
	for _, u := range list {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubLookup) FindByID(ctx context.Context, id int64) (*users.User, error) {
	s.calls.Add(1)
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	user, ok := s.users[id]
	s.mu.Unlock()
	if !ok {
		return nil, users.ErrNotFound
	}
	if s.read != nil {
		s.read <- struct{}{}
	}
	if s.hold != nil {
		<-s.hold
	}
	return &user, nil
}

func (s *stubLookup) setActive(id int64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	u.IsActive = active
	s.users[id] = u
}

func newTestCache(t *testing.T) (*IdentityCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdentityCache(client, time.Minute), mr
}

func adminUser() users.User {
	return users.User{
		ID:           1,
		Username:     "admin",
		Email:        "admin@admin.com",
		PasswordHash: "$2a$10$hash",
		IsActive:     true,
		Roles:        []users.RoleRef{{ID: 1, Name: "ADMIN"}},
	}
}

func TestResolveUsesStoreThenCache(t *testing.T) {
	cache, mr := newTestCache(t)
	store := newStubLookup(adminUser())
	resolver := NewResolver(store, cache, time.Second, nil)
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "admin", first.Username)
	assert.True(t, mr.Exists("core:identity:user:1"))

	second, err := resolver.Resolve(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"ADMIN"}, second.Authorities())
	assert.Empty(t, second.PasswordHash)
	assert.Equal(t, int32(1), store.calls.Load())

	require.NoError(t, cache.Invalidate(ctx, 1))
	_, err = resolver.Resolve(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), store.calls.Load())
}

func TestResolveNotFound(t *testing.T) {
	resolver := NewResolver(newStubLookup(), nil, time.Second, nil)
	_, err := resolver.Resolve(context.Background(), 99)
	assert.ErrorIs(t, err, ErrIdentityNotFound)
}

func TestResolveStoreFailure(t *testing.T) {
	store := newStubLookup()
	store.err = errors.New("connection refused")
	resolver := NewResolver(store, nil, time.Second, nil)
	_, err := resolver.Resolve(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIdentityNotFound)
}

func TestResolveTimesOut(t *testing.T) {
	store := newStubLookup(adminUser())
	store.block = make(chan struct{})
	defer close(store.block)
	resolver := NewResolver(store, nil, 20*time.Millisecond, nil)

	_, err := resolver.Resolve(context.Background(), 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolveCollapsesConcurrentLookups(t *testing.T) {
	store := newStubLookup(adminUser())
	store.block = make(chan struct{})
	resolver := NewResolver(store, nil, time.Second, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := resolver.Resolve(context.Background(), 1)
			errs <- err
		}()
	}
	require.Eventually(t, func() bool { return store.calls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(store.block)
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), store.calls.Load())
}

func TestInvalidateAll(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	for _, id := range []int64{1, 2, 3} {
		u := adminUser()
		u.ID = id
		stamp, err := cache.Stamp(ctx, id)
		require.NoError(t, err)
		written, err := cache.Put(ctx, &u, stamp)
		require.NoError(t, err)
		require.True(t, written)
	}
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, cache.InvalidateAll(ctx))
	for _, key := range []string{"core:identity:user:1", "core:identity:user:2", "core:identity:user:3"} {
		assert.False(t, mr.Exists(key))
	}
	assert.True(t, mr.Exists("unrelated"))
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *IdentityCache
	ctx := context.Background()
	user, err := cache.Get(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, user)
	stamp, err := cache.Stamp(ctx, 1)
	assert.NoError(t, err)
	written, err := cache.Put(ctx, &users.User{ID: 1}, stamp)
	assert.NoError(t, err)
	assert.False(t, written)
	assert.NoError(t, cache.Invalidate(ctx, 1))
	assert.NoError(t, cache.InvalidateAll(ctx))
}

func TestPutSkipsSnapshotsOlderThanInvalidation(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	u := adminUser()

	stamp, err := cache.Stamp(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx, 1))
	written, err := cache.Put(ctx, &u, stamp)
	require.NoError(t, err)
	assert.False(t, written)
	assert.False(t, mr.Exists("core:identity:user:1"))

	stamp, err = cache.Stamp(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, cache.InvalidateAll(ctx))
	written, err = cache.Put(ctx, &u, stamp)
	require.NoError(t, err)
	assert.False(t, written)

	stamp, err = cache.Stamp(ctx, 1)
	require.NoError(t, err)
	written, err = cache.Put(ctx, &u, stamp)
	require.NoError(t, err)
	assert.True(t, written)
}

func TestDeactivationDuringLookupIsNotCached(t *testing.T) {
	cache, mr := newTestCache(t)
	store := newStubLookup(adminUser())
	store.read = make(chan struct{}, 1)
	store.hold = make(chan struct{})
	verifier, err := NewTokenVerifier(testSecret)
	require.NoError(t, err)
	signer, err := NewSigner(testSecret)
	require.NoError(t, err)
	authn := NewAuthenticator(verifier, NewResolver(store, cache, time.Second, nil), nil)
	ctx := context.Background()
	header := bearer(t, signer, 1)

	done := make(chan State, 1)
	go func() {
		_, state := authn.Authenticate(ctx, header)
		done <- state
	}()
	<-store.read

	store.setActive(1, false)
	require.NoError(t, cache.Invalidate(ctx, 1))
	close(store.hold)
	<-done

	assert.False(t, mr.Exists("core:identity:user:1"))
	_, state := authn.Authenticate(ctx, header)
	assert.Equal(t, StateUnauthenticated, state)
}

func TestRoleChangeDuringLookupIsNotCached(t *testing.T) {
	cache, mr := newTestCache(t)
	store := newStubLookup(adminUser())
	store.read = make(chan struct{}, 1)
	store.hold = make(chan struct{})
	resolver := NewResolver(store, cache, time.Second, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := resolver.Resolve(ctx, 1)
		done <- err
	}()
	<-store.read
	require.NoError(t, cache.InvalidateAll(ctx))
	close(store.hold)
	require.NoError(t, <-done)

	assert.False(t, mr.Exists("core:identity:user:1"))
}
