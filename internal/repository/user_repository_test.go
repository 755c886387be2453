package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
)

func newUser(username string) *domain.User {
	return &domain.User{
		Username:     username,
		PasswordHash: "hash",
		FirstName:    "Alice",
		LastName:     "Liddell",
		Country:      "UK",
		Role:         domain.RoleUser,
	}
}

func TestMemoryRepositorySaveAndFind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	_, err := repo.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, ErrUserNotFound)

	user := newUser("alice")
	require.NoError(t, repo.Save(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	found, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, *user, *found)

	found.Role = domain.RoleAdmin
	again, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, again.Role)
}

func TestMemoryRepositoryRejectsDuplicatesConcurrently(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	var saved atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Save(ctx, newUser("bob")); err == nil {
				saved.Add(1)
			} else {
				assert.ErrorIs(t, err, ErrDuplicateUsername)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), saved.Load())
}

func TestMemoryRepositoryHonoursCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewMemoryUserRepository()
	assert.ErrorIs(t, repo.Save(ctx, newUser("carol")), context.Canceled)
	_, err := repo.FindByUsername(ctx, "carol")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCachedRepositoryWithoutClientIsPassThrough(t *testing.T) {
	t.Parallel()
	base := NewMemoryUserRepository()

	assert.Same(t, base, NewCachedUserRepository(base, nil, time.Minute, nil))
}

func TestCachedRepositoryDegradesWhenRedisIsDown(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	repo := NewCachedUserRepository(NewMemoryUserRepository(), client, time.Minute, nil)

	require.NoError(t, repo.Save(ctx, newUser("dave")))
	assert.ErrorIs(t, repo.Save(ctx, newUser("dave")), ErrDuplicateUsername)

	found, err := repo.FindByUsername(ctx, "dave")
	require.NoError(t, err)
	assert.Equal(t, "dave", found.Username)

	_, err = repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCachedUserConversion(t *testing.T) {
	t.Parallel()
	user := newUser("erin")
	user.ID = "42"
	user.CreatedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.Equal(t, user, fromDomain(user).toDomain())
}
