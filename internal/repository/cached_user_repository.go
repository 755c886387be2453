package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/domain"
)

const userCachePrefix = "auth:user:"

type cachedUser struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"password_hash"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Country      string      `json:"country"`
	Role         domain.Role `json:"role"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// cachedUserRepository is a read-through Redis cache in front of another store.
// Cache failures are logged and fall through to the underlying store.
type cachedUserRepository struct {
	base   UserRepository
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedUserRepository wraps base with a Redis cache. A nil client returns base unchanged.
func NewCachedUserRepository(base UserRepository, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) UserRepository {
	if client == nil || ttl <= 0 {
		return base
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cachedUserRepository{base: base, client: client, ttl: ttl, logger: logger}
}

func (r *cachedUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	key := userCachePrefix + username

	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached cachedUser
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			return cached.toDomain(), nil
		}
		r.logger.Warn("discarding corrupt user cache entry", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		r.logger.Warn("user cache read failed", zap.Error(err))
	}

	user, err := r.base.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(fromDomain(user)); err == nil {
		if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			r.logger.Warn("user cache write failed", zap.Error(err))
		}
	}
	return user, nil
}

func (r *cachedUserRepository) Save(ctx context.Context, user *domain.User) error {
	if err := r.base.Save(ctx, user); err != nil {
		return err
	}
	if err := r.client.Del(ctx, userCachePrefix+user.Username).Err(); err != nil {
		r.logger.Warn("user cache invalidation failed", zap.Error(err))
	}
	return nil
}

func fromDomain(u *domain.User) cachedUser {
	return cachedUser{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Country:      u.Country,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (c cachedUser) toDomain() *domain.User {
	return &domain.User{
		ID:           c.ID,
		Username:     c.Username,
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Country:      c.Country,
		Role:         c.Role,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
