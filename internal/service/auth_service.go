package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	hasher     auth.PasswordHasher
	tokens     *auth.TokenCodec
	dispatcher events.Dispatcher
	logger     *zap.Logger

	timingOnce sync.Once
	timingHash string
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Hasher     auth.PasswordHasher
	Tokens     *auth.TokenCodec
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Login authenticates a user and issues a token carrying the stored role.
// The record is fetched before the password is checked.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.Token, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn a comparison so unknown and known usernames cost the same.
			_ = s.hasher.Compare(s.dummyHash(), password)
			s.publish(ctx, events.EventLoginFailed, username, events.LoginPayload{Reason: "USER_NOT_FOUND"})
			return domain.Token{}, apperrors.NewUserNotFound(username)
		}
		return domain.Token{}, apperrors.NewStorageError("Error reading user from database", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.publish(ctx, events.EventLoginFailed, username, events.LoginPayload{Reason: "BAD_CREDENTIALS"})
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return domain.Token{}, apperrors.NewBadCredentials()
		}
		return domain.Token{}, apperrors.NewAuthenticationFailed(err)
	}

	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return domain.Token{}, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.EventLoginSucceeded, username, events.LoginPayload{Role: user.Role})
	return token, nil
}

// Register creates a USER account and returns a token for it.
func (s *AuthService) Register(ctx context.Context, input domain.NewUser) (domain.Token, error) {
	if _, err := s.users.FindByUsername(ctx, input.Username); err == nil {
		return domain.Token{}, apperrors.NewUserAlreadyExists(input.Username)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return domain.Token{}, apperrors.NewStorageError("Error reading user from database", err)
	}

	if err := validateRegistration(input); err != nil {
		return domain.Token{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return domain.Token{}, apperrors.NewInvalidOperation("register", "Password must be at most 72 bytes long")
		}
		return domain.Token{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:     input.Username,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Country:      strings.TrimSpace(input.Country),
		Role:         domain.RoleUser,
	}
	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return domain.Token{}, apperrors.NewUserAlreadyExists(input.Username)
		}
		return domain.Token{}, apperrors.NewStorageError("Error saving user to database", err)
	}

	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return domain.Token{}, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.EventUserRegistered, user.Username,
		events.UserRegisteredPayload{Role: user.Role, Country: user.Country})
	return token, nil
}

// EnsureAdmin creates the ADMIN account if it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return false, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, err
	}
	admin := &domain.User{
		Username:     username,
		PasswordHash: hash,
		FirstName:    "System",
		LastName:     "Administrator",
		Country:      "-",
		Role:         domain.RoleAdmin,
	}
	if err := s.users.Save(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return false, nil
		}
		return false, err
	}
	s.logger.Info("seeded admin account", zap.String("username", username))
	return true, nil
}

// Profile returns the stored record for an authenticated subject.
func (s *AuthService) Profile(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFound(username)
		}
		return nil, apperrors.NewStorageError("Error reading user from database", err)
	}
	return user, nil
}

func validateRegistration(input domain.NewUser) error {
	switch {
	case utf8.RuneCountInString(input.Username) < minUsernameLength:
		return apperrors.NewInvalidOperation("register", "Username must be at least 3 characters long")
	case utf8.RuneCountInString(input.Password) < minPasswordLength:
		return apperrors.NewInvalidOperation("register", "Password must be at least 8 characters long")
	case strings.TrimSpace(input.FirstName) == "":
		return apperrors.NewInvalidOperation("register", "First name cannot be empty")
	case strings.TrimSpace(input.LastName) == "":
		return apperrors.NewInvalidOperation("register", "Last name cannot be empty")
	case strings.TrimSpace(input.Country) == "":
		return apperrors.NewInvalidOperation("register", "Country cannot be empty")
	}
	return nil
}

func (s *AuthService) dummyHash() string {
	s.timingOnce.Do(func() {
		hash, err := s.hasher.Hash("timing-equalization-placeholder")
		if err != nil {
			s.logger.Warn("could not prepare timing hash", zap.Error(err))
		}
		s.timingHash = hash
	})
	return s.timingHash
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, subject string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, events.New(eventType, subject, payload)); err != nil {
		s.logger.Warn("audit publish failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}
