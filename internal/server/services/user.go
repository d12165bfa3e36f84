// Package services contains server-side business logic. This file implements
// UserService, which handles registration and credential checks behind the
// failed-attempt rate limiter.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/inkwellapp/inkwell/internal/common"
	"github.com/inkwellapp/inkwell/internal/server/auth"
	"github.com/inkwellapp/inkwell/internal/server/models"
	"github.com/inkwellapp/inkwell/internal/server/ratelimit"
	"github.com/inkwellapp/inkwell/internal/server/repositories/repomanager"
)

// UserService provides account operations:
// - Register: create users
// - Login: verify credentials, throttled per normalized email
type UserService struct {
	db      *sql.DB
	repos   repomanager.RepositoryManager
	limiter *ratelimit.Limiter
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, repos repomanager.RepositoryManager, limiter *ratelimit.Limiter) *UserService {
	return &UserService{db: db, repos: repos, limiter: limiter}
}

// NormalizeEmail is the canonical spelling used for storage and rate-limit
// keys.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account. An already-used email yields
// common.ErrorLoginAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
	}
	return s.repos.Users(s.db).Create(ctx, user)
}

// Login verifies the credentials. Failures are counted per normalized email;
// a blocked email yields a ratelimit.BlockedError before any credential work
// happens. A wrong password and an unknown email are indistinguishable to the
// caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	key := NormalizeEmail(email)

	if retryAfter, blocked := s.limiter.Check(key); blocked {
		return nil, &ratelimit.BlockedError{RetryAfter: retryAfter}
	}

	user, err := s.repos.Users(s.db).GetByEmail(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.limiter.RecordFailure(key)
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		s.limiter.RecordFailure(key)
		return nil, common.ErrorUnauthorized
	}

	s.limiter.RecordSuccess(key)
	return user, nil
}
