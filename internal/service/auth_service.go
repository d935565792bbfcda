// Package service orchestrates domain operations across storage, crypto
// primitives, and event publishing.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leoperezgr/Leofy/internal/auth"
	"github.com/leoperezgr/Leofy/internal/core"
	"github.com/leoperezgr/Leofy/internal/log"
	"github.com/leoperezgr/Leofy/internal/storage"
)

var (
	// ErrInvalidCredentials is returned for unknown email and wrong
	// password alike; callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNothingToUpdate    = errors.New("nothing to update")
	ErrInvalidFullName    = errors.New("full_name must be at least 2 characters")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// AuthService implements registration, login, and profile management.
type AuthService struct {
	store  storage.UserStore
	hasher *auth.Hasher
	tokens *auth.TokenManager
}

func NewAuthService(store storage.UserStore, hasher *auth.Hasher, tokens *auth.TokenManager) *AuthService {
	return &AuthService{store: store, hasher: hasher, tokens: tokens}
}

// Register creates a user and signs them in. storage.ErrEmailTaken
// propagates on duplicate email.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (core.User, string, error) {
	email = core.NormalizeEmail(email)
	if !strings.Contains(email, "@") {
		return core.User{}, "", ErrInvalidEmail
	}
	if len(password) < 8 {
		return core.User{}, "", ErrWeakPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return core.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user := core.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(name),
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return core.User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return core.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	slog.InfoContext(ctx, "User registered", log.FieldUserID, user.ID)
	return user, token, nil
}

// Login verifies credentials and issues a token. The failure is the same
// whether the email is unknown or the password wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (core.User, string, error) {
	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.User{}, "", ErrInvalidCredentials
		}
		return core.User{}, "", fmt.Errorf("lookup user: %w", err)
	}
	if !s.hasher.Check(password, user.PasswordHash) {
		return core.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return core.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	now := time.Now().UTC()
	if err := s.store.TouchLastLogin(ctx, user.ID, now); err != nil {
		// Login still succeeds; the timestamp refresh is best effort.
		slog.WarnContext(ctx, "Failed to refresh last login", log.FieldUserID, user.ID, log.FieldError, err)
	} else {
		user.LastLoginAt = &now
	}

	slog.InfoContext(ctx, "User logged in", log.FieldUserID, user.ID)
	return user, token, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (core.User, error) {
	return s.store.UserByID(ctx, userID)
}

// UpdateProfile applies partial profile changes. At least one field must be
// present; full_name must trim to two characters or more, and email must
// look like an email.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, fullName, email *string) (core.User, error) {
	if fullName == nil && email == nil {
		return core.User{}, ErrNothingToUpdate
	}
	if fullName != nil && len(strings.TrimSpace(*fullName)) < 2 {
		return core.User{}, ErrInvalidFullName
	}
	if email != nil && !strings.Contains(*email, "@") {
		return core.User{}, ErrInvalidEmail
	}

	user, err := s.store.UpdateUser(ctx, userID, storage.UserUpdate{
		FullName: fullName,
		Email:    email,
	})
	if err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "Profile updated", log.FieldUserID, userID)
	return user, nil
}

// CompleteOnboarding marks the user as onboarded, optionally setting the
// display name.
func (s *AuthService) CompleteOnboarding(ctx context.Context, userID, name string) (core.User, error) {
	onboarded := true
	upd := storage.UserUpdate{Onboarded: &onboarded}
	if name = strings.TrimSpace(name); name != "" {
		upd.FullName = &name
	}

	user, err := s.store.UpdateUser(ctx, userID, upd)
	if err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "Onboarding completed", log.FieldUserID, userID)
	return user, nil
}
