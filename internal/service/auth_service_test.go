package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leoperezgr/Leofy/internal/auth"
	"github.com/leoperezgr/Leofy/internal/storage"
)

func newAuthService() (*AuthService, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewAuthService(store, auth.NewHasher(10), tokens), store
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "Alice@Example.COM", "password123", " Alice ")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "alice@example.com", user.Email)
	require.Equal(t, "Alice", user.FullName)
	require.True(t, user.IsActive)
	require.False(t, user.Onboarded)
	require.NotEmpty(t, token)

	loggedIn, token2, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)
	require.NotNil(t, loggedIn.LastLoginAt)
	require.NotEmpty(t, token2)

	// The verified token subject is the created user's id.
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	identity, err := tokens.Verify(token2)
	require.NoError(t, err)
	require.Equal(t, user.ID, identity.UserID)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "no-at-sign", "password123", "")
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, _, err = svc.Register(ctx, "ok@example.com", "short", "")
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "dup@example.com", "password123", "")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "DUP@example.com", "password456", "")
	require.ErrorIs(t, err, storage.ErrEmailTaken)
}

func TestLoginFailureIsUniform(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "known@example.com", "password123", "")
	require.NoError(t, err)

	_, _, errUnknown := svc.Login(ctx, "unknown@example.com", "password123")
	_, _, errWrongPw := svc.Login(ctx, "known@example.com", "wrong-password")

	require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	require.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
	require.Equal(t, errUnknown.Error(), errWrongPw.Error())
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "edit@example.com", "password123", "Before")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, user.ID, nil, nil)
	require.ErrorIs(t, err, ErrNothingToUpdate)

	shortName := " x "
	_, err = svc.UpdateProfile(ctx, user.ID, &shortName, nil)
	require.ErrorIs(t, err, ErrInvalidFullName)

	badEmail := "not-an-email"
	_, err = svc.UpdateProfile(ctx, user.ID, nil, &badEmail)
	require.ErrorIs(t, err, ErrInvalidEmail)

	newName := "After"
	newEmail := "after@example.com"
	updated, err := svc.UpdateProfile(ctx, user.ID, &newName, &newEmail)
	require.NoError(t, err)
	require.Equal(t, "After", updated.FullName)
	require.Equal(t, "after@example.com", updated.Email)
}

func TestUpdateProfileEmailCollision(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "first@example.com", "password123", "")
	require.NoError(t, err)
	second, _, err := svc.Register(ctx, "second@example.com", "password123", "")
	require.NoError(t, err)

	taken := "first@example.com"
	_, err = svc.UpdateProfile(ctx, second.ID, nil, &taken)
	require.ErrorIs(t, err, storage.ErrEmailTaken)
}

func TestCompleteOnboarding(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "onboard@example.com", "password123", "")
	require.NoError(t, err)

	updated, err := svc.CompleteOnboarding(ctx, user.ID, "Fresh Name")
	require.NoError(t, err)
	require.True(t, updated.Onboarded)
	require.Equal(t, "Fresh Name", updated.FullName)

	// Without a name the existing one is kept.
	again, err := svc.CompleteOnboarding(ctx, user.ID, "")
	require.NoError(t, err)
	require.True(t, again.Onboarded)
	require.Equal(t, "Fresh Name", again.FullName)
}

func TestCompleteOnboardingUnknownUser(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.CompleteOnboarding(context.Background(), "missing-id", "")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
