// Package storage persists users, credit cards, and transactions. Two
// implementations exist: a SQL repository (sqlite or postgres) and an
// in-memory store used by tests and the memory backend.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/leoperezgr/Leofy/internal/core"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already taken")
)

// UserUpdate carries the optional profile mutations. Nil fields are left
// untouched.
type UserUpdate struct {
	FullName  *string
	Email     *string
	Onboarded *bool
}

// IsEmpty reports whether the update would change nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Email == nil && u.Onboarded == nil
}

type UserStore interface {
	// CreateUser persists a new user; ErrEmailTaken when the email exists.
	CreateUser(ctx context.Context, u core.User) error
	UserByEmail(ctx context.Context, email string) (core.User, error)
	UserByID(ctx context.Context, id string) (core.User, error)
	// UpdateUser applies the non-nil fields; ErrEmailTaken on collision.
	UpdateUser(ctx context.Context, id string, upd UserUpdate) (core.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

type CardStore interface {
	CreateCard(ctx context.Context, c core.CreditCard) error
	// ListCards returns the owner's cards, most recently created first.
	ListCards(ctx context.Context, userID string) ([]core.CreditCard, error)
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) error
	// ListTransactions returns the owner's transactions, most recently
	// occurred first.
	ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
	RecentTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error)
	// SumAmountByType is the aggregate income or expense total in cents.
	SumAmountByType(ctx context.Context, userID string, typ core.TransactionType) (int64, error)
}

// Store is the full persistence surface required by the API.
type Store interface {
	UserStore
	CardStore
	TransactionStore
	Close() error
}
