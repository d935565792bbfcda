package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/leoperezgr/Leofy/internal/core"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs the memory
// backend and the handler/service tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]core.User
	cards map[string][]core.CreditCard  // keyed by owner
	txs   map[string][]core.Transaction // keyed by owner
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]core.User),
		cards: make(map[string][]core.CreditCard),
		txs:   make(map[string][]core.Transaction),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrEmailTaken
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStore) UserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = core.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, ErrNotFound
}

func (s *MemoryStore) UserByID(_ context.Context, id string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return core.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, id string, upd UserUpdate) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return core.User{}, ErrNotFound
	}
	if upd.Email != nil {
		email := core.NormalizeEmail(*upd.Email)
		for otherID, other := range s.users {
			if otherID != id && other.Email == email {
				return core.User{}, ErrEmailTaken
			}
		}
		u.Email = email
	}
	if upd.FullName != nil {
		u.FullName = strings.TrimSpace(*upd.FullName)
	}
	if upd.Onboarded != nil {
		u.Onboarded = *upd.Onboarded
	}
	s.users[id] = u
	return u, nil
}

func (s *MemoryStore) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.LastLoginAt = &at
	s.users[id] = u
	return nil
}

func (s *MemoryStore) CreateCard(_ context.Context, c core.CreditCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cards[c.UserID] = append(s.cards[c.UserID], c)
	return nil
}

func (s *MemoryStore) ListCards(_ context.Context, userID string) ([]core.CreditCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cards := make([]core.CreditCard, len(s.cards[userID]))
	copy(cards, s.cards[userID])
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].CreatedAt.After(cards[j].CreatedAt)
	})
	return cards, nil
}

func (s *MemoryStore) CreateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.txs[t.UserID] = append(s.txs[t.UserID], t)
	return nil
}

func (s *MemoryStore) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs := make([]core.Transaction, len(s.txs[userID]))
	copy(txs, s.txs[userID])
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].OccurredAt.After(txs[j].OccurredAt)
	})
	return txs, nil
}

func (s *MemoryStore) RecentTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	txs, err := s.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

func (s *MemoryStore) SumAmountByType(_ context.Context, userID string, typ core.TransactionType) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum int64
	for _, t := range s.txs[userID] {
		if t.Type == typ {
			sum += t.Amount.Cents
		}
	}
	return sum, nil
}
