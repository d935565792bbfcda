package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leoperezgr/Leofy/internal/core"
	"github.com/leoperezgr/Leofy/internal/events"
	"github.com/leoperezgr/Leofy/internal/log"
	"github.com/leoperezgr/Leofy/internal/storage"
)

// DashboardRecentLimit is how many transactions the dashboard shows.
const DashboardRecentLimit = 5

// Dashboard is the stats/dashboard payload: aggregate sums plus the most
// recent activity and the caller's cards.
type Dashboard struct {
	Income             core.Money             `json:"income"`
	Expenses           core.Money             `json:"expenses"`
	Balance            core.Money             `json:"balance"`
	RecentTransactions []DashboardTransaction `json:"recentTransactions"`
	Cards              []DashboardCard        `json:"cards"`
}

type DashboardTransaction struct {
	ID          string               `json:"id"`
	Type        core.TransactionType `json:"type"`
	Amount      core.Money           `json:"amount"`
	Description string               `json:"description,omitempty"`
	OccurredAt  time.Time            `json:"occurred_at"`
	CategoryID  *string              `json:"category_id,omitempty"`
}

type DashboardCard struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Last4       string     `json:"last4,omitempty"`
	CreditLimit *core.Money `json:"credit_limit,omitempty"`
}

// FinanceService handles cards, transactions, and aggregation. Transaction
// creation optionally publishes an event; publish failures never fail the
// request.
type FinanceService struct {
	store  storage.Store
	events *events.Client
}

func NewFinanceService(store storage.Store, eventsClient *events.Client) *FinanceService {
	return &FinanceService{store: store, events: eventsClient}
}

// CreateTransaction validates and persists a transaction owned by the
// caller, then publishes a created event when a broker is configured.
func (s *FinanceService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if s.events != nil {
		msg := events.NewTransactionCreatedMessage(t.ID, t.UserID, string(t.Type), t.Amount.Cents)
		if err := s.events.PublishTransactionCreated(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish transaction event",
				log.FieldTxID, t.ID, log.FieldError, err)
		}
	}

	return t, nil
}

func (s *FinanceService) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, userID)
}

func (s *FinanceService) CreateCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	if err := c.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()

	if err := s.store.CreateCard(ctx, c); err != nil {
		return core.CreditCard{}, fmt.Errorf("save card: %w", err)
	}
	return c, nil
}

func (s *FinanceService) ListCards(ctx context.Context, userID string) ([]core.CreditCard, error) {
	return s.store.ListCards(ctx, userID)
}

// Summary sums the caller's transactions by type. It walks the rows through
// the pure aggregation functions rather than pushing the sum into SQL, so
// the same math backs every store implementation.
func (s *FinanceService) Summary(ctx context.Context, userID string) (core.Summary, error) {
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list transactions: %w", err)
	}
	return core.Summarize(txs), nil
}

// CategoryBreakdown groups the caller's transactions by resolved category
// label, sorted by descending sum.
func (s *FinanceService) CategoryBreakdown(ctx context.Context, userID string) ([]core.CategoryAmount, error) {
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return core.CategoryBreakdown(txs), nil
}

// DashboardFor computes the dashboard via aggregate queries. The income and
// expense sums are independent, so they run concurrently.
func (s *FinanceService) DashboardFor(ctx context.Context, userID string) (Dashboard, error) {
	var incomeCents, expenseCents int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		incomeCents, err = s.store.SumAmountByType(gctx, userID, core.Income)
		return err
	})
	g.Go(func() error {
		var err error
		expenseCents, err = s.store.SumAmountByType(gctx, userID, core.Expense)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("aggregate sums: %w", err)
	}

	recent, err := s.store.RecentTransactions(ctx, userID, DashboardRecentLimit)
	if err != nil {
		return Dashboard{}, fmt.Errorf("recent transactions: %w", err)
	}
	cards, err := s.store.ListCards(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list cards: %w", err)
	}

	d := Dashboard{
		Income:             core.Money{Cents: incomeCents},
		Expenses:           core.Money{Cents: expenseCents},
		Balance:            core.Money{Cents: incomeCents - expenseCents},
		RecentTransactions: make([]DashboardTransaction, 0, len(recent)),
		Cards:              make([]DashboardCard, 0, len(cards)),
	}
	for _, t := range recent {
		d.RecentTransactions = append(d.RecentTransactions, DashboardTransaction{
			ID:          t.ID,
			Type:        t.Type,
			Amount:      t.Amount,
			Description: t.Description,
			OccurredAt:  t.OccurredAt,
			CategoryID:  t.CategoryID,
		})
	}
	for _, c := range cards {
		d.Cards = append(d.Cards, DashboardCard{
			ID:          c.ID,
			Name:        c.Name,
			Last4:       c.Last4,
			CreditLimit: c.CreditLimit,
		})
	}
	return d, nil
}
