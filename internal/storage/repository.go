package storage

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	sqlite3 "modernc.org/sqlite"

	"github.com/leoperezgr/Leofy/internal/core"
	"github.com/leoperezgr/Leofy/internal/log"
)

// Repository implements Store over database/sql. The same query set serves
// both drivers; placeholders are written as ? and rebound to $n for
// postgres.
type Repository struct {
	db      *sql.DB
	driver  string
	timeout time.Duration
}

// OpenSQLite opens (and migrates) a sqlite database at path.
func OpenSQLite(path string, queryTimeout time.Duration) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite does not tolerate concurrent writers on one file.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db, "sqlite"); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, driver: "sqlite", timeout: queryTimeout}, nil
}

// OpenPostgres opens (and migrates) a postgres database. When caCertPath is
// set the connection verifies the server against that CA bundle.
func OpenPostgres(dsn, caCertPath string, queryTimeout time.Duration) (*Repository, error) {
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if caCertPath != "" {
		pem, err := os.ReadFile(caCertPath)
		if err != nil {
			return nil, fmt.Errorf("read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", caCertPath)
		}
		connCfg.TLSConfig = &tls.Config{
			RootCAs:    pool,
			ServerName: connCfg.Host,
		}
	}

	db := stdlib.OpenDB(*connCfg)
	db.SetMaxOpenConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db, "postgres"); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, driver: "postgres", timeout: queryTimeout}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// opCtx attaches the per-call query timeout.
func (r *Repository) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

// rebind rewrites ? placeholders to $1..$n for postgres. Queries never
// contain literal question marks, so a plain scan is enough.
func (r *Repository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *Repository) isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var sqErr *sqlite3.Error
	if errors.As(err, &sqErr) {
		// SQLITE_CONSTRAINT_PRIMARYKEY / SQLITE_CONSTRAINT_UNIQUE
		return sqErr.Code() == 1555 || sqErr.Code() == 2067
	}
	return false
}

const userColumns = "id, email, password_hash, full_name, email_verified, is_active, onboarded, created_at, last_login_at"

func (r *Repository) CreateUser(ctx context.Context, u core.User) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.Email, u.PasswordHash, u.FullName, u.EmailVerified, u.IsActive, u.Onboarded, u.CreatedAt.UTC(), nullTime(u.LastLoginAt))
	if err != nil {
		if r.isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	slog.InfoContext(ctx, "User created", log.FieldUserID, u.ID)
	return nil
}

func (r *Repository) UserByEmail(ctx context.Context, email string) (core.User, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, r.rebind(
		`SELECT `+userColumns+` FROM users WHERE email = ?`), core.NormalizeEmail(email))
	return scanUser(row)
}

func (r *Repository) UserByID(ctx context.Context, id string) (core.User, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	row := r.db.QueryRowContext(ctx, r.rebind(
		`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	return scanUser(row)
}

func (r *Repository) UpdateUser(ctx context.Context, id string, upd UserUpdate) (core.User, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	var (
		sets []string
		args []any
	)
	if upd.FullName != nil {
		sets = append(sets, "full_name = ?")
		args = append(args, strings.TrimSpace(*upd.FullName))
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, core.NormalizeEmail(*upd.Email))
	}
	if upd.Onboarded != nil {
		sets = append(sets, "onboarded = ?")
		args = append(args, *upd.Onboarded)
	}
	if len(sets) == 0 {
		return r.UserByID(ctx, id)
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, r.rebind(
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	if err != nil {
		if r.isUniqueViolation(err) {
			return core.User{}, ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.User{}, ErrNotFound
	}

	return r.UserByID(ctx, id)
}

func (r *Repository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, r.rebind(
		`UPDATE users SET last_login_at = ? WHERE id = ?`), at.UTC(), id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

const cardColumns = "id, user_id, name, last4, brand, credit_limit_cents, closing_day, due_day, created_at"

func (r *Repository) CreateCard(ctx context.Context, c core.CreditCard) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	var limit sql.NullInt64
	if c.CreditLimit != nil {
		limit = sql.NullInt64{Int64: c.CreditLimit.Cents, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO credit_cards (`+cardColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		c.ID, c.UserID, c.Name, c.Last4, string(c.Brand), limit, nullInt(c.ClosingDay), nullInt(c.DueDay), c.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}

	slog.InfoContext(ctx, "Card created", log.FieldCardID, c.ID, log.FieldUserID, c.UserID)
	return nil
}

func (r *Repository) ListCards(ctx context.Context, userID string) ([]core.CreditCard, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, r.rebind(
		`SELECT `+cardColumns+` FROM credit_cards WHERE user_id = ? ORDER BY created_at DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	// Non-nil so an empty result serializes as [] rather than null.
	cards := make([]core.CreditCard, 0)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

const txColumns = "id, user_id, type, amount_cents, description, occurred_at, card_id, category_id, metadata, created_at"

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	meta := "{}"
	if len(t.Metadata) > 0 {
		raw, err := json.Marshal(t.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		meta = string(raw)
	}

	_, err := r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO transactions (`+txColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID, t.UserID, string(t.Type), t.Amount.Cents, t.Description, t.OccurredAt.UTC(),
		nullString(t.CardID), nullString(t.CategoryID), meta, t.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		log.FieldTxID, t.ID,
		log.FieldUserID, t.UserID,
		log.FieldTxType, t.Type,
		log.FieldAmountCents, t.Amount.Cents)
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE user_id = ? ORDER BY occurred_at DESC`, userID)
}

func (r *Repository) RecentTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE user_id = ? ORDER BY occurred_at DESC LIMIT ?`, userID, int64(limit))
}

func (r *Repository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *Repository) SumAmountByType(ctx context.Context, userID string, typ core.TransactionType) (int64, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	var sum int64
	err := r.db.QueryRowContext(ctx, r.rebind(
		`SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE user_id = ? AND type = ?`),
		userID, string(typ)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return sum, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (core.User, error) {
	var (
		u         core.User
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.EmailVerified, &u.IsActive, &u.Onboarded, &u.CreatedAt, &lastLogin)
	if err == sql.ErrNoRows {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return u, nil
}

func scanCard(row rowScanner) (core.CreditCard, error) {
	var (
		c          core.CreditCard
		brand      string
		limit      sql.NullInt64
		closingDay sql.NullInt64
		dueDay     sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Last4, &brand, &limit, &closingDay, &dueDay, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return core.CreditCard{}, ErrNotFound
	}
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("scan card: %w", err)
	}
	c.Brand = core.CardBrand(brand)
	if limit.Valid {
		c.CreditLimit = &core.Money{Cents: limit.Int64}
	}
	if closingDay.Valid {
		d := int(closingDay.Int64)
		c.ClosingDay = &d
	}
	if dueDay.Valid {
		d := int(dueDay.Int64)
		c.DueDay = &d
	}
	return c, nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t          core.Transaction
		typ        string
		cents      int64
		cardID     sql.NullString
		categoryID sql.NullString
		meta       string
	)
	err := row.Scan(&t.ID, &t.UserID, &typ, &cents, &t.Description, &t.OccurredAt, &cardID, &categoryID, &meta, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = core.TransactionType(typ)
	t.Amount = core.Money{Cents: cents}
	if cardID.Valid {
		t.CardID = &cardID.String
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.String
	}
	if meta != "" && meta != "{}" {
		if err := json.Unmarshal([]byte(meta), &t.Metadata); err != nil {
			return core.Transaction{}, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
