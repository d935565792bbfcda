package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

const (
	BrandVisa       CardBrand = "VISA"
	BrandMastercard CardBrand = "MASTERCARD"
	BrandAmex       CardBrand = "AMEX"
	BrandOther      CardBrand = "OTHER"
)

// MetadataCategoryName is the metadata key holding a free-text category
// label when a transaction has no normalized category reference.
const MetadataCategoryName = "category_name"

type (
	TransactionType string

	CardBrand string

	User struct {
		ID            string     `json:"id"`
		Email         string     `json:"email"`
		PasswordHash  string     `json:"-"`
		FullName      string     `json:"full_name"`
		EmailVerified bool       `json:"email_verified"`
		IsActive      bool       `json:"is_active"`
		Onboarded     bool       `json:"onboarded"`
		CreatedAt     time.Time  `json:"created_at"`
		LastLoginAt   *time.Time `json:"last_login_at"`
	}

	CreditCard struct {
		ID          string    `json:"id"`
		UserID      string    `json:"user_id"`
		Name        string    `json:"name"`
		Last4       string    `json:"last4,omitempty"`
		Brand       CardBrand `json:"brand,omitempty"`
		CreditLimit *Money    `json:"credit_limit,omitempty"`
		ClosingDay  *int      `json:"closing_day,omitempty"`
		DueDay      *int      `json:"due_day,omitempty"`
		CreatedAt   time.Time `json:"created_at"`
	}

	Transaction struct {
		ID          string            `json:"id"`
		UserID      string            `json:"user_id"`
		Type        TransactionType   `json:"type"`
		Amount      Money             `json:"amount"`
		Description string            `json:"description,omitempty"`
		OccurredAt  time.Time         `json:"occurred_at"`
		CardID      *string           `json:"card_id,omitempty"`
		CategoryID  *string           `json:"category_id,omitempty"`
		Metadata    map[string]string `json:"metadata,omitempty"`
		CreatedAt   time.Time         `json:"created_at"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidBrand  = errors.New("invalid card brand")
	ErrInvalidLast4  = errors.New("last4 must be exactly 4 digits")
	ErrInvalidDay    = errors.New("day must be between 1 and 31")
	ErrEmptyName     = errors.New("empty name")
	ErrZeroDate      = errors.New("date cannot be zero")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// ParseTransactionType normalizes the lower-case wire spelling used by the
// API ("income"/"expense") into the canonical enum.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Income):
		return Income, nil
	case string(Expense):
		return Expense, nil
	default:
		return "", ErrInvalidType
	}
}

func (b CardBrand) Valid() bool {
	switch b {
	case BrandVisa, BrandMastercard, BrandAmex, BrandOther:
		return true
	default:
		return false
	}
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.Last4 != "" {
		if len(c.Last4) != 4 {
			return ErrInvalidLast4
		}
		for _, r := range c.Last4 {
			if r < '0' || r > '9' {
				return ErrInvalidLast4
			}
		}
	}
	if c.Brand != "" && !c.Brand.Valid() {
		return ErrInvalidBrand
	}
	if c.CreditLimit != nil {
		if err := c.CreditLimit.Validate(); err != nil {
			return err
		}
	}
	for _, d := range []*int{c.ClosingDay, c.DueDay} {
		if d != nil && (*d < 1 || *d > 31) {
			return ErrInvalidDay
		}
	}
	return nil
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.OccurredAt.IsZero() {
		return ErrZeroDate
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// CategoryLabel resolves the display label for a transaction: the free-text
// metadata category first, then a synthetic label from the category
// reference, then "Uncategorized".
func (t Transaction) CategoryLabel() string {
	if name, ok := t.Metadata[MetadataCategoryName]; ok && strings.TrimSpace(name) != "" {
		return name
	}
	if t.CategoryID != nil && *t.CategoryID != "" {
		return "Category #" + *t.CategoryID
	}
	return "Uncategorized"
}
