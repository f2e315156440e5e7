package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound   = errors.New("balance account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// Balance is a user's monetary account. Amount never goes negative;
// withdraw enforces the invariant at the store.
type Balance struct {
	UserID    uuid.UUID
	Amount    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
