package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tasoula/intershop-sub000/internal/balance/domain"
)

type BalanceRepo interface {
	Get(ctx context.Context, userID uuid.UUID) (domain.Balance, error)
	// Create inserts a new account with the given starting amount. When
	// the account already exists the existing row is returned untouched.
	Create(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (domain.Balance, error)
	// Withdraw subtracts amount where the balance suffices, reporting
	// whether a row was updated. A missing account is a separate error.
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (bool, error)
}
