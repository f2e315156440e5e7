package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tasoula/intershop-sub000/internal/balance/domain"
)

type BalanceRepo struct {
	pool *pgxpool.Pool
}

func NewBalanceRepo(pool *pgxpool.Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

func (r *BalanceRepo) Get(ctx context.Context, userID uuid.UUID) (domain.Balance, error) {
	var b domain.Balance
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, amount, created_at, updated_at
		FROM balances
		WHERE user_id = $1`,
		userID).Scan(&b.UserID, &b.Amount, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Balance{}, domain.ErrAccountNotFound
	}
	if err != nil {
		return domain.Balance{}, err
	}
	return b, nil
}

// Create is race-safe under concurrent first reads: the losing insert
// keeps the winner's row and returns it.
func (r *BalanceRepo) Create(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (domain.Balance, error) {
	var b domain.Balance
	err := r.pool.QueryRow(ctx, `
		INSERT INTO balances (user_id, amount)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET amount = balances.amount
		RETURNING user_id, amount, created_at, updated_at`,
		userID, amount).Scan(&b.UserID, &b.Amount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return domain.Balance{}, err
	}
	return b, nil
}

// Withdraw applies the debit and the sufficiency check in one
// statement, so two concurrent withdrawals can never both pass the
// check against the same funds.
func (r *BalanceRepo) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE balances
		SET amount = amount - $2, updated_at = now()
		WHERE user_id = $1 AND amount >= $2`,
		userID, amount)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
