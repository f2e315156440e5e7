package app

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tasoula/intershop-sub000/internal/balance/domain"
)

type Service struct {
	repo BalanceRepo

	startingAmount decimal.Decimal
}

func NewService(repo BalanceRepo, startingAmount decimal.Decimal) *Service {
	return &Service{
		repo:           repo,
		startingAmount: startingAmount,
	}
}

// GetOrCreateBalance returns the user's balance, creating the account
// with the default starting amount on first contact. This is the only
// path that creates accounts.
func (s *Service) GetOrCreateBalance(ctx context.Context, userID uuid.UUID) (domain.Balance, error) {
	b, err := s.repo.Get(ctx, userID)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return domain.Balance{}, err
	}
	return s.repo.Create(ctx, userID, s.startingAmount)
}

// Withdraw debits amount from the user's account. It never creates an
// account: an unknown user fails with ErrAccountNotFound.
func (s *Service) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}

	if _, err := s.repo.Get(ctx, userID); err != nil {
		return err
	}

	ok, err := s.repo.Withdraw(ctx, userID, amount)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInsufficientFunds
	}
	return nil
}
