package app

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tasoula/intershop-sub000/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo ProductRepo
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) CreateProduct(ctx context.Context, title, desc string, price decimal.Decimal, stock int64) (domain.Product, error) {
	title = strings.TrimSpace(title)

	if title == "" || price.Sign() <= 0 || stock < 0 {
		return domain.Product{}, ErrInvalidInput
	}

	p := domain.Product{
		Title:         title,
		Description:   desc,
		Price:         price,
		StockQuantity: stock,
	}

	return s.repo.Create(ctx, p)
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	if id == uuid.Nil {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, query, limit, cursor)
}

func (s *Service) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if p.ID == uuid.Nil || strings.TrimSpace(p.Title) == "" || p.Price.Sign() <= 0 || p.StockQuantity < 0 {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Update(ctx, p)
}

// DecrementStock reports whether qty units were reserved. Stock can
// never be driven below zero: the repo applies a conditional update.
func (s *Service) DecrementStock(ctx context.Context, id uuid.UUID, qty int64) (bool, error) {
	if id == uuid.Nil || qty <= 0 {
		return false, ErrInvalidInput
	}
	return s.repo.DecrementStock(ctx, id, qty)
}

// RestoreStock puts qty units back after a cancelled checkout.
func (s *Service) RestoreStock(ctx context.Context, id uuid.UUID, qty int64) error {
	if id == uuid.Nil || qty <= 0 {
		return ErrInvalidInput
	}
	return s.repo.IncrementStock(ctx, id, qty)
}
