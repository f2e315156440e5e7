package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrEmptyCart covers both an empty cart and a failed stock
	// pre-check; neither leaves any mutation behind.
	ErrEmptyCart = errors.New("cart is empty")

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotFound   = errors.New("payment account not found")
	ErrPaymentSystem     = errors.New("payment system error")

	ErrProductNotFound = errors.New("product not found")

	// errStockShort marks a lost stock reservation inside the fan-out.
	errStockShort = errors.New("insufficient stock")
)

// Service turns a user's cart into a paid order: stock pre-check, order
// header, per-item stock reservation and line persistence, total, then
// the remote withdrawal, and only then the cart drain. Any failure past
// the header unwinds the stock decrements and the order.
type Service struct {
	cart     CartStore
	products ProductStore
	orders   OrderStore
	payments Payments
	log      *slog.Logger

	maxConcurrent int
}

func NewService(cart CartStore, products ProductStore, orders OrderStore, payments Payments, log *slog.Logger, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}

	return &Service{
		cart:          cart,
		products:      products,
		orders:        orders,
		payments:      payments,
		log:           log,
		maxConcurrent: maxConcurrent,
	}
}

func (s *Service) CreateOrder(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	lines, err := s.cart.ListByUser(ctx, userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("list cart: %w", err)
	}
	if len(lines) == 0 {
		return uuid.Nil, ErrEmptyCart
	}

	products, err := s.precheck(ctx, lines)
	if err != nil {
		if errors.Is(err, errStockShort) || errors.Is(err, ErrProductNotFound) {
			return uuid.Nil, ErrEmptyCart
		}
		return uuid.Nil, err
	}

	// Header first so items can reference a real order id.
	orderID, err := s.orders.CreateHeader(ctx, userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create order header: %w", err)
	}

	applied, err := s.reserveAndPersist(ctx, orderID, lines, products)
	if err != nil {
		s.compensate(ctx, orderID, applied)
		if errors.Is(err, errStockShort) {
			return uuid.Nil, ErrEmptyCart
		}
		return uuid.Nil, err
	}

	total := decimal.Zero
	for idx, line := range lines {
		total = total.Add(products[idx].Price.Mul(decimal.NewFromInt(line.Quantity)))
	}
	if err := s.orders.SetTotal(ctx, orderID, total); err != nil {
		s.compensate(ctx, orderID, applied)
		return uuid.Nil, fmt.Errorf("set order total: %w", err)
	}

	if err := s.withdraw(ctx, userID, total); err != nil {
		s.compensate(ctx, orderID, applied)
		return uuid.Nil, err
	}

	// Paid. A failed cart drain must not fail the checkout; the order
	// and the debit are already committed.
	if err := s.cart.DeleteAllByUser(ctx, userID); err != nil {
		s.log.Error("cart drain failed after successful payment",
			slog.String("user_id", userID.String()),
			slog.String("order_id", orderID.String()),
			slog.Any("err", err))
	}

	return orderID, nil
}

// precheck verifies stock for every cart line before anything mutates.
func (s *Service) precheck(ctx context.Context, lines []CartLine) ([]Product, error) {
	products := make([]Product, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range lines {
		g.Go(func() error {
			line := lines[idx]
			if line.Quantity <= 0 {
				return fmt.Errorf("quantity must be greater than zero: %d", line.Quantity)
			}

			p, err := s.products.Get(gctx, line.ProductID)
			if err != nil {
				return fmt.Errorf("product %s: %w", line.ProductID, err)
			}
			if p.StockQuantity < line.Quantity {
				return fmt.Errorf("product %s: %w", line.ProductID, errStockShort)
			}

			products[idx] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return products, nil
}

// reserveAndPersist decrements stock and writes the order line for each
// cart entry. Different products proceed concurrently; each product's
// own read-decrement-write is a single conditional statement at the
// store, so overlapping checkouts cannot lose updates. Returned lines
// are the decrements actually applied, for compensation.
func (s *Service) reserveAndPersist(ctx context.Context, orderID uuid.UUID, lines []CartLine, products []Product) ([]CartLine, error) {
	var (
		mu      sync.Mutex
		applied []CartLine
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range lines {
		g.Go(func() error {
			line := lines[idx]

			ok, err := s.products.DecrementStock(gctx, line.ProductID, line.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock %s: %w", line.ProductID, err)
			}
			if !ok {
				// A concurrent checkout consumed the stock after our
				// pre-check.
				return fmt.Errorf("product %s: %w", line.ProductID, errStockShort)
			}

			mu.Lock()
			applied = append(applied, line)
			mu.Unlock()

			if err := s.orders.SaveItem(gctx, OrderLine{
				OrderID:            orderID,
				ProductID:          line.ProductID,
				Quantity:           line.Quantity,
				PriceAtTimeOfOrder: products[idx].Price,
			}); err != nil {
				return fmt.Errorf("save order item %s: %w", line.ProductID, err)
			}
			return nil
		})
	}

	err := g.Wait()
	return applied, err
}

func (s *Service) withdraw(ctx context.Context, userID uuid.UUID, total decimal.Decimal) error {
	res, err := s.payments.Withdraw(ctx, userID, total)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPaymentSystem, err)
	}

	switch res.Outcome {
	case WithdrawOK:
		return nil
	case WithdrawInsufficientFunds:
		return ErrInsufficientFunds
	case WithdrawAccountNotFound:
		return ErrAccountNotFound
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrPaymentSystem, res.StatusCode)
	}
}

// compensate restores the applied stock decrements and removes the
// order so a failed checkout leaves no durable trace. Runs detached
// from the caller's cancellation.
func (s *Service) compensate(ctx context.Context, orderID uuid.UUID, applied []CartLine) {
	ctx = context.WithoutCancel(ctx)

	for _, line := range applied {
		if err := s.products.RestoreStock(ctx, line.ProductID, line.Quantity); err != nil {
			s.log.Error("stock restore failed",
				slog.String("order_id", orderID.String()),
				slog.String("product_id", line.ProductID.String()),
				slog.Int64("quantity", line.Quantity),
				slog.Any("err", err))
		}
	}

	if err := s.orders.Delete(ctx, orderID); err != nil {
		s.log.Error("order unwind failed",
			slog.String("order_id", orderID.String()),
			slog.Any("err", err))
	}
}
