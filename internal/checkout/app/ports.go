package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is a cart entry as the orchestrator sees it.
type CartLine struct {
	ProductID uuid.UUID
	Quantity  int64
}

// Product carries the catalog fields checkout needs.
type Product struct {
	ID            uuid.UUID
	Title         string
	Price         decimal.Decimal
	StockQuantity int64
}

// OrderLine is a priced order item to persist.
type OrderLine struct {
	OrderID            uuid.UUID
	ProductID          uuid.UUID
	Quantity           int64
	PriceAtTimeOfOrder decimal.Decimal
}

type CartStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]CartLine, error)
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) error
}

type ProductStore interface {
	// Get returns ErrProductNotFound for an unknown id.
	Get(ctx context.Context, productID uuid.UUID) (Product, error)
	// DecrementStock reports false when stock would go negative; the
	// product is left untouched in that case.
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int64) (bool, error)
	RestoreStock(ctx context.Context, productID uuid.UUID, qty int64) error
}

type OrderStore interface {
	CreateHeader(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	SaveItem(ctx context.Context, line OrderLine) error
	SetTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error
	// Delete unwinds the order and its items after a failed checkout.
	Delete(ctx context.Context, orderID uuid.UUID) error
}

// WithdrawOutcome is the tagged result of a payment attempt, one value
// per wire status the boundary can answer with.
type WithdrawOutcome int

const (
	WithdrawOK WithdrawOutcome = iota
	WithdrawInsufficientFunds
	WithdrawAccountNotFound
	WithdrawOther
)

// WithdrawResult carries the outcome plus the raw status for the
// WithdrawOther case.
type WithdrawResult struct {
	Outcome    WithdrawOutcome
	StatusCode int
}

// Payments is the remote balance boundary. A non-nil error means the
// exchange itself failed (timeout, transport); a served response is
// always a WithdrawResult.
type Payments interface {
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (WithdrawResult, error)
}
