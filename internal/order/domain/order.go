package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

// OrderItem captures the price at purchase time; later catalog price
// changes never alter historical orders.
type OrderItem struct {
	ID                 uuid.UUID
	OrderID            uuid.UUID
	ProductID          uuid.UUID
	Quantity           int64
	PriceAtTimeOfOrder decimal.Decimal
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PriceAtTimeOfOrder.Mul(decimal.NewFromInt(i.Quantity))
}
