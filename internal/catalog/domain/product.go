package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID            uuid.UUID
	Title         string
	Description   string
	Price         decimal.Decimal
	StockQuantity int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
