package coupon

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFlat       DiscountType = "FLAT"
)

type Coupon struct {
	ID                uuid.UUID
	Code              string
	DiscountType      DiscountType
	DiscountValue     decimal.Decimal
	ValidFrom         *time.Time
	ValidUntil        *time.Time
	IsActive          bool
	MaxUses           *int
	UsedCount         int
	MinPurchaseAmount *decimal.Decimal
	Description       string
}

// Summary is what a successful validation returns to the client.
type Summary struct {
	Code          string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	Description   string
}
