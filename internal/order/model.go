package order

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

// Payment statuses accepted on checkout.
const (
	PaymentCompleted = "COMPLETED"
	PaymentPending   = "PENDING"
	PaymentFailed    = "FAILED"
)

const (
	defaultPaymentMethod = "CARD"
	orderNumberPrefix    = "ORD-"
)

// ShippingAddress is a snapshot copied onto the order at creation time. It
// never refers back to the user's live address.
type ShippingAddress struct {
	FlatNo   string
	Locality string
	City     string
	Pincode  string
}

// OrderItem snapshots the product name, price, and image as supplied by the
// caller at purchase time. Once persisted it is immutable.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Price       decimal.Decimal
	ImageURL    string
	Quantity    int
}

type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	OrderItems      []OrderItem
	Subtotal        decimal.Decimal
	Shipping        decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	PaymentMethod   string
	PaymentStatus   string
	Status          Status
	OrderNumber     string
	TransactionID   string
	ShippingAddress ShippingAddress
	OrderDate       time.Time
}

// FinalizeNew fills the persistence-time defaults of a freshly created order:
// order date, order number, and status. Explicit caller-supplied values are
// honored, so calling it again is a no-op. It runs once, inside the creation
// transaction, immediately before the order row is inserted.
func (o *Order) FinalizeNew(now time.Time) {
	if o.OrderDate.IsZero() {
		o.OrderDate = now
	}
	if o.OrderNumber == "" {
		o.OrderNumber = fmt.Sprintf("%s%d", orderNumberPrefix, now.UnixMilli())
	}
	if o.Status == "" {
		o.Status = StatusConfirmed
	}
}
