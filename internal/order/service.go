package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/zenbuy/backend/internal/user"
)

// Checkout failure messages are part of the API contract.
var (
	ErrUserNotFound            = errors.New("User not found")
	ErrShippingAddressRequired = errors.New("Shipping address is required")
	ErrEmptyItems              = errors.New("Order must contain at least one item")
)

// CreateOrderItem is one cart line. Name, price, and image are caller-supplied
// snapshots and are stored as-is, not re-read from the product record.
type CreateOrderItem struct {
	ProductID uuid.UUID
	Name      string
	Price     decimal.Decimal
	Quantity  int
	ImageURL  string
}

// CreateOrderRequest carries a submitted cart. Subtotal, shipping, discount,
// and total are trusted verbatim from the caller; nothing recomputes or
// cross-checks them against the line items.
type CreateOrderRequest struct {
	Items           []CreateOrderItem
	Subtotal        decimal.Decimal
	Shipping        decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	PaymentMethod   string
	PaymentStatus   string
	TransactionID   string
	ShippingAddress *ShippingAddress
}

// UserResolver is the slice of the account store the checkout path consumes.
type UserResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error)
}

type service struct {
	orders Repository
	users  UserResolver
}

func NewService(orders Repository, users UserResolver) Service {
	return &service{
		orders: orders,
		users:  users,
	}
}

// CreateOrder converts a submitted cart into a persisted order. The stock
// decrements and the order/items inserts all happen in one repository
// transaction; any failure leaves stock and order state untouched.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		log.Warn().Stringer("user_id", userID).Msg("service: attempt to create order with no items")
		return nil, ErrEmptyItems
	}

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("service: order item quantity for product %s must be greater than zero", item.ProductID)
		}
		if item.ProductID == uuid.Nil {
			return nil, errors.New("service: product id in order item cannot be nil")
		}
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			log.Warn().Stringer("user_id", userID).Msg("service: user not found for checkout")
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("service: failed to resolve user: %w", err)
	}

	if req.ShippingAddress == nil {
		return nil, ErrShippingAddressRequired
	}

	o := &Order{
		UserID:          userID,
		Subtotal:        req.Subtotal,
		Shipping:        req.Shipping,
		Discount:        req.Discount,
		Total:           req.Total,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   req.PaymentStatus,
		Status:          StatusConfirmed,
		TransactionID:   req.TransactionID,
		ShippingAddress: *req.ShippingAddress,
	}
	if o.PaymentMethod == "" {
		o.PaymentMethod = defaultPaymentMethod
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = PaymentCompleted
	}

	o.OrderItems = make([]OrderItem, len(req.Items))
	for i, item := range req.Items {
		o.OrderItems[i] = OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.Name,
			Price:       item.Price,
			ImageURL:    item.ImageURL,
			Quantity:    item.Quantity,
		}
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}

	log.Info().
		Stringer("order_id", o.ID).
		Stringer("user_id", userID).
		Str("order_number", o.OrderNumber).
		Int("items", len(o.OrderItems)).
		Msg("service: order created successfully")

	return o, nil
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", id).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	return o, nil
}

func (s *service) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.orders.GetByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}

	return orders, nil
}
