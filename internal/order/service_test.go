package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenbuy/backend/internal/order"
	"github.com/zenbuy/backend/internal/product"
	"github.com/zenbuy/backend/internal/user"
)

type mockOrderRepository struct {
	createFunc      func(ctx context.Context, o *order.Order) error
	getByIDFunc     func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	getByUserIDFunc func(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
}

func (m *mockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return m.createFunc(ctx, o)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockOrderRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	return m.getByUserIDFunc(ctx, userID)
}

type mockUserResolver struct {
	getByIDFunc func(ctx context.Context, id uuid.UUID) (*user.User, error)
}

func (m *mockUserResolver) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return m.getByIDFunc(ctx, id)
}

func knownUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return &user.User{ID: id, Email: "buyer@example.com"}, nil
}

// persistingCreate mimics the repository side effects of a successful create.
func persistingCreate(ctx context.Context, o *order.Order) error {
	id, _ := uuid.NewV4()
	o.ID = id
	o.FinalizeNew(time.Now().UTC())
	return nil
}

func validRequest() order.CreateOrderRequest {
	productID, _ := uuid.NewV4()
	return order.CreateOrderRequest{
		Items: []order.CreateOrderItem{
			{
				ProductID: productID,
				Name:      "Yoga Mat",
				Price:     decimal.RequireFromString("799.00"),
				Quantity:  3,
				ImageURL:  "https://example.com/yoga-mat.png",
			},
		},
		Subtotal:        decimal.RequireFromString("2397.00"),
		Shipping:        decimal.RequireFromString("49.00"),
		Discount:        decimal.RequireFromString("0.00"),
		Total:           decimal.RequireFromString("2446.00"),
		ShippingAddress: &order.ShippingAddress{FlatNo: "12B", Locality: "MG Road", City: "Pune", Pincode: "411001"},
	}
}

func TestService_CreateOrder(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name       string
		mutate     func(req *order.CreateOrderRequest)
		getUser    func(ctx context.Context, id uuid.UUID) (*user.User, error)
		create     func(ctx context.Context, o *order.Order) error
		wantErrIs  error
		wantErrMsg string
	}{
		{
			name:      "no_items",
			mutate:    func(req *order.CreateOrderRequest) { req.Items = nil },
			getUser:   knownUser,
			create:    persistingCreate,
			wantErrIs: order.ErrEmptyItems,
		},
		{
			name:       "zero_quantity",
			mutate:     func(req *order.CreateOrderRequest) { req.Items[0].Quantity = 0 },
			getUser:    knownUser,
			create:     persistingCreate,
			wantErrMsg: "must be greater than zero",
		},
		{
			name:   "nil_product_id",
			mutate: func(req *order.CreateOrderRequest) { req.Items[0].ProductID = uuid.Nil },
			getUser: knownUser,
			create:  persistingCreate,
			wantErrMsg: "product id in order item cannot be nil",
		},
		{
			name:   "user_not_found",
			mutate: func(req *order.CreateOrderRequest) {},
			getUser: func(ctx context.Context, id uuid.UUID) (*user.User, error) {
				return nil, user.ErrNotFound
			},
			create:    persistingCreate,
			wantErrIs: order.ErrUserNotFound,
		},
		{
			name:      "missing_shipping_address",
			mutate:    func(req *order.CreateOrderRequest) { req.ShippingAddress = nil },
			getUser:   knownUser,
			create:    persistingCreate,
			wantErrIs: order.ErrShippingAddressRequired,
		},
		{
			name:   "repository_error_propagates",
			mutate: func(req *order.CreateOrderRequest) {},
			getUser: knownUser,
			create: func(ctx context.Context, o *order.Order) error {
				return &product.InsufficientStockError{ProductName: "Yoga Mat"}
			},
			wantErrMsg: "Insufficient stock for product: Yoga Mat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			svc := order.NewService(
				&mockOrderRepository{createFunc: tt.create},
				&mockUserResolver{getByIDFunc: tt.getUser},
			)

			o, err := svc.CreateOrder(context.Background(), userID, req)

			require.Error(t, err)
			assert.Nil(t, o)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			}
			if tt.wantErrMsg != "" {
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			}
		})
	}
}

func TestService_CreateOrder_Success(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	req := validRequest()

	var persisted *order.Order
	svc := order.NewService(
		&mockOrderRepository{createFunc: func(ctx context.Context, o *order.Order) error {
			persisted = o
			return persistingCreate(ctx, o)
		}},
		&mockUserResolver{getByIDFunc: knownUser},
	)

	o, err := svc.CreateOrder(context.Background(), userID, req)

	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Same(t, persisted, o)

	assert.Equal(t, userID, o.UserID)
	assert.NotEqual(t, uuid.Nil, o.ID)
	assert.NotEmpty(t, o.OrderNumber)
	assert.False(t, o.OrderDate.IsZero())
	assert.Equal(t, order.StatusConfirmed, o.Status)

	// Totals are copied verbatim from the request.
	assert.True(t, req.Subtotal.Equal(o.Subtotal))
	assert.True(t, req.Shipping.Equal(o.Shipping))
	assert.True(t, req.Discount.Equal(o.Discount))
	assert.True(t, req.Total.Equal(o.Total))

	require.Len(t, o.OrderItems, 1)
	item := o.OrderItems[0]
	assert.Equal(t, req.Items[0].ProductID, item.ProductID)
	assert.Equal(t, "Yoga Mat", item.ProductName)
	assert.True(t, req.Items[0].Price.Equal(item.Price))
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, req.Items[0].ImageURL, item.ImageURL)

	assert.Equal(t, *req.ShippingAddress, o.ShippingAddress)
}

func TestService_CreateOrder_PaymentDefaults(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name          string
		paymentMethod string
		paymentStatus string
		wantMethod    string
		wantStatus    string
	}{
		{
			name:       "blank_fields_get_defaults",
			wantMethod: "CARD",
			wantStatus: order.PaymentCompleted,
		},
		{
			name:          "explicit_fields_are_honored",
			paymentMethod: "UPI",
			paymentStatus: order.PaymentPending,
			wantMethod:    "UPI",
			wantStatus:    order.PaymentPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.PaymentMethod = tt.paymentMethod
			req.PaymentStatus = tt.paymentStatus

			svc := order.NewService(
				&mockOrderRepository{createFunc: persistingCreate},
				&mockUserResolver{getByIDFunc: knownUser},
			)

			o, err := svc.CreateOrder(context.Background(), userID, req)

			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, o.PaymentMethod)
			assert.Equal(t, tt.wantStatus, o.PaymentStatus)
		})
	}
}

func TestService_CreateOrder_TransactionID(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	req := validRequest()
	req.TransactionID = "payu-tx-42"

	svc := order.NewService(
		&mockOrderRepository{createFunc: persistingCreate},
		&mockUserResolver{getByIDFunc: knownUser},
	)

	o, err := svc.CreateOrder(context.Background(), userID, req)

	require.NoError(t, err)
	assert.Equal(t, "payu-tx-42", o.TransactionID)
}

func TestService_GetOrderByID(t *testing.T) {
	orderID := uuid.Must(uuid.NewV4())

	t.Run("not_found", func(t *testing.T) {
		svc := order.NewService(
			&mockOrderRepository{getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return nil, order.ErrOrderNotFound
			}},
			&mockUserResolver{},
		)

		o, err := svc.GetOrderByID(context.Background(), orderID)

		assert.ErrorIs(t, err, order.ErrOrderNotFound)
		assert.Nil(t, o)
	})

	t.Run("found", func(t *testing.T) {
		want := &order.Order{ID: orderID, OrderNumber: "ORD-1"}
		svc := order.NewService(
			&mockOrderRepository{getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				assert.Equal(t, orderID, id)
				return want, nil
			}},
			&mockUserResolver{},
		)

		o, err := svc.GetOrderByID(context.Background(), orderID)

		require.NoError(t, err)
		assert.Equal(t, want, o)
	})
}

func TestService_GetOrdersByUserID(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	t.Run("repository_error_is_wrapped", func(t *testing.T) {
		svc := order.NewService(
			&mockOrderRepository{getByUserIDFunc: func(ctx context.Context, id uuid.UUID) ([]order.Order, error) {
				return nil, errors.New("connection refused")
			}},
			&mockUserResolver{},
		)

		orders, err := svc.GetOrdersByUserID(context.Background(), userID)

		require.Error(t, err)
		assert.Nil(t, orders)
	})

	t.Run("found", func(t *testing.T) {
		want := []order.Order{{OrderNumber: "ORD-2"}, {OrderNumber: "ORD-1"}}
		svc := order.NewService(
			&mockOrderRepository{getByUserIDFunc: func(ctx context.Context, id uuid.UUID) ([]order.Order, error) {
				return want, nil
			}},
			&mockUserResolver{},
		)

		orders, err := svc.GetOrdersByUserID(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, want, orders)
	})
}
