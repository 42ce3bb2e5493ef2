package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/zenbuy/backend/internal/metrics"
	"github.com/zenbuy/backend/internal/order"
	"github.com/zenbuy/backend/internal/product"
)

type orderItemRequest struct {
	ProductID string  `json:"productId" validate:"required"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	ImageURL  string  `json:"imageUrl"`
}

type shippingAddressRequest struct {
	FlatNo   string `json:"flatNo"`
	Locality string `json:"locality"`
	City     string `json:"city"`
	Pincode  string `json:"pincode"`
}

type orderRequest struct {
	Items           []orderItemRequest      `json:"items" validate:"required,min=1,dive"`
	Subtotal        float64                 `json:"subtotal"`
	Shipping        float64                 `json:"shipping"`
	Discount        float64                 `json:"discount"`
	Total           float64                 `json:"total"`
	PaymentMethod   string                  `json:"paymentMethod"`
	PaymentStatus   string                  `json:"paymentStatus"`
	TransactionID   string                  `json:"transactionId"`
	ShippingAddress *shippingAddressRequest `json:"shippingAddress"`
}

type paymentRequest struct {
	UserID string        `json:"userId" validate:"required"`
	Order  *orderRequest `json:"order" validate:"required"`
}

type orderItemResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	Quantity    int       `json:"quantity"`
}

type shippingAddressResponse struct {
	FlatNo   string `json:"flatNo"`
	Locality string `json:"locality"`
	City     string `json:"city"`
	Pincode  string `json:"pincode"`
}

type orderResponse struct {
	ID              uuid.UUID               `json:"id"`
	UserID          uuid.UUID               `json:"userId"`
	Items           []orderItemResponse     `json:"items"`
	Subtotal        float64                 `json:"subtotal"`
	Shipping        float64                 `json:"shipping"`
	Discount        float64                 `json:"discount"`
	Total           float64                 `json:"total"`
	PaymentMethod   string                  `json:"paymentMethod"`
	PaymentStatus   string                  `json:"paymentStatus"`
	Status          string                  `json:"status"`
	OrderNumber     string                  `json:"orderNumber"`
	TransactionID   string                  `json:"transactionId,omitempty"`
	ShippingAddress shippingAddressResponse `json:"shippingAddress"`
	OrderDate       time.Time               `json:"orderDate"`
}

// OrderHandler handles the checkout and order read endpoints.
type OrderHandler struct {
	svc      order.Service
	validate *validator.Validate
	metrics  *metrics.CheckoutMetrics
}

func NewOrderHandler(svc order.Service, m *metrics.CheckoutMetrics) *OrderHandler {
	return &OrderHandler{
		svc:      svc,
		validate: validator.New(),
		metrics:  m,
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/orders/payment", h.handlePayment)
	router.Get("/orders/user/{userId}", h.handleGetUserOrders)
	router.Get("/orders/{orderId}", h.handleGetOrder)
}

// handlePayment converts the submitted cart into a persisted order.
func (h *OrderHandler) handlePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to decode payment request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			h.metrics.CheckoutFailed("validation")
			respondWithError(w, http.StatusBadRequest, "Invalid request: userId and order are required")
			return
		}
		log.Error().Err(err).Msg("Unexpected error type during validation")
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		return
	}

	userID, err := uuid.FromString(req.UserID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request: userId and order are required")
		return
	}

	createReq, err := toCreateOrderRequest(req.Order)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.svc.CreateOrder(r.Context(), userID, createReq)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}

	h.metrics.OrderCreated()
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":       "Payment successful! Order placed successfully!",
		"orderId":       o.ID,
		"orderNumber":   o.OrderNumber,
		"status":        o.Status,
		"paymentStatus": o.PaymentStatus,
	})
}

func (h *OrderHandler) handleGetUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.FromString(chi.URLParam(r, "userId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	orders, err := h.svc.GetOrdersByUserID(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to get user orders")
		respondWithError(w, http.StatusBadRequest, "Failed to get orders")
		return
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = toOrderResponse(&orders[i])
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.FromString(chi.URLParam(r, "orderId"))
	if err != nil {
		respondWithError(w, http.StatusNotFound, order.ErrOrderNotFound.Error())
		return
	}

	o, err := h.svc.GetOrderByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("Failed to get order")
		respondWithError(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	respondWithJSON(w, http.StatusOK, toOrderResponse(o))
}

// respondCheckoutError maps checkout failures to statuses: business rejections
// are 400 with their contract message, anything else is a logged 500.
func (h *OrderHandler) respondCheckoutError(w http.ResponseWriter, err error) {
	var (
		notFoundErr   *product.NotFoundError
		stockErr      *product.InsufficientStockError
		status        int
		failureReason string
	)

	switch {
	case errors.Is(err, order.ErrUserNotFound):
		status, failureReason = http.StatusBadRequest, "user_not_found"
	case errors.Is(err, order.ErrShippingAddressRequired), errors.Is(err, order.ErrEmptyItems):
		status, failureReason = http.StatusBadRequest, "validation"
	case errors.As(err, &notFoundErr):
		status, failureReason = http.StatusBadRequest, "product_not_found"
	case errors.As(err, &stockErr):
		status, failureReason = http.StatusBadRequest, "insufficient_stock"
	default:
		log.Error().Err(err).Msg("Unexpected error while processing payment")
		h.metrics.CheckoutFailed("internal")
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("An unexpected error occurred: %v", err))
		return
	}

	h.metrics.CheckoutFailed(failureReason)
	respondWithError(w, status, err.Error())
}

func toCreateOrderRequest(req *orderRequest) (order.CreateOrderRequest, error) {
	items := make([]order.CreateOrderItem, len(req.Items))
	for i, item := range req.Items {
		productID, err := uuid.FromString(item.ProductID)
		if err != nil {
			return order.CreateOrderRequest{}, fmt.Errorf("invalid product id: %s", item.ProductID)
		}
		items[i] = order.CreateOrderItem{
			ProductID: productID,
			Name:      item.Name,
			Price:     decimal.NewFromFloat(item.Price),
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		}
	}

	out := order.CreateOrderRequest{
		Items:         items,
		Subtotal:      decimal.NewFromFloat(req.Subtotal),
		Shipping:      decimal.NewFromFloat(req.Shipping),
		Discount:      decimal.NewFromFloat(req.Discount),
		Total:         decimal.NewFromFloat(req.Total),
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentStatus,
		TransactionID: req.TransactionID,
	}
	if req.ShippingAddress != nil {
		out.ShippingAddress = &order.ShippingAddress{
			FlatNo:   req.ShippingAddress.FlatNo,
			Locality: req.ShippingAddress.Locality,
			City:     req.ShippingAddress.City,
			Pincode:  req.ShippingAddress.Pincode,
		}
	}

	return out, nil
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.OrderItems))
	for i, item := range o.OrderItems {
		items[i] = orderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price.InexactFloat64(),
			ImageURL:    item.ImageURL,
			Quantity:    item.Quantity,
		}
	}

	return orderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		Items:         items,
		Subtotal:      o.Subtotal.InexactFloat64(),
		Shipping:      o.Shipping.InexactFloat64(),
		Discount:      o.Discount.InexactFloat64(),
		Total:         o.Total.InexactFloat64(),
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		Status:        o.Status.String(),
		OrderNumber:   o.OrderNumber,
		TransactionID: o.TransactionID,
		ShippingAddress: shippingAddressResponse{
			FlatNo:   o.ShippingAddress.FlatNo,
			Locality: o.ShippingAddress.Locality,
			City:     o.ShippingAddress.City,
			Pincode:  o.ShippingAddress.Pincode,
		},
		OrderDate: o.OrderDate,
	}
}
