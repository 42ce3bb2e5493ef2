package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/zenbuy/backend/internal/coupon"
	"github.com/zenbuy/backend/internal/metrics"
)

type couponResponse struct {
	Code              string     `json:"code"`
	DiscountType      string     `json:"discountType"`
	DiscountValue     float64    `json:"discountValue"`
	Description       string     `json:"description"`
	ValidFrom         *time.Time `json:"validFrom,omitempty"`
	ValidUntil        *time.Time `json:"validUntil,omitempty"`
	MinPurchaseAmount *float64   `json:"minPurchaseAmount,omitempty"`
}

// CouponHandler handles coupon validation and browsing endpoints.
type CouponHandler struct {
	validator *coupon.Validator
	coupons   coupon.Repository
	metrics   *metrics.CheckoutMetrics
}

func NewCouponHandler(v *coupon.Validator, repo coupon.Repository, m *metrics.CheckoutMetrics) *CouponHandler {
	return &CouponHandler{
		validator: v,
		coupons:   repo,
		metrics:   m,
	}
}

func (h *CouponHandler) RegisterRoutes(router chi.Router) {
	router.Get("/coupons/validate/{code}", h.handleValidate)
	router.Get("/coupons/active", h.handleListActive)
}

func (h *CouponHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var orderAmount *decimal.Decimal
	if raw := r.URL.Query().Get("orderAmount"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid order amount")
			return
		}
		d := decimal.NewFromFloat(amount)
		orderAmount = &d
	}

	summary, err := h.validator.Validate(r.Context(), code, orderAmount)
	if err != nil {
		if coupon.IsRuleViolation(err) {
			h.metrics.CouponChecked("rejected")
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Str("code", code).Msg("Failed to validate coupon")
		respondWithError(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	h.metrics.CouponChecked("valid")
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"valid":         true,
		"code":          summary.Code,
		"discountType":  summary.DiscountType,
		"discountValue": summary.DiscountValue.InexactFloat64(),
		"description":   summary.Description,
	})
}

func (h *CouponHandler) handleListActive(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.ListActive(r.Context(), time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list active coupons")
		respondWithError(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	resp := make([]couponResponse, len(coupons))
	for i, c := range coupons {
		resp[i] = couponResponse{
			Code:          c.Code,
			DiscountType:  string(c.DiscountType),
			DiscountValue: c.DiscountValue.InexactFloat64(),
			Description:   c.Description,
			ValidFrom:     c.ValidFrom,
			ValidUntil:    c.ValidUntil,
		}
		if c.MinPurchaseAmount != nil {
			v := c.MinPurchaseAmount.InexactFloat64()
			resp[i].MinPurchaseAmount = &v
		}
	}
	respondWithJSON(w, http.StatusOK, resp)
}
