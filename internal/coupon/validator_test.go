package coupon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	coupons      map[string]*Coupon
	receivedCode string
	err          error
}

func (f *fakeRepository) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	f.receivedCode = code
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.coupons[code]
	if !ok {
		return nil, ErrInvalidCode
	}
	return c, nil
}

func (f *fakeRepository) ListActive(ctx context.Context, now time.Time) ([]Coupon, error) {
	return nil, nil
}

func (f *fakeRepository) Create(ctx context.Context, c *Coupon) error {
	return nil
}

func intPtr(n int) *int { return &n }

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func timePtr(t time.Time) *time.Time { return &t }

func TestValidator_Validate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	baseCoupon := func() *Coupon {
		return &Coupon{
			Code:          "SAVE10",
			DiscountType:  DiscountFlat,
			DiscountValue: decimal.RequireFromString("10"),
			ValidFrom:     timePtr(now.AddDate(0, -1, 0)),
			ValidUntil:    timePtr(now.AddDate(0, 1, 0)),
			IsActive:      true,
			Description:   "Flat ten off",
		}
	}

	tests := []struct {
		name        string
		mutate      func(c *Coupon)
		code        string
		orderAmount *decimal.Decimal
		wantErr     error
		wantErrMsg  string
	}{
		{
			name:    "unknown_code",
			mutate:  func(c *Coupon) { c.Code = "OTHER" },
			code:    "SAVE10",
			wantErr: ErrInvalidCode,
		},
		{
			name:    "inactive",
			mutate:  func(c *Coupon) { c.IsActive = false },
			code:    "SAVE10",
			wantErr: ErrInactive,
		},
		{
			name:    "not_yet_valid",
			mutate:  func(c *Coupon) { c.ValidFrom = timePtr(now.Add(time.Hour)) },
			code:    "SAVE10",
			wantErr: ErrNotYetValid,
		},
		{
			name:    "expired",
			mutate:  func(c *Coupon) { c.ValidUntil = timePtr(now.Add(-time.Hour)) },
			code:    "SAVE10",
			wantErr: ErrExpired,
		},
		{
			name:   "valid_from_equals_now_is_accepted",
			mutate: func(c *Coupon) { c.ValidFrom = timePtr(now) },
			code:   "SAVE10",
		},
		{
			name:   "valid_until_equals_now_is_accepted",
			mutate: func(c *Coupon) { c.ValidUntil = timePtr(now) },
			code:   "SAVE10",
		},
		{
			name: "usage_limit_reached",
			mutate: func(c *Coupon) {
				c.MaxUses = intPtr(100)
				c.UsedCount = 100
			},
			code:    "SAVE10",
			wantErr: ErrUsageLimitReached,
		},
		{
			name: "below_usage_limit_is_accepted",
			mutate: func(c *Coupon) {
				c.MaxUses = intPtr(100)
				c.UsedCount = 99
			},
			code: "SAVE10",
		},
		{
			name:        "below_minimum_purchase",
			mutate:      func(c *Coupon) { c.MinPurchaseAmount = decimalPtr("500") },
			code:        "SAVE10",
			orderAmount: decimalPtr("400"),
			wantErrMsg:  "Minimum purchase amount of ₹500 required",
		},
		{
			name:        "at_minimum_purchase_is_accepted",
			mutate:      func(c *Coupon) { c.MinPurchaseAmount = decimalPtr("500") },
			code:        "SAVE10",
			orderAmount: decimalPtr("500"),
		},
		{
			name:   "no_order_amount_skips_minimum_purchase_rule",
			mutate: func(c *Coupon) { c.MinPurchaseAmount = decimalPtr("500") },
			code:   "SAVE10",
		},
		{
			name:   "no_validity_window_is_accepted",
			mutate: func(c *Coupon) { c.ValidFrom, c.ValidUntil = nil, nil },
			code:   "SAVE10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseCoupon()
			tt.mutate(c)

			repo := &fakeRepository{coupons: map[string]*Coupon{c.Code: c}}
			v := NewValidator(repo)
			v.now = func() time.Time { return now }

			summary, err := v.Validate(context.Background(), tt.code, tt.orderAmount)

			switch {
			case tt.wantErr != nil:
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsRuleViolation(err))
				assert.Nil(t, summary)
			case tt.wantErrMsg != "":
				require.Error(t, err)
				assert.EqualError(t, err, tt.wantErrMsg)
				assert.True(t, IsRuleViolation(err))
				assert.Nil(t, summary)
			default:
				require.NoError(t, err)
				require.NotNil(t, summary)
				assert.Equal(t, c.Code, summary.Code)
				assert.Equal(t, c.DiscountType, summary.DiscountType)
				assert.True(t, c.DiscountValue.Equal(summary.DiscountValue))
				assert.Equal(t, c.Description, summary.Description)
			}
		})
	}
}

func TestValidator_Validate_NormalizesCode(t *testing.T) {
	repo := &fakeRepository{coupons: map[string]*Coupon{}}
	v := NewValidator(repo)

	_, err := v.Validate(context.Background(), "save10", nil)

	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Equal(t, "SAVE10", repo.receivedCode)
}

func TestValidator_Validate_RepositoryError(t *testing.T) {
	repo := &fakeRepository{err: errors.New("connection refused")}
	v := NewValidator(repo)

	_, err := v.Validate(context.Background(), "SAVE10", nil)

	require.Error(t, err)
	assert.False(t, IsRuleViolation(err))
}
