package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Rule-violation messages are part of the API contract and surface to clients
// verbatim.
var (
	ErrInvalidCode       = errors.New("Invalid coupon code")
	ErrInactive          = errors.New("This coupon is no longer active")
	ErrNotYetValid       = errors.New("This coupon is not yet valid")
	ErrExpired           = errors.New("This coupon has expired")
	ErrUsageLimitReached = errors.New("This coupon has reached its usage limit")
)

// MinPurchaseError indicates the order amount is below the coupon's minimum
// purchase requirement.
type MinPurchaseError struct {
	Required decimal.Decimal
}

func (e *MinPurchaseError) Error() string {
	return fmt.Sprintf("Minimum purchase amount of ₹%s required", e.Required)
}

// IsRuleViolation reports whether err is one of the validator's user-facing
// rejections, as opposed to a storage failure.
func IsRuleViolation(err error) bool {
	var minErr *MinPurchaseError
	return errors.Is(err, ErrInvalidCode) ||
		errors.Is(err, ErrInactive) ||
		errors.Is(err, ErrNotYetValid) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrUsageLimitReached) ||
		errors.As(err, &minErr)
}

// Validator evaluates coupon eligibility. It is read-only: redeeming a coupon
// does not increment used_count anywhere in the order path.
type Validator struct {
	repo Repository
	now  func() time.Time
}

func NewValidator(repo Repository) *Validator {
	return &Validator{repo: repo, now: time.Now}
}

// Validate checks the code against the coupon rules in a fixed order, each
// rule short-circuiting with its own error. The validity window is inclusive
// at both ends. orderAmount is optional; the minimum-purchase rule only fires
// when both the amount and the coupon's threshold are present.
func (v *Validator) Validate(ctx context.Context, code string, orderAmount *decimal.Decimal) (*Summary, error) {
	c, err := v.repo.GetByCode(ctx, strings.ToUpper(code))
	if err != nil {
		return nil, err
	}

	if !c.IsActive {
		return nil, ErrInactive
	}

	now := v.now()
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return nil, ErrNotYetValid
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return nil, ErrExpired
	}

	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return nil, ErrUsageLimitReached
	}

	if orderAmount != nil && c.MinPurchaseAmount != nil && orderAmount.LessThan(*c.MinPurchaseAmount) {
		return nil, &MinPurchaseError{Required: *c.MinPurchaseAmount}
	}

	return &Summary{
		Code:          c.Code,
		DiscountType:  c.DiscountType,
		DiscountValue: c.DiscountValue,
		Description:   c.Description,
	}, nil
}
