package coupon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrCodeExists = errors.New("coupon with this code already exists")

type Repository interface {
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	// ListActive returns coupons with is_active set whose validity window
	// contains now (inclusive at both ends).
	ListActive(ctx context.Context, now time.Time) ([]Coupon, error)
	Create(ctx context.Context, c *Coupon) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const couponColumns = `id, code, discount_type, discount_value, valid_from, valid_until,
		is_active, max_uses, used_count, min_purchase_amount, description`

func (r *postgresRepository) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	var c Coupon
	err := r.db.QueryRow(ctx, query, code).Scan(
		&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.ValidFrom, &c.ValidUntil,
		&c.IsActive, &c.MaxUses, &c.UsedCount, &c.MinPurchaseAmount, &c.Description,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("repository: failed to select coupon %q: %w", code, err)
	}

	return &c, nil
}

func (r *postgresRepository) ListActive(ctx context.Context, now time.Time) ([]Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE is_active
		  AND (valid_from IS NULL OR valid_from <= $1)
		  AND (valid_until IS NULL OR valid_until >= $1)
		ORDER BY code
	`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query active coupons: %w", err)
	}
	defer rows.Close()

	coupons := make([]Coupon, 0)
	for rows.Next() {
		var c Coupon
		err := rows.Scan(
			&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.ValidFrom, &c.ValidUntil,
			&c.IsActive, &c.MaxUses, &c.UsedCount, &c.MinPurchaseAmount, &c.Description,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating coupons: %w", err)
	}

	return coupons, nil
}

func (r *postgresRepository) Create(ctx context.Context, c *Coupon) error {
	if c.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate coupon ID: %w", err)
		}
		c.ID = id
	}

	query := `
		INSERT INTO coupons (` + couponColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.Code, c.DiscountType, c.DiscountValue, c.ValidFrom, c.ValidUntil,
		c.IsActive, c.MaxUses, c.UsedCount, c.MinPurchaseAmount, c.Description,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrCodeExists
		}
		return fmt.Errorf("repository: failed to insert coupon %q: %w", c.Code, err)
	}

	return nil
}
