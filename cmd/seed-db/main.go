package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/zenbuy/backend/internal/config"
	"github.com/zenbuy/backend/internal/coupon"
	"github.com/zenbuy/backend/internal/db"
	"github.com/zenbuy/backend/internal/product"
	"github.com/zenbuy/backend/internal/user"
)

// Seeds the database with a demo catalog, coupons, and an admin account.
// Safe to run repeatedly: existing products and coupons are left untouched.
func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx := context.Background()

	dbConn, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	if err := seedProducts(ctx, product.NewRepository(dbConn.Pool)); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed products")
	}
	if err := seedCoupons(ctx, coupon.NewRepository(dbConn.Pool)); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed coupons")
	}
	if err := seedAdminUser(ctx, user.NewRepository(dbConn.Pool)); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admin user")
	}

	log.Info().Msg("Seed completed successfully")
}

func seedProducts(ctx context.Context, repo product.Repository) error {
	products := []product.Product{
		newProduct("Laptop", "High-performance laptop with latest processor and fast SSD storage", "59999.00", "/image.png", "Electronics", 12),
		newProduct("Wireless Bluetooth Headphones", "Premium noise-cancelling headphones with 30-hour battery life", "2999.00", "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500", "Electronics", 25),
		newProduct("Smart Watch Pro", "Fitness tracking smartwatch with heart rate monitor and GPS", "8999.00", "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=500", "Electronics", 15),
		newProduct("Mechanical Keyboard", "RGB backlit mechanical keyboard with blue switches", "4499.00", "https://images.unsplash.com/photo-1541140532154-b024d705b90a?w=500", "Electronics", 20),
		newProduct("Cotton T-Shirt", "100% organic cotton t-shirt in multiple colors", "499.00", "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=500", "Fashion", 75),
		newProduct("Running Shoes", "Lightweight running shoes with cushioned sole", "3499.00", "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=500", "Fashion", 35),
		newProduct("Backpack", "Waterproof backpack with laptop compartment", "2499.00", "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=500", "Fashion", 25),
		newProduct("Coffee Maker", "Programmable coffee maker with thermal carafe", "3999.00", "https://images.unsplash.com/photo-1517668808823-f8f30c0c58f4?w=500", "Home & Kitchen", 18),
		newProduct("Air Fryer", "5.5L capacity air fryer with digital display", "4999.00", "https://images.unsplash.com/photo-1556912172-45b7abe8b7e1?w=500", "Home & Kitchen", 12),
		newProduct("The Great Novel", "Bestselling fiction novel by acclaimed author", "599.00", "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=500", "Books", 100),
		newProduct("Yoga Mat", "Non-slip yoga mat with carrying strap", "799.00", "https://images.unsplash.com/photo-1601925260368-ae2f83cf8b7f?w=500", "Sports & Outdoors", 55),
		newProduct("Bicycle", "Mountain bike with 21-speed gear system", "12999.00", "https://images.unsplash.com/photo-1558618048-5c3e8b0c5c8b?w=500", "Sports & Outdoors", 8),
	}

	for i := range products {
		if err := repo.Upsert(ctx, &products[i]); err != nil {
			return err
		}
	}

	log.Info().Int("count", len(products)).Msg("Products seeded")
	return nil
}

func seedCoupons(ctx context.Context, repo coupon.Repository) error {
	now := time.Now().UTC()
	yearFromNow := now.AddDate(1, 0, 0)

	coupons := []coupon.Coupon{
		{
			Code:              "SAVE10",
			DiscountType:      coupon.DiscountFlat,
			DiscountValue:     decimal.RequireFromString("10.00"),
			ValidFrom:         &now,
			ValidUntil:        &yearFromNow,
			IsActive:          true,
			MinPurchaseAmount: decimalPtr("500.00"),
			Description:       "Flat ₹10 off on orders above ₹500",
		},
		{
			Code:          "WELCOME20",
			DiscountType:  coupon.DiscountPercentage,
			DiscountValue: decimal.RequireFromString("20.00"),
			ValidFrom:     &now,
			ValidUntil:    &yearFromNow,
			IsActive:      true,
			MaxUses:       intPtr(1000),
			Description:   "20% off for new customers",
		},
		{
			Code:              "FESTIVE50",
			DiscountType:      coupon.DiscountFlat,
			DiscountValue:     decimal.RequireFromString("50.00"),
			ValidFrom:         &now,
			ValidUntil:        &yearFromNow,
			IsActive:          true,
			MaxUses:           intPtr(500),
			MinPurchaseAmount: decimalPtr("2000.00"),
			Description:       "Flat ₹50 off on orders above ₹2000",
		},
	}

	for i := range coupons {
		err := repo.Create(ctx, &coupons[i])
		if err != nil && !errors.Is(err, coupon.ErrCodeExists) {
			return err
		}
	}

	log.Info().Int("count", len(coupons)).Msg("Coupons seeded")
	return nil
}

func seedAdminUser(ctx context.Context, repo user.Repository) error {
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &user.User{
		FirstName:    "Admin",
		LastName:     "User",
		Email:        "admin@zenbuy.com",
		PasswordHash: string(hash),
	}

	_, err = repo.Create(ctx, admin)
	if errors.Is(err, user.ErrEmailExists) {
		log.Info().Str("email", admin.Email).Msg("Admin user already exists")
		return nil
	}
	if err != nil {
		return err
	}

	log.Info().Str("email", admin.Email).Msg("Admin user seeded")
	return nil
}

func newProduct(name, description, price, imageURL, category string, stock int) product.Product {
	return product.Product{
		Name:          name,
		Description:   description,
		Price:         decimal.RequireFromString(price),
		ImageURL:      imageURL,
		Category:      category,
		StockQuantity: stock,
	}
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(n int) *int {
	return &n
}
