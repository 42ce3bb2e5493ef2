package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotFoundError indicates a referenced product does not exist. The message is
// part of the API contract.
type NotFoundError struct {
	ProductID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Product not found: %s", e.ProductID)
}

// InsufficientStockError indicates a requested quantity exceeds the available
// stock at decrement time.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for product: %s", e.ProductName)
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Upsert(ctx context.Context, p *Product) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `
		SELECT id, name, description, price, image_url, category, stock_quantity
		FROM products
		WHERE id = $1
	`

	var p Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category, &p.StockQuantity,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{ProductID: id}
		}
		return nil, fmt.Errorf("repository: failed to select product %s: %w", id, err)
	}

	return &p, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Product, error) {
	query := `
		SELECT id, name, description, price, image_url, category, stock_quantity
		FROM products
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category, &p.StockQuantity)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}

	return products, nil
}

// Upsert inserts a catalog record, leaving an existing product with the same
// name untouched. Used by seeding only; the checkout path never creates
// products.
func (r *postgresRepository) Upsert(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate product ID: %w", err)
		}
		p.ID = id
	}

	query := `
		INSERT INTO products (id, name, description, price, image_url, category, stock_quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Category, p.StockQuantity,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to upsert product %q: %w", p.Name, err)
	}

	return nil
}

// DecrementStock atomically takes quantity units of the product's stock within
// the given transaction. The conditional UPDATE guarantees stock never goes
// negative under concurrent checkouts: WHERE filters out rows whose remaining
// stock is below the requested quantity, so of two racing requests for the
// last unit exactly one succeeds. Returns the product name for snapshots and
// error messages.
func DecrementStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) (string, error) {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND stock_quantity >= $2
		RETURNING name
	`

	var name string
	err := tx.QueryRow(ctx, query, productID, quantity).Scan(&name)
	if err == nil {
		return name, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("repository: failed to decrement stock for product %s: %w", productID, err)
	}

	// Zero rows updated: either the product is missing or its stock is short.
	err = tx.QueryRow(ctx, `SELECT name FROM products WHERE id = $1`, productID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", &NotFoundError{ProductID: productID}
		}
		return "", fmt.Errorf("repository: failed to select product %s: %w", productID, err)
	}

	return "", &InsufficientStockError{ProductName: name}
}
