package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/zenbuy/backend/internal/product"
)

// Message is part of the API contract.
var ErrOrderNotFound = errors.New("Order not found")

type Repository interface {
	// Create persists the order, its items, and the stock decrements of every
	// line in a single transaction. On error nothing is committed.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// GetByUserID returns the user's orders newest first, items attached.
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const orderColumns = `id, user_id, subtotal, shipping, discount, total,
		payment_method, payment_status, status, order_number, transaction_id,
		shipping_flat_no, shipping_locality, shipping_city, shipping_pincode, order_date`

const itemColumns = `id, order_id, product_id, product_name, price, image_url, quantity`

func (r *postgresRepository) Create(ctx context.Context, o *Order) (err error) {
	if o.ID == uuid.Nil {
		genID, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate order ID: %w", genErr)
		}
		o.ID = genID
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("repository: failed to rollback transaction")
			}
		}
	}()

	// Take stock for every line before writing the order. The decrement is
	// conditional, so a concurrent checkout racing for the same units makes
	// at most one of the transactions pass this loop.
	for i := range o.OrderItems {
		item := &o.OrderItems[i]
		if _, err = product.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	o.FinalizeNew(time.Now().UTC())

	queryOrder := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = tx.Exec(ctx, queryOrder,
		o.ID, o.UserID, o.Subtotal, o.Shipping, o.Discount, o.Total,
		o.PaymentMethod, o.PaymentStatus, string(o.Status), o.OrderNumber, o.TransactionID,
		o.ShippingAddress.FlatNo, o.ShippingAddress.Locality,
		o.ShippingAddress.City, o.ShippingAddress.Pincode, o.OrderDate,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i := range o.OrderItems {
		item := &o.OrderItems[i]

		itemID, genErr := uuid.NewV4()
		if genErr != nil {
			err = fmt.Errorf("repository: failed to generate order item ID: %w", genErr)
			return err
		}
		item.ID = itemID
		item.OrderID = o.ID

		_, err = tx.Exec(ctx, queryItem,
			item.ID, item.OrderID, item.ProductID, item.ProductName,
			item.Price, item.ImageURL, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", o.ID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit transaction: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var o Order
	err := r.db.QueryRow(ctx, query, orderID).Scan(
		&o.ID, &o.UserID, &o.Subtotal, &o.Shipping, &o.Discount, &o.Total,
		&o.PaymentMethod, &o.PaymentStatus, &o.Status, &o.OrderNumber, &o.TransactionID,
		&o.ShippingAddress.FlatNo, &o.ShippingAddress.Locality,
		&o.ShippingAddress.City, &o.ShippingAddress.Pincode, &o.OrderDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", orderID, err)
	}

	items, err := r.itemsByOrderIDs(ctx, []uuid.UUID{orderID})
	if err != nil {
		return nil, err
	}
	o.OrderItems = items[orderID]
	if o.OrderItems == nil {
		o.OrderItems = make([]OrderItem, 0)
	}

	return &o, nil
}

func (r *postgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY order_date DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for user id %s: %w", userID, err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	var orderIDs []uuid.UUID
	for rows.Next() {
		var o Order
		err := rows.Scan(
			&o.ID, &o.UserID, &o.Subtotal, &o.Shipping, &o.Discount, &o.Total,
			&o.PaymentMethod, &o.PaymentStatus, &o.Status, &o.OrderNumber, &o.TransactionID,
			&o.ShippingAddress.FlatNo, &o.ShippingAddress.Locality,
			&o.ShippingAddress.City, &o.ShippingAddress.Pincode, &o.OrderDate,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order for user id %s: %w", userID, err)
		}
		o.OrderItems = make([]OrderItem, 0)
		orders = append(orders, o)
		orderIDs = append(orderIDs, o.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders for user id %s: %w", userID, err)
	}

	if len(orderIDs) == 0 {
		return orders, nil
	}

	itemsByOrder, err := r.itemsByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if items, ok := itemsByOrder[orders[i].ID]; ok {
			orders[i].OrderItems = items
		}
	}

	return orders, nil
}

func (r *postgresRepository) itemsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]OrderItem, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = ANY($1)`

	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer rows.Close()

	itemsByOrder := make(map[uuid.UUID][]OrderItem)
	for rows.Next() {
		var item OrderItem
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Price, &item.ImageURL, &item.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	return itemsByOrder, nil
}
