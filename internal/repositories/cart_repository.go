package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ezstore/electronics-store-backend/internal/models"
	"github.com/ezstore/electronics-store-backend/internal/utils"
	"github.com/lib/pq"
)

// Sentinel outcomes surfaced by cart storage primitives. The service layer
// maps these onto the client-facing error taxonomy.
var (
	ErrActiveCartExists = errors.New("customer already has an active cart")
	ErrCartNotFound     = errors.New("active cart not found")
	ErrEmptyCart        = errors.New("cart has no items")
	ErrLowProductStock  = errors.New("insufficient product stock")
	ErrProductNotInCart = errors.New("product is not in the cart")
)

type CartRepository interface {
	FindActiveCart(ctx context.Context, customer string) (*models.Cart, error)
	FindPaidCarts(ctx context.Context, customer string) ([]models.Cart, error)
	FindAllCarts(ctx context.Context) ([]models.Cart, error)
	CreateCart(ctx context.Context, customer, model string, price float64, category string) (int64, error)
	UpsertLineItem(ctx context.Context, cartID int64, model string, price float64, category string) error
	DecrementOrRemoveLineItem(ctx context.Context, cartID int64, model string) error
	Clear(ctx context.Context, cartID int64) error
	DeleteAll(ctx context.Context) error
	Checkout(ctx context.Context, customer string, paidAt time.Time) (*models.Cart, error)
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *cartRepository) loadItems(ctx context.Context, q querier, cartID int64) ([]models.ProductInCart, error) {
	query := `
		SELECT product_model, quantity, category, price
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY product_model
	`

	rows, err := q.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}

	defer rows.Close()

	items := []models.ProductInCart{}

	for rows.Next() {
		var item models.ProductInCart

		if err := rows.Scan(&item.Model, &item.Quantity, &item.Category, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading cart items: %w", err)
	}

	return items, nil
}

func (r *cartRepository) FindActiveCart(ctx context.Context, customer string) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, customer, paid, payment_date, total
		FROM carts
		WHERE customer = $1 AND NOT paid
	`

	cart := &models.Cart{}

	var paymentDate sql.NullTime

	err := r.DB.QueryRowContext(dbCtx, query, customer).
		Scan(&cart.ID, &cart.Customer, &cart.Paid, &paymentDate, &cart.Total)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	if paymentDate.Valid {
		cart.PaymentDate = &paymentDate.Time
	}

	cart.Items, err = r.loadItems(dbCtx, r.DB, cart.ID)
	if err != nil {
		return nil, err
	}

	return cart, nil
}

func (r *cartRepository) FindPaidCarts(ctx context.Context, customer string) ([]models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, customer, paid, payment_date, total
		FROM carts
		WHERE customer = $1 AND paid
		ORDER BY payment_date, id
	`

	return r.queryCarts(dbCtx, query, customer)
}

func (r *cartRepository) FindAllCarts(ctx context.Context) ([]models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, customer, paid, payment_date, total
		FROM carts
		ORDER BY id
	`

	return r.queryCarts(dbCtx, query)
}

func (r *cartRepository) queryCarts(ctx context.Context, query string, args ...any) ([]models.Cart, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query carts: %w", err)
	}

	defer rows.Close()

	carts := []models.Cart{}

	for rows.Next() {
		var cart models.Cart

		var paymentDate sql.NullTime

		if err := rows.Scan(&cart.ID, &cart.Customer, &cart.Paid, &paymentDate, &cart.Total); err != nil {
			return nil, fmt.Errorf("failed to scan cart: %w", err)
		}

		if paymentDate.Valid {
			cart.PaymentDate = &paymentDate.Time
		}

		carts = append(carts, cart)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading carts: %w", err)
	}

	for i := range carts {
		items, err := r.loadItems(ctx, r.DB, carts[i].ID)
		if err != nil {
			return nil, err
		}

		carts[i].Items = items
	}

	return carts, nil
}

// CreateCart inserts a new unpaid cart seeded with one unit of the given
// product. The partial unique index on (customer) WHERE NOT paid backs the
// single-active-cart invariant; a lost creation race comes back as
// ErrActiveCartExists and the caller re-fetches the winner's cart.
func (r *cartRepository) CreateCart(ctx context.Context, customer, model string, price float64, category string) (int64, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	var cartID int64

	query := `
		INSERT INTO carts (customer, paid, payment_date, total)
		VALUES ($1, false, NULL, $2)
		RETURNING id
	`

	err = tx.QueryRowContext(dbCtx, query, customer, price).Scan(&cartID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, ErrActiveCartExists
		}

		return 0, fmt.Errorf("failed to insert cart: %w", err)
	}

	query = `
		INSERT INTO cart_items (cart_id, product_model, quantity, category, price)
		VALUES ($1, $2, 1, $3, $4)
	`

	if _, err := tx.ExecContext(dbCtx, query, cartID, model, category, price); err != nil {
		return 0, fmt.Errorf("failed to insert cart item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return cartID, nil
}

// UpsertLineItem adds one unit of the product to the cart: a new line item at
// quantity one, or an increment of the existing one. The cart total moves
// with it in the same transaction so a crash can never leave the pair
// inconsistent.
func (r *cartRepository) UpsertLineItem(ctx context.Context, cartID int64, model string, price float64, category string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	query := `
		INSERT INTO cart_items (cart_id, product_model, quantity, category, price)
		VALUES ($1, $2, 1, $3, $4)
		ON CONFLICT (cart_id, product_model)
		DO UPDATE SET quantity = cart_items.quantity + 1
	`

	if _, err := tx.ExecContext(dbCtx, query, cartID, model, category, price); err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	query = `UPDATE carts SET total = total + $1 WHERE id = $2`

	if _, err := tx.ExecContext(dbCtx, query, price, cartID); err != nil {
		return fmt.Errorf("failed to update cart total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DecrementOrRemoveLineItem removes one unit of the product: the row is
// deleted when its quantity is one, decremented otherwise. The total drops by
// the price stored at add time, not the current catalog price.
func (r *cartRepository) DecrementOrRemoveLineItem(ctx context.Context, cartID int64, model string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	var (
		quantity int
		price    float64
	)

	query := `
		SELECT quantity, price
		FROM cart_items
		WHERE cart_id = $1 AND product_model = $2
		FOR UPDATE
	`

	err = tx.QueryRowContext(dbCtx, query, cartID, model).Scan(&quantity, &price)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrProductNotInCart
		}

		return fmt.Errorf("failed to query cart item: %w", err)
	}

	if quantity == 1 {
		query = `DELETE FROM cart_items WHERE cart_id = $1 AND product_model = $2`
	} else {
		query = `UPDATE cart_items SET quantity = quantity - 1 WHERE cart_id = $1 AND product_model = $2`
	}

	if _, err := tx.ExecContext(dbCtx, query, cartID, model); err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	query = `UPDATE carts SET total = total - $1 WHERE id = $2`

	if _, err := tx.ExecContext(dbCtx, query, price, cartID); err != nil {
		return fmt.Errorf("failed to update cart total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Clear empties the cart and resets its total. The cart row survives as the
// customer's (now empty) active cart.
func (r *cartRepository) Clear(ctx context.Context, cartID int64) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	if _, err := tx.ExecContext(dbCtx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}

	if _, err := tx.ExecContext(dbCtx, `UPDATE carts SET total = 0 WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to reset cart total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *cartRepository) DeleteAll(ctx context.Context) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	if _, err := tx.ExecContext(dbCtx, `DELETE FROM cart_items`); err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}

	if _, err := tx.ExecContext(dbCtx, `DELETE FROM carts`); err != nil {
		return fmt.Errorf("failed to delete carts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Checkout settles the customer's active cart in one serializable
// transaction: lock the cart, validate stock for every line item before any
// write, then decrement stock and flip the paid flag. A failed validation
// rolls back with zero mutations, and two concurrent checkouts contending for
// the same last unit cannot both commit.
func (r *cartRepository) Checkout(ctx context.Context, customer string, paidAt time.Time) (*models.Cart, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	cart := &models.Cart{Customer: customer}

	query := `
		SELECT id, total
		FROM carts
		WHERE customer = $1 AND NOT paid
		FOR UPDATE
	`

	err = tx.QueryRowContext(dbCtx, query, customer).Scan(&cart.ID, &cart.Total)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartNotFound
		}

		return nil, fmt.Errorf("failed to query active cart: %w", err)
	}

	cart.Items, err = r.loadItems(dbCtx, tx, cart.ID)
	if err != nil {
		return nil, err
	}

	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// Pre-flight: every line item must be satisfiable before any stock write.
	for _, item := range cart.Items {
		var stock int

		query = `SELECT quantity FROM products WHERE model = $1 FOR UPDATE`

		err := tx.QueryRowContext(dbCtx, query, item.Model).Scan(&stock)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, ErrLowProductStock
			}

			return nil, fmt.Errorf("failed to query stock for %s: %w", item.Model, err)
		}

		if stock < item.Quantity {
			return nil, ErrLowProductStock
		}
	}

	for _, item := range cart.Items {
		query = `UPDATE products SET quantity = quantity - $1 WHERE model = $2`

		if _, err := tx.ExecContext(dbCtx, query, item.Quantity, item.Model); err != nil {
			return nil, fmt.Errorf("failed to decrement stock for %s: %w", item.Model, err)
		}
	}

	query = `UPDATE carts SET paid = true, payment_date = $1 WHERE id = $2`

	if _, err := tx.ExecContext(dbCtx, query, paidAt, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to mark cart as paid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	cart.Paid = true
	cart.PaymentDate = &paidAt

	return cart, nil
}
