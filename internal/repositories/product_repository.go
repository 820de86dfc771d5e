package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ezstore/electronics-store-backend/internal/models"
	"github.com/ezstore/electronics-store-backend/internal/utils"
)

// ProductRepository is the read side of the catalog component. The cart
// engine only ever looks products up by model; stock decrements happen
// inside the checkout transaction owned by the cart repository.
type ProductRepository interface {
	GetProductByModel(ctx context.Context, model string) (*models.Product, error)
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

func (r *productRepository) GetProductByModel(ctx context.Context, model string) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT model, category, selling_price, quantity, details, arrival_date
		FROM products
		WHERE model = $1
	`

	product := &models.Product{}

	err := r.DB.QueryRowContext(dbCtx, query, model).
		Scan(&product.Model, &product.Category, &product.SellingPrice, &product.Quantity, &product.Details, &product.ArrivalDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return product, nil
}
