package mocks

import (
	"context"
	"time"

	"github.com/ezstore/electronics-store-backend/internal/models"
	"github.com/stretchr/testify/mock"
)

type CartRepository struct {
	mock.Mock
}

func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

func (m *CartRepository) FindActiveCart(ctx context.Context, customer string) (*models.Cart, error) {
	args := m.Called(ctx, customer)

	var cart *models.Cart
	if args.Get(0) != nil {
		cart = args.Get(0).(*models.Cart)
	}

	return cart, args.Error(1)
}

func (m *CartRepository) FindPaidCarts(ctx context.Context, customer string) ([]models.Cart, error) {
	args := m.Called(ctx, customer)

	var carts []models.Cart
	if args.Get(0) != nil {
		carts = args.Get(0).([]models.Cart)
	}

	return carts, args.Error(1)
}

func (m *CartRepository) FindAllCarts(ctx context.Context) ([]models.Cart, error) {
	args := m.Called(ctx)

	var carts []models.Cart
	if args.Get(0) != nil {
		carts = args.Get(0).([]models.Cart)
	}

	return carts, args.Error(1)
}

func (m *CartRepository) CreateCart(ctx context.Context, customer, model string, price float64, category string) (int64, error) {
	args := m.Called(ctx, customer, model, price, category)

	return args.Get(0).(int64), args.Error(1)
}

func (m *CartRepository) UpsertLineItem(ctx context.Context, cartID int64, model string, price float64, category string) error {
	args := m.Called(ctx, cartID, model, price, category)

	return args.Error(0)
}

func (m *CartRepository) DecrementOrRemoveLineItem(ctx context.Context, cartID int64, model string) error {
	args := m.Called(ctx, cartID, model)

	return args.Error(0)
}

func (m *CartRepository) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)

	return args.Error(0)
}

func (m *CartRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *CartRepository) Checkout(ctx context.Context, customer string, paidAt time.Time) (*models.Cart, error) {
	args := m.Called(ctx, customer, paidAt)

	var cart *models.Cart
	if args.Get(0) != nil {
		cart = args.Get(0).(*models.Cart)
	}

	return cart, args.Error(1)
}

type ProductRepository struct {
	mock.Mock
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

func (m *ProductRepository) GetProductByModel(ctx context.Context, model string) (*models.Product, error) {
	args := m.Called(ctx, model)

	var product *models.Product
	if args.Get(0) != nil {
		product = args.Get(0).(*models.Product)
	}

	return product, args.Error(1)
}
