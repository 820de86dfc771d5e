package mocks

import (
	"context"

	"github.com/ezstore/electronics-store-backend/internal/models"
	"github.com/stretchr/testify/mock"
)

type CartService struct {
	mock.Mock
}

func NewCartService() *CartService {
	return &CartService{}
}

func (m *CartService) AddToCart(ctx context.Context, customer, model string) error {
	args := m.Called(ctx, customer, model)

	return args.Error(0)
}

func (m *CartService) GetCart(ctx context.Context, customer string) (*models.Cart, error) {
	args := m.Called(ctx, customer)

	var cart *models.Cart
	if args.Get(0) != nil {
		cart = args.Get(0).(*models.Cart)
	}

	return cart, args.Error(1)
}

func (m *CartService) CheckoutCart(ctx context.Context, customer string) (*models.Cart, error) {
	args := m.Called(ctx, customer)

	var cart *models.Cart
	if args.Get(0) != nil {
		cart = args.Get(0).(*models.Cart)
	}

	return cart, args.Error(1)
}

func (m *CartService) GetCustomerCarts(ctx context.Context, customer string) ([]models.Cart, error) {
	args := m.Called(ctx, customer)

	var carts []models.Cart
	if args.Get(0) != nil {
		carts = args.Get(0).([]models.Cart)
	}

	return carts, args.Error(1)
}

func (m *CartService) RemoveProductFromCart(ctx context.Context, customer, model string) error {
	args := m.Called(ctx, customer, model)

	return args.Error(0)
}

func (m *CartService) ClearCart(ctx context.Context, customer string) error {
	args := m.Called(ctx, customer)

	return args.Error(0)
}

func (m *CartService) GetAllCarts(ctx context.Context) ([]models.Cart, error) {
	args := m.Called(ctx)

	var carts []models.Cart
	if args.Get(0) != nil {
		carts = args.Get(0).([]models.Cart)
	}

	return carts, args.Error(1)
}

func (m *CartService) DeleteAllCarts(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
