package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	cacheMocks "github.com/ezstore/electronics-store-backend/internal/cache/mocks"
	appErrors "github.com/ezstore/electronics-store-backend/internal/errors"
	"github.com/ezstore/electronics-store-backend/internal/models"
	repository "github.com/ezstore/electronics-store-backend/internal/repositories"
	repoMocks "github.com/ezstore/electronics-store-backend/internal/repositories/mocks"
	service "github.com/ezstore/electronics-store-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupCartServiceTest() (*repoMocks.CartRepository, *repoMocks.ProductRepository, *cacheMocks.Cache, service.CartService) {
	mockCartRepo := repoMocks.NewCartRepository()
	mockProductRepo := repoMocks.NewProductRepository()
	mockCache := cacheMocks.NewCache()
	cartService := service.NewCartService(mockCartRepo, mockProductRepo, mockCache)

	return mockCartRepo, mockProductRepo, mockCache, cartService
}

func smartphone() *models.Product {
	return &models.Product{
		Model:        "P001",
		Category:     models.CategorySmartphone,
		SellingPrice: 699.99,
		Quantity:     5,
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()

	var appErr *appErrors.AppError

	require.True(t, errors.As(err, &appErr), "error should be an AppError")
	assert.Equal(t, code, appErr.Code)
}

func TestAddToCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Existing Cart Gets Upsert", func(t *testing.T) {
		// Arrange
		cartRepo, productRepo, cartCache, svc := setupCartServiceTest()
		productRepo.On("GetProductByModel", ctx, "P001").Return(smartphone(), nil).Once()
		cartRepo.On("FindActiveCart", ctx, "mario").
			Return(&models.Cart{ID: 7, Customer: "mario"}, nil).Once()
		cartRepo.On("UpsertLineItem", ctx, int64(7), "P001", 699.99, models.CategorySmartphone).
			Return(nil).Once()
		cartCache.On("Delete", ctx, "cart:mario").Return(nil).Once()

		// Act
		err := svc.AddToCart(ctx, "mario", "P001")

		// Assert
		require.NoError(t, err)
		cartRepo.AssertExpectations(t)
		productRepo.AssertExpectations(t)
		cartCache.AssertExpectations(t)
	})

	t.Run("Success - First Add Creates Cart", func(t *testing.T) {
		// Arrange
		cartRepo, productRepo, cartCache, svc := setupCartServiceTest()
		productRepo.On("GetProductByModel", ctx, "P001").Return(smartphone(), nil).Once()
		cartRepo.On("FindActiveCart", ctx, "mario").Return(nil, sql.ErrNoRows).Once()
		cartRepo.On("CreateCart", ctx, "mario", "P001", 699.99, models.CategorySmartphone).
			Return(int64(42), nil).Once()
		cartCache.On("Delete", ctx, "cart:mario").Return(nil).Once()

		// Act
		err := svc.AddToCart(ctx, "mario", "P001")

		// Assert
		require.NoError(t, err)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Success - Lost Creation Race Joins Winner's Cart", func(t *testing.T) {
		// Arrange
		cartRepo, productRepo, cartCache, svc := setupCartServiceTest()
		productRepo.On("GetProductByModel", ctx, "P001").Return(smartphone(), nil).Once()
		cartRepo.On("FindActiveCart", ctx, "mario").Return(nil, sql.ErrNoRows).Once()
		cartRepo.On("CreateCart", ctx, "mario", "P001", 699.99, models.CategorySmartphone).
			Return(int64(0), repository.ErrActiveCartExists).Once()
		cartRepo.On("FindActiveCart", ctx, "mario").
			Return(&models.Cart{ID: 42, Customer: "mario"}, nil).Once()
		cartRepo.On("UpsertLineItem", ctx, int64(42), "P001", 699.99, models.CategorySmartphone).
			Return(nil).Once()
		cartCache.On("Delete", ctx, "cart:mario").Return(nil).Once()

		// Act
		err := svc.AddToCart(ctx, "mario", "P001")

		// Assert
		require.NoError(t, err)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Failure - Product Not Found", func(t *testing.T) {
		// Arrange
		cartRepo, productRepo, _, svc := setupCartServiceTest()
		productRepo.On("GetProductByModel", ctx, "P999").Return(nil, sql.ErrNoRows).Once()

		// Act
		err := svc.AddToCart(ctx, "mario", "P999")

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeProductNotFound)
		cartRepo.AssertNotCalled(t, "FindActiveCart", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Empty Stock", func(t *testing.T) {
		// Arrange
		cartRepo, productRepo, _, svc := setupCartServiceTest()
		depleted := smartphone()
		depleted.Quantity = 0
		productRepo.On("GetProductByModel", ctx, "P001").Return(depleted, nil).Once()

		// Act
		err := svc.AddToCart(ctx, "mario", "P001")

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeEmptyProductStock)
		cartRepo.AssertNotCalled(t, "FindActiveCart", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Repository Error Is Infrastructure", func(t *testing.T) {
		// Arrange
		_, productRepo, _, svc := setupCartServiceTest()
		productRepo.On("GetProductByModel", ctx, "P001").
			Return(nil, errors.New("connection refused")).Once()

		// Act
		err := svc.AddToCart(ctx, "mario", "P001")

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeDatabaseError)
	})
}

func TestGetCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Cache Miss Falls Through To Repository", func(t *testing.T) {
		// Arrange
		cartRepo, _, cartCache, svc := setupCartServiceTest()
		stored := &models.Cart{ID: 7, Customer: "mario", Total: 699.99,
			Items: []models.ProductInCart{{Model: "P001", Quantity: 1, Category: models.CategorySmartphone, Price: 699.99}}}
		cartCache.On("Get", ctx, "cart:mario", mock.Anything).Return(false, nil).Once()
		cartRepo.On("FindActiveCart", ctx, "mario").Return(stored, nil).Once()
		cartCache.On("Set", ctx, "cart:mario", stored, time.Duration(0)).Return(nil).Once()

		// Act
		cart, err := svc.GetCart(ctx, "mario")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, stored, cart)
		cartCache.AssertExpectations(t)
	})

	t.Run("Success - Cache Hit Skips Repository", func(t *testing.T) {
		// Arrange
		cartRepo, _, cartCache, svc := setupCartServiceTest()
		cartCache.On("Get", ctx, "cart:mario", mock.Anything).
			Run(func(args mock.Arguments) {
				cart := args.Get(2).(*models.Cart)
				cart.ID = 7
				cart.Customer = "mario"
				cart.Total = 699.99
			}).
			Return(true, nil).Once()

		// Act
		cart, err := svc.GetCart(ctx, "mario")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(7), cart.ID)
		cartRepo.AssertNotCalled(t, "FindActiveCart", mock.Anything, mock.Anything)
	})

	t.Run("Success - No Active Cart Yields Empty Value", func(t *testing.T) {
		// Arrange
		cartRepo, _, cartCache, svc := setupCartServiceTest()
		cartCache.On("Get", ctx, "cart:luigi", mock.Anything).Return(false, nil).Once()
		cartRepo.On("FindActiveCart", ctx, "luigi").Return(nil, sql.ErrNoRows).Once()

		// Act
		cart, err := svc.GetCart(ctx, "luigi")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "luigi", cart.Customer)
		assert.False(t, cart.Paid)
		assert.Nil(t, cart.PaymentDate)
		assert.Zero(t, cart.Total)
		assert.Empty(t, cart.Items)
	})

	t.Run("Success - Cache Error Is Degraded Mode", func(t *testing.T) {
		// Arrange
		cartRepo, _, cartCache, svc := setupCartServiceTest()
		stored := &models.Cart{ID: 7, Customer: "mario"}
		cartCache.On("Get", ctx, "cart:mario", mock.Anything).
			Return(false, errors.New("redis down")).Once()
		cartRepo.On("FindActiveCart", ctx, "mario").Return(stored, nil).Once()
		cartCache.On("Set", ctx, "cart:mario", stored, time.Duration(0)).
			Return(errors.New("redis down")).Once()

		// Act
		cart, err := svc.GetCart(ctx, "mario")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, stored, cart)
	})
}

func TestCheckoutCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		cartRepo, _, cartCache, svc := setupCartServiceTest()
		paidAt := time.Now()
		paid := &models.Cart{ID: 7, Customer: "mario", Paid: true, PaymentDate: &paidAt, Total: 699.99}
		cartRepo.On("Checkout", ctx, "mario", mock.AnythingOfType("time.Time")).
			Return(paid, nil).Once()
		cartCache.On("Delete", ctx, "cart:mario").Return(nil).Once()

		// Act
		cart, err := svc.CheckoutCart(ctx, "mario")

		// Assert
		require.NoError(t, err)
		assert.True(t, cart.Paid)
		require.NotNil(t, cart.PaymentDate)
		cartRepo.AssertExpectations(t)
		cartCache.AssertExpectations(t)
	})

	t.Run("Failure - Cart Not Found", func(t *testing.T) {
		// Arrange
		cartRepo, _, cartCache, svc := setupCartServiceTest()
		cartRepo.On("Checkout", ctx, "luigi", mock.AnythingOfType("time.Time")).
			Return(nil, repository.ErrCartNotFound).Once()

		// Act
		cart, err := svc.CheckoutCart(ctx, "luigi")

		// Assert
		assert.Nil(t, cart)
		assertAppErrorCode(t, err, appErrors.ErrCodeCartNotFound)
		cartCache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Empty Cart", func(t *testing.T) {
		// Arrange
		cartRepo, _, _, svc := setupCartServiceTest()
		cartRepo.On("Checkout", ctx, "mario", mock.AnythingOfType("time.Time")).
			Return(nil, repository.ErrEmptyCart).Once()

		// Act
		_, err := svc.CheckoutCart(ctx, "mario")

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeEmptyCart)
	})

	t.Run("Failure - Low Stock", func(t *testing.T) {
		// Arrange
		cartRepo, _, _, svc := setupCartServiceTest()
		cartRepo.On("Checkout", ctx, "mario", mock.AnythingOfType("time.Time")).
			Return(nil, repository.ErrLowProductStock).Once()

		// Act
		_, err := svc.CheckoutCart(ctx, "mario")

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeLowProductStock)
	})

	t.Run("Failure - Infrastructure Error", func(t *testing.T) {
		// Arrange
		cartRepo, _, _, svc := setupCartServiceTest()
		cartRepo.On("Checkout", ctx, "mario", mock.AnythingOfType("time.Time")).
			Return(nil, errors.New("serialization failure")).Once()

		// Act
		_, err := svc.CheckoutCart(ctx, "mario")

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeDatabaseError)
	})
}

func TestGetCustomerCarts(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - History Returned", func(t *testing.T) {
		// Arrange
		cartRepo, _, _, svc := setupCartServiceTest()
		paidAt := time.Now()
		history := []models.Cart{
			{ID: 1, Customer: "mario", Paid: true, PaymentDate: &paidAt, Total: 699.99},
		}
		cartRepo.On("FindPaidCarts", ctx, "mario").Return(history, nil).Once()

		// Act
		carts, err := svc.GetCustomerCarts(ctx, "mario")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, history, carts)
	})

	t.Run("Success - No History Is Empty List", func(t *testing.T) {
		// Arrange
		cartRepo, _, _, svc := setupCartServiceTest()
		cartRepo.On("FindPaidCarts", ctx, "luigi").Return([]models.Cart{}, nil).Once()

		// Act
		carts, err := svc.GetCustomerCarts(ctx, "luigi")

		// Assert
		require.NoError(t, err)
		assert.Empty(t, carts)
	})
}

func TestRemoveProductFromCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		cartRepo, productRepo, cartCache, svc := setupCartServiceTest()
		productRepo.On("GetProductByModel", ctx, "P001").Return(smartphone(), nil).Once()
		cartRepo.On("FindActiveCart", ctx, "mario").
			Return(&models.Cart{ID: 7, Customer: "mario"}, nil).Once()
		cartRepo.On("DecrementOrRemoveLineItem", ctx, int64(7), "P001").Return(nil).Once()
		cartCache.On("Delete", ctx, "cart:mario").Return(nil).Once()

		// Act
		err := svc.RemoveProductFromCart(ctx, "mario", "P001")

		// Assert
		require.NoError(t, err)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Failure - Product Not Found Checked First", func(t *testing.T) {
		// Arrange
		cartRepo, productRepo, _, svc := setupCartServiceTest()
		productRepo.On("GetProductByModel", ctx, "P999").Return(nil, sql.ErrNoRows).Once()

		// Act
		err := svc.RemoveProductFromCart(ctx, "mario", "P999")

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeProductNotFound)
		cartRepo.AssertNotCalled(t, "FindActiveCart", mock.Anything, mock.Anything)
	})

	t.Run("Failure - No Active Cart", func(t *testing.T) {
		// Arrange
		cartRepo, productRepo, _, svc := setupCartServiceTest()
		productRepo.On("GetProductByModel", ctx, "P001").Return(smartphone(), nil).Once()
		cartRepo.On("FindActiveCart", ctx, "mario").Return(nil, sql.ErrNoRows).Once()

		// Act
		err := svc.RemoveProductFromCart(ctx, "mario", "P001")

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeCartNotFound)
	})

	t.Run("Failure - Product Not In Cart", func(t *testing.T) {
		// Arrange
		cartRepo, productRepo, _, svc := setupCartServiceTest()
		productRepo.On("GetProductByModel", ctx, "P001").Return(smartphone(), nil).Once()
		cartRepo.On("FindActiveCart", ctx, "mario").
			Return(&models.Cart{ID: 7, Customer: "mario"}, nil).Once()
		cartRepo.On("DecrementOrRemoveLineItem", ctx, int64(7), "P001").
			Return(repository.ErrProductNotInCart).Once()

		// Act
		err := svc.RemoveProductFromCart(ctx, "mario", "P001")

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeProductNotInCart)
	})
}

func TestClearCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		cartRepo, _, cartCache, svc := setupCartServiceTest()
		cartRepo.On("FindActiveCart", ctx, "mario").
			Return(&models.Cart{ID: 7, Customer: "mario"}, nil).Once()
		cartRepo.On("Clear", ctx, int64(7)).Return(nil).Once()
		cartCache.On("Delete", ctx, "cart:mario").Return(nil).Once()

		// Act
		err := svc.ClearCart(ctx, "mario")

		// Assert
		require.NoError(t, err)
		cartRepo.AssertExpectations(t)
	})

	t.Run("Failure - No Active Cart", func(t *testing.T) {
		// Arrange
		cartRepo, _, _, svc := setupCartServiceTest()
		cartRepo.On("FindActiveCart", ctx, "mario").Return(nil, sql.ErrNoRows).Once()

		// Act
		err := svc.ClearCart(ctx, "mario")

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeCartNotFound)
		cartRepo.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
	})
}

func TestGetAllCarts(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		cartRepo, _, _, svc := setupCartServiceTest()
		all := []models.Cart{{ID: 1, Customer: "mario"}, {ID: 2, Customer: "luigi"}}
		cartRepo.On("FindAllCarts", ctx).Return(all, nil).Once()

		// Act
		carts, err := svc.GetAllCarts(ctx)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, all, carts)
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		// Arrange
		cartRepo, _, _, svc := setupCartServiceTest()
		cartRepo.On("FindAllCarts", ctx).Return(nil, errors.New("boom")).Once()

		// Act
		_, err := svc.GetAllCarts(ctx)

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeDatabaseError)
	})
}

func TestDeleteAllCarts(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Cache Flushed", func(t *testing.T) {
		// Arrange
		cartRepo, _, cartCache, svc := setupCartServiceTest()
		cartRepo.On("DeleteAll", ctx).Return(nil).Once()
		cartCache.On("Flush", ctx).Return(nil).Once()

		// Act
		err := svc.DeleteAllCarts(ctx)

		// Assert
		require.NoError(t, err)
		cartCache.AssertExpectations(t)
	})

	t.Run("Success - Cache Flush Error Is Non-Fatal", func(t *testing.T) {
		// Arrange
		cartRepo, _, cartCache, svc := setupCartServiceTest()
		cartRepo.On("DeleteAll", ctx).Return(nil).Once()
		cartCache.On("Flush", ctx).Return(errors.New("redis down")).Once()

		// Act
		err := svc.DeleteAllCarts(ctx)

		// Assert
		require.NoError(t, err)
	})

	t.Run("Failure - Database Error", func(t *testing.T) {
		// Arrange
		cartRepo, _, cartCache, svc := setupCartServiceTest()
		cartRepo.On("DeleteAll", ctx).Return(errors.New("boom")).Once()

		// Act
		err := svc.DeleteAllCarts(ctx)

		// Assert
		assertAppErrorCode(t, err, appErrors.ErrCodeDatabaseError)
		cartCache.AssertNotCalled(t, "Flush", mock.Anything)
	})
}
