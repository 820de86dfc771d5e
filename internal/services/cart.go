package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/ezstore/electronics-store-backend/internal/cache"
	appErrors "github.com/ezstore/electronics-store-backend/internal/errors"
	"github.com/ezstore/electronics-store-backend/internal/metrics"
	"github.com/ezstore/electronics-store-backend/internal/models"
	repository "github.com/ezstore/electronics-store-backend/internal/repositories"
)

// CartService is the cart engine: business rules over the cart repository
// and the single interaction with the catalog component.
type CartService interface {
	AddToCart(ctx context.Context, customer, model string) error
	GetCart(ctx context.Context, customer string) (*models.Cart, error)
	CheckoutCart(ctx context.Context, customer string) (*models.Cart, error)
	GetCustomerCarts(ctx context.Context, customer string) ([]models.Cart, error)
	RemoveProductFromCart(ctx context.Context, customer, model string) error
	ClearCart(ctx context.Context, customer string) error
	GetAllCarts(ctx context.Context) ([]models.Cart, error)
	DeleteAllCarts(ctx context.Context) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	cache       cache.Cache
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, cartCache cache.Cache) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		cache:       cartCache,
	}
}

// AddToCart puts one unit of the product into the customer's active cart,
// creating the cart if it does not exist yet. Price and category are
// captured from the catalog at this moment and never re-read.
func (s *cartService) AddToCart(ctx context.Context, customer, model string) error {
	product, err := s.productRepo.GetProductByModel(ctx, model)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ProductNotFoundError().WithError(err)
		}

		return appErrors.DatabaseError("Failed to look up product").WithError(err)
	}

	// Availability gate only. Stock is not reserved here; checkout re-validates.
	if product.Quantity <= 0 {
		return appErrors.EmptyProductStockError()
	}

	cart, err := s.cartRepo.FindActiveCart(ctx, customer)

	switch {
	case err == nil:
		if err := s.cartRepo.UpsertLineItem(ctx, cart.ID, model, product.SellingPrice, product.Category); err != nil {
			return appErrors.DatabaseError("Failed to add product to cart").WithError(err)
		}
	case errors.Is(err, sql.ErrNoRows):
		if err := s.createOrJoinCart(ctx, customer, product); err != nil {
			return err
		}
	default:
		return appErrors.DatabaseError("Failed to look up cart").WithError(err)
	}

	s.invalidateCart(ctx, customer)

	return nil
}

// createOrJoinCart resolves the first-add creation race: when a concurrent
// request wins the insert, the unique violation is answered by fetching the
// winner's cart and upserting into it.
func (s *cartService) createOrJoinCart(ctx context.Context, customer string, product *models.Product) error {
	_, err := s.cartRepo.CreateCart(ctx, customer, product.Model, product.SellingPrice, product.Category)
	if err == nil {
		return nil
	}

	if !errors.Is(err, repository.ErrActiveCartExists) {
		return appErrors.DatabaseError("Failed to create cart").WithError(err)
	}

	cart, err := s.cartRepo.FindActiveCart(ctx, customer)
	if err != nil {
		return appErrors.DatabaseError("Failed to look up cart").WithError(err)
	}

	if err := s.cartRepo.UpsertLineItem(ctx, cart.ID, product.Model, product.SellingPrice, product.Category); err != nil {
		return appErrors.DatabaseError("Failed to add product to cart").WithError(err)
	}

	return nil
}

// GetCart returns the customer's active cart, or a well-formed empty cart if
// none exists. It never fails for a valid customer.
func (s *cartService) GetCart(ctx context.Context, customer string) (*models.Cart, error) {
	cacheKey := cache.Key(cache.CartKeyPrefix, customer)

	cached := &models.Cart{}

	found, err := s.cache.Get(ctx, cacheKey, cached)
	if err != nil {
		slog.Warn("Cart cache lookup failed", slog.String("customer", customer), slog.String("error", err.Error()))
	} else if found {
		return cached, nil
	}

	cart, err := s.cartRepo.FindActiveCart(ctx, customer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.EmptyCart(customer), nil
		}

		return nil, appErrors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	if err := s.cache.Set(ctx, cacheKey, cart, 0); err != nil {
		slog.Warn("Cart cache store failed", slog.String("customer", customer), slog.String("error", err.Error()))
	}

	return cart, nil
}

// CheckoutCart settles the active cart. Validation and mutation run inside a
// single serializable transaction in the repository, so a rejection leaves
// stock and cart state untouched.
func (s *cartService) CheckoutCart(ctx context.Context, customer string) (*models.Cart, error) {
	cart, err := s.cartRepo.Checkout(ctx, customer, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCartNotFound):
			metrics.ObserveCheckout(metrics.CheckoutRejected)

			return nil, appErrors.CartNotFoundError().WithError(err)
		case errors.Is(err, repository.ErrEmptyCart):
			metrics.ObserveCheckout(metrics.CheckoutRejected)

			return nil, appErrors.EmptyCartError().WithError(err)
		case errors.Is(err, repository.ErrLowProductStock):
			metrics.ObserveCheckout(metrics.CheckoutRejected)

			return nil, appErrors.LowProductStockError().WithError(err)
		default:
			metrics.ObserveCheckout(metrics.CheckoutFailed)

			return nil, appErrors.DatabaseError("Failed to checkout cart").WithError(err)
		}
	}

	metrics.ObserveCheckout(metrics.CheckoutSucceeded)
	s.invalidateCart(ctx, customer)

	return cart, nil
}

// GetCustomerCarts returns the customer's checkout history: every paid cart
// with its frozen line items.
func (s *cartService) GetCustomerCarts(ctx context.Context, customer string) ([]models.Cart, error) {
	carts, err := s.cartRepo.FindPaidCarts(ctx, customer)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch cart history").WithError(err)
	}

	return carts, nil
}

func (s *cartService) RemoveProductFromCart(ctx context.Context, customer, model string) error {
	_, err := s.productRepo.GetProductByModel(ctx, model)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ProductNotFoundError().WithError(err)
		}

		return appErrors.DatabaseError("Failed to look up product").WithError(err)
	}

	cart, err := s.cartRepo.FindActiveCart(ctx, customer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.CartNotFoundError().WithError(err)
		}

		return appErrors.DatabaseError("Failed to look up cart").WithError(err)
	}

	if err := s.cartRepo.DecrementOrRemoveLineItem(ctx, cart.ID, model); err != nil {
		if errors.Is(err, repository.ErrProductNotInCart) {
			return appErrors.ProductNotInCartError().WithError(err)
		}

		return appErrors.DatabaseError("Failed to remove product from cart").WithError(err)
	}

	s.invalidateCart(ctx, customer)

	return nil
}

func (s *cartService) ClearCart(ctx context.Context, customer string) error {
	cart, err := s.cartRepo.FindActiveCart(ctx, customer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.CartNotFoundError().WithError(err)
		}

		return appErrors.DatabaseError("Failed to look up cart").WithError(err)
	}

	if err := s.cartRepo.Clear(ctx, cart.ID); err != nil {
		return appErrors.DatabaseError("Failed to clear cart").WithError(err)
	}

	s.invalidateCart(ctx, customer)

	return nil
}

func (s *cartService) GetAllCarts(ctx context.Context) ([]models.Cart, error) {
	carts, err := s.cartRepo.FindAllCarts(ctx)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch carts").WithError(err)
	}

	return carts, nil
}

func (s *cartService) DeleteAllCarts(ctx context.Context) error {
	if err := s.cartRepo.DeleteAll(ctx); err != nil {
		return appErrors.DatabaseError("Failed to delete carts").WithError(err)
	}

	if err := s.cache.Flush(ctx); err != nil {
		slog.Warn("Cart cache flush failed", slog.String("error", err.Error()))
	}

	return nil
}

func (s *cartService) invalidateCart(ctx context.Context, customer string) {
	key := cache.Key(cache.CartKeyPrefix, customer)

	if err := s.cache.Delete(ctx, key); err != nil {
		slog.Warn("Cart cache invalidation failed", slog.String("customer", customer), slog.String("error", err.Error()))
	}
}
