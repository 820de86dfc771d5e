package handlers

import (
	"log/slog"
	"net/http"

	"github.com/ezstore/electronics-store-backend/internal/api/middleware"
	appErrors "github.com/ezstore/electronics-store-backend/internal/errors"
	"github.com/ezstore/electronics-store-backend/internal/models"
	service "github.com/ezstore/electronics-store-backend/internal/services"
	"github.com/ezstore/electronics-store-backend/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CartHandler struct {
	cartService service.CartService
	notifier    *service.NotificationService
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartService, notifier *service.NotificationService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		notifier:    notifier,
		validator:   validator.New(),
	}
}

// GET /api/v1/carts
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := h.requireClaims(w, r)
		if !ok {
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), claims.Username)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// POST /api/v1/carts
func (h *CartHandler) AddProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := h.requireClaims(w, r)
		if !ok {
			return
		}

		logger := middleware.LoggerFromContext(r.Context())

		var req models.AddProductRequest
		if err := decodeJSONBody(w, r, logger, &req); err != nil {
			return
		}

		if !validateStruct(w, logger, h.validator, req) {
			return
		}

		if err := h.cartService.AddToCart(r.Context(), claims.Username, req.Model); err != nil {
			response.Error(w, err)

			return
		}

		logger.Info("Product added to cart", slog.String("model", req.Model))
		response.Success(w, http.StatusOK, map[string]bool{"added": true})
	}
}

// PATCH /api/v1/carts
func (h *CartHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := h.requireClaims(w, r)
		if !ok {
			return
		}

		logger := middleware.LoggerFromContext(r.Context())

		cart, err := h.cartService.CheckoutCart(r.Context(), claims.Username)
		if err != nil {
			response.Error(w, err)

			return
		}

		logger.Info("Cart checked out", slog.Int64("cart_id", cart.ID), slog.Float64("total", cart.Total))

		// Receipt delivery never fails a committed checkout.
		if h.notifier != nil && claims.Email != "" {
			if err := h.notifier.SendCheckoutReceipt(r.Context(), claims.Email, cart); err != nil {
				logger.Warn("Failed to send checkout receipt", slog.String("error", err.Error()))
			}
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// GET /api/v1/carts/history
func (h *CartHandler) GetHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := h.requireClaims(w, r)
		if !ok {
			return
		}

		carts, err := h.cartService.GetCustomerCarts(r.Context(), claims.Username)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, carts)
	}
}

// DELETE /api/v1/carts/products/{model}
func (h *CartHandler) RemoveProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := h.requireClaims(w, r)
		if !ok {
			return
		}

		model := r.PathValue("model")
		if model == "" {
			response.Error(w, appErrors.BadRequestError("Product model is required"))

			return
		}

		if err := h.cartService.RemoveProductFromCart(r.Context(), claims.Username, model); err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, map[string]bool{"removed": true})
	}
}

// DELETE /api/v1/carts/current
func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := h.requireClaims(w, r)
		if !ok {
			return
		}

		if err := h.cartService.ClearCart(r.Context(), claims.Username); err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, map[string]bool{"cleared": true})
	}
}

// GET /api/v1/carts/all (admin/manager)
func (h *CartHandler) GetAllCarts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		carts, err := h.cartService.GetAllCarts(r.Context())
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, carts)
	}
}

// DELETE /api/v1/carts (admin/manager)
func (h *CartHandler) DeleteAllCarts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.cartService.DeleteAllCarts(r.Context()); err != nil {
			response.Error(w, err)

			return
		}

		middleware.LoggerFromContext(r.Context()).Info("All carts deleted")
		response.Success(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

func (h *CartHandler) requireClaims(w http.ResponseWriter, r *http.Request) (*models.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, appErrors.UnauthorizedError("Authentication required"))

		return nil, false
	}

	return claims, true
}
