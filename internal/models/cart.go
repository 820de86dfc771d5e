package models

import (
	"time"
)

// ProductInCart is a denormalized snapshot of a catalog product at the moment
// it was added to a cart. Price and category are never re-read from the
// catalog, so paid-cart history stays stable when the catalog changes.
type ProductInCart struct {
	Model    string  `json:"model"`
	Quantity int     `json:"quantity"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

type Cart struct {
	ID          int64           `json:"id"`
	Customer    string          `json:"customer"`
	Paid        bool            `json:"paid"`
	PaymentDate *time.Time      `json:"payment_date"`
	Total       float64         `json:"total"`
	Items       []ProductInCart `json:"items"`
}

// EmptyCart is the value returned for a customer that has no active cart yet.
func EmptyCart(customer string) *Cart {
	return &Cart{
		Customer:    customer,
		Paid:        false,
		PaymentDate: nil,
		Total:       0,
		Items:       []ProductInCart{},
	}
}

type AddProductRequest struct {
	Model string `json:"model" validate:"required,min=1"`
}
