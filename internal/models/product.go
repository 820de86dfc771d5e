package models

import "time"

const (
	CategorySmartphone = "Smartphone"
	CategoryLaptop     = "Laptop"
	CategoryAppliance  = "Appliance"
)

// Product is the catalog record shape consumed from the catalog component.
// The cart engine only reads it; stock mutation happens inside the checkout
// transaction.
type Product struct {
	Model        string     `json:"model"`
	Category     string     `json:"category"`
	SellingPrice float64    `json:"selling_price"`
	Quantity     int        `json:"quantity"`
	Details      string     `json:"details,omitempty"`
	ArrivalDate  *time.Time `json:"arrival_date,omitempty"`
}
