package model

import "time"

// Product represents a product synchronized from Shopify.
// ShopifyID is the external identifier and the reconciliation key;
// at most one product exists per ShopifyID.
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ShopifyID   string    `json:"shopify_id"`
	Handle      *string   `json:"handle"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductData holds the mutable fields written by the webhook sync.
type ProductData struct {
	Title       string
	Description string
	Price       float64
	ShopifyID   string
	Handle      *string
}
