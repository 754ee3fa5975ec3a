package model

import "time"

// Collection represents a product collection synchronized from Shopify.
type Collection struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ShopifyID   string    `json:"shopify_id"`
	Handle      *string   `json:"handle"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CollectionData holds the mutable fields written by the webhook sync.
type CollectionData struct {
	Title       string
	Description string
	ShopifyID   string
	Handle      *string
}
