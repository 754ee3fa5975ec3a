// Package shopify holds the inbound webhook surface of the Shopify
// integration: signature verification, topic routing, and the subset of
// payload fields the sync consumes.
package shopify

import (
	"strconv"

	"storefront-cms-api/internal/model"
)

// Recognized webhook topics. Anything else is acknowledged and ignored.
const (
	TopicProductCreate    = "products/create"
	TopicProductUpdate    = "products/update"
	TopicProductDelete    = "products/delete"
	TopicCollectionCreate = "collections/create"
	TopicCollectionUpdate = "collections/update"
	TopicCollectionDelete = "collections/delete"
)

// ProductPayload is the subset of a Shopify product resource the sync reads.
type ProductPayload struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	BodyHTML string    `json:"body_html"`
	Handle   string    `json:"handle"`
	Variants []Variant `json:"variants"`
}

// Variant carries the price of a product variant. Shopify sends prices as
// decimal strings.
type Variant struct {
	Price string `json:"price"`
}

// CollectionPayload is the subset of a Shopify collection resource the sync reads.
type CollectionPayload struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	BodyHTML string `json:"body_html"`
	Handle   string `json:"handle"`
}

// untitled is the placeholder title for payloads that carry none.
const untitled = "Untitled"

// ProductData maps the payload onto the locally stored product fields,
// applying the sync defaulting rules: missing title becomes a placeholder,
// price comes from the first variant and defaults to 0, an empty handle is
// stored as NULL.
func (p *ProductPayload) ProductData() model.ProductData {
	title := p.Title
	if title == "" {
		title = untitled
	}

	price := 0.0
	if len(p.Variants) > 0 {
		if v, err := strconv.ParseFloat(p.Variants[0].Price, 64); err == nil {
			price = v
		}
	}

	return model.ProductData{
		Title:       title,
		Description: p.BodyHTML,
		Price:       price,
		ShopifyID:   strconv.FormatInt(p.ID, 10),
		Handle:      nullableHandle(p.Handle),
	}
}

// CollectionData maps the payload onto the locally stored collection fields.
func (c *CollectionPayload) CollectionData() model.CollectionData {
	title := c.Title
	if title == "" {
		title = untitled
	}

	return model.CollectionData{
		Title:       title,
		Description: c.BodyHTML,
		ShopifyID:   strconv.FormatInt(c.ID, 10),
		Handle:      nullableHandle(c.Handle),
	}
}

func nullableHandle(h string) *string {
	if h == "" {
		return nil
	}
	return &h
}
