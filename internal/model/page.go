package model

import "time"

// Page is a simple static page managed through the CMS API.
type Page struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"document_id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
