package model

import "time"

// Article is an editorial content entry managed through the CMS API.
type Article struct {
	ID          int64      `json:"id"`
	DocumentID  string     `json:"document_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Body        string     `json:"body"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
