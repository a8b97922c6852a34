package domain

import "time"

// Category groups news articles under a title.
type Category struct {
	ID    int64
	Title string
}

// News is a published article. Image is optional; an empty string means
// no image was supplied and clients substitute a placeholder.
type News struct {
	ID          int64
	Title       string
	Description string
	Image       string
	CategoryID  int64
	UserID      int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Read-time enrichment, joined from categories and users. Nil when
	// the referenced row no longer exists.
	CategoryTitle *string
	Author        *string
}
