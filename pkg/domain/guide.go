package domain

import "time"

// Guide represents a downloadable lead-magnet guide.
//
// Guides have no stored slug; their public path is derived from the title on
// every sitemap run, so renaming a guide also moves its URL.
type Guide struct {
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	IsActive    bool      `bson:"is_active" json:"is_active"`
	SortOrder   int       `bson:"sort_order" json:"sort_order"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
