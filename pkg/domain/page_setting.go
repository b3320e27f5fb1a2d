package domain

import "time"

// Page types under which generated documents are stored in the settings table.
const (
	PageTypeSitemap      = "sitemap_xml"
	PageTypeSitemapIndex = "sitemap_index"
)

// PageSetting is a row of the shared SEO settings table.
//
// The table is reused for unrelated configuration; for generated documents the
// full XML body lives in Description.
type PageSetting struct {
	PageType    string    `bson:"page_type" json:"page_type"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Keywords    string    `bson:"keywords" json:"keywords"`
	IsActive    bool      `bson:"is_active" json:"is_active"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
