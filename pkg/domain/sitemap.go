package domain

import "time"

// ChangeFreq is the crawl hint carried by a sitemap <changefreq> element.
type ChangeFreq string

const (
	ChangeFreqAlways  ChangeFreq = "always"
	ChangeFreqHourly  ChangeFreq = "hourly"
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
	ChangeFreqYearly  ChangeFreq = "yearly"
	ChangeFreqNever   ChangeFreq = "never"
)

// Valid reports whether c is one of the values allowed by the sitemap protocol.
func (c ChangeFreq) Valid() bool {
	switch c {
	case ChangeFreqAlways, ChangeFreqHourly, ChangeFreqDaily, ChangeFreqWeekly,
		ChangeFreqMonthly, ChangeFreqYearly, ChangeFreqNever:
		return true
	}
	return false
}

// StaticRoute is a hand-maintained page of the site that always appears in the sitemap.
type StaticRoute struct {
	Path       string
	ChangeFreq ChangeFreq
	Priority   float64
}

// SitemapEntry is a single <url> of a generated sitemap.
type SitemapEntry struct {
	Location     string // absolute URL
	LastModified time.Time
	ChangeFreq   ChangeFreq
	Priority     float64 // 0..1
}
