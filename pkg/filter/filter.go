package filter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Filter defines the interface for URL filtering
type Filter interface {
	ShouldKeep(ctx context.Context, url string) (bool, error)
}

// FilterURLs applies all filters to a list of URLs
func FilterURLs(ctx context.Context, urls []string, filters ...Filter) ([]string, error) {
	filtered := make([]string, 0, len(urls))

	for _, urlStr := range urls {
		keep := true
		for _, f := range filters {
			shouldKeep, err := f.ShouldKeep(ctx, urlStr)
			if err != nil {
				return nil, fmt.Errorf("filter error for URL %s: %w", urlStr, err)
			}
			if !shouldKeep {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, urlStr)
		}
	}

	return filtered, nil
}

// BaseURLFilter filters out base/root URLs
type BaseURLFilter struct{}

// NewBaseURLFilter creates a new base URL filter
func NewBaseURLFilter() *BaseURLFilter {
	return &BaseURLFilter{}
}

// ShouldKeep returns false if URL is a base/root URL
func (f *BaseURLFilter) ShouldKeep(ctx context.Context, urlStr string) (bool, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		// keep it; the fetch will report it
		return true, nil
	}

	path := strings.Trim(parsed.Path, "/")
	return path != "", nil
}

// AlreadyFetchedFilter filters out URLs that were already seen. Seen URLs are
// recorded as they pass, so it also drops later duplicates within one list.
type AlreadyFetchedFilter struct {
	fetchedURLs map[string]bool
}

// NewAlreadyFetchedFilter creates a new already-fetched filter. fetchedURLs may be nil.
func NewAlreadyFetchedFilter(fetchedURLs map[string]bool) *AlreadyFetchedFilter {
	if fetchedURLs == nil {
		fetchedURLs = make(map[string]bool)
	}
	return &AlreadyFetchedFilter{
		fetchedURLs: fetchedURLs,
	}
}

// ShouldKeep returns false if URL is already in the fetched set
func (f *AlreadyFetchedFilter) ShouldKeep(ctx context.Context, urlStr string) (bool, error) {
	if f.fetchedURLs[urlStr] {
		return false, nil
	}
	f.fetchedURLs[urlStr] = true
	return true, nil
}

// HostFilter keeps only URLs on the given host.
type HostFilter struct {
	host string
}

// NewHostFilter creates a host filter from any URL on the wanted host.
func NewHostFilter(baseURL string) (*HostFilter, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base URL has no host: %q", baseURL)
	}
	return &HostFilter{host: strings.ToLower(parsed.Host)}, nil
}

// ShouldKeep returns true if URL is on the filter's host
func (f *HostFilter) ShouldKeep(ctx context.Context, urlStr string) (bool, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false, nil
	}
	return strings.ToLower(parsed.Host) == f.host, nil
}

// PathPrefixFilter keeps URLs whose path starts with one of the prefixes.
// With no prefixes every URL is kept.
type PathPrefixFilter struct {
	prefixes []string
}

// NewPathPrefixFilter creates a new path prefix filter
func NewPathPrefixFilter(prefixes ...string) *PathPrefixFilter {
	var cleaned []string
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		cleaned = append(cleaned, p)
	}
	return &PathPrefixFilter{prefixes: cleaned}
}

// ShouldKeep returns true if the URL path matches a prefix
func (f *PathPrefixFilter) ShouldKeep(ctx context.Context, urlStr string) (bool, error) {
	if len(f.prefixes) == 0 {
		return true, nil
	}
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return false, nil
	}
	for _, p := range f.prefixes {
		if strings.HasPrefix(parsed.Path, p) {
			return true, nil
		}
	}
	return false, nil
}
