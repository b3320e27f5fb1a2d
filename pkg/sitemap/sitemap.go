package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"standardthought/pkg/httpclient"
)

// Entry represents a single URL entry read back from a published sitemap
type Entry struct {
	Location   string // URL of the page
	LastMod    string // Last modification date (optional)
	Priority   string // Priority value (optional)
	ChangeFreq string // Change frequency (optional)
}

// XML structures for parsing sitemap XML

// urlSet represents a regular sitemap structure
type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

// urlEntry represents a single URL entry in XML
type urlEntry struct {
	Location   string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	Priority   string `xml:"priority,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
}

// sitemapIndex represents a sitemap index structure
type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

// sitemapRef represents a reference to another sitemap in an index
type sitemapRef struct {
	Location string `xml:"loc"`
	LastMod  string `xml:"lastmod,omitempty"`
}

// Parser handles sitemap parsing operations
type Parser struct {
	client *httpclient.HTTPClient
}

// NewParser creates a new sitemap parser
func NewParser(client *httpclient.HTTPClient) *Parser {
	if client == nil {
		client = httpclient.NewClient(httpclient.CrawlerClient)
	}
	return &Parser{
		client: client,
	}
}

// ParseFromURL fetches and parses a sitemap from the given URL.
// Sitemap indexes are followed and the entries of every child sitemap are combined.
// Each sitemap is fetched at most once, so index cycles terminate.
func (p *Parser) ParseFromURL(ctx context.Context, sitemapURL string) ([]Entry, error) {
	return p.parseFromURL(ctx, sitemapURL, map[string]bool{})
}

func (p *Parser) parseFromURL(ctx context.Context, sitemapURL string, visited map[string]bool) ([]Entry, error) {
	visited[sitemapURL] = true

	resp, err := p.client.Get(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// Read first few bytes to detect sitemap type
	peekBuffer := make([]byte, 512)
	n, err := io.ReadFull(resp.Body, peekBuffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read sitemap: %w", err)
	}

	content := string(peekBuffer[:n])
	reader := io.MultiReader(strings.NewReader(content), resp.Body)

	if !strings.Contains(content, "sitemapindex") {
		return p.ParseSitemap(reader)
	}

	sitemapURLs, err := p.ParseSitemapIndex(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sitemap index: %w", err)
	}

	if len(sitemapURLs) == 0 {
		return nil, fmt.Errorf("sitemap index contained no sitemap URLs")
	}

	// Parse all sitemaps in the index and combine their entries
	var allEntries []Entry
	for _, childURL := range sitemapURLs {
		if visited[childURL] {
			continue
		}
		entries, err := p.parseFromURL(ctx, childURL, visited)
		if err != nil {
			return nil, fmt.Errorf("child sitemap %s: %w", childURL, err)
		}
		allEntries = append(allEntries, entries...)
	}

	return allEntries, nil
}

// ParseSitemapIndex parses a sitemap index document and returns the child sitemap URLs
func (p *Parser) ParseSitemapIndex(reader io.Reader) ([]string, error) {
	var index sitemapIndex
	decoder := xml.NewDecoder(reader)

	if err := decoder.Decode(&index); err != nil {
		return nil, fmt.Errorf("failed to decode sitemap index XML: %w", err)
	}

	urls := make([]string, 0, len(index.Sitemaps))
	for _, ref := range index.Sitemaps {
		if ref.Location != "" {
			urls = append(urls, strings.TrimSpace(ref.Location))
		}
	}

	return urls, nil
}

// ParseSitemap parses a regular sitemap document
func (p *Parser) ParseSitemap(reader io.Reader) ([]Entry, error) {
	var set urlSet
	decoder := xml.NewDecoder(reader)

	if err := decoder.Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode sitemap XML: %w", err)
	}

	entries := make([]Entry, 0, len(set.URLs))
	for _, u := range set.URLs {
		if u.Location == "" {
			continue
		}
		entries = append(entries, Entry{
			Location:   strings.TrimSpace(u.Location),
			LastMod:    strings.TrimSpace(u.LastMod),
			Priority:   strings.TrimSpace(u.Priority),
			ChangeFreq: strings.TrimSpace(u.ChangeFreq),
		})
	}

	return entries, nil
}
