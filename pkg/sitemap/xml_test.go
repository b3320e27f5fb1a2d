package sitemap

import (
	"bytes"
	"encoding/xml"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"standardthought/pkg/domain"
)

func sampleEntries() []domain.SitemapEntry {
	return []domain.SitemapEntry{
		{Location: "https://standardthought.com/", LastModified: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), ChangeFreq: domain.ChangeFreqDaily, Priority: 1},
		{Location: "https://standardthought.com/blog/a&b", LastModified: time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC), ChangeFreq: domain.ChangeFreqMonthly, Priority: 0.9},
		{Location: "https://standardthought.com/guides/credit-repair-101-a-z", LastModified: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ChangeFreq: domain.ChangeFreqMonthly, Priority: 0.8},
	}
}

func TestMarshalSitemapStructure(t *testing.T) {
	doc, err := MarshalSitemap(sampleEntries())
	require.NoError(t, err)
	s := string(doc)

	assert.True(t, strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, s, `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)
	assert.Contains(t, s, `xmlns:mobile="http://www.google.com/schemas/sitemap-mobile/1.0"`)
	assert.Contains(t, s, `xmlns:image="http://www.google.com/schemas/sitemap-image/1.1"`)
	assert.Contains(t, s, `xmlns:news="http://www.google.com/schemas/sitemap-news/0.9"`)

	assert.Equal(t, 3, strings.Count(s, "<url>"))
	assert.Equal(t, 3, strings.Count(s, "<mobile:mobile/>"))
	assert.Contains(t, s, "<priority>1.00</priority>")
	assert.Contains(t, s, "<priority>0.90</priority>")
	assert.Contains(t, s, "<priority>0.80</priority>")
	assert.Contains(t, s, "<lastmod>2024-03-05</lastmod>")
	assert.Contains(t, s, "<changefreq>daily</changefreq>")
	assert.Contains(t, s, "<loc>https://standardthought.com/blog/a&amp;b</loc>")
}

func TestMarshalSitemapIsWellFormed(t *testing.T) {
	doc, err := MarshalSitemap(sampleEntries())
	require.NoError(t, err)

	decoder := xml.NewDecoder(bytes.NewReader(doc))
	for {
		_, err := decoder.Token()
		if err != nil {
			require.Equal(t, "EOF", err.Error())
			break
		}
	}
}

func TestMarshalSitemapRoundTrip(t *testing.T) {
	entries := sampleEntries()
	doc, err := MarshalSitemap(entries)
	require.NoError(t, err)

	parsed, err := NewParser(nil).ParseSitemap(bytes.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, parsed, len(entries))

	for i, p := range parsed {
		assert.Equal(t, entries[i].Location, p.Location)
		u, err := url.Parse(p.Location)
		require.NoError(t, err)
		assert.True(t, u.IsAbs())
		assert.True(t, strings.HasPrefix(p.Location, "https://standardthought.com"))
		assert.Equal(t, FormatPriority(entries[i].Priority), p.Priority)
		assert.Equal(t, string(entries[i].ChangeFreq), p.ChangeFreq)
	}
}

func TestMarshalSitemapDeterministic(t *testing.T) {
	first, err := MarshalSitemap(sampleEntries())
	require.NoError(t, err)
	second, err := MarshalSitemap(sampleEntries())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMarshalSitemapEmpty(t *testing.T) {
	doc, err := MarshalSitemap(nil)
	require.NoError(t, err)

	parsed, err := NewParser(nil).ParseSitemap(bytes.NewReader(doc))
	require.NoError(t, err)
	assert.Empty(t, parsed)
}

func TestMarshalIndexHasSingleChild(t *testing.T) {
	doc, err := MarshalIndex("https://standardthought.com/sitemap.xml", time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	s := string(doc)

	assert.Contains(t, s, `<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Equal(t, 1, strings.Count(s, "<sitemap>"))
	assert.Contains(t, s, "<lastmod>2024-03-10</lastmod>")

	urls, err := NewParser(nil).ParseSitemapIndex(bytes.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://standardthought.com/sitemap.xml"}, urls)
}

func TestFormatPriority(t *testing.T) {
	assert.Equal(t, "0.60", FormatPriority(0.6))
	assert.Equal(t, "0.75", FormatPriority(0.75))
	assert.Equal(t, "0.95", FormatPriority(0.95))
	assert.Equal(t, "0.00", FormatPriority(0))
}
