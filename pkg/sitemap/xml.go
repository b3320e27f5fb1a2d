package sitemap

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"standardthought/pkg/domain"
)

const (
	sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	mobileNamespace  = "http://www.google.com/schemas/sitemap-mobile/1.0"
	imageNamespace   = "http://www.google.com/schemas/sitemap-image/1.1"
	newsNamespace    = "http://www.google.com/schemas/sitemap-news/0.9"

	// DateLayout is the W3C calendar-date format used for <lastmod>.
	DateLayout = "2006-01-02"

	xmlIndent = "  "
)

// encoding/xml never self-closes elements, so the marker is written as raw
// inner XML at the indentation depth of the other <url> children.
var mobileMarker = "\n" + strings.Repeat(xmlIndent, 2) + "<mobile:mobile/>"

type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	Mobile  string   `xml:"xmlns:mobile,attr"`
	Image   string   `xml:"xmlns:image,attr"`
	News    string   `xml:"xmlns:news,attr"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
	Marker     string `xml:",innerxml"`
}

type xmlSitemapIndex struct {
	XMLName  xml.Name        `xml:"sitemapindex"`
	XMLNS    string          `xml:"xmlns,attr"`
	Sitemaps []xmlSitemapRef `xml:"sitemap"`
}

type xmlSitemapRef struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

// MarshalSitemap renders entries as a <urlset> document, in the given order.
func MarshalSitemap(entries []domain.SitemapEntry) ([]byte, error) {
	set := xmlURLSet{
		XMLNS:  sitemapNamespace,
		Mobile: mobileNamespace,
		Image:  imageNamespace,
		News:   newsNamespace,
		URLs:   make([]xmlURL, 0, len(entries)),
	}

	for _, e := range entries {
		set.URLs = append(set.URLs, xmlURL{
			Loc:        e.Location,
			LastMod:    e.LastModified.UTC().Format(DateLayout),
			ChangeFreq: string(e.ChangeFreq),
			Priority:   FormatPriority(e.Priority),
			Marker:     mobileMarker,
		})
	}

	return marshalDocument(set)
}

// MarshalIndex renders a sitemap index with a single child: the sitemap itself.
func MarshalIndex(sitemapURL string, generatedAt time.Time) ([]byte, error) {
	index := xmlSitemapIndex{
		XMLNS: sitemapNamespace,
		Sitemaps: []xmlSitemapRef{{
			Loc:     sitemapURL,
			LastMod: generatedAt.UTC().Format(DateLayout),
		}},
	}
	return marshalDocument(index)
}

// FormatPriority formats a priority with exactly two decimals.
func FormatPriority(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

func marshalDocument(v any) ([]byte, error) {
	output, err := xml.MarshalIndent(v, "", xmlIndent)
	if err != nil {
		return nil, fmt.Errorf("marshal XML: %w", err)
	}

	doc := make([]byte, 0, len(xml.Header)+len(output)+1)
	doc = append(doc, xml.Header...)
	doc = append(doc, output...)
	doc = append(doc, '\n')
	return doc, nil
}
