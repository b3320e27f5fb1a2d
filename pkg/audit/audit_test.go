package audit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"standardthought/pkg/filter"
)

// newSite serves a small site whose sitemap, robots.txt and pages are given.
func newSite(t *testing.T, robots string, pages map[string]string) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sitemap.xml":
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>%[1]s/</loc><lastmod>2024-03-05</lastmod><changefreq>daily</changefreq><priority>1.00</priority></url>
  <url><loc>%[1]s/blog/budget-basics</loc><lastmod>2024-03-01</lastmod><changefreq>monthly</changefreq><priority>0.75</priority></url>
  <url><loc>%[1]s/admin/drafts</loc><lastmod>2024-03-01</lastmod><changefreq>monthly</changefreq><priority>0.60</priority></url>
  <url><loc>%[1]s/guides/missing</loc><lastmod>2024-03-01</lastmod><changefreq>monthly</changefreq><priority>0.80</priority></url>
</urlset>`, server.URL)
		case "/robots.txt":
			if robots == "" {
				http.NotFound(w, r)
				return
			}
			_, _ = io.WriteString(w, strings.ReplaceAll(robots, "%s", server.URL))
		default:
			body, ok := pages[r.URL.Path]
			if !ok {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "text/html")
			_, _ = io.WriteString(w, strings.ReplaceAll(body, "%s", server.URL))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func findingsByCheck(report *Report) map[string][]string {
	out := make(map[string][]string)
	for _, f := range report.Findings {
		out[f.Check] = append(out[f.Check], f.Location)
	}
	return out
}

func TestAuditor_Run_RobotsAndEntries(t *testing.T) {
	server := newSite(t, "User-agent: *\nDisallow: /admin/\n", nil)

	a, err := NewAuditor(Options{BaseURL: server.URL, UserAgent: "Googlebot"}, nil)
	require.NoError(t, err)

	report, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, report.Entries)
	assert.Equal(t, 0, report.PagesChecked)

	byCheck := findingsByCheck(report)
	assert.Equal(t, []string{server.URL + "/admin/drafts"}, byCheck[CheckRobotsBlocked])
	assert.Len(t, byCheck[CheckRobotsNoSitemap], 1)
	assert.Equal(t, 1, report.Errors())
}

func TestAuditor_Run_RobotsDeclaresSitemap(t *testing.T) {
	server := newSite(t, "User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", nil)

	a, err := NewAuditor(Options{BaseURL: server.URL}, nil)
	require.NoError(t, err)

	report, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Findings)
}

func TestAuditor_Run_MissingRobots(t *testing.T) {
	server := newSite(t, "", nil)

	a, err := NewAuditor(Options{BaseURL: server.URL}, nil)
	require.NoError(t, err)

	report, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{CheckRobotsMissing}, checksOf(report.Findings))
}

func TestAuditor_Run_CheckPages(t *testing.T) {
	pages := map[string]string{
		"/":                   `<html><head><link rel="canonical" href="%s/"></head></html>`,
		"/blog/budget-basics": `<html><head><link rel="canonical" href="/blog/budget-basics-2024"></head></html>`,
		"/admin/drafts":       `<html><head><title>no canonical</title></head></html>`,
	}
	server := newSite(t, "User-agent: *\nAllow: /\nSitemap: %s/sitemap.xml\n", pages)

	a, err := NewAuditor(Options{
		BaseURL:           server.URL,
		CheckPages:        true,
		Workers:           2,
		RequestsPerSecond: 100,
	}, nil)
	require.NoError(t, err)

	report, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, report.PagesChecked)

	byCheck := findingsByCheck(report)
	assert.Equal(t, []string{server.URL + "/blog/budget-basics"}, byCheck[CheckCanonical])
	assert.Equal(t, []string{server.URL + "/admin/drafts"}, byCheck[CheckCanonicalMissing])
	assert.Equal(t, []string{server.URL + "/guides/missing"}, byCheck[CheckStatus])
}

func TestAuditor_Run_FiltersRestrictPages(t *testing.T) {
	pages := map[string]string{
		"/blog/budget-basics": `<html><head><link rel="canonical" href="%s/blog/budget-basics"></head></html>`,
	}
	server := newSite(t, "User-agent: *\nAllow: /\nSitemap: %s/sitemap.xml\n", pages)

	a, err := NewAuditor(Options{
		BaseURL:    server.URL,
		CheckPages: true,
		Workers:    1,
		Filters:    []filter.Filter{filter.NewPathPrefixFilter("/blog/")},
	}, nil)
	require.NoError(t, err)

	report, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.PagesChecked)
	assert.Empty(t, report.Findings)
}

func TestAuditor_Run_SitemapUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	a, err := NewAuditor(Options{BaseURL: server.URL}, nil)
	require.NoError(t, err)

	_, err = a.Run(context.Background())
	assert.Error(t, err)
}

func TestNewAuditor_RelativeBase(t *testing.T) {
	_, err := NewAuditor(Options{BaseURL: "/relative"}, nil)
	assert.Error(t, err)
}
