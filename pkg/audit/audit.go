// Package audit crawls a published sitemap and reports problems with it.
package audit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
	"k8s.io/klog/v2"

	"standardthought/pkg/filter"
	"standardthought/pkg/httpclient"
	"standardthought/pkg/sitemap"
	"standardthought/pkg/worker"
)

// Options configures an audit run.
type Options struct {
	BaseURL    string
	SitemapURL string // defaults to BaseURL + "/sitemap.xml"

	// UserAgent is the robots.txt group the entries are tested against.
	UserAgent string

	CheckPages        bool
	Workers           int
	RequestsPerSecond float64

	// Filters restrict which entries are fetched when CheckPages is set.
	Filters []filter.Filter
}

// Report is the outcome of an audit run.
type Report struct {
	SitemapURL   string    `json:"sitemap_url"`
	Entries      int       `json:"entries"`
	PagesChecked int       `json:"pages_checked"`
	Findings     []Finding `json:"findings"`
}

// Errors returns the number of error-severity findings.
func (r *Report) Errors() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Auditor runs sitemap audits.
type Auditor struct {
	client *httpclient.HTTPClient
	parser *sitemap.Parser
	opts   Options
}

// NewAuditor creates an auditor. A nil client means a default crawler client.
func NewAuditor(opts Options, client *httpclient.HTTPClient) (*Auditor, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute: %q", opts.BaseURL)
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.SitemapURL == "" {
		opts.SitemapURL = opts.BaseURL + "/sitemap.xml"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "*"
	}
	if client == nil {
		client = httpclient.NewClient(httpclient.CrawlerClient)
	}

	return &Auditor{
		client: client,
		parser: sitemap.NewParser(client),
		opts:   opts,
	}, nil
}

// Run fetches the sitemap and runs every check. Only a sitemap that cannot be
// fetched or parsed is an error; everything else becomes a finding.
func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	entries, err := a.parser.ParseFromURL(ctx, a.opts.SitemapURL)
	if err != nil {
		return nil, fmt.Errorf("parse sitemap %s: %w", a.opts.SitemapURL, err)
	}
	klog.Infof("Parsed %d entries from %s", len(entries), a.opts.SitemapURL)

	report := &Report{SitemapURL: a.opts.SitemapURL, Entries: len(entries)}
	report.Findings = append(report.Findings, CheckEntries(a.opts.BaseURL, entries)...)
	report.Findings = append(report.Findings, a.checkRobots(ctx, entries)...)

	if a.opts.CheckPages {
		checked, findings, err := a.checkPages(ctx, entries)
		if err != nil {
			return nil, err
		}
		report.PagesChecked = checked
		report.Findings = append(report.Findings, findings...)
	}

	return report, nil
}

func (a *Auditor) checkRobots(ctx context.Context, entries []sitemap.Entry) []Finding {
	robotsURL := a.opts.BaseURL + "/robots.txt"

	resp, err := a.client.Get(ctx, robotsURL)
	if err != nil {
		return []Finding{{SeverityWarning, CheckRobotsMissing, robotsURL, fmt.Sprintf("fetch robots.txt: %v", err)}}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []Finding{{SeverityWarning, CheckRobotsMissing, robotsURL, "robots.txt not found"}}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return []Finding{{SeverityWarning, CheckRobotsMissing, robotsURL, fmt.Sprintf("read robots.txt: %v", err)}}
	}

	robots, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return []Finding{{SeverityWarning, CheckRobotsMissing, robotsURL, fmt.Sprintf("parse robots.txt: %v", err)}}
	}

	var findings []Finding
	group := robots.FindGroup(a.opts.UserAgent)
	for _, e := range entries {
		u, err := url.Parse(e.Location)
		if err != nil || u.Host == "" {
			continue
		}
		if !group.Test(u.RequestURI()) {
			findings = append(findings, Finding{SeverityError, CheckRobotsBlocked, e.Location,
				fmt.Sprintf("disallowed for %s by robots.txt", a.opts.UserAgent)})
		}
	}

	if !slices.ContainsFunc(robots.Sitemaps, func(s string) bool { return sameURL(s, a.opts.SitemapURL) }) {
		findings = append(findings, Finding{SeverityWarning, CheckRobotsNoSitemap, robotsURL,
			fmt.Sprintf("no Sitemap: line for %s", a.opts.SitemapURL)})
	}

	return findings
}

type pageResult struct {
	status    int
	canonical string
}

func (a *Auditor) checkPages(ctx context.Context, entries []sitemap.Entry) (int, []Finding, error) {
	locations := make([]string, 0, len(entries))
	for _, e := range entries {
		locations = append(locations, e.Location)
	}

	filters := append([]filter.Filter{filter.NewAlreadyFetchedFilter(nil)}, a.opts.Filters...)
	targets, err := filter.FilterURLs(ctx, locations, filters...)
	if err != nil {
		return 0, nil, fmt.Errorf("filter pages: %w", err)
	}

	limit := rate.Inf
	if a.opts.RequestsPerSecond > 0 {
		limit = rate.Limit(a.opts.RequestsPerSecond)
	}
	manager := worker.NewManager(a.opts.Workers, a.fetchPage, rate.NewLimiter(limit, 1))

	results, err := manager.ProcessURLs(ctx, targets)
	if err != nil {
		klog.Warningf("Page checks: %v", err)
	}

	var findings []Finding
	for _, r := range results {
		switch {
		case r.Err != nil:
			findings = append(findings, Finding{SeverityError, CheckFetch, r.URL, r.Err.Error()})
		case r.Value.status != http.StatusOK:
			findings = append(findings, Finding{SeverityError, CheckStatus, r.URL, fmt.Sprintf("status %d", r.Value.status)})
		case r.Value.canonical == "":
			findings = append(findings, Finding{SeverityWarning, CheckCanonicalMissing, r.URL, "page has no canonical link"})
		case !sameURL(r.Value.canonical, r.URL):
			findings = append(findings, Finding{SeverityError, CheckCanonical, r.URL, fmt.Sprintf("canonical is %s", r.Value.canonical)})
		}
	}

	return len(targets), findings, nil
}

// fetchPage fetches a page and extracts its canonical link.
func (a *Auditor) fetchPage(ctx context.Context, pageURL string) (pageResult, error) {
	resp, err := a.client.Get(ctx, pageURL)
	if err != nil {
		return pageResult{}, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	res := pageResult{status: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		return res, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return res, fmt.Errorf("parse HTML: %w", err)
	}

	href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return res, nil
	}

	res.canonical = resolve(pageURL, strings.TrimSpace(href))
	return res, nil
}

func resolve(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
